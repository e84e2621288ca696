// Package tensor holds the IMAGE buffer exchanged between nodes: a batch of
// RGB images with float32 intensities in [0,1], laid out as
// (batch, height, width, channel).
package tensor

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Channels is fixed: buffers never carry alpha.
const Channels = 3

type Tensor struct {
	Batch  int
	Height int
	Width  int
	Data   []float32
}

// New allocates a zeroed tensor of shape (batch, height, width, 3).
func New(batch, height, width int) *Tensor {
	return &Tensor{
		Batch:  batch,
		Height: height,
		Width:  width,
		Data:   make([]float32, batch*height*width*Channels),
	}
}

// Shape returns (batch, height, width, channels).
func (t *Tensor) Shape() [4]int {
	return [4]int{t.Batch, t.Height, t.Width, Channels}
}

func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor(%d, %d, %d, %d)", t.Batch, t.Height, t.Width, Channels)
}

func (t *Tensor) offset(b, y, x int) int {
	return ((b*t.Height+y)*t.Width + x) * Channels
}

// At returns the RGB triple at (b, y, x).
func (t *Tensor) At(b, y, x int) [3]float32 {
	o := t.offset(b, y, x)
	return [3]float32{t.Data[o], t.Data[o+1], t.Data[o+2]}
}

func (t *Tensor) Set(b, y, x int, rgb [3]float32) {
	o := t.offset(b, y, x)
	copy(t.Data[o:o+Channels], rgb[:])
}

func (t *Tensor) Clone() *Tensor {
	c := &Tensor{Batch: t.Batch, Height: t.Height, Width: t.Width, Data: make([]float32, len(t.Data))}
	copy(c.Data, t.Data)
	return c
}

// Invert returns a new tensor with every value replaced by 1.0 - v.
func (t *Tensor) Invert() *Tensor {
	out := &Tensor{Batch: t.Batch, Height: t.Height, Width: t.Width, Data: make([]float32, len(t.Data))}
	for i, v := range t.Data {
		out.Data[i] = 1.0 - v
	}
	return out
}

func (t *Tensor) Validate() error {
	if t.Batch < 1 || t.Height < 1 || t.Width < 1 {
		return fmt.Errorf("invalid tensor shape %v", t.Shape())
	}
	if len(t.Data) != t.Batch*t.Height*t.Width*Channels {
		return fmt.Errorf("tensor data length %d does not match shape %v", len(t.Data), t.Shape())
	}
	return nil
}

// FromImages stacks images of identical size into one batch, scaling 8-bit
// samples down by 255.
func FromImages(imgs ...image.Image) (*Tensor, error) {
	if len(imgs) == 0 {
		return nil, fmt.Errorf("no images to convert")
	}
	b0 := imgs[0].Bounds()
	t := New(len(imgs), b0.Dy(), b0.Dx())
	for i, img := range imgs {
		b := img.Bounds()
		if b.Dx() != t.Width || b.Dy() != t.Height {
			return nil, fmt.Errorf("image %d is %dx%d, expected %dx%d", i, b.Dx(), b.Dy(), t.Width, t.Height)
		}
		px := toNRGBA(img)
		for y := 0; y < t.Height; y++ {
			row := px.Pix[y*px.Stride:]
			for x := 0; x < t.Width; x++ {
				p := row[x*4:]
				o := t.offset(i, y, x)
				t.Data[o] = float32(p[0]) / 255
				t.Data[o+1] = float32(p[1]) / 255
				t.Data[o+2] = float32(p[2]) / 255
			}
		}
	}
	return t, nil
}

// FromImage is FromImages for a single image.
func FromImage(img image.Image) *Tensor {
	t, _ := FromImages(img)
	return t
}

// Image converts batch element b to an opaque RGBA image. Values are
// multiplied by 255 and truncated toward zero, like a byte cast.
func (t *Tensor) Image(b int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.Width, t.Height))
	t.Fill(img, b)
	return img
}

// Fill writes batch element b into dst, which must be at least Width×Height.
// Used with pooled buffers.
func (t *Tensor) Fill(dst *image.RGBA, b int) {
	for y := 0; y < t.Height; y++ {
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < t.Width; x++ {
			o := t.offset(b, y, x)
			p := row[x*4:]
			p[0] = toByte(t.Data[o])
			p[1] = toByte(t.Data[o+1])
			p[2] = toByte(t.Data[o+2])
			p[3] = 0xff
		}
	}
}

// toByte truncates like a byte cast. The small bias absorbs float32
// representation error so that b/255*255 maps back to b.
func toByte(v float32) uint8 {
	s := float64(v)*255 + 1e-3
	if s <= 0 {
		return 0
	}
	if s >= 255 {
		return 255
	}
	return uint8(s)
}

// toNRGBA возвращает img как *image.NRGBA с началом в (0,0). Цвета не
// премультиплицированы: альфа отбрасывается, RGB остаются как есть.
func toNRGBA(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && n.Stride == bounds.Dx()*4 && bounds.Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(img)
}
