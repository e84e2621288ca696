package animation

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

type Params struct {
	DelayMs   int // длительность показа одного кадра
	LoopCount int // 0 = бесконечный повтор
}

type Encoder interface {
	Encode(ctx context.Context, frames []image.Image, path string, params Params) error
}

// GIFEncoder пишет анимированный GIF. Если кадр укладывается в 256 цветов,
// палитра строится точно; иначе используется Plan9 с дизерингом Флойда-Стейнберга.
type GIFEncoder struct{}

func (e *GIFEncoder) Encode(ctx context.Context, frames []image.Image, path string, params Params) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to encode")
	}

	b0 := frames[0].Bounds()
	anim := &gif.GIF{
		Image:     make([]*image.Paletted, 0, len(frames)),
		Delay:     make([]int, 0, len(frames)),
		LoopCount: params.LoopCount,
		Config: image.Config{
			Width:  b0.Dx(),
			Height: b0.Dy(),
		},
	}

	delay := centiseconds(params.DelayMs)
	for i, frame := range frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		if frame.Bounds().Size() != b0.Size() {
			return fmt.Errorf("frame %d is %v, expected %v", i, frame.Bounds().Size(), b0.Size())
		}
		anim.Image = append(anim.Image, e.quantize(frame))
		anim.Delay = append(anim.Delay, delay)
		anim.Disposal = append(anim.Disposal, gif.DisposalNone)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := gif.EncodeAll(w, anim); err != nil {
		f.Close()
		return fmt.Errorf("gif encode error: %w", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (e *GIFEncoder) quantize(img image.Image) *image.Paletted {
	bounds := img.Bounds()
	rect := image.Rect(0, 0, bounds.Dx(), bounds.Dy())

	if pal, ok := exactPalette(img, 256); ok {
		dst := image.NewPaletted(rect, pal)
		draw.Draw(dst, rect, img, bounds.Min, draw.Src)
		return dst
	}

	dst := image.NewPaletted(rect, palette.Plan9)
	draw.FloydSteinberg.Draw(dst, rect, img, bounds.Min)
	return dst
}

// exactPalette собирает уникальные непрозрачные цвета изображения.
// Возвращает false, если их больше limit.
func exactPalette(img image.Image, limit int) (color.Palette, bool) {
	bounds := img.Bounds()
	seen := make(map[color.RGBA]struct{}, limit)
	pal := make(color.Palette, 0, limit)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			c := color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0xff}
			if _, ok := seen[c]; ok {
				continue
			}
			if len(pal) == limit {
				return nil, false
			}
			seen[c] = struct{}{}
			pal = append(pal, c)
		}
	}
	return pal, true
}

func centiseconds(ms int) int {
	if ms <= 0 {
		return 0
	}
	cs := ms / 10
	if cs == 0 {
		cs = 1
	}
	return cs
}
