package tensor

import (
	"image"
	"image/color"
	"testing"
)

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 13), B: uint8((x + y) * 3), A: 255})
		}
	}
	return img
}

func TestRoundTripIsExact(t *testing.T) {
	src := gradient(37, 23)
	tt := FromImage(src)

	if tt.Shape() != [4]int{1, 23, 37, 3} {
		t.Fatalf("Unexpected shape %v", tt.Shape())
	}

	out := tt.Image(0)
	for y := 0; y < 23; y++ {
		for x := 0; x < 37; x++ {
			if out.RGBAAt(x, y) != src.RGBAAt(x, y) {
				t.Fatalf("Pixel (%d,%d): expected %v, got %v", x, y, src.RGBAAt(x, y), out.RGBAAt(x, y))
			}
		}
	}
}

func TestAllByteValuesSurvive(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 256, 1))
	for x := 0; x < 256; x++ {
		img.SetRGBA(x, 0, color.RGBA{R: uint8(x), G: uint8(255 - x), B: uint8(x), A: 255})
	}

	out := FromImage(img).Image(0)
	for x := 0; x < 256; x++ {
		if got := out.RGBAAt(x, 0).R; got != uint8(x) {
			t.Errorf("Value %d came back as %d", x, got)
		}
	}
}

func TestInvertTwiceIsIdentity(t *testing.T) {
	tt := FromImage(gradient(8, 8))
	twice := tt.Invert().Invert()

	for i := range tt.Data {
		d := tt.Data[i] - twice.Data[i]
		if d > 1e-6 || d < -1e-6 {
			t.Fatalf("Index %d: expected %f, got %f", i, tt.Data[i], twice.Data[i])
		}
	}
}

func TestInvertValues(t *testing.T) {
	tt := New(1, 1, 2)
	tt.Set(0, 0, 0, [3]float32{0, 0.25, 1})
	tt.Set(0, 0, 1, [3]float32{0.5, 0.75, 0.1})

	inv := tt.Invert()
	want := []float32{1, 0.75, 0, 0.5, 0.25, 0.9}
	for i, w := range want {
		d := inv.Data[i] - w
		if d > 1e-6 || d < -1e-6 {
			t.Errorf("Index %d: expected %f, got %f", i, w, inv.Data[i])
		}
	}

	// Исходный буфер не меняется
	if tt.Data[0] != 0 {
		t.Error("Invert mutated its input")
	}
}

func TestFromImagesRejectsMixedSizes(t *testing.T) {
	if _, err := FromImages(gradient(4, 4), gradient(5, 4)); err == nil {
		t.Error("Expected error for mixed sizes")
	}
	if _, err := FromImages(); err == nil {
		t.Error("Expected error for empty input")
	}
}

func TestValidate(t *testing.T) {
	good := New(1, 2, 2)
	if err := good.Validate(); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}

	bad := &Tensor{Batch: 1, Height: 2, Width: 2, Data: make([]float32, 3)}
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for short data")
	}
}

func TestFromImageDropsAlpha(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
	}{
		{"nrgba", func() image.Image {
			img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
			for i := 0; i < len(img.Pix); i += 4 {
				copy(img.Pix[i:], []uint8{255, 255, 255, 128})
			}
			return img
		}()},
		{"premultiplied rgba", func() image.Image {
			img := image.NewRGBA(image.Rect(0, 0, 2, 2))
			for i := 0; i < len(img.Pix); i += 4 {
				copy(img.Pix[i:], []uint8{128, 128, 128, 128})
			}
			return img
		}()},
		{"offset bounds", func() image.Image {
			img := image.NewNRGBA(image.Rect(3, 3, 5, 5))
			for i := 0; i < len(img.Pix); i += 4 {
				copy(img.Pix[i:], []uint8{255, 255, 255, 128})
			}
			return img
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromImage(tt.img).At(0, 1, 1)
			if got != [3]float32{1, 1, 1} {
				t.Errorf("Expected straight white [1 1 1], got %v", got)
			}
		})
	}
}
