package grid

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"testing"

	"github.com/ivlev/gifnodes/internal/animation"
)

// quadrants рисует изображение, где каждая четверть залита своим цветом.
func quadrants(w, h int) (*image.RGBA, []color.RGBA) {
	colors := []color.RGBA{
		{R: 255, A: 255},
		{G: 255, A: 255},
		{B: 255, A: 255},
		{R: 255, G: 255, A: 255},
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := 0
			if x >= w/2 {
				idx++
			}
			if y >= h/2 {
				idx += 2
			}
			img.SetRGBA(x, y, colors[idx])
		}
	}
	return img, colors
}

func TestSliceQuadrants(t *testing.T) {
	img, colors := quadrants(256, 256)

	frames, err := Slice(img, 2, 2, true)
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}
	if len(frames) != 4 {
		t.Fatalf("Expected 4 frames, got %d", len(frames))
	}

	// top-left, top-right, bottom-left, bottom-right
	for i, f := range frames {
		b := f.Bounds()
		if b.Dx() != 128 || b.Dy() != 128 {
			t.Errorf("Frame %d: expected 128x128, got %dx%d", i, b.Dx(), b.Dy())
		}
		got := color.RGBAModel.Convert(f.At(b.Min.X+64, b.Min.Y+64)).(color.RGBA)
		if got != colors[i] {
			t.Errorf("Frame %d: expected %v, got %v", i, colors[i], got)
		}
	}
}

func TestSliceRowMajorOrder(t *testing.T) {
	// 3 строки x 4 колонки, каждая клетка помечена своим индексом в красном канале
	rows, cols := 3, 4
	img := image.NewRGBA(image.Rect(0, 0, cols*10, rows*6))
	for y := 0; y < rows*6; y++ {
		for x := 0; x < cols*10; x++ {
			k := (y/6)*cols + x/10
			img.SetRGBA(x, y, color.RGBA{R: uint8(k * 10), A: 255})
		}
	}

	frames, err := Slice(img, rows, cols, true)
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}
	if len(frames) != rows*cols {
		t.Fatalf("Expected %d frames, got %d", rows*cols, len(frames))
	}
	for k, f := range frames {
		b := f.Bounds()
		if b.Dx() != 10 || b.Dy() != 6 {
			t.Errorf("Frame %d: expected 10x6, got %dx%d", k, b.Dx(), b.Dy())
		}
		r, _, _, _ := f.At(b.Min.X, b.Min.Y).RGBA()
		if uint8(r>>8) != uint8(k*10) {
			t.Errorf("Frame %d: expected tile %d, got marker %d", k, k, r>>8/10)
		}
	}
}

func TestSliceSingleCellIsIdentity(t *testing.T) {
	img, _ := quadrants(31, 17)

	frames, err := Slice(img, 1, 1, true)
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("Expected 1 frame, got %d", len(frames))
	}

	f := frames[0]
	if f.Bounds().Dx() != 31 || f.Bounds().Dy() != 17 {
		t.Fatalf("Unexpected size %v", f.Bounds())
	}
	for y := 0; y < 17; y++ {
		for x := 0; x < 31; x++ {
			want := img.RGBAAt(x, y)
			got := color.RGBAModel.Convert(f.At(f.Bounds().Min.X+x, f.Bounds().Min.Y+y)).(color.RGBA)
			if got != want {
				t.Fatalf("Pixel (%d,%d): expected %v, got %v", x, y, want, got)
			}
		}
	}
}

func TestSliceRemainder(t *testing.T) {
	img, _ := quadrants(101, 50)

	frames, err := Slice(img, 2, 2, false)
	if err != nil {
		t.Fatalf("Truncating slice failed: %v", err)
	}
	for i, f := range frames {
		if f.Bounds().Dx() != 50 || f.Bounds().Dy() != 25 {
			t.Errorf("Frame %d: expected 50x25, got %v", i, f.Bounds())
		}
	}

	_, err = Slice(img, 2, 2, true)
	var geo *GeometryError
	if !errors.As(err, &geo) {
		t.Fatalf("Expected GeometryError, got %v", err)
	}
	t.Logf("Strict error: %v", err)
}

func TestSliceInvalidGrid(t *testing.T) {
	img, _ := quadrants(4, 4)

	tests := []struct {
		name       string
		rows, cols int
	}{
		{"zero rows", 0, 1},
		{"negative columns", 1, -1},
		{"finer than image", 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Slice(img, tt.rows, tt.cols, false)
			var geo *GeometryError
			if !errors.As(err, &geo) {
				t.Errorf("Expected GeometryError, got %v", err)
			}
		})
	}
}

func TestSliceAndAnimate(t *testing.T) {
	img, _ := quadrants(64, 32)
	path := filepath.Join(t.TempDir(), "0_output.gif")

	n, err := SliceAndAnimate(context.Background(), &animation.GIFEncoder{}, img, 2, 2, path, 200, true)
	if err != nil {
		t.Fatalf("SliceAndAnimate failed: %v", err)
	}
	if n != 4 {
		t.Errorf("Expected 4 frames, got %d", n)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	g, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatalf("Written file is not a GIF: %v", err)
	}
	if len(g.Image) != 4 {
		t.Errorf("Expected 4 GIF frames, got %d", len(g.Image))
	}
	if g.LoopCount != 0 {
		t.Errorf("Expected infinite loop, got %d", g.LoopCount)
	}
	for i, d := range g.Delay {
		if d != 20 {
			t.Errorf("Frame %d: expected delay 20cs, got %d", i, d)
		}
	}
	if g.Config.Width != 32 || g.Config.Height != 16 {
		t.Errorf("Expected 32x16 canvas, got %dx%d", g.Config.Width, g.Config.Height)
	}
}
