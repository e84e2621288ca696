package source

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// DecodeError reports content that is not a decodable image.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("decode image: %v", e.Err)
	}
	return fmt.Sprintf("decode %s: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DefaultMaxPixels bounds the canvas of a single decoded frame (256 MiB as RGBA).
const DefaultMaxPixels = 1 << 26

// DecodeFrames is DecodeFramesLimit with DefaultMaxPixels.
func DecodeFrames(data []byte) ([]image.Image, error) {
	return DecodeFramesLimit(data, DefaultMaxPixels)
}

// DecodeFramesLimit decodes an animated GIF into fully composited frames in
// file order. Any other format image.Decode understands (PNG, JPEG, WebP)
// yields a single frame. Images whose declared size exceeds maxPixels are
// rejected before any pixel buffer is allocated; maxPixels <= 0 disables the
// check.
func DecodeFramesLimit(data []byte, maxPixels int64) ([]image.Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	if err := checkPixels(cfg.Width, cfg.Height, maxPixels); err != nil {
		return nil, &DecodeError{Format: format, Err: err}
	}

	if format == "gif" {
		g, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, &DecodeError{Format: format, Err: err}
		}
		return Composite(g), nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Format: format, Err: err}
	}
	return []image.Image{img}, nil
}

// Composite renders every GIF frame onto the logical screen, applying the
// disposal method of the previous frame, so each returned frame is a
// complete picture of the screen size.
func Composite(g *gif.GIF) []image.Image {
	screen := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if screen.Empty() {
		for _, p := range g.Image {
			screen = screen.Union(p.Bounds())
		}
	}

	canvas := image.NewRGBA(screen)
	frames := make([]image.Image, 0, len(g.Image))
	for i, p := range g.Image {
		var saved *image.RGBA
		disposal := byte(gif.DisposalNone)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			saved = cloneRGBA(canvas)
		}

		draw.Draw(canvas, p.Bounds(), p, p.Bounds().Min, draw.Over)
		frames = append(frames, cloneRGBA(canvas))

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, p.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = saved
		}
	}
	return frames
}

func checkPixels(w, h int, maxPixels int64) error {
	if maxPixels > 0 && int64(w)*int64(h) > maxPixels {
		return fmt.Errorf("%dx%d exceeds the %d pixel limit", w, h, maxPixels)
	}
	return nil
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}
