// Package sprite packs the frames of an animation into one square sprite
// sheet of uniform square tiles.
package sprite

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"net/http"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/gifnodes/internal/source"
)

const DefaultSize = 1024

// ErrNoFrames is returned when there is nothing to pack.
var ErrNoFrames = errors.New("sprite: animation has no frames")

var background = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

type Options struct {
	Size    int // сторона листа, по умолчанию DefaultSize
	Workers int // 0 = без ограничения
}

// Layout describes where frames land on the sheet.
type Layout struct {
	Size     int
	TileSize int
	Columns  int
	Frames   int
}

// Cell returns the top-left corner of frame i (row-major).
func (l Layout) Cell(i int) image.Point {
	return image.Pt((i%l.Columns)*l.TileSize, (i/l.Columns)*l.TileSize)
}

// TileSize returns the largest t in [1, size], searched from size down,
// such that floor(size/t)^2 >= n.
func TileSize(n, size int) (int, error) {
	if size < 1 {
		return 0, fmt.Errorf("sheet size must be positive, got %d", size)
	}
	for t := size; t >= 1; t-- {
		per := size / t
		if per*per >= n {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%d frames do not fit a %dx%d sheet", n, size, size)
}

// Plan computes the layout for n frames.
func Plan(n, size int) (Layout, error) {
	t, err := TileSize(n, size)
	if err != nil {
		return Layout{}, err
	}
	return Layout{Size: size, TileSize: t, Columns: size / t, Frames: n}, nil
}

// Pack resizes every frame to the tile size with a Lanczos filter and
// pastes it onto a white size×size canvas at its row-major cell.
func Pack(ctx context.Context, frames []image.Image, opts Options) (*image.NRGBA, Layout, error) {
	size := opts.Size
	if size == 0 {
		size = DefaultSize
	}
	if len(frames) == 0 {
		return nil, Layout{}, ErrNoFrames
	}
	layout, err := Plan(len(frames), size)
	if err != nil {
		return nil, Layout{}, err
	}

	tiles := make([]*image.NRGBA, len(frames))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for i, frame := range frames {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tiles[i] = imaging.Resize(frame, layout.TileSize, layout.TileSize, imaging.Lanczos)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Layout{}, err
	}

	canvas := imaging.New(size, size, background)
	for i, tile := range tiles {
		// Overlay: прозрачные пиксели кадра оставляют белый фон
		canvas = imaging.Overlay(canvas, tile, layout.Cell(i), 1.0)
	}
	return canvas, layout, nil
}

// PackURL downloads an animation, decodes its frames and packs them.
func PackURL(ctx context.Context, client *http.Client, rawURL string, fetch source.FetchOptions, opts Options) (*image.NRGBA, Layout, error) {
	src, err := source.NewRemoteSource(ctx, client, rawURL, fetch)
	if err != nil {
		return nil, Layout{}, err
	}
	defer src.Close()

	frames, err := source.Frames(src)
	if err != nil {
		return nil, Layout{}, err
	}
	return Pack(ctx, frames, opts)
}
