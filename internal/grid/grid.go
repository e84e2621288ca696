// Package grid cuts a single image into a rows×columns grid of equally sized
// frames and turns the frames into an animation.
package grid

import (
	"context"
	"fmt"
	"image"
	"log"

	"github.com/disintegration/imaging"

	"github.com/ivlev/gifnodes/internal/animation"
)

// GeometryError reports a grid that cannot be cut from the image.
type GeometryError struct {
	Width, Height int
	Rows, Columns int
	Reason        string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("grid %dx%d (rows x columns) on %dx%d image: %s", e.Rows, e.Columns, e.Width, e.Height, e.Reason)
}

// FrameSize returns the size of one tile and the remainder pixels that do
// not belong to any tile.
func FrameSize(bounds image.Rectangle, rows, columns int) (frame, remainder image.Point, err error) {
	w, h := bounds.Dx(), bounds.Dy()
	if rows < 1 || columns < 1 {
		return frame, remainder, &GeometryError{Width: w, Height: h, Rows: rows, Columns: columns, Reason: "rows and columns must be at least 1"}
	}
	frame = image.Pt(w/columns, h/rows)
	if frame.X == 0 || frame.Y == 0 {
		return frame, remainder, &GeometryError{Width: w, Height: h, Rows: rows, Columns: columns, Reason: "grid is finer than the image"}
	}
	remainder = image.Pt(w%columns, h%rows)
	return frame, remainder, nil
}

// Slice returns rows*columns frames in row-major order: frame k = i*columns+j
// is the tile at row i, column j. When the grid does not divide the image
// evenly the remainder on the right and bottom is dropped; with strict set
// that case is a *GeometryError instead.
func Slice(img image.Image, rows, columns int, strict bool) ([]image.Image, error) {
	bounds := img.Bounds()
	frame, rem, err := FrameSize(bounds, rows, columns)
	if err != nil {
		return nil, err
	}
	if rem.X != 0 || rem.Y != 0 {
		if strict {
			return nil, &GeometryError{
				Width: bounds.Dx(), Height: bounds.Dy(), Rows: rows, Columns: columns,
				Reason: fmt.Sprintf("dimensions are not divisible (remainder %dx%d px)", rem.X, rem.Y),
			}
		}
		log.Printf("[!] Сетка %dx%d не делит %dx%d нацело, отброшено %d px справа и %d px снизу",
			rows, columns, bounds.Dx(), bounds.Dy(), rem.X, rem.Y)
	}

	frames := make([]image.Image, 0, rows*columns)
	for i := 0; i < rows; i++ {
		for j := 0; j < columns; j++ {
			left := bounds.Min.X + j*frame.X
			upper := bounds.Min.Y + i*frame.Y
			r := image.Rect(left, upper, left+frame.X, upper+frame.Y)
			frames = append(frames, imaging.Crop(img, r))
		}
	}
	return frames, nil
}

// SliceAndAnimate slices img and writes the frames to path, each shown for
// delayMs milliseconds, looping forever. It returns the number of frames.
func SliceAndAnimate(ctx context.Context, enc animation.Encoder, img image.Image, rows, columns int, path string, delayMs int, strict bool) (int, error) {
	frames, err := Slice(img, rows, columns, strict)
	if err != nil {
		return 0, err
	}
	params := animation.Params{DelayMs: delayMs, LoopCount: 0}
	if err := enc.Encode(ctx, frames, path, params); err != nil {
		return 0, fmt.Errorf("encode %s: %w", path, err)
	}
	return len(frames), nil
}
