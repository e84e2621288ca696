package source

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// ImageSource читает кадры с диска: либо один файл (GIF раскладывается
// на кадры), либо папку изображений, по одному кадру на файл.
type ImageSource struct {
	paths     []string
	frames    []image.Image // только для одиночного анимированного файла
	maxPixels int64
}

func NewImageSource(path string) (*ImageSource, error) {
	return NewImageSourceLimit(path, DefaultMaxPixels)
}

// NewImageSourceLimit ограничивает размер каждого кадра maxPixels пикселями.
func NewImageSourceLimit(path string, maxPixels int64) (*ImageSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !fi.IsDir() {
		frames, err := LoadFramesLimit(path, maxPixels)
		if err != nil {
			return nil, err
		}
		return &ImageSource{frames: frames, maxPixels: maxPixels}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			paths = append(paths, filepath.Join(path, entry.Name()))
		}
	}
	sort.Strings(paths)
	return &ImageSource{paths: paths, maxPixels: maxPixels}, nil
}

func (s *ImageSource) FrameCount() int {
	if s.frames != nil {
		return len(s.frames)
	}
	return len(s.paths)
}

func (s *ImageSource) Frame(index int) (image.Image, error) {
	if index < 0 || index >= s.FrameCount() {
		return nil, fmt.Errorf("frame index %d out of range [0,%d)", index, s.FrameCount())
	}
	if s.frames != nil {
		return s.frames[index], nil
	}
	return s.load(s.paths[index])
}

// LoadAll декодирует все кадры параллельно, сохраняя порядок.
func (s *ImageSource) LoadAll(ctx context.Context, workers int) ([]image.Image, error) {
	if s.frames != nil {
		return s.frames, nil
	}

	frames := make([]image.Image, len(s.paths))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := range s.paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := s.load(s.paths[i])
			if err != nil {
				return err
			}
			frames[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return frames, nil
}

func (s *ImageSource) Close() error {
	return nil
}

func (s *ImageSource) load(path string) (image.Image, error) {
	frames, err := LoadFramesLimit(path, s.maxPixels)
	if err != nil {
		return nil, err
	}
	return frames[0], nil
}

// LoadImage декодирует первый кадр файла.
func LoadImage(path string) (image.Image, error) {
	frames, err := LoadFrames(path)
	if err != nil {
		return nil, err
	}
	return frames[0], nil
}

// LoadFrames декодирует все кадры файла (для GIF) или единственный кадр.
func LoadFrames(path string) ([]image.Image, error) {
	return LoadFramesLimit(path, DefaultMaxPixels)
}

// LoadFramesLimit - LoadFrames с ограничением размера кадра.
func LoadFramesLimit(path string, maxPixels int64) ([]image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	frames, err := DecodeFramesLimit(data, maxPixels)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(frames) == 0 {
		return nil, &DecodeError{Format: "gif", Err: fmt.Errorf("%s has no frames", path)}
	}
	return frames, nil
}
