package source

import (
	"fmt"
	"image"
)

// Source отдает кадры анимации в порядке воспроизведения.
type Source interface {
	FrameCount() int
	Frame(index int) (image.Image, error)
	Close() error
}

// Frames читает все кадры источника по порядку.
func Frames(src Source) ([]image.Image, error) {
	n := src.FrameCount()
	frames := make([]image.Image, 0, n)
	for i := 0; i < n; i++ {
		img, err := src.Frame(i)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		frames = append(frames, img)
	}
	return frames, nil
}

// MemorySource держит уже декодированные кадры.
type MemorySource struct {
	frames []image.Image
}

func NewMemorySource(frames []image.Image) *MemorySource {
	return &MemorySource{frames: frames}
}

func (s *MemorySource) FrameCount() int {
	return len(s.frames)
}

func (s *MemorySource) Frame(index int) (image.Image, error) {
	if index < 0 || index >= len(s.frames) {
		return nil, fmt.Errorf("frame index %d out of range [0,%d)", index, len(s.frames))
	}
	return s.frames[index], nil
}

func (s *MemorySource) Close() error {
	return nil
}
