package system

import (
	"image"
	"sync"
	"sync/atomic"
)

// FramePool переиспользует RGBA-буферы кадров одного размера между вызовами
// узлов. Буферы всегда начинаются в (0,0); содержимое не очищается.
type FramePool struct {
	mu     sync.Mutex
	pools  map[image.Point]*sync.Pool
	allocs atomic.Int64
}

func NewFramePool() *FramePool {
	return &FramePool{pools: make(map[image.Point]*sync.Pool)}
}

var frames = NewFramePool()

// GetImage берет буфер из общего пула.
func GetImage(rect image.Rectangle) *image.RGBA {
	return frames.Get(rect)
}

// PutImage возвращает буфер в общий пул.
func PutImage(img *image.RGBA) {
	frames.Put(img)
}

// FrameAllocations сообщает, сколько буферов общий пул создал с нуля.
func FrameAllocations() int64 {
	return frames.allocs.Load()
}

func (p *FramePool) pool(size image.Point) *sync.Pool {
	p.mu.Lock()
	defer p.mu.Unlock()
	pl, ok := p.pools[size]
	if !ok {
		pl = &sync.Pool{New: func() any {
			p.allocs.Add(1)
			return image.NewRGBA(image.Rectangle{Max: size})
		}}
		p.pools[size] = pl
	}
	return pl
}

// Get возвращает буфер размера rect. Для прямоугольника не от (0,0) пул не
// используется.
func (p *FramePool) Get(rect image.Rectangle) *image.RGBA {
	if rect.Min != (image.Point{}) {
		p.allocs.Add(1)
		return image.NewRGBA(rect)
	}
	return p.pool(rect.Size()).Get().(*image.RGBA)
}

func (p *FramePool) Put(img *image.RGBA) {
	if img == nil || img.Rect.Min != (image.Point{}) || img.Rect.Empty() {
		return
	}
	p.pool(img.Rect.Size()).Put(img)
}
