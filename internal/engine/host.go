package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ivlev/gifnodes/internal/config"
	"github.com/ivlev/gifnodes/internal/node"
	"github.com/ivlev/gifnodes/internal/registry"
	"github.com/ivlev/gifnodes/internal/source"
	"github.com/ivlev/gifnodes/internal/system"
	"github.com/ivlev/gifnodes/internal/tensor"
)

// Host is a minimal local stand-in for a graph host. It keeps one instance
// per node class, so per-instance state (the Lucas counter) survives between
// invocations.
type Host struct {
	Registry *registry.Registry
	Config   *config.Config

	env       *node.Env
	mu        sync.Mutex
	instances map[string]node.Instance
}

func NewHost(reg *registry.Registry, cfg *config.Config) *Host {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Host{
		Registry: reg,
		Config:   cfg,
		env: &node.Env{
			Config:    cfg,
			OutputDir: cfg.OutputDir,
			Client:    source.NewClient(cfg.HTTPTimeout),
		},
		instances: make(map[string]node.Instance),
	}
}

func (h *Host) instance(id string, class *node.Class) node.Instance {
	h.mu.Lock()
	defer h.mu.Unlock()
	inst, ok := h.instances[id]
	if !ok {
		inst = class.New(h.env)
		h.instances[id] = inst
	}
	return inst
}

// Invoke runs one node. String values given for IMAGE fields are treated as
// a file, a directory of images or an http(s) URL and loaded into a tensor.
func (h *Host) Invoke(ctx context.Context, id string, raw map[string]any) (node.Output, error) {
	class, ok := h.Registry.Class(id)
	if !ok {
		return node.Output{}, fmt.Errorf("unknown node '%s'", id)
	}

	prepared := make(map[string]any, len(raw))
	for name, v := range raw {
		prepared[name] = v
		f, _, ok := class.Input.Lookup(name)
		if !ok || f.Type != node.TypeImage {
			continue
		}
		if s, ok := v.(string); ok {
			t, err := h.LoadTensor(ctx, s)
			if err != nil {
				return node.Output{}, fmt.Errorf("node '%s', input '%s': %w", id, name, err)
			}
			prepared[name] = t
		}
	}

	in, err := node.Resolve(class.Input, prepared)
	if err != nil {
		return node.Output{}, fmt.Errorf("node '%s': %w", id, err)
	}
	if err := system.EnsureDir(h.Config.OutputDir); err != nil {
		return node.Output{}, err
	}

	out, err := h.instance(id, class).Execute(ctx, in)
	if err != nil {
		return node.Output{}, fmt.Errorf("node '%s': %w", id, err)
	}
	if len(out.Values) != len(class.Return) {
		return node.Output{}, fmt.Errorf("node '%s' returned %d values, declared %d", id, len(out.Values), len(class.Return))
	}
	return out, nil
}

// LoadTensor loads every frame at loc into one batch: the pages of a PDF,
// the frames of an image file, the images of a directory or a remote file.
func (h *Host) LoadTensor(ctx context.Context, loc string) (*tensor.Tensor, error) {
	if strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://") {
		src, err := source.NewRemoteSource(ctx, h.env.Client, loc, source.FetchOptions{
			MaxBytes:  h.Config.MaxDownloadBytes,
			UserAgent: h.Config.UserAgent,
			MaxPixels: h.Config.FramePixelLimit(),
		})
		if err != nil {
			return nil, err
		}
		defer src.Close()
		frames, err := source.Frames(src)
		if err != nil {
			return nil, err
		}
		return tensor.FromImages(frames...)
	}

	if strings.HasSuffix(strings.ToLower(loc), ".pdf") {
		src, err := source.NewPDFSource(loc, h.Config.DPI, h.Config.FramePixelLimit())
		if err != nil {
			return nil, err
		}
		defer src.Close()
		frames, err := source.Frames(src)
		if err != nil {
			return nil, err
		}
		fmt.Printf("[*] %s: страниц: %d @ %d DPI\n", loc, len(frames), h.Config.DPI)
		return tensor.FromImages(frames...)
	}

	src, err := source.NewImageSourceLimit(loc, h.Config.FramePixelLimit())
	if err != nil {
		return nil, err
	}
	defer src.Close()
	if src.FrameCount() == 0 {
		return nil, fmt.Errorf("%s: no images found", loc)
	}
	frames, err := src.LoadAll(ctx, h.workers())
	if err != nil {
		return nil, err
	}
	fmt.Printf("[*] %s: загружено кадров: %d\n", loc, len(frames))
	return tensor.FromImages(frames...)
}

func (h *Host) workers() int {
	if h.Config.Workers > 0 {
		return h.Config.Workers
	}
	return system.DefaultWorkers()
}
