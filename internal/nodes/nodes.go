// Package nodes contains the node shells exposed to the graph host.
package nodes

import "github.com/ivlev/gifnodes/internal/registry"

// Module registers every node of this package.
type Module struct{}

func (m *Module) Register(r *registry.Registry) {
	r.Register("Example", "Example Node", ExampleClass())
	r.Register("Lucas", "Lucas Node", LucasClass())
	r.Register("GifSpriteSheet", "GIF Sprite Sheet", SpriteSheetClass())
	r.Register("ShowGif", "Show GIF", ShowGifClass())
}

// NewRegistry returns a registry populated with all nodes.
func NewRegistry() *registry.Registry {
	r := registry.New()
	(&Module{}).Register(r)
	return r
}
