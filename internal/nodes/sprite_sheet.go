package nodes

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ivlev/gifnodes/internal/config"
	"github.com/ivlev/gifnodes/internal/node"
	"github.com/ivlev/gifnodes/internal/source"
	"github.com/ivlev/gifnodes/internal/sprite"
	"github.com/ivlev/gifnodes/internal/tensor"
)

// SpriteSheetClass downloads an animation and packs its frames into a
// square sheet.
func SpriteSheetClass() node.Class {
	return node.Class{
		Input: node.Schema{
			Required: []node.Field{
				node.String("url", "", false),
			},
		},
		Return:      []node.Type{node.TypeImage},
		Function:    "pack",
		Category:    "gif",
		Description: "Packs every frame of a remote GIF into a 1024x1024 sprite sheet.",
		New: func(env *node.Env) node.Instance {
			return NewSpriteSheet(env.Client, env.Config)
		},
	}
}

type SpriteSheet struct {
	client *http.Client
	fetch  source.FetchOptions
	opts   sprite.Options
}

func NewSpriteSheet(client *http.Client, cfg *config.Config) *SpriteSheet {
	if cfg == nil {
		cfg = config.Default()
	}
	if client == nil {
		client = source.NewClient(cfg.HTTPTimeout)
	}
	return &SpriteSheet{
		client: client,
		fetch: source.FetchOptions{
			MaxBytes:  cfg.MaxDownloadBytes,
			UserAgent: cfg.UserAgent,
			MaxPixels: cfg.FramePixelLimit(),
		},
		// Лист всегда 1024x1024
		opts: sprite.Options{Size: sprite.DefaultSize, Workers: cfg.Workers},
	}
}

func (s *SpriteSheet) Execute(ctx context.Context, in node.Inputs) (node.Output, error) {
	url, err := in.Text("url")
	if err != nil {
		return node.Output{}, err
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return node.Output{}, fmt.Errorf("url is empty")
	}

	fmt.Printf("[*] Загрузка анимации: %s\n", url)
	sheet, layout, err := sprite.PackURL(ctx, s.client, url, s.fetch, s.opts)
	if err != nil {
		return node.Output{}, err
	}
	fmt.Printf("[>] Лист %dx%d: %d кадров, плитка %dpx, сетка %dx%d\n",
		layout.Size, layout.Size, layout.Frames, layout.TileSize, layout.Columns, layout.Columns)

	return node.Output{Values: []any{tensor.FromImage(sheet)}}, nil
}
