package nodes

import (
	"context"
	"fmt"
	"image"

	"github.com/ivlev/gifnodes/internal/animation"
	"github.com/ivlev/gifnodes/internal/grid"
	"github.com/ivlev/gifnodes/internal/node"
	"github.com/ivlev/gifnodes/internal/system"
)

// LucasClass cuts an image into a grid and plays the cells as a GIF.
func LucasClass() node.Class {
	return node.Class{
		Input: node.Schema{
			Required: []node.Field{
				node.Image("image"),
				node.Int("columns", 1).AtLeast(1).WithStep(1),
				node.Int("rows", 1).AtLeast(1).WithStep(1),
				node.Int("video_speed", 200).Range(1, 1000).WithStep(1).Slider(),
			},
		},
		Return:      []node.Type{node.TypeImage, node.TypeString},
		ReturnNames: []string{"image", "filename"},
		Function:    "to_gif",
		Category:    "gif",
		Description: "Slices a sprite grid into frames and writes a looping GIF.",
		New: func(env *node.Env) node.Instance {
			strict := env.Config != nil && env.Config.StrictGrid
			return NewLucas(env.OutputDir, &animation.GIFEncoder{}, strict)
		},
	}
}

type Lucas struct {
	outputDir string
	encoder   animation.Encoder
	strict    bool
	counter   int
}

func NewLucas(outputDir string, enc animation.Encoder, strict bool) *Lucas {
	return &Lucas{outputDir: outputDir, encoder: enc, strict: strict}
}

func (l *Lucas) Execute(ctx context.Context, in node.Inputs) (node.Output, error) {
	img, err := in.Tensor("image")
	if err != nil {
		return node.Output{}, err
	}
	columns, err := in.Int("columns")
	if err != nil {
		return node.Output{}, err
	}
	rows, err := in.Int("rows")
	if err != nil {
		return node.Output{}, err
	}
	speed, err := in.Int("video_speed")
	if err != nil {
		return node.Output{}, err
	}

	path := system.OutputPath(l.outputDir, l.counter)
	l.counter++

	fmt.Printf("[*] Сетка %dx%d (колонки x строки), вход %v\n", columns, rows, img)

	// Кадр 0 батча; буфер возвращается в пул после кодирования
	rgba := system.GetImage(image.Rect(0, 0, img.Width, img.Height))
	img.Fill(rgba, 0)
	defer system.PutImage(rgba)

	n, err := grid.SliceAndAnimate(ctx, l.encoder, rgba, rows, columns, path, speed, l.strict)
	if err != nil {
		return node.Output{}, err
	}

	fmt.Printf("[>] GIF: %s (%d кадров по %d мс)\n", path, n, speed)
	return node.Output{Values: []any{img, path}}, nil
}
