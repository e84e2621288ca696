package nodes

import (
	"context"
	"fmt"

	"github.com/ivlev/gifnodes/internal/node"
)

// ExampleClass inverts an image and optionally echoes its scalar inputs.
func ExampleClass() node.Class {
	return node.Class{
		Input: node.Schema{
			Required: []node.Field{
				node.Image("image"),
				node.Int("int_field", 0).Range(0, 4096).WithStep(64),
				node.Float("float_field", 1.0).Range(0, 10).WithStep(0.01),
				node.Choice("print_to_screen", "enable", "disable"),
				node.String("string_field", "Hello World!", false),
			},
		},
		Return:      []node.Type{node.TypeImage},
		Function:    "test",
		Category:    "Example",
		Description: "Inverts pixel intensities.",
		New:         func(*node.Env) node.Instance { return &Example{} },
	}
}

type Example struct{}

func (e *Example) Execute(ctx context.Context, in node.Inputs) (node.Output, error) {
	img, err := in.Tensor("image")
	if err != nil {
		return node.Output{}, err
	}

	if mode, _ := in.Text("print_to_screen"); mode == "enable" {
		s, _ := in.Text("string_field")
		i, _ := in.Int("int_field")
		f, _ := in.Float("float_field")
		fmt.Printf("[*] Your input contains:\n    string_field aka input text: %s\n    int_field: %d\n    float_field: %g\n", s, i, f)
	}

	return node.Output{Values: []any{img.Invert()}}, nil
}
