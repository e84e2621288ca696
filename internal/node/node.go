// Package node defines the contract between a node and the graph host: a
// static input schema, a result shape and one entry point.
package node

import (
	"context"
	"net/http"

	"github.com/ivlev/gifnodes/internal/config"
)

// Type is a semantic type tag shared with the host by convention.
type Type string

const (
	TypeImage  Type = "IMAGE"
	TypeInt    Type = "INT"
	TypeFloat  Type = "FLOAT"
	TypeString Type = "STRING"
	// TypeChoice marks a field whose value is one of Field.Choices.
	TypeChoice Type = "COMBO"
)

// Class is the static description of a node. It is built once and never
// mutated; New creates the per-invocation instance.
type Class struct {
	Input       Schema
	Return      []Type
	ReturnNames []string
	Function    string
	Category    string
	OutputNode  bool
	Description string

	New func(env *Env) Instance
}

// Env is what the host hands to a new instance.
type Env struct {
	Config    *config.Config
	OutputDir string
	Client    *http.Client
}

type Instance interface {
	Execute(ctx context.Context, in Inputs) (Output, error)
}

// Output is a tuple matching Class.Return, plus an optional UI payload for
// output nodes.
type Output struct {
	Values []any
	UI     *UI
}

type UI struct {
	GIFs []UIFile `yaml:"gifs" json:"gifs"`
}

type UIFile struct {
	Filename  string `yaml:"filename" json:"filename"`
	Subfolder string `yaml:"subfolder" json:"subfolder"`
	Type      string `yaml:"type" json:"type"`
	Directory string `yaml:"directory" json:"directory"`
}
