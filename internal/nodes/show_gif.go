package nodes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ivlev/gifnodes/internal/node"
)

// ShowGifClass relays a saved animation to the host UI.
func ShowGifClass() node.Class {
	return node.Class{
		Input: node.Schema{
			Required: []node.Field{
				node.String("filename", "", false),
			},
		},
		Return:      []node.Type{},
		Function:    "show",
		Category:    "gif",
		OutputNode:  true,
		Description: "Displays a previously written GIF.",
		New: func(env *node.Env) node.Instance {
			return &ShowGif{outputDir: env.OutputDir}
		},
	}
}

type ShowGif struct {
	outputDir string
}

// Execute resolves relative names against the output directory and reports
// the file's real base name and its folder relative to the output directory.
func (s *ShowGif) Execute(ctx context.Context, in node.Inputs) (node.Output, error) {
	name, err := in.Text("filename")
	if err != nil {
		return node.Output{}, err
	}
	if name == "" {
		return node.Output{}, fmt.Errorf("filename is empty")
	}

	path := name
	if !filepath.IsAbs(path) && !s.within(path) {
		path = filepath.Join(s.outputDir, path)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return node.Output{}, err
	}
	if fi.IsDir() {
		return node.Output{}, fmt.Errorf("%s is a directory", path)
	}

	dir, _ := filepath.Abs(s.outputDir)
	abs, _ := filepath.Abs(path)
	subfolder := ""
	if rel, err := filepath.Rel(dir, filepath.Dir(abs)); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
		subfolder = filepath.ToSlash(rel)
	}

	file := node.UIFile{
		Filename:  filepath.Base(path),
		Subfolder: subfolder,
		Type:      "output",
		Directory: dir,
	}
	fmt.Printf("[+++] Показ: %s\n", abs)
	return node.Output{UI: &node.UI{GIFs: []node.UIFile{file}}}, nil
}

// within reports whether a relative path already starts with the output
// directory, as paths returned by Lucas do.
func (s *ShowGif) within(path string) bool {
	if s.outputDir == "" {
		return true
	}
	rel, err := filepath.Rel(filepath.Clean(s.outputDir), filepath.Clean(path))
	return err == nil && !strings.HasPrefix(rel, "..")
}
