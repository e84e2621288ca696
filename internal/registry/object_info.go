package registry

import "github.com/ivlev/gifnodes/internal/node"

// NodeInfo is the per-node description served to a host UI.
type NodeInfo struct {
	Input       node.Schema `yaml:"input"`
	Output      []node.Type `yaml:"output"`
	OutputName  []string    `yaml:"output_name,omitempty"`
	Name        string      `yaml:"name"`
	DisplayName string      `yaml:"display_name"`
	Description string      `yaml:"description,omitempty"`
	Category    string      `yaml:"category"`
	Function    string      `yaml:"function"`
	OutputNode  bool        `yaml:"output_node"`
}

// ObjectInfo describes every registered node.
func (r *Registry) ObjectInfo() map[string]NodeInfo {
	info := make(map[string]NodeInfo, len(r.classes))
	for id, c := range r.classes {
		out := c.Return
		if out == nil {
			out = []node.Type{}
		}
		info[id] = NodeInfo{
			Input:       c.Input,
			Output:      out,
			OutputName:  c.ReturnNames,
			Name:        id,
			DisplayName: r.DisplayName(id),
			Description: c.Description,
			Category:    c.Category,
			Function:    c.Function,
			OutputNode:  c.OutputNode,
		}
	}
	return info
}
