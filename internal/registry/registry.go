package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ivlev/gifnodes/internal/node"
)

// Module is implemented by packages that contribute nodes.
type Module interface {
	Register(r *Registry)
}

type Registry struct {
	classes map[string]*node.Class
	names   map[string]string
}

func New() *Registry {
	return &Registry{
		classes: make(map[string]*node.Class),
		names:   make(map[string]string),
	}
}

// Register adds a node class. Identifiers must be globally unique.
func (r *Registry) Register(id, displayName string, class node.Class) {
	if _, exists := r.classes[id]; exists {
		panic(fmt.Sprintf("node with id '%s' already registered", id))
	}
	c := class
	r.classes[id] = &c
	if displayName != "" {
		r.names[id] = displayName
	}
}

// Class returns the class registered under id.
func (r *Registry) Class(id string) (*node.Class, bool) {
	c, ok := r.classes[id]
	return c, ok
}

// ClassMappings returns identifier -> class.
func (r *Registry) ClassMappings() map[string]*node.Class {
	out := make(map[string]*node.Class, len(r.classes))
	for k, v := range r.classes {
		out[k] = v
	}
	return out
}

// DisplayNameMappings returns identifier -> human readable name.
func (r *Registry) DisplayNameMappings() map[string]string {
	out := make(map[string]string, len(r.names))
	for k, v := range r.names {
		out[k] = v
	}
	return out
}

// DisplayName falls back to the identifier.
func (r *Registry) DisplayName(id string) string {
	if name, ok := r.names[id]; ok {
		return name
	}
	return id
}

// IDs returns registered identifiers in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.classes))
	for id := range r.classes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Validate checks every class for a callable entry point, a consistent
// result shape and defaults that respect their own bounds.
func (r *Registry) Validate() error {
	var errs []string

	for _, id := range r.IDs() {
		c := r.classes[id]
		if c.Function == "" {
			errs = append(errs, fmt.Sprintf("node '%s': entry point name is empty", id))
		}
		if c.New == nil {
			errs = append(errs, fmt.Sprintf("node '%s': no constructor", id))
		}
		if len(c.ReturnNames) > 0 && len(c.ReturnNames) != len(c.Return) {
			errs = append(errs, fmt.Sprintf("node '%s': %d return names for %d return types", id, len(c.ReturnNames), len(c.Return)))
		}
		if len(c.Return) == 0 && !c.OutputNode {
			errs = append(errs, fmt.Sprintf("node '%s': returns nothing but is not an output node", id))
		}

		seen := map[string]bool{}
		for _, g := range c.Input.Groups() {
			for _, f := range c.Input.Fields(g) {
				if seen[f.Name] {
					errs = append(errs, fmt.Sprintf("node '%s': input '%s' declared twice", id, f.Name))
				}
				seen[f.Name] = true
				if err := checkField(f); err != nil {
					errs = append(errs, fmt.Sprintf("node '%s', input '%s': %v", id, f.Name, err))
				}
			}
		}
	}

	for id := range r.names {
		if _, ok := r.classes[id]; !ok {
			errs = append(errs, fmt.Sprintf("display name for unknown node '%s'", id))
		}
	}

	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func checkField(f node.Field) error {
	if f.Type == node.TypeChoice && len(f.Choices) == 0 {
		return fmt.Errorf("selection list is empty")
	}
	o := f.Options
	if o == nil {
		return nil
	}
	if o.Min != nil && o.Max != nil && *o.Min > *o.Max {
		return fmt.Errorf("min %v is greater than max %v", *o.Min, *o.Max)
	}
	if o.Default == nil || (f.Type != node.TypeInt && f.Type != node.TypeFloat) {
		return nil
	}
	var d float64
	switch v := o.Default.(type) {
	case int:
		d = float64(v)
	case float64:
		d = v
	default:
		return fmt.Errorf("default %v is not numeric", o.Default)
	}
	if o.Min != nil && d < *o.Min {
		return fmt.Errorf("default %v is below min %v", d, *o.Min)
	}
	if o.Max != nil && d > *o.Max {
		return fmt.Errorf("default %v is above max %v", d, *o.Max)
	}
	return nil
}
