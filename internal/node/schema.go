package node

import (
	"gopkg.in/yaml.v3"
)

type Group string

const (
	Required Group = "required"
	Optional Group = "optional"
	Hidden   Group = "hidden"
)

// Options carry UI hints. Numeric bounds are enforced by the host, not by
// the node.
type Options struct {
	Default   any
	Min       *float64
	Max       *float64
	Step      *float64
	Display   string // "number" или "slider"
	Multiline bool
}

type Field struct {
	Name    string
	Type    Type
	Choices []string
	Options *Options
}

// Schema keeps the declaration order of each group.
type Schema struct {
	Required []Field
	Optional []Field
	Hidden   []Field
}

func (s Schema) Groups() []Group {
	return []Group{Required, Optional, Hidden}
}

func (s Schema) Fields(g Group) []Field {
	switch g {
	case Required:
		return s.Required
	case Optional:
		return s.Optional
	case Hidden:
		return s.Hidden
	}
	return nil
}

// Lookup finds a field in any group.
func (s Schema) Lookup(name string) (Field, Group, bool) {
	for _, g := range s.Groups() {
		for _, f := range s.Fields(g) {
			if f.Name == name {
				return f, g, true
			}
		}
	}
	return Field{}, "", false
}

// Builder helpers

func Image(name string) Field {
	return Field{Name: name, Type: TypeImage}
}

func String(name, def string, multiline bool) Field {
	return Field{Name: name, Type: TypeString, Options: &Options{Default: def, Multiline: multiline}}
}

func Choice(name string, choices ...string) Field {
	return Field{Name: name, Type: TypeChoice, Choices: choices}
}

func Int(name string, def int) Field {
	return Field{Name: name, Type: TypeInt, Options: &Options{Default: def, Display: "number"}}
}

func Float(name string, def float64) Field {
	return Field{Name: name, Type: TypeFloat, Options: &Options{Default: def, Display: "number"}}
}

func (f Field) Range(min, max float64) Field {
	f.Options = f.opts()
	f.Options.Min, f.Options.Max = &min, &max
	return f
}

func (f Field) AtLeast(min float64) Field {
	f.Options = f.opts()
	f.Options.Min = &min
	return f
}

func (f Field) WithStep(step float64) Field {
	f.Options = f.opts()
	f.Options.Step = &step
	return f
}

func (f Field) Slider() Field {
	f.Options = f.opts()
	f.Options.Display = "slider"
	return f
}

// opts копирует Options, чтобы цепочка вызовов не делила указатель.
func (f Field) opts() *Options {
	if f.Options == nil {
		return &Options{}
	}
	o := *f.Options
	return &o
}

// MarshalYAML renders the schema as the host expects it:
// group -> field -> [type-or-choices, options].
func (s Schema) MarshalYAML() (any, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, g := range s.Groups() {
		fields := s.Fields(g)
		if len(fields) == 0 && g != Required {
			continue
		}
		group := &yaml.Node{Kind: yaml.MappingNode}
		for _, f := range fields {
			val := &yaml.Node{}
			if err := val.Encode(f.declaration()); err != nil {
				return nil, err
			}
			group.Content = append(group.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: f.Name}, val)
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: string(g)}, group)
	}
	return root, nil
}

func (f Field) declaration() []any {
	var head any = string(f.Type)
	if f.Type == TypeChoice {
		head = f.Choices
	}
	if f.Options == nil {
		return []any{head}
	}
	return []any{head, f.Options.toMap()}
}

func (o *Options) toMap() map[string]any {
	m := map[string]any{}
	if o.Default != nil {
		m["default"] = o.Default
	}
	if o.Min != nil {
		m["min"] = *o.Min
	}
	if o.Max != nil {
		m["max"] = *o.Max
	}
	if o.Step != nil {
		m["step"] = *o.Step
	}
	if o.Display != "" {
		m["display"] = o.Display
	}
	if o.Multiline {
		m["multiline"] = true
	}
	return m
}
