package node

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ivlev/gifnodes/internal/tensor"
)

// Inputs are resolved field values keyed by field name.
type Inputs map[string]any

func (in Inputs) Tensor(name string) (*tensor.Tensor, error) {
	v, ok := in[name]
	if !ok {
		return nil, fmt.Errorf("input %q is missing", name)
	}
	t, ok := v.(*tensor.Tensor)
	if !ok {
		return nil, fmt.Errorf("input %q: expected IMAGE, got %T", name, v)
	}
	return t, nil
}

func (in Inputs) Int(name string) (int, error) {
	switch v := in[name].(type) {
	case int:
		return v, nil
	case nil:
		return 0, fmt.Errorf("input %q is missing", name)
	default:
		return 0, fmt.Errorf("input %q: expected INT, got %T", name, v)
	}
}

func (in Inputs) Float(name string) (float64, error) {
	switch v := in[name].(type) {
	case float64:
		return v, nil
	case nil:
		return 0, fmt.Errorf("input %q is missing", name)
	default:
		return 0, fmt.Errorf("input %q: expected FLOAT, got %T", name, v)
	}
}

func (in Inputs) Text(name string) (string, error) {
	switch v := in[name].(type) {
	case string:
		return v, nil
	case nil:
		return "", fmt.Errorf("input %q is missing", name)
	default:
		return "", fmt.Errorf("input %q: expected STRING, got %T", name, v)
	}
}

// Resolve does the host's part of the contract: it fills defaults, coerces
// scalars (YAML and command line values arrive loosely typed), checks
// choices and clamps numbers into [min, max]. Unknown names are rejected.
func Resolve(s Schema, raw map[string]any) (Inputs, error) {
	in := make(Inputs, len(raw))
	var errs []string

	for name := range raw {
		if _, _, ok := s.Lookup(name); !ok {
			errs = append(errs, fmt.Sprintf("unknown input %q", name))
		}
	}

	for _, g := range s.Groups() {
		for _, f := range s.Fields(g) {
			v, ok := raw[f.Name]
			if !ok || v == nil {
				if f.Options != nil && f.Options.Default != nil {
					v = f.Options.Default
				} else if f.Type == TypeChoice && len(f.Choices) > 0 && g == Required {
					v = f.Choices[0]
				} else {
					if g == Required {
						errs = append(errs, fmt.Sprintf("required input %q is missing", f.Name))
					}
					continue
				}
			}
			cv, err := coerce(f, v)
			if err != nil {
				errs = append(errs, err.Error())
				continue
			}
			in[f.Name] = cv
		}
	}

	if len(errs) > 0 {
		sort.Strings(errs)
		return nil, fmt.Errorf("invalid inputs:\n- %s", strings.Join(errs, "\n- "))
	}
	return in, nil
}

func coerce(f Field, v any) (any, error) {
	switch f.Type {
	case TypeImage:
		t, ok := v.(*tensor.Tensor)
		if !ok {
			return nil, fmt.Errorf("input %q: expected IMAGE, got %T", f.Name, v)
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("input %q: %w", f.Name, err)
		}
		return t, nil

	case TypeInt:
		n, err := toFloat(v)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", f.Name, err)
		}
		if n != math.Trunc(n) {
			return nil, fmt.Errorf("input %q: %v is not an integer", f.Name, v)
		}
		return int(clamp(f.Options, n)), nil

	case TypeFloat:
		n, err := toFloat(v)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", f.Name, err)
		}
		return clamp(f.Options, n), nil

	case TypeString:
		switch s := v.(type) {
		case string:
			return s, nil
		case fmt.Stringer:
			return s.String(), nil
		default:
			return fmt.Sprint(v), nil
		}

	case TypeChoice:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("input %q: expected one of %v, got %T", f.Name, f.Choices, v)
		}
		for _, c := range f.Choices {
			if c == s {
				return s, nil
			}
		}
		return nil, fmt.Errorf("input %q: %q is not one of %v", f.Name, s, f.Choices)
	}
	return v, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", n)
		}
		return f, nil
	}
	return 0, fmt.Errorf("expected a number, got %T", v)
}

func clamp(o *Options, n float64) float64 {
	if o == nil {
		return n
	}
	if o.Min != nil && n < *o.Min {
		n = *o.Min
	}
	if o.Max != nil && n > *o.Max {
		n = *o.Max
	}
	return n
}
