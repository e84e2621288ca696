package workflow

import (
	"fmt"
	"strconv"
	"strings"
)

// Workflow is an ordered list of node invocations
type Workflow struct {
	Version string `yaml:"version"`
	Steps   []Step `yaml:"steps"`
}

// Step invokes one node. Input values are literals or references of the
// form "$<step id>.<output index>". A literal string starting with "$" is
// written with "$$".
type Step struct {
	ID     string         `yaml:"id"`
	Node   string         `yaml:"node"`
	Inputs map[string]any `yaml:"inputs,omitempty"`
	Save   string         `yaml:"save,omitempty"` // PNG path for the first IMAGE output
}

// Ref points at an output of an earlier step
type Ref struct {
	Step  string
	Index int
}

func (r Ref) String() string {
	return fmt.Sprintf("$%s.%d", r.Step, r.Index)
}

// ParseRef recognises "$id.N". Any other value is a literal.
func ParseRef(v any) (Ref, bool) {
	s, ok := v.(string)
	if !ok || !strings.HasPrefix(s, "$") || strings.HasPrefix(s, "$$") {
		return Ref{}, false
	}
	dot := strings.LastIndexByte(s, '.')
	if dot < 2 {
		return Ref{}, false
	}
	idx, err := strconv.Atoi(s[dot+1:])
	if err != nil || idx < 0 {
		return Ref{}, false
	}
	return Ref{Step: s[1:dot], Index: idx}, true
}

// Literal returns the value of a non-reference input with the "$$" escape
// removed.
func Literal(v any) any {
	if s, ok := v.(string); ok && strings.HasPrefix(s, "$$") {
		return s[1:]
	}
	return v
}

// Validate checks step ids and that every reference points backwards.
func (w *Workflow) Validate() error {
	if len(w.Steps) == 0 {
		return fmt.Errorf("workflow has no steps")
	}
	seen := make(map[string]bool, len(w.Steps))
	for i, s := range w.Steps {
		if s.ID == "" {
			return fmt.Errorf("step %d: id is empty", i+1)
		}
		if seen[s.ID] {
			return fmt.Errorf("step %d: duplicate id '%s'", i+1, s.ID)
		}
		if s.Node == "" {
			return fmt.Errorf("step '%s': node is empty", s.ID)
		}
		for name, v := range s.Inputs {
			if ref, ok := ParseRef(v); ok && !seen[ref.Step] {
				return fmt.Errorf("step '%s', input '%s': %s does not refer to an earlier step", s.ID, name, ref)
			}
		}
		seen[s.ID] = true
	}
	return nil
}
