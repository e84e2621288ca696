package workflow

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		in   any
		want Ref
		ok   bool
	}{
		{"$load.0", Ref{"load", 0}, true},
		{"$a.b.2", Ref{"a.b", 2}, true},
		{"$sheet.-1", Ref{}, false},
		{"$.0", Ref{}, false},
		{"$load", Ref{}, false},
		{"load.0", Ref{}, false},
		{"$load.x", Ref{}, false},
		{"$$price.5", Ref{}, false},
		{42, Ref{}, false},
	}

	for _, tt := range tests {
		got, ok := ParseRef(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseRef(%v) = %v, %v; expected %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLiteral(t *testing.T) {
	tests := []struct {
		in   any
		want any
	}{
		{"$$price.5", "$price.5"},
		{"$$$x", "$$x"},
		{"plain", "plain"},
		{"$", "$"},
		{7, 7},
	}
	for _, tt := range tests {
		if got := Literal(tt.in); got != tt.want {
			t.Errorf("Literal(%v) = %v, expected %v", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		steps []Step
		want  string
	}{
		{"ok", []Step{
			{ID: "a", Node: "GifSpriteSheet"},
			{ID: "b", Node: "Lucas", Inputs: map[string]any{"image": "$a.0"}},
		}, ""},
		{"empty", nil, "no steps"},
		{"no id", []Step{{Node: "Example"}}, "id is empty"},
		{"no node", []Step{{ID: "a"}}, "node is empty"},
		{"duplicate", []Step{{ID: "a", Node: "X"}, {ID: "a", Node: "Y"}}, "duplicate id"},
		{"forward ref", []Step{
			{ID: "a", Node: "Lucas", Inputs: map[string]any{"image": "$b.0"}},
			{ID: "b", Node: "Example"},
		}, "does not refer to an earlier step"},
		{"escaped literal", []Step{
			{ID: "a", Node: "Example", Inputs: map[string]any{"string_field": "$$price.5"}},
		}, ""},
		{"self ref", []Step{{ID: "a", Node: "Lucas", Inputs: map[string]any{"image": "$a.0"}}}, "earlier step"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&Workflow{Version: "1.0", Steps: tt.steps}).Validate()
			if tt.want == "" {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestWriteRead(t *testing.T) {
	wf := &Workflow{
		Version: "1.0",
		Steps: []Step{
			{ID: "sheet", Node: "GifSpriteSheet", Inputs: map[string]any{"url": "https://example.com/a.gif"}, Save: "sheet.png"},
			{ID: "gif", Node: "Lucas", Inputs: map[string]any{"image": "$sheet.0", "columns": 4, "rows": 4, "video_speed": 80}},
			{ID: "show", Node: "ShowGif", Inputs: map[string]any{"filename": "$gif.1"}},
		},
	}

	path := filepath.Join(t.TempDir(), "flows", "test.yaml")
	if err := Write(wf, path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if len(got.Steps) != 3 || got.Steps[0].Save != "sheet.png" {
		t.Fatalf("Unexpected workflow: %+v", got)
	}
	if got.Steps[1].Inputs["columns"] != 4 {
		t.Errorf("Expected columns 4, got %v (%T)", got.Steps[1].Inputs["columns"], got.Steps[1].Inputs["columns"])
	}
	if ref, ok := ParseRef(got.Steps[2].Inputs["filename"]); !ok || ref.Step != "gif" || ref.Index != 1 {
		t.Errorf("Reference lost: %v", got.Steps[2].Inputs["filename"])
	}
}

func TestReadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("version: \"1.0\"\nsteps:\n  - id: a\n"), 0644)

	if _, err := Read(path); err == nil || !strings.Contains(err.Error(), "node is empty") {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestFindLatest(t *testing.T) {
	dir := t.TempDir()
	files := []string{"old.yaml", "newest.yml", "middle.yaml", "notes.txt"}
	for i, f := range files {
		p := filepath.Join(dir, f)
		os.WriteFile(p, []byte("steps: []"), 0644)
		mod := time.Now().Add(time.Duration(i) * time.Hour)
		if f == "newest.yml" {
			mod = time.Now().Add(10 * time.Hour)
		}
		os.Chtimes(p, mod, mod)
	}

	latest, err := FindLatest(dir)
	if err != nil {
		t.Fatalf("FindLatest failed: %v", err)
	}
	if filepath.Base(latest) != "newest.yml" {
		t.Errorf("Expected newest.yml, got %s", latest)
	}

	if p := GeneratePath(dir); !strings.HasPrefix(filepath.Base(p), "workflow_") {
		t.Errorf("Unexpected generated path %s", p)
	}
}
