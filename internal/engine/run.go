package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/ivlev/gifnodes/internal/node"
	"github.com/ivlev/gifnodes/internal/system"
	"github.com/ivlev/gifnodes/internal/tensor"
	"github.com/ivlev/gifnodes/internal/workflow"
)

type StepResult struct {
	ID      string
	Node    string
	Output  node.Output
	Saved   []string
	Elapsed time.Duration
}

// Run executes the steps in order, substituting "$id.N" references with the
// outputs of earlier steps.
func (h *Host) Run(ctx context.Context, wf *workflow.Workflow) ([]StepResult, error) {
	if err := wf.Validate(); err != nil {
		return nil, err
	}

	startTime := time.Now()
	outputs := make(map[string][]any, len(wf.Steps))
	results := make([]StepResult, 0, len(wf.Steps))

	fmt.Println("--- [WORKFLOW] ---")
	fmt.Printf("[*] Шагов: %d | Вывод: %s\n", len(wf.Steps), h.Config.OutputDir)
	fmt.Println("------------------")

	for i, step := range wf.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		raw := make(map[string]any, len(step.Inputs))
		for name, v := range step.Inputs {
			ref, ok := workflow.ParseRef(v)
			if !ok {
				raw[name] = workflow.Literal(v)
				continue
			}
			vals := outputs[ref.Step]
			if ref.Index >= len(vals) {
				return results, fmt.Errorf("step '%s', input '%s': %s is out of range (%d outputs)", step.ID, name, ref, len(vals))
			}
			raw[name] = vals[ref.Index]
		}

		stepStart := time.Now()
		out, err := h.Invoke(ctx, step.Node, raw)
		if err != nil {
			return results, fmt.Errorf("step '%s': %w", step.ID, err)
		}
		res := StepResult{ID: step.ID, Node: step.Node, Output: out}

		if step.Save != "" {
			res.Saved, err = h.save(out, step.Save)
			if err != nil {
				return results, fmt.Errorf("step '%s': %w", step.ID, err)
			}
		}
		res.Elapsed = time.Since(stepStart)

		outputs[step.ID] = out.Values
		results = append(results, res)
		fmt.Printf("[>] Шаг %d/%d (%s): %s за %.2fs\n", i+1, len(wf.Steps), step.ID, step.Node, res.Elapsed.Seconds())
	}

	if h.Config.ShowStats {
		h.report(results, time.Since(startTime))
	}
	return results, nil
}

// save writes the first IMAGE output as PNG. Batches of more than one image
// get an index suffix per element.
func (h *Host) save(out node.Output, path string) ([]string, error) {
	var img *tensor.Tensor
	for _, v := range out.Values {
		if t, ok := v.(*tensor.Tensor); ok {
			img = t
			break
		}
	}
	if img == nil {
		return nil, fmt.Errorf("nothing to save: no IMAGE output")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(h.Config.OutputDir, path)
	}
	if err := system.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}

	ext := filepath.Ext(path)
	if ext == "" {
		ext = ".png"
		path += ext
	}
	var saved []string
	for b := 0; b < img.Batch; b++ {
		p := path
		if img.Batch > 1 {
			p = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(path, ext), b, ext)
		}
		if err := imaging.Save(img.Image(b), p); err != nil {
			return saved, err
		}
		saved = append(saved, p)
	}
	fmt.Printf("[+++] Сохранено: %s\n", strings.Join(saved, ", "))
	return saved, nil
}

func (h *Host) report(results []StepResult, total time.Duration) {
	var b strings.Builder
	b.WriteString("--- [PERFORMANCE REPORT] ---\n")
	if h.Config.BuildVersion != "" {
		fmt.Fprintf(&b, "Build: %s\n", h.Config.BuildVersion)
	}
	fmt.Fprintf(&b, "Total Time: %.2fs\n", total.Seconds())
	for _, r := range results {
		fmt.Fprintf(&b, "  %-16s %-16s %.3fs\n", r.ID, r.Node, r.Elapsed.Seconds())
	}
	fmt.Fprintf(&b, "%s\n", system.MemoryReport())
	b.WriteString("----------------------------\n")
	fmt.Print(b.String())

	logEntry := fmt.Sprintf("[%s] Build: %s | Steps: %d | Total: %.2fs\n",
		time.Now().Format("2006-01-02 15:04:05"), h.Config.BuildVersion, len(results), total.Seconds())
	f, err := os.OpenFile(filepath.Join(h.Config.OutputDir, "benchmark.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		fmt.Printf("[!] Не удалось записать benchmark.log: %v\n", err)
	}
}
