package exec

import (
	"fmt"
	"io"

	"github.com/gookit/color"

	"github.com/schemactl/schemactl/internal/object"
	"github.com/schemactl/schemactl/internal/plan"
)

// ActionResult is the outcome of one plan action.
type ActionResult struct {
	Key  object.Key
	Kind plan.Kind

	// SQL is the rendered statement, also populated in dry-run mode so the
	// report carries the full plan for display.
	SQL string

	// Applied reports the statement was actually issued (never in dry-run).
	Applied bool

	// Skipped reports the action was not attempted because something it
	// depends on failed earlier in the run.
	Skipped bool

	Err error
}

// Report is the result of applying (or dry-running) a plan.
type Report struct {
	RunID   string
	DryRun  bool
	Destroy bool
	Results []ActionResult

	Applied int
	Skipped int
	Failed  int
}

func (r *Report) add(res ActionResult) {
	r.Results = append(r.Results, res)
	switch {
	case res.Err != nil:
		r.Failed++
	case res.Skipped:
		r.Skipped++
	case res.Applied:
		r.Applied++
	}
}

// OK reports whether every action either applied cleanly or needed nothing.
func (r *Report) OK() bool {
	return r.Failed == 0 && r.Skipped == 0
}

// Render writes the report as human-readable text, one line per action with
// the rendered statement indented under it.
func (r *Report) Render(w io.Writer, colorize bool) {
	mode := "apply"
	if r.DryRun {
		mode = "dry-run"
	}
	fmt.Fprintf(w, "Run %s (%s)\n\n", r.RunID, mode)

	paint := func(c color.Color, text string) string {
		if !colorize {
			return text
		}
		return c.Sprint(text)
	}

	for _, res := range r.Results {
		switch {
		case res.Err != nil:
			fmt.Fprintf(w, "  %s %s: %v\n", paint(color.Red, "✗"), res.Key, res.Err)
		case res.Skipped:
			fmt.Fprintf(w, "  %s %s: skipped (dependency failed)\n", paint(color.Yellow, "•"), res.Key)
		case res.Kind == plan.NoOp:
			fmt.Fprintf(w, "  = %s: up to date\n", res.Key)
		default:
			fmt.Fprintf(w, "  %s %s (%s)\n", paint(color.Green, "✓"), res.Key, res.Kind)
		}
		if res.SQL != "" {
			fmt.Fprintf(w, "      %s\n", res.SQL)
		}
	}

	fmt.Fprintf(w, "\n%d applied, %d skipped, %d failed.\n", r.Applied, r.Skipped, r.Failed)
}
