package plan

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/zclconf/go-cty/cty"
)

// Render writes the plan as human-readable text. With colorize set, action
// markers are colored the conventional way: green for create, yellow for
// alter, red for drop and failures.
func Render(w io.Writer, p *Plan, colorize bool) {
	s := p.Summary()
	if p.Destroy {
		fmt.Fprintf(w, "Destroy plan: %d to drop, %d unchanged.\n", s.Drop, s.NoOp)
	} else {
		fmt.Fprintf(w, "Plan: %d to create, %d to alter, %d unchanged.\n", s.Create, s.Alter, s.NoOp)
	}
	if s.Failed > 0 {
		fmt.Fprintf(w, "%d object(s) could not be checked.\n", s.Failed)
	}
	fmt.Fprintln(w)

	paint := func(c color.Color, text string) string {
		if !colorize {
			return text
		}
		return c.Sprint(text)
	}

	for _, a := range p.Actions {
		switch a.Kind {
		case Create:
			fmt.Fprintf(w, "  %s %s\n", paint(color.Green, "+"), a.Key)
		case Alter:
			fmt.Fprintf(w, "  %s %s\n", paint(color.Yellow, "~"), a.Key)
			for _, fd := range a.Diff.Fields {
				fmt.Fprintf(w, "      %s: %s -> %s\n", fd.Field, FormatValue(fd.Actual), FormatValue(fd.Desired))
			}
		case Drop:
			fmt.Fprintf(w, "  %s %s\n", paint(color.Red, "-"), a.Key)
		case NoOp:
			fmt.Fprintf(w, "  = %s\n", a.Key)
		case Failed:
			fmt.Fprintf(w, "  %s %s (%v)\n", paint(color.Red, "!"), a.Key, a.Err)
		}
	}
}

// FormatValue renders a normalized value for display.
func FormatValue(v cty.Value) string {
	switch {
	case v == cty.NilVal:
		return "(absent)"
	case v.IsNull():
		return "null"
	case v.Type() == cty.String:
		return fmt.Sprintf("%q", v.AsString())
	case v.Type() == cty.Number:
		return v.AsBigFloat().Text('f', -1)
	case v.Type() == cty.Bool:
		if v.True() {
			return "true"
		}
		return "false"
	case v.Type().IsListType() || v.Type().IsTupleType():
		var parts []string
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			parts = append(parts, FormatValue(ev))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return v.GoString()
	}
}
