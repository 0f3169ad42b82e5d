package exec

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/zclconf/go-cty/cty"

	"github.com/schemactl/schemactl/internal/catalog"
	"github.com/schemactl/schemactl/internal/plan"
)

// renderStatement renders the SQL for one mutating action from the catalog's
// per-type templates. Create and drop statements see the full desired state;
// alter statements see only the changed fields from the action's diff.
func (e *Executor) renderStatement(action plan.Action) (string, error) {
	spec, ok := e.Catalog.Type(action.Key.Type)
	if !ok {
		return "", fmt.Errorf("no catalog entry for object type %q", action.Key.Type)
	}

	data := e.templateData(spec, action)

	var tmpl *template.Template
	switch action.Kind {
	case plan.Create:
		tmpl = spec.Templates.Create
	case plan.Alter:
		tmpl = spec.Templates.Alter
	case plan.Drop:
		tmpl = spec.Templates.Drop
	default:
		return "", fmt.Errorf("action kind %s has no statement", action.Kind)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s statement for %s: %w", action.Kind, action.Key, err)
	}
	return buf.String(), nil
}

// templateData builds the flat template input: "name", every desired
// attribute rendered as a SQL literal, and for alters the pre-rendered "set"
// assignment list covering the changed fields only.
func (e *Executor) templateData(spec *catalog.Type, action plan.Action) map[string]any {
	data := map[string]any{"name": action.Key.Name}

	if action.Desired != nil {
		for _, pair := range action.Desired.Pairs() {
			as, ok := spec.Attribute(pair.Key)
			identifier := ok && as.Identifier
			data[pair.Key] = sqlLiteral(pair.Value, identifier)
		}
	}

	if action.Kind == plan.Alter && action.Diff != nil {
		assignments := make([]string, 0, len(action.Diff.Fields))
		for _, fd := range action.Diff.Fields {
			as, ok := spec.Attribute(fd.Field)
			identifier := ok && as.Identifier
			assignments = append(assignments, fmt.Sprintf("%s = %s", strings.ToUpper(fd.Field), sqlLiteral(fd.Desired, identifier)))
		}
		data["set"] = strings.Join(assignments, ", ")
	}

	return data
}

// sqlLiteral renders a normalized value as a SQL literal. String values are
// sanitized against statement injection before interpolation: semicolons and
// comment markers are stripped and single quotes doubled. Identifier-like
// values render bare rather than quoted.
func sqlLiteral(v cty.Value, identifier bool) string {
	switch {
	case v == cty.NilVal || v.IsNull():
		return "NULL"
	case v.Type() == cty.String:
		s := sanitize(v.AsString())
		if identifier {
			return s
		}
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	case v.Type() == cty.Number:
		return v.AsBigFloat().Text('f', -1)
	case v.Type() == cty.Bool:
		if v.True() {
			return "TRUE"
		}
		return "FALSE"
	case v.Type().IsListType() || v.Type().IsTupleType():
		var parts []string
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			parts = append(parts, sqlLiteral(ev, false))
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return "'" + sanitize(v.GoString()) + "'"
	}
}

// sanitize strips the characters that would let an attribute value break out
// of its statement.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, ";", "")
	s = strings.ReplaceAll(s, "--", "")
	return s
}
