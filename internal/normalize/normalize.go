package normalize

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/schemactl/schemactl/internal/catalog"
	"github.com/schemactl/schemactl/internal/object"
)

// Declared maps a declared definition's attributes into canonical form.
//
// Declared attribute names (canonical keys or registered aliases) resolve
// through the type's schema; an attribute the schema does not know is an
// UnknownAttributeError, which catches typos before any live state is
// fetched. Attributes the declaration omits get their schema default, or a
// MissingAttributeError when the schema marks them required. Output order is
// declaration order, with injected defaults appended in schema order.
func Declared(spec *catalog.Type, def *object.Definition) (*CanonicalState, error) {
	state := NewState()

	for _, attr := range def.Attributes {
		as, ok := spec.Attribute(attr.Name)
		if !ok {
			return nil, &object.UnknownAttributeError{Key: def.Key, Attribute: attr.Name}
		}
		state.Set(as.Key, Coerce(as, attr.Value))
	}

	for i := range spec.Attributes {
		as := &spec.Attributes[i]
		if _, declared := state.Get(as.Key); declared {
			continue
		}
		if as.Default == cty.NilVal {
			return nil, &object.MissingAttributeError{Key: def.Key, Attribute: as.Key}
		}
		state.Set(as.Key, Coerce(as, as.Default))
	}

	return state, nil
}

// Live maps a raw live-state payload into canonical form.
//
// Each schema attribute is looked up in the payload under its canonical key
// and its registered live-side spellings; payload keys with no schema entry
// are dropped, since live systems report implementation details that have no
// declarative counterpart. A schema attribute the payload omits falls back
// to its default when one exists and is otherwise left absent. Output order
// is schema order. Live normalization cannot fail.
func Live(spec *catalog.Type, payload map[string]any) *CanonicalState {
	state := NewState()

	for i := range spec.Attributes {
		as := &spec.Attributes[i]
		raw, found := liveLookup(as, payload)
		switch {
		case found:
			state.Set(as.Key, Coerce(as, fromGo(raw)))
		case as.Default != cty.NilVal:
			state.Set(as.Key, Coerce(as, as.Default))
		}
	}

	return state
}

// liveLookup finds the payload value for a schema attribute, trying the
// canonical key first and the registered live spellings after.
func liveLookup(as *catalog.Attribute, payload map[string]any) (any, bool) {
	if v, ok := payload[as.Key]; ok {
		return v, true
	}
	for _, lk := range as.LiveKeys {
		if v, ok := payload[lk]; ok {
			return v, true
		}
	}
	return nil, false
}

// Coerce normalizes a single value against its schema entry. It is total
// over the value domain: a value that cannot be converted to the attribute's
// type collapses to the schema default (or a typed null when the attribute
// has no default) instead of failing. Identifier-like values are additionally
// whitespace-trimmed and upper-case folded. Coerce is idempotent: applying
// it to its own output returns the same value.
func Coerce(as *catalog.Attribute, v cty.Value) cty.Value {
	if v == cty.NilVal || v.IsNull() {
		if as.Default != cty.NilVal {
			v = as.Default
		} else {
			return cty.NullVal(as.Type)
		}
	}

	converted, err := convert.Convert(v, as.Type)
	if err != nil {
		if as.Default != cty.NilVal {
			converted = as.Default
		} else {
			return cty.NullVal(as.Type)
		}
	}

	if as.Identifier && as.Type == cty.String && !converted.IsNull() {
		converted = cty.StringVal(strings.ToUpper(strings.TrimSpace(converted.AsString())))
	}
	return converted
}

// fromGo converts an arbitrary Go value from a live payload into a cty
// value. SQL drivers surface text as []byte; anything gocty cannot imply a
// type for is stringified, leaving the final say to Coerce.
func fromGo(v any) cty.Value {
	switch tv := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType)
	case cty.Value:
		return tv
	case []byte:
		return cty.StringVal(string(tv))
	}

	if t, err := gocty.ImpliedType(v); err == nil {
		if cv, err := gocty.ToCtyValue(v, t); err == nil {
			return cv
		}
	}
	return cty.StringVal(fmt.Sprint(v))
}
