package catalog

import (
	"sort"
	"text/template"

	"github.com/zclconf/go-cty/cty"
)

// Attribute is one entry in an object type's registered schema. It binds the
// canonical attribute key to everything the normalizer needs: the value type
// to coerce to, the default injected when neither side supplies a value, and
// the accepted spellings on the declared and live sides.
type Attribute struct {
	// Key is the canonical attribute name used in CanonicalState and diffs.
	Key string

	// Type is the cty type every value is coerced to.
	Type cty.Type

	// Default is injected when the attribute is absent. cty.NilVal marks the
	// attribute as required: a declaration without it is rejected.
	Default cty.Value

	// Identifier flags the value as identifier-like: it is upper-case folded
	// and whitespace-trimmed during normalization.
	Identifier bool

	// RefType, when non-empty, marks the attribute value as the name of
	// another declared object of that type. The graph builder turns such
	// attributes into implicit dependency edges.
	RefType string

	// Aliases are additional declared-side spellings accepted for this
	// attribute besides Key.
	Aliases []string

	// LiveKeys are additional live-side column names mapped to this
	// attribute besides Key. Live systems often report an attribute under a
	// different name than the declarative one.
	LiveKeys []string
}

// Templates holds the per-type SQL statement templates. Statement data is a
// flat map of canonical attribute keys to pre-rendered SQL literals, plus
// "name" and (for alter) "set".
type Templates struct {
	StateQuery *template.Template
	Create     *template.Template
	Alter      *template.Template
	Drop       *template.Template
}

// Type is the registered schema for one object type.
type Type struct {
	Name       string
	Attributes []Attribute
	Templates  Templates
}

// Attribute resolves a declared-side attribute name (canonical key or alias)
// to its schema entry.
func (t *Type) Attribute(declared string) (*Attribute, bool) {
	for i := range t.Attributes {
		a := &t.Attributes[i]
		if a.Key == declared {
			return a, true
		}
		for _, alias := range a.Aliases {
			if alias == declared {
				return a, true
			}
		}
	}
	return nil, false
}

// LiveAttribute resolves a live-side column name to its schema entry.
// Unknown live keys resolve to nothing; callers drop them.
func (t *Type) LiveAttribute(liveKey string) (*Attribute, bool) {
	for i := range t.Attributes {
		a := &t.Attributes[i]
		if a.Key == liveKey {
			return a, true
		}
		for _, lk := range a.LiveKeys {
			if lk == liveKey {
				return a, true
			}
		}
	}
	return nil, false
}

// Catalog is the registry of object type schemas. The set of types is fixed
// at construction; no runtime registration or reflection.
type Catalog struct {
	types map[string]*Type
}

// New returns a catalog populated with the built-in object types.
func New() *Catalog {
	c := &Catalog{types: make(map[string]*Type)}
	for _, t := range builtinTypes() {
		c.types[t.Name] = t
	}
	return c
}

// Type looks up the schema for an object type.
func (c *Catalog) Type(name string) (*Type, bool) {
	t, ok := c.types[name]
	return t, ok
}

// TypeNames returns all registered type names in lexicographic order.
func (c *Catalog) TypeNames() []string {
	names := make([]string, 0, len(c.types))
	for name := range c.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
