package object

import "github.com/zclconf/go-cty/cty"

// Attribute is a single declared attribute. Definitions keep attributes as an
// ordered slice rather than a map because the declaration order drives the
// ordering of diff output.
type Attribute struct {
	Name  string
	Value cty.Value
}

// Definition is the declared, desired state of one database object.
type Definition struct {
	Key Key

	// DependsOn lists the explicitly declared dependencies. It is always
	// non-nil: a definition whose source omitted depends_on entirely is
	// rejected at load time.
	DependsOn []Key

	// Attributes holds the declared attribute values in source order.
	Attributes []Attribute

	// WaitTime is the number of seconds the executor settles after a
	// mutating action on this object. Zero means no settling.
	WaitTime int

	// SourceFile records where the definition was declared, for error
	// messages only.
	SourceFile string
}

// Attribute returns the declared value for the given attribute name, or
// cty.NilVal if the attribute was not declared.
func (d *Definition) Attribute(name string) cty.Value {
	for _, a := range d.Attributes {
		if a.Name == name {
			return a.Value
		}
	}
	return cty.NilVal
}
