package object

import (
	"fmt"
	"strings"
)

// Key uniquely identifies a database object across the whole system by its
// type and name. Keys are stored in folded form: the type lower-cased and the
// name upper-cased with surrounding whitespace trimmed, matching the target
// system's canonical casing rule. Two keys are equal iff their folded forms
// are equal, so Key values are safe to use directly as map keys.
type Key struct {
	Type string
	Name string
}

// NewKey folds the given type and name into a canonical Key.
func NewKey(objectType, name string) Key {
	return Key{
		Type: strings.ToLower(strings.TrimSpace(objectType)),
		Name: strings.ToUpper(strings.TrimSpace(name)),
	}
}

// ParseRef parses a "type.name" reference as used in depends_on lists.
func ParseRef(ref string) (Key, error) {
	objectType, name, ok := strings.Cut(ref, ".")
	if !ok || objectType == "" || name == "" {
		return Key{}, fmt.Errorf("invalid object reference %q: expected \"type.name\"", ref)
	}
	return NewKey(objectType, name), nil
}

// String renders the key as "type.NAME".
func (k Key) String() string {
	return k.Type + "." + k.Name
}

// Less orders keys lexicographically by (type, name). It is the tie-break
// rule used everywhere a deterministic ordering of keys is needed.
func (k Key) Less(other Key) bool {
	if k.Type != other.Type {
		return k.Type < other.Type
	}
	return k.Name < other.Name
}
