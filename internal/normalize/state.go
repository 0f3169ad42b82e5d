package normalize

import "github.com/zclconf/go-cty/cty"

// Pair is one canonical attribute with its normalized value.
type Pair struct {
	Key   string
	Value cty.Value
}

// CanonicalState is the normalized attribute model shared by both sides of a
// comparison. It preserves insertion order: for a declared definition that is
// the source declaration order, which in turn drives diff output ordering.
type CanonicalState struct {
	keys   []string
	values map[string]cty.Value
}

// NewState returns an empty canonical state.
func NewState() *CanonicalState {
	return &CanonicalState{values: make(map[string]cty.Value)}
}

// Set stores a value under a canonical key. Re-setting an existing key
// overwrites the value but keeps the key's original position.
func (s *CanonicalState) Set(key string, v cty.Value) {
	if _, exists := s.values[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.values[key] = v
}

// Get returns the value for a canonical key.
func (s *CanonicalState) Get(key string) (cty.Value, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Keys returns the canonical keys in insertion order.
func (s *CanonicalState) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Pairs returns the full state in insertion order.
func (s *CanonicalState) Pairs() []Pair {
	out := make([]Pair, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, Pair{Key: k, Value: s.values[k]})
	}
	return out
}

// Len returns the number of attributes in the state.
func (s *CanonicalState) Len() int { return len(s.keys) }
