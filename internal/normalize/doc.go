// Package normalize maps both sides of a comparison — a declared definition
// and a live-state payload — into one canonical attribute model so they can
// be compared key by key.
//
// Normalization is stateless and driven entirely by the catalog's per-type
// schemas: declared names and live spellings resolve to canonical keys,
// values are coerced to the schema type, defaults fill in what a side left
// implicit, and identifier-like values are case-folded. Coercion is total;
// only a declared attribute unknown to the schema (or a missing required
// one) is an error.
package normalize
