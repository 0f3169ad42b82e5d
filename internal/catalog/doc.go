// Package catalog registers the attribute schema and statement templates for
// every supported object type.
//
// Per-type attribute schemas are an explicit, fixed table rather than
// anything reflective: each entry names the canonical attribute key, the
// value type to coerce to, the default injected when a side omits the
// attribute, and the accepted declared/live spellings. The normalizer, diff
// engine, graph builder (for reference attributes) and executor all consult
// this registry.
package catalog
