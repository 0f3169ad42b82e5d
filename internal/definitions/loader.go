// Package definitions loads declared object definitions from HCL files.
//
// One object block per declared object:
//
//	object "database" "analytics" {
//	  depends_on = ["role.loader"]   # required; null or [] both mean "none"
//	  wait_time  = 30                # optional settle delay after apply
//
//	  attributes {
//	    comment        = "analytics landing zone"
//	    retention_days = 7
//	  }
//	}
//
// The loader decodes through hclsyntax directly rather than gohcl: it needs
// to distinguish an absent depends_on (a load error) from a null one (empty),
// and to preserve the source order of attributes, which later drives diff
// output ordering.
package definitions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/schemactl/schemactl/internal/ctxlog"
	"github.com/schemactl/schemactl/internal/object"
)

// Loader reads .hcl definition files from a directory tree.
type Loader struct{}

// NewLoader creates a definitions loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under path (a file or a directory, walked
// recursively) and returns the declared definitions. Declaring the same
// (type, name) twice, in any file, is a DuplicateObjectError.
func (l *Loader) Load(ctx context.Context, path string) ([]*object.Definition, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := findHCLFiles(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", object.ErrInvalidDefinitions, err)
	}
	logger.Debug("Discovered definition files.", "count", len(files))

	parser := hclparse.NewParser()
	var defs []*object.Definition
	seen := make(map[object.Key]string)

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("%w: parsing %s: %w", object.ErrInvalidDefinitions, file, diags)
		}

		body, ok := hclFile.Body.(*hclsyntax.Body)
		if !ok {
			return nil, fmt.Errorf("%w: %s is not native HCL syntax", object.ErrInvalidDefinitions, file)
		}

		for _, block := range body.Blocks {
			if block.Type != "object" {
				return nil, fmt.Errorf("%w: %s: unsupported block type %q", object.ErrInvalidDefinitions, file, block.Type)
			}
			if len(block.Labels) != 2 {
				return nil, fmt.Errorf("%w: %s: object block needs exactly two labels (type, name)", object.ErrInvalidDefinitions, file)
			}

			def, err := decodeObjectBlock(block, file)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", object.ErrInvalidDefinitions, err)
			}

			if prev, dup := seen[def.Key]; dup {
				logger.Error("Object declared twice.", "object", def.Key, "first", prev, "second", file)
				return nil, &object.DuplicateObjectError{Key: def.Key}
			}
			seen[def.Key] = file
			defs = append(defs, def)
		}
	}

	logger.Debug("Definitions loaded.", "object_count", len(defs))
	return defs, nil
}

// decodeObjectBlock turns one object block into a Definition.
func decodeObjectBlock(block *hclsyntax.Block, file string) (*object.Definition, error) {
	key := object.NewKey(block.Labels[0], block.Labels[1])
	def := &object.Definition{Key: key, DependsOn: []object.Key{}, SourceFile: file}

	dependsOnSeen := false
	for _, attr := range block.Body.Attributes {
		switch attr.Name {
		case "depends_on":
			dependsOnSeen = true
			deps, err := decodeDependsOn(attr, key)
			if err != nil {
				return nil, err
			}
			def.DependsOn = deps
		case "wait_time":
			wait, err := decodeWaitTime(attr, key)
			if err != nil {
				return nil, err
			}
			def.WaitTime = wait
		default:
			return nil, fmt.Errorf("%s: object %s: unsupported argument %q", file, key, attr.Name)
		}
	}
	// Absence of depends_on is a load error; it must be declared even when
	// empty so empty is always an explicit statement.
	if !dependsOnSeen {
		return nil, fmt.Errorf("%s: object %s: depends_on is required (use [] or null for none)", file, key)
	}

	var attrsBlock *hclsyntax.Block
	for _, nested := range block.Body.Blocks {
		if nested.Type != "attributes" {
			return nil, fmt.Errorf("%s: object %s: unsupported block %q", file, key, nested.Type)
		}
		if attrsBlock != nil {
			return nil, fmt.Errorf("%s: object %s: duplicate attributes block", file, key)
		}
		attrsBlock = nested
	}
	if attrsBlock != nil {
		attrs, err := decodeAttributes(attrsBlock, key)
		if err != nil {
			return nil, err
		}
		def.Attributes = attrs
	}

	return def, nil
}

// decodeDependsOn evaluates a depends_on list of "type.name" references.
// A null value is the explicit empty list.
func decodeDependsOn(attr *hclsyntax.Attribute, key object.Key) ([]object.Key, error) {
	v, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("object %s: evaluating depends_on: %w", key, diags)
	}
	if v.IsNull() {
		return []object.Key{}, nil
	}
	if !v.CanIterateElements() {
		return nil, fmt.Errorf("object %s: depends_on must be a list of \"type.name\" strings", key)
	}

	deps := []object.Key{}
	for it := v.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		if ev.IsNull() || ev.Type() != cty.String {
			return nil, fmt.Errorf("object %s: depends_on entries must be \"type.name\" strings", key)
		}
		dep, err := object.ParseRef(ev.AsString())
		if err != nil {
			return nil, fmt.Errorf("object %s: %w", key, err)
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

// decodeWaitTime evaluates the optional wait_time attribute.
func decodeWaitTime(attr *hclsyntax.Attribute, key object.Key) (int, error) {
	v, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return 0, fmt.Errorf("object %s: evaluating wait_time: %w", key, diags)
	}
	if v.IsNull() {
		return 0, nil
	}
	if v.Type() != cty.Number {
		return 0, fmt.Errorf("object %s: wait_time must be a number of seconds", key)
	}
	wait, _ := v.AsBigFloat().Int64()
	if wait < 0 {
		return 0, fmt.Errorf("object %s: wait_time cannot be negative", key)
	}
	return int(wait), nil
}

// decodeAttributes evaluates the attributes block, preserving source order.
func decodeAttributes(block *hclsyntax.Block, key object.Key) ([]object.Attribute, error) {
	// hclsyntax exposes attributes as a map; recover declaration order from
	// the source positions.
	ordered := make([]*hclsyntax.Attribute, 0, len(block.Body.Attributes))
	for _, attr := range block.Body.Attributes {
		ordered = append(ordered, attr)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Range().Start.Byte < ordered[j].Range().Start.Byte
	})

	attrs := make([]object.Attribute, 0, len(ordered))
	for _, attr := range ordered {
		v, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("object %s: evaluating attribute %q: %w", key, attr.Name, diags)
		}
		if err := checkValueDomain(v); err != nil {
			return nil, fmt.Errorf("object %s: attribute %q: %w", key, attr.Name, err)
		}
		attrs = append(attrs, object.Attribute{Name: attr.Name, Value: v})
	}
	return attrs, nil
}

// checkValueDomain restricts declared values to the supported domain:
// string, number, bool, list of string, or null.
func checkValueDomain(v cty.Value) error {
	if v.IsNull() {
		return nil
	}
	t := v.Type()
	switch {
	case t == cty.String || t == cty.Number || t == cty.Bool:
		return nil
	case t.IsListType() || t.IsTupleType():
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			if ev.IsNull() || ev.Type() != cty.String {
				return fmt.Errorf("list values must contain only strings")
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported value type %s", t.FriendlyName())
	}
}

// findHCLFiles walks a path and returns all .hcl files in lexical order.
func findHCLFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("accessing definitions path %s: %w", path, err)
	}

	if !info.IsDir() {
		if filepath.Ext(path) != ".hcl" {
			return nil, fmt.Errorf("definitions file %s is not an .hcl file", path)
		}
		return []string{path}, nil
	}

	var files []string
	err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(p) == ".hcl" {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking definitions path %s: %w", path, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl definition files found under %s", path)
	}
	return files, nil
}
