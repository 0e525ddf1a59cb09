package store

import (
	"fmt"
	"strings"

	"mirror/internal/schema"
)

// EggFieldName composes the compound "<nest>.<egg>" field name used for a
// nested field's children in the primitives/links tables.
func EggFieldName(nest, egg string) string {
	return nest + "." + egg
}

// FieldLayout is the set of relational rows one object of a given
// typename owns: every row that must exist once the object reaches the
// Skeleton state, and every row an own-data ingest must populate to
// reach Loaded.
type FieldLayout struct {
	// Primitives holds top-level primitive/enum field names, each
	// nested field's own presence-flag name, and every nested field's
	// primitive egg names as "<nest>.<egg>".
	Primitives []string

	// Links holds top-level node field names and every nested field's
	// node egg names as "<nest>.<egg>".
	Links []string

	// Connections holds top-level connection field names.
	Connections []string
}

// Layout derives typename's FieldLayout from s. typename must be a
// declared object type.
func Layout(s *schema.Schema, typename string) (FieldLayout, error) {
	d := s.Lookup(typename)
	if d == nil || d.Kind != schema.DeclObject {
		return FieldLayout{}, fmt.Errorf("mirror: %q is not a declared object type", typename)
	}

	layout := FieldLayout{
		Primitives:  append([]string{}, s.PrimitiveFieldNames(typename)...),
		Links:       append([]string{}, s.LinkFieldNames(typename)...),
		Connections: append([]string{}, s.ConnectionFieldNames(typename)...),
	}

	for _, name := range s.NestedFieldNames(typename) {
		nested := d.Field(name)
		layout.Primitives = append(layout.Primitives, name) // presence flag
		for _, egg := range nested.Eggs {
			switch egg.Kind {
			case schema.KindPrimitive, schema.KindEnum:
				layout.Primitives = append(layout.Primitives, EggFieldName(name, egg.Name))
			case schema.KindNode:
				layout.Links = append(layout.Links, EggFieldName(name, egg.Name))
			}
		}
	}
	return layout, nil
}

// SplitEggFieldName reverses EggFieldName, reporting ok=false for a
// top-level (non-compound) field name.
func SplitEggFieldName(fieldName string) (nest, egg string, ok bool) {
	i := strings.IndexByte(fieldName, '.')
	if i < 0 {
		return "", "", false
	}
	return fieldName[:i], fieldName[i+1:], true
}
