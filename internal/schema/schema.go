// Package schema describes the universe of types mirrored from the remote
// service: a purely declarative model of objects, unions, scalars and
// enums, with no notion of storage or wire format. Everything downstream
// (the relational layout, the query planner, the ingestor, the extractor)
// is derived from a *Schema at runtime.
package schema

import "fmt"

// Nullability governs whether a primitive or enum field may hold a null
// value.
type Nullability int

const (
	Nullable Nullability = iota
	NonNull
)

func (n Nullability) String() string {
	if n == NonNull {
		return "NonNull"
	}
	return "Nullable"
}

// ScalarCategory is the ground representation of a scalar's values.
type ScalarCategory int

const (
	CategoryString ScalarCategory = iota
	CategoryNumber
	CategoryBoolean
)

// Fidelity governs whether a Node or Connection reference is accompanied
// by the concrete typename of its target(s).
type Fidelity int

const (
	// Faithful references always carry the target's concrete typename.
	Faithful Fidelity = iota
	// Unfaithful references require a separate typename query to resolve
	// the concrete typename.
	Unfaithful
)

func (f Fidelity) String() string {
	if f == Unfaithful {
		return "Unfaithful"
	}
	return "Faithful"
}

// IDFieldName is the reserved name every object's identifier field must
// carry.
const IDFieldName = "id"

// TypenameFieldName is reserved: no schema field may use it.
const TypenameFieldName = "__typename"

// FieldKind discriminates the six shapes a field declaration can take.
type FieldKind int

const (
	KindID FieldKind = iota
	KindPrimitive
	KindEnum
	KindNode
	KindConnection
	KindNested
)

func (k FieldKind) String() string {
	switch k {
	case KindID:
		return "ID"
	case KindPrimitive:
		return "Primitive"
	case KindEnum:
		return "Enum"
	case KindNode:
		return "Node"
	case KindConnection:
		return "Connection"
	case KindNested:
		return "Nested"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// Field is one declared field of an object type, or one child ("egg") of a
// Nested field. Which attributes are meaningful depends on Kind:
//
//	KindID         — no further attributes.
//	KindPrimitive  — Scalar, Nullability.
//	KindEnum       — EnumName, Nullability.
//	KindNode       — Target, Fidelity.
//	KindConnection — Target, Fidelity (element type of the connection).
//	KindNested     — Eggs (each KindPrimitive or KindNode only).
type Field struct {
	Name        string
	Kind        FieldKind
	Scalar      string
	Nullability Nullability
	EnumName    string
	Target      string
	Fidelity    Fidelity
	Eggs        []*Field
}

// DeclKind discriminates the four kinds of top-level type declaration.
type DeclKind int

const (
	DeclObject DeclKind = iota
	DeclUnion
	DeclScalar
	DeclEnum
)

func (k DeclKind) String() string {
	switch k {
	case DeclObject:
		return "Object"
	case DeclUnion:
		return "Union"
	case DeclScalar:
		return "Scalar"
	case DeclEnum:
		return "Enum"
	default:
		return fmt.Sprintf("DeclKind(%d)", int(k))
	}
}

// Decl is a single entry of the schema-wide typename → declaration map.
type Decl struct {
	Name string
	Kind DeclKind

	// Object only, in declaration order.
	Fields []*Field

	// Union only: object typenames, in declaration order.
	Clauses []string

	// Scalar only.
	Category ScalarCategory

	// Enum only, in declaration order.
	Values []string
}

// Field looks up a named field on an object declaration; returns nil if
// absent or if d is not an object.
func (d *Decl) Field(name string) *Field {
	if d == nil || d.Kind != DeclObject {
		return nil
	}
	for _, f := range d.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// IDField returns the object's sole ID field, or nil if d is not an object
// or (in a not-yet-validated schema) has none.
func (d *Decl) IDField() *Field {
	if d == nil || d.Kind != DeclObject {
		return nil
	}
	for _, f := range d.Fields {
		if f.Kind == KindID {
			return f
		}
	}
	return nil
}

// Schema is the full, schema-wide mapping from typename to declaration.
// Order records the sequence in which types were declared so that
// serialisation (Fingerprint) and diagnostics are stable across runs.
type Schema struct {
	Types map[string]*Decl
	Order []string
}

// New returns an empty schema.
func New() *Schema {
	return &Schema{Types: map[string]*Decl{}}
}

// Lookup returns the declaration for typename, or nil if unknown.
func (s *Schema) Lookup(typename string) *Decl {
	if s == nil {
		return nil
	}
	return s.Types[typename]
}

// Declared reports whether typename is declared in the schema.
func (s *Schema) Declared(typename string) bool {
	return s.Lookup(typename) != nil
}

// add registers d, appending to Order the first time a name is seen.
// Re-adding the same name overwrites the declaration in place so the
// fluent builder can be called in a single straight-line pass.
func (s *Schema) add(d *Decl) {
	if _, seen := s.Types[d.Name]; !seen {
		s.Order = append(s.Order, d.Name)
	}
	s.Types[d.Name] = d
}

// PrimitiveFieldNames returns the names of every KindPrimitive field
// declared directly on typename's object (not inside nested groups), in
// declaration order.
func (s *Schema) PrimitiveFieldNames(typename string) []string {
	return s.fieldNamesOfKind(typename, KindPrimitive, KindEnum)
}

// LinkFieldNames returns the names of every KindNode field declared
// directly on typename's object, in declaration order.
func (s *Schema) LinkFieldNames(typename string) []string {
	return s.fieldNamesOfKind(typename, KindNode)
}

// ConnectionFieldNames returns the names of every KindConnection field
// declared directly on typename's object, in declaration order.
func (s *Schema) ConnectionFieldNames(typename string) []string {
	return s.fieldNamesOfKind(typename, KindConnection)
}

// NestedFieldNames returns the names of every KindNested field declared
// directly on typename's object, in declaration order.
func (s *Schema) NestedFieldNames(typename string) []string {
	return s.fieldNamesOfKind(typename, KindNested)
}

func (s *Schema) fieldNamesOfKind(typename string, kinds ...FieldKind) []string {
	d := s.Lookup(typename)
	if d == nil || d.Kind != DeclObject {
		return nil
	}
	var names []string
	for _, f := range d.Fields {
		for _, k := range kinds {
			if f.Kind == k {
				names = append(names, f.Name)
				break
			}
		}
	}
	return names
}

// UnionClauses returns the clause typenames of a union declaration in
// declaration order, or nil if typename is not a union.
func (s *Schema) UnionClauses(typename string) []string {
	d := s.Lookup(typename)
	if d == nil || d.Kind != DeclUnion {
		return nil
	}
	return d.Clauses
}

// IsObject reports whether typename is declared as an object.
func (s *Schema) IsObject(typename string) bool {
	d := s.Lookup(typename)
	return d != nil && d.Kind == DeclObject
}

// IsUnion reports whether typename is declared as a union.
func (s *Schema) IsUnion(typename string) bool {
	d := s.Lookup(typename)
	return d != nil && d.Kind == DeclUnion
}
