package schema

// Builder is the fluent construction surface for a *Schema, assembled
// object by object the way a database table set is hand-built in test
// fixtures, generalised to objects/unions/scalars/enums.
//
// Usage:
//
//	s, err := schema.NewBuilder().
//		Scalar("String", schema.CategoryString).
//		Object("Issue").
//			ID("id").
//			Primitive("title", "String", schema.NonNull).
//			End().
//		Object("Repo").
//			ID("id").
//			Primitive("name", "String", schema.NonNull).
//			Connection("issues", "Issue", schema.Faithful).
//			End().
//		Build()
type Builder struct {
	schema *Schema
}

// NewBuilder returns a builder seeded with an empty schema.
func NewBuilder() *Builder {
	return &Builder{schema: New()}
}

// Scalar declares a standalone scalar type usable as a Primitive field's
// scalar parameter.
func (b *Builder) Scalar(name string, category ScalarCategory) *Builder {
	b.schema.add(&Decl{Name: name, Kind: DeclScalar, Category: category})
	return b
}

// Enum declares a standalone enum type with the given discrete values, in
// order.
func (b *Builder) Enum(name string, values ...string) *Builder {
	b.schema.add(&Decl{Name: name, Kind: DeclEnum, Values: values})
	return b
}

// Union declares a union type whose clauses must each name an object type
// (enforced at Build/Validate time, not here, so declaration order is
// unconstrained).
func (b *Builder) Union(name string, clauses ...string) *Builder {
	b.schema.add(&Decl{Name: name, Kind: DeclUnion, Clauses: clauses})
	return b
}

// Object starts a new object type declaration, returning a nested builder
// for its fields. Call End to return to the parent Builder.
func (b *Builder) Object(name string) *ObjectBuilder {
	d := &Decl{Name: name, Kind: DeclObject}
	b.schema.add(d)
	return &ObjectBuilder{parent: b, decl: d}
}

// Build runs Validate over the accumulated schema and returns it if valid.
func (b *Builder) Build() (*Schema, error) {
	if err := Validate(b.schema); err != nil {
		return nil, err
	}
	return b.schema, nil
}

// ObjectBuilder accumulates the field declarations of a single object
// type. Every method returns the receiver so calls chain; End returns to
// the enclosing Builder to declare the next type.
type ObjectBuilder struct {
	parent *Builder
	decl   *Decl
}

func (ob *ObjectBuilder) field(f *Field) *ObjectBuilder {
	ob.decl.Fields = append(ob.decl.Fields, f)
	return ob
}

// ID declares the object's identifier field. A well-formed schema has
// exactly one, named IDFieldName (checked by Validate).
func (ob *ObjectBuilder) ID(name string) *ObjectBuilder {
	return ob.field(&Field{Name: name, Kind: KindID})
}

// Primitive declares an opaque scalar-valued field.
func (ob *ObjectBuilder) Primitive(name, scalar string, n Nullability) *ObjectBuilder {
	return ob.field(&Field{Name: name, Kind: KindPrimitive, Scalar: scalar, Nullability: n})
}

// Enum declares a named-enum-valued field.
func (ob *ObjectBuilder) Enum(name, enumName string, n Nullability) *ObjectBuilder {
	return ob.field(&Field{Name: name, Kind: KindEnum, EnumName: enumName, Nullability: n})
}

// Node declares a reference to a single object of the target type or
// union, or null.
func (ob *ObjectBuilder) Node(name, target string, fidelity Fidelity) *ObjectBuilder {
	return ob.field(&Field{Name: name, Kind: KindNode, Target: target, Fidelity: fidelity})
}

// Connection declares a paginated collection field whose entries reference
// objects of the target type or union.
func (ob *ObjectBuilder) Connection(name, target string, fidelity Fidelity) *ObjectBuilder {
	return ob.field(&Field{Name: name, Kind: KindConnection, Target: target, Fidelity: fidelity})
}

// Nested declares a grouped sub-object field and returns a builder for its
// eggs (each either Primitive or Node). Call End on the returned builder to
// resume the object.
func (ob *ObjectBuilder) Nested(name string) *NestedBuilder {
	f := &Field{Name: name, Kind: KindNested}
	ob.decl.Fields = append(ob.decl.Fields, f)
	return &NestedBuilder{parent: ob, field: f}
}

// End returns to the Builder so the next type can be declared.
func (ob *ObjectBuilder) End() *Builder {
	return ob.parent
}

// Build is a convenience that calls End().Build().
func (ob *ObjectBuilder) Build() (*Schema, error) {
	return ob.End().Build()
}

// NestedBuilder accumulates the eggs of a single Nested field.
type NestedBuilder struct {
	parent *ObjectBuilder
	field  *Field
}

// Primitive declares a scalar-valued egg of the nested group.
func (nb *NestedBuilder) Primitive(name, scalar string, n Nullability) *NestedBuilder {
	nb.field.Eggs = append(nb.field.Eggs, &Field{Name: name, Kind: KindPrimitive, Scalar: scalar, Nullability: n})
	return nb
}

// Node declares a reference-valued egg of the nested group.
func (nb *NestedBuilder) Node(name, target string, fidelity Fidelity) *NestedBuilder {
	nb.field.Eggs = append(nb.field.Eggs, &Field{Name: name, Kind: KindNode, Target: target, Fidelity: fidelity})
	return nb
}

// End returns to the enclosing object.
func (nb *NestedBuilder) End() *ObjectBuilder {
	return nb.parent
}
