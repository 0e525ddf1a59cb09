package query

import "strconv"

// DocumentBuilder is the entry point of the fluent construction surface:
// the sole way a Document is assembled.
type DocumentBuilder struct {
	doc *Document
}

// NewDocument starts an empty document.
func NewDocument() *DocumentBuilder {
	return &DocumentBuilder{doc: &Document{}}
}

// Query starts a new top-level "query <name>(...) { ... }" definition and
// returns a builder for it.
func (db *DocumentBuilder) Query(name string) *OperationBuilder {
	op := &OperationDefinition{Operation: OperationQuery, Name: name}
	db.doc.Definitions = append(db.doc.Definitions, op)
	return &OperationBuilder{parent: db, op: op}
}

// Fragment starts a new top-level "fragment <name> on <type> { ... }"
// definition and returns a selection builder for its body.
func (db *DocumentBuilder) Fragment(name, typeCondition string) *SelectionBuilder {
	fd := &FragmentDefinition{Name: name, TypeCondition: typeCondition}
	db.doc.Definitions = append(db.doc.Definitions, fd)
	return &SelectionBuilder{target: &fd.SelectionSet}
}

// Build finalises and returns the accumulated Document.
func (db *DocumentBuilder) Build() *Document {
	return db.doc
}

// OperationBuilder accumulates an operation's variable declarations and
// exposes a SelectionBuilder for its body.
type OperationBuilder struct {
	parent *DocumentBuilder
	op     *OperationDefinition
}

// Variable declares one operation-level variable, e.g. Variable("ids",
// "[ID!]!").
func (ob *OperationBuilder) Variable(name, typ string) *OperationBuilder {
	ob.op.Variables = append(ob.op.Variables, VariableDefinition{Name: name, Type: typ})
	return ob
}

// Select returns a builder for the operation's top-level selection set.
func (ob *OperationBuilder) Select() *SelectionBuilder {
	return &SelectionBuilder{target: &ob.op.SelectionSet}
}

// End returns to the enclosing DocumentBuilder so further definitions (for
// example fragments) can be added.
func (ob *OperationBuilder) End() *DocumentBuilder {
	return ob.parent
}

// Build is a convenience for End().Build().
func (ob *OperationBuilder) Build() *Document {
	return ob.End().Build()
}

// SelectionBuilder accumulates Selections (fields, fragment spreads,
// inline fragments) into one *SelectionSet slot, shared by operation
// bodies, fragment bodies, field sub-selections, and inline-fragment
// bodies alike.
type SelectionBuilder struct {
	target *SelectionSet
}

// Field appends a field selection and returns a scope for its arguments
// and (if it is object-valued) its own sub-selection.
func (sb *SelectionBuilder) Field(alias, name string) *FieldScope {
	f := &Field{Alias: alias, Name: name}
	*sb.target = append(*sb.target, f)
	return &FieldScope{field: f}
}

// FragmentSpread appends a "...name" selection.
func (sb *SelectionBuilder) FragmentSpread(name string) *SelectionBuilder {
	*sb.target = append(*sb.target, &FragmentSpread{Name: name})
	return sb
}

// InlineFragment appends a "... on typeCondition { ... }" selection and
// returns a builder for its body.
func (sb *SelectionBuilder) InlineFragment(typeCondition string) *SelectionBuilder {
	frag := &InlineFragment{TypeCondition: typeCondition}
	*sb.target = append(*sb.target, frag)
	return &SelectionBuilder{target: &frag.SelectionSet}
}

// FieldScope accumulates one field's arguments and exposes a
// SelectionBuilder for its children.
type FieldScope struct {
	field *Field
}

// Arg appends a name: value argument.
func (fs *FieldScope) Arg(name string, v Value) *FieldScope {
	fs.field.Arguments = append(fs.field.Arguments, Argument{Name: name, Value: v})
	return fs
}

// Select returns a builder for this field's sub-selection set.
func (fs *FieldScope) Select() *SelectionBuilder {
	return &SelectionBuilder{target: &fs.field.SelectionSet}
}

// Value constructors. These are the only way to build argument values,
// keeping construction centralised the way the rest of the package
// requires.

func VariableValue(name string) Value { return Value{Kind: ValueVariable, Raw: name} }
func IntValue(i int64) Value          { return Value{Kind: ValueInt, Raw: strconv.FormatInt(i, 10)} }
func FloatValue(f float64) Value {
	return Value{Kind: ValueFloat, Raw: strconv.FormatFloat(f, 'g', -1, 64)}
}
func StringValue(s string) Value  { return Value{Kind: ValueString, Raw: s} }
func BooleanValue(b bool) Value   { return Value{Kind: ValueBoolean, Raw: strconv.FormatBool(b)} }
func NullValue() Value            { return Value{Kind: ValueNull} }
func EnumValue(s string) Value    { return Value{Kind: ValueEnum, Raw: s} }
func ListValue(vs ...Value) Value { return Value{Kind: ValueList, Children: vs} }
func ObjectValue(fields ...ObjectField) Value {
	return Value{Kind: ValueObject, Fields: fields}
}

// Field is a convenience constructor for one ObjectValue name:value pair.
func Field(name string, v Value) ObjectField {
	return ObjectField{Name: name, Value: v}
}
