// Package query models a GraphQL-isomorphic wire query language: a
// structured AST (queries, fragments, selections, values), a fluent
// builder as the sole construction surface, and a pure, deterministic
// printer driven by a composable layout strategy. The package never
// parses — only constructs and prints; the mirror only ever emits
// queries, it never receives or re-interprets one.
//
// Node naming follows the GraphQL AST vocabulary of
// github.com/vektah/gqlparser/v2/ast (Field, SelectionSet, Argument,
// Value, OperationDefinition) so the shape is recognisable to anyone who
// has used that package, even though it isn't imported here: its printer
// only emits one fixed layout, and this package needs two composable ones
// (see strategy.go).
package query

// Operation is the root operation type of a Document's operation
// definitions. The mirror only ever issues queries, but Mutation is kept
// so Document is a faithful (if partial) GraphQL AST.
type Operation int

const (
	OperationQuery Operation = iota
	OperationMutation
)

// Document is a sequence of definitions: operations and fragments.
type Document struct {
	Definitions []Definition
}

// Definition is the tagged-variant interface implemented by
// *OperationDefinition and *FragmentDefinition.
type Definition interface {
	definition()
}

// OperationDefinition is a top-level "query Name(...) { ... }" or
// "mutation Name(...) { ... }" definition.
type OperationDefinition struct {
	Operation    Operation
	Name         string
	Variables    []VariableDefinition
	SelectionSet SelectionSet
}

func (*OperationDefinition) definition() {}

// FragmentDefinition is a top-level "fragment Name on Type { ... }"
// definition.
type FragmentDefinition struct {
	Name          string
	TypeCondition string
	SelectionSet  SelectionSet
}

func (*FragmentDefinition) definition() {}

// VariableDefinition declares one operation-level variable, e.g.
// ($ids: [ID!]!).
type VariableDefinition struct {
	Name string
	Type string
}

// SelectionSet is an ordered sequence of selections: fields, fragment
// spreads, or inline fragments.
type SelectionSet []Selection

// Selection is the tagged-variant interface implemented by *Field,
// *FragmentSpread, and *InlineFragment.
type Selection interface {
	selection()
}

// Field is a single selected field, with an optional alias, arguments, and
// (for object-valued fields) a nested selection set.
type Field struct {
	Alias        string
	Name         string
	Arguments    []Argument
	SelectionSet SelectionSet
}

func (*Field) selection() {}

// FragmentSpread is a "...Name" selection referencing a FragmentDefinition
// declared elsewhere in the Document.
type FragmentSpread struct {
	Name string
}

func (*FragmentSpread) selection() {}

// InlineFragment is a "... on Type { ... }" selection, used throughout the
// planner to narrow a polymorphic (union or unfaithful) reference to one
// concrete clause.
type InlineFragment struct {
	TypeCondition string
	SelectionSet  SelectionSet
}

func (*InlineFragment) selection() {}

// Argument is one name: value pair on a Field.
type Argument struct {
	Name  string
	Value Value
}

// ValueKind discriminates the shapes an argument Value can take.
type ValueKind int

const (
	ValueVariable ValueKind = iota
	ValueInt
	ValueFloat
	ValueString
	ValueBoolean
	ValueNull
	ValueEnum
	ValueList
	ValueObject
)

// Value is a tagged-union argument value: a variable reference, a literal
// scalar, an enum literal, a list, or a nested object.
type Value struct {
	Kind ValueKind

	// Raw holds the literal text for Variable/Int/Float/String/Boolean/Enum.
	Raw string

	// Children holds element values for a ValueList.
	Children []Value

	// Fields holds name:value pairs for a ValueObject.
	Fields []ObjectField
}

// ObjectField is one name:value pair of a ValueObject.
type ObjectField struct {
	Name  string
	Value Value
}
