package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders doc as wire query text using strategy for the top-level
// selection sets. Print is pure and deterministic: the same (doc,
// strategy) always yields the same bytes.
func Print(doc *Document, strategy Strategy) string {
	var b strings.Builder
	for i, def := range doc.Definitions {
		if i > 0 {
			b.WriteString("\n\n")
		}
		printDefinition(&b, def, strategy)
	}
	return b.String()
}

func printDefinition(b *strings.Builder, def Definition, strategy Strategy) {
	switch d := def.(type) {
	case *OperationDefinition:
		printOperation(b, d, strategy)
	case *FragmentDefinition:
		printFragment(b, d, strategy)
	default:
		panic(fmt.Sprintf("query: unknown definition type %T", def))
	}
}

func printOperation(b *strings.Builder, op *OperationDefinition, strategy Strategy) {
	switch op.Operation {
	case OperationMutation:
		b.WriteString("mutation")
	default:
		b.WriteString("query")
	}
	if op.Name != "" {
		b.WriteString(" ")
		b.WriteString(op.Name)
	}
	if len(op.Variables) > 0 {
		b.WriteString("(")
		for i, v := range op.Variables {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("$")
			b.WriteString(v.Name)
			b.WriteString(": ")
			b.WriteString(v.Type)
		}
		b.WriteString(")")
	}
	printSelectionSet(b, op.SelectionSet, strategy)
}

func printFragment(b *strings.Builder, fd *FragmentDefinition, strategy Strategy) {
	b.WriteString("fragment ")
	b.WriteString(fd.Name)
	b.WriteString(" on ")
	b.WriteString(fd.TypeCondition)
	printSelectionSet(b, fd.SelectionSet, strategy)
}

// printSelectionSet writes strategy.Open(), one line per selection at
// strategy.Indent(), separated by strategy.Between(), then
// strategy.Close(). Children recurse with strategy.Nested().
func printSelectionSet(b *strings.Builder, set SelectionSet, strategy Strategy) {
	b.WriteString(strategy.Open())
	for i, sel := range set {
		if i > 0 {
			b.WriteString(strategy.Between())
		}
		b.WriteString(strategy.Indent())
		printSelection(b, sel, strategy.Nested())
	}
	b.WriteString(strategy.Close())
}

func printSelection(b *strings.Builder, sel Selection, nested Strategy) {
	switch s := sel.(type) {
	case *Field:
		printField(b, s, nested)
	case *FragmentSpread:
		b.WriteString("...")
		b.WriteString(s.Name)
	case *InlineFragment:
		b.WriteString("... on ")
		b.WriteString(s.TypeCondition)
		if len(s.SelectionSet) > 0 {
			printSelectionSet(b, s.SelectionSet, nested)
		}
	default:
		panic(fmt.Sprintf("query: unknown selection type %T", sel))
	}
}

func printField(b *strings.Builder, f *Field, nested Strategy) {
	if f.Alias != "" && f.Alias != f.Name {
		b.WriteString(f.Alias)
		b.WriteString(": ")
	}
	b.WriteString(f.Name)
	if len(f.Arguments) > 0 {
		b.WriteString("(")
		for i, arg := range f.Arguments {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(arg.Name)
			b.WriteString(": ")
			printValue(b, arg.Value)
		}
		b.WriteString(")")
	}
	if len(f.SelectionSet) > 0 {
		printSelectionSet(b, f.SelectionSet, nested)
	}
}

func printValue(b *strings.Builder, v Value) {
	switch v.Kind {
	case ValueVariable:
		b.WriteString("$")
		b.WriteString(v.Raw)
	case ValueInt, ValueFloat, ValueEnum:
		b.WriteString(v.Raw)
	case ValueString:
		b.WriteString(strconv.Quote(v.Raw))
	case ValueBoolean:
		b.WriteString(v.Raw)
	case ValueNull:
		b.WriteString("null")
	case ValueList:
		b.WriteString("[")
		for i, child := range v.Children {
			if i > 0 {
				b.WriteString(", ")
			}
			printValue(b, child)
		}
		b.WriteString("]")
	case ValueObject:
		b.WriteString("{")
		for i, f := range v.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name)
			b.WriteString(": ")
			printValue(b, f.Value)
		}
		b.WriteString("}")
	default:
		panic(fmt.Sprintf("query: unknown value kind %d", v.Kind))
	}
}
