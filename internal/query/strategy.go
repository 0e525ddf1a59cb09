package query

import "strings"

// Strategy controls how a selection set is laid out by the printer.
// Strategies are composable: each one hands back the strategy to use one
// level deeper, so a document can mix, say, a multiline top level with an
// inline tail.
type Strategy interface {
	// Open returns the text written immediately after a field name (or
	// operation header) and before its first selection.
	Open() string
	// Close returns the text written after a selection set's last
	// selection, closing it.
	Close() string
	// Between returns the separator written between two sibling
	// selections.
	Between() string
	// Indent returns the prefix written before each selection.
	Indent() string
	// Nested returns the strategy used for this selection set's own
	// children.
	Nested() Strategy
}

// Multiline lays out a selection set across several lines, one selection
// per line, indented two spaces deeper per nesting level. It is the
// default strategy used for top-level operations.
func Multiline() Strategy {
	return multiline{depth: 0}
}

type multiline struct {
	depth int
}

func (m multiline) Open() string { return " {\n" }
func (m multiline) Close() string {
	return "\n" + strings.Repeat("  ", m.depth) + "}"
}
func (m multiline) Between() string {
	return "\n"
}
func (m multiline) Indent() string { return strings.Repeat("  ", m.depth+1) }
func (m multiline) Nested() Strategy {
	return multiline{depth: m.depth + 1}
}

// Inline lays out a selection set on a single line, selections separated
// by spaces, and keeps every nested selection set inline as well.
func Inline() Strategy {
	return inline{}
}

type inline struct{}

func (inline) Open() string    { return " { " }
func (inline) Close() string   { return " }" }
func (inline) Between() string { return " " }
func (inline) Indent() string  { return "" }
func (inline) Nested() Strategy {
	return inline{}
}
