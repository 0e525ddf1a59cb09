package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintMultilineQueryWithVariableAndArguments(t *testing.T) {
	db := NewDocument()
	op := db.Query("Sync").Variable("ids", "[ID!]!")
	nodes := op.Select().Field("node_0", "nodes").Arg("ids", VariableValue("ids"))
	typename := nodes.Select().Field("", "__typename")
	typename.Select().Field("", "id")

	got := Print(db.Build(), Multiline())
	want := "query Sync($ids: [ID!]!) {\n" +
		"  node_0: nodes(ids: $ids) {\n" +
		"    __typename {\n" +
		"      id\n" +
		"    }\n" +
		"  }\n" +
		"}"
	assert.Equal(t, want, got)
}

func TestPrintInlineSelectionSet(t *testing.T) {
	db := NewDocument()
	repo := db.Query("OwnData").Select().Field("owndata_0", "repository")
	repo.Select().Field("", "name")

	got := Print(db.Build(), Inline())
	assert.Equal(t, "query OwnData { owndata_0: repository { name } }", got)
}

func TestPrintAliasOnlyWrittenWhenDifferentFromName(t *testing.T) {
	db := NewDocument()
	db.Query("Q").Select().Field("name", "name")

	got := Print(db.Build(), Inline())
	assert.Equal(t, "query Q { name }", got)
}

func TestPrintArgumentValueKinds(t *testing.T) {
	db := NewDocument()
	db.Query("Q").Select().Field("", "search").
		Arg("first", IntValue(10)).
		Arg("after", StringValue("cursor-1")).
		Arg("state", EnumValue("OPEN")).
		Arg("labels", ListValue(StringValue("bug"), StringValue("p0"))).
		Arg("filter", ObjectValue(Field("archived", BooleanValue(false)))).
		Arg("cursor", NullValue())

	got := Print(db.Build(), Inline())
	assert.Equal(t, `query Q { search(first: 10, after: "cursor-1", state: OPEN, labels: ["bug", "p0"], filter: {archived: false}, cursor: null) }`, got)
}

func TestPrintInlineFragmentAndFragmentSpread(t *testing.T) {
	db := NewDocument()
	node := db.Query("Q").Select().Field("", "node")
	node.Select().
		FragmentSpread("CommonFields").
		InlineFragment("Blob").
		Field("", "byteSize")

	got := Print(db.Build(), Inline())
	assert.Equal(t, "query Q { node { ...CommonFields ... on Blob { byteSize } } }", got)
}

func TestPrintFragmentDefinition(t *testing.T) {
	db := NewDocument()
	db.Fragment("CommonFields", "Node").Field("", "id")

	got := Print(db.Build(), Inline())
	assert.Equal(t, "fragment CommonFields on Node { id }", got)
}

func TestPrintIsDeterministic(t *testing.T) {
	build := func() *Document {
		db := NewDocument()
		nodes := db.Query("Sync").Select().Field("typenames_0", "nodes").
			Arg("ids", ListValue(StringValue("a"), StringValue("b")))
		nodes.Select().Field("", "__typename")
		return db.Build()
	}
	a := Print(build(), Multiline())
	b := Print(build(), Multiline())
	assert.Equal(t, a, b)
}
