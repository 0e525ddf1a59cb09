package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirror/internal/query"
	"mirror/internal/schema"
	"mirror/internal/store"
)

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.NewBuilder().
		Scalar("String", schema.CategoryString).
		Object("Issue").
		ID("id").
		Primitive("title", "String", schema.NonNull).
		End().
		Object("Repo").
		ID("id").
		Primitive("name", "String", schema.NonNull).
		Connection("issues", "Issue", schema.Faithful).
		End().
		Build()
	require.NoError(t, err)
	return s
}

func openTestStore(t *testing.T, s *schema.Schema) *store.Store {
	t.Helper()
	fp, err := schema.Fingerprint(s)
	require.NoError(t, err)
	st, err := store.Open(context.Background(), ":memory:", store.Config{Version: "v1", SchemaFingerprint: fp})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestBuildPlanListsTypenamesOwnDataAndConnections(t *testing.T) {
	s := testSchema(t)
	st := openTestStore(t, s)
	ctx := context.Background()

	repo := "Repo"
	require.NoError(t, store.WithTx(ctx, st, func(tx *store.Tx) error {
		return store.Register(ctx, tx, s, "R", &repo)
	}))
	require.NoError(t, store.WithTx(ctx, st, func(tx *store.Tx) error {
		return store.Register(ctx, tx, s, "unknown-1", nil)
	}))

	plan, err := Build(ctx, st.DB(), 1000)
	require.NoError(t, err)
	assert.False(t, plan.Empty())
	assert.Equal(t, []string{"unknown-1"}, plan.Typenames)
	assert.Contains(t, plan.OwnData, ObjectRef{ID: "R", Typename: "Repo"})
	assert.Len(t, plan.Connections, 1)
	assert.Equal(t, "issues", plan.Connections[0].FieldName)
}

func TestEmptyPlanProducesNoQuery(t *testing.T) {
	p := &Plan{}
	assert.True(t, p.Empty())
	doc, err := BuildQuery(p, testSchema(t), Limits{})
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestBuildQueryTypenamesUsesPrefixAndChunking(t *testing.T) {
	s := testSchema(t)
	plan := &Plan{Typenames: []string{"a", "b", "c"}}
	doc, err := BuildQuery(plan, s, Limits{NodesOfTypeLimit: 2})
	require.NoError(t, err)
	require.NotNil(t, doc)

	got := query.Print(doc, query.Inline())
	assert.Contains(t, got, "typenames_0: nodes(ids: [\"a\", \"b\"])")
	assert.Contains(t, got, "typenames_1: nodes(ids: [\"c\"])")
}

func TestBuildQueryOwnDataGroupsByTypenameWithInlineFragment(t *testing.T) {
	s := testSchema(t)
	plan := &Plan{OwnData: []ObjectRef{{ID: "R", Typename: "Repo"}}}
	doc, err := BuildQuery(plan, s, Limits{NodesOfTypeLimit: 10})
	require.NoError(t, err)

	got := query.Print(doc, query.Inline())
	assert.Contains(t, got, "owndata_0: nodes(ids: [\"R\"])")
	assert.Contains(t, got, "... on Repo { name }")
}

func TestBuildQueryConnectionsEmitFirstAndAfter(t *testing.T) {
	s := testSchema(t)
	cursor := "c1"
	plan := &Plan{Connections: []ConnectionRef{
		{ObjectID: "R", Typename: "Repo", FieldName: "issues", EndCursor: &cursor},
	}}
	doc, err := BuildQuery(plan, s, Limits{ConnectionPageSize: 25})
	require.NoError(t, err)

	got := query.Print(doc, query.Inline())
	assert.Contains(t, got, "node_0: node(id: \"R\")")
	assert.Contains(t, got, "issues(first: 25, after: \"c1\")")
	assert.Contains(t, got, "pageInfo { endCursor hasNextPage }")
}

func TestChunkSplitsIntoBoundedGroups(t *testing.T) {
	got := chunk([]int{1, 2, 3, 4, 5}, 2)
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, got)
}

func TestChunkWithZeroLimitReturnsSingleGroup(t *testing.T) {
	got := chunk([]int{1, 2, 3}, 0)
	assert.Equal(t, [][]int{{1, 2, 3}}, got)
}
