package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirror/internal/schema"
	"mirror/internal/store"
)

func repoIssueSchema(t *testing.T) *schema.Schema {
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

func openStore(t *testing.T, s *schema.Schema) *store.Store {
	t.Helper()
	fp, err := schema.Fingerprint(s)
	require.NoError(t, err)
	st, err := store.Open(context.Background(), ":memory:", store.Config{Version: "v1", SchemaFingerprint: fp})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func register(t *testing.T, st *store.Store, s *schema.Schema, id string, typename *string) {
	t.Helper()
	require.NoError(t, store.WithTx(context.Background(), st, func(tx *store.Tx) error {
		return store.Register(context.Background(), tx, s, id, typename)
	}))
}

func TestIngestTypenamesUpgradesTypelessToSkeleton(t *testing.T) {
	s := repoIssueSchema(t)
	st := openStore(t, s)
	ctx := context.Background()
	register(t, st, s, "R", nil)

	ig := New(s, nil, nil, nil)
	_, err := ig.Ingest(ctx, st, 1000, map[string]any{
		"typenames_0": []any{map[string]any{"id": "R", "__typename": "Repo"}},
	})
	require.NoError(t, err)

	var typename *string
	require.NoError(t, store.WithTx(ctx, st, func(tx *store.Tx) error {
		var err error
		typename, err = store.ObjectTypename(ctx, tx, "R")
		return err
	}))
	require.NotNil(t, typename)
	assert.Equal(t, "Repo", *typename)
}

func TestIngestOwnDataWritesPrimitivesAndStampsLastUpdate(t *testing.T) {
	s := repoIssueSchema(t)
	st := openStore(t, s)
	ctx := context.Background()
	repo := "Repo"
	register(t, st, s, "R", &repo)

	ig := New(s, nil, nil, nil)
	_, err := ig.Ingest(ctx, st, 1000, map[string]any{
		"owndata_0": []any{map[string]any{"__typename": "Repo", "id": "R", "name": "x"}},
	})
	require.NoError(t, err)

	var value string
	var lastUpdate *int64
	require.NoError(t, st.DB().QueryRow(`SELECT value FROM primitives WHERE object_id='R' AND field_name='name'`).Scan(&value))
	assert.Equal(t, `"x"`, value)
	require.NoError(t, st.DB().QueryRow(`SELECT last_update FROM objects WHERE id='R'`).Scan(&lastUpdate))
	require.NotNil(t, lastUpdate)
}

func TestIngestOwnDataMissingFieldFails(t *testing.T) {
	s := repoIssueSchema(t)
	st := openStore(t, s)
	ctx := context.Background()
	repo := "Repo"
	register(t, st, s, "R", &repo)

	ig := New(s, nil, nil, nil)
	_, err := ig.Ingest(ctx, st, 1000, map[string]any{
		"owndata_0": []any{map[string]any{"__typename": "Repo", "id": "R"}},
	})
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestIngestOwnDataInconsistentTypenamesFails(t *testing.T) {
	s := repoIssueSchema(t)
	st := openStore(t, s)
	ctx := context.Background()
	repo, issue := "Repo", "Issue"
	register(t, st, s, "R", &repo)
	register(t, st, s, "I1", &issue)

	ig := New(s, nil, nil, nil)
	_, err := ig.Ingest(ctx, st, 1000, map[string]any{
		"owndata_0": []any{
			map[string]any{"__typename": "Repo", "id": "R", "name": "x"},
			map[string]any{"__typename": "Issue", "id": "I1", "title": "y"},
		},
	})
	assert.ErrorIs(t, err, ErrInconsistentResultSet)
}

func TestIngestOwnDataDuplicateIDFails(t *testing.T) {
	s := repoIssueSchema(t)
	st := openStore(t, s)
	ctx := context.Background()
	repo := "Repo"
	register(t, st, s, "R", &repo)

	ig := New(s, nil, nil, nil)
	_, err := ig.Ingest(ctx, st, 1000, map[string]any{
		"owndata_0": []any{
			map[string]any{"__typename": "Repo", "id": "R", "name": "x"},
			map[string]any{"__typename": "Repo", "id": "R", "name": "y"},
		},
	})
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestIngestConnectionPageAppendsEntriesAndTracksCursor(t *testing.T) {
	s := repoIssueSchema(t)
	st := openStore(t, s)
	ctx := context.Background()
	repo := "Repo"
	register(t, st, s, "R", &repo)

	ig := New(s, nil, nil, nil)
	_, err := ig.Ingest(ctx, st, 1000, map[string]any{
		"node_0": map[string]any{
			"id": "R",
			"issues": map[string]any{
				"totalCount": float64(2),
				"pageInfo":   map[string]any{"endCursor": "c1", "hasNextPage": true},
				"nodes": []any{
					map[string]any{"__typename": "Issue", "id": "I1"},
				},
			},
		},
	})
	require.NoError(t, err)

	_, err = ig.Ingest(ctx, st, 2000, map[string]any{
		"node_0": map[string]any{
			"id": "R",
			"issues": map[string]any{
				"totalCount": float64(2),
				"pageInfo":   map[string]any{"endCursor": "c2", "hasNextPage": false},
				"nodes": []any{
					map[string]any{"__typename": "Issue", "id": "I2"},
				},
			},
		},
	})
	require.NoError(t, err)

	rows, err := st.DB().Query(`SELECT idx, child_id FROM connection_entries ce JOIN connections c ON c.id=ce.connection_id WHERE c.object_id='R' ORDER BY idx`)
	require.NoError(t, err)
	defer rows.Close()
	var idxs []int64
	var ids []string
	for rows.Next() {
		var idx int64
		var id string
		require.NoError(t, rows.Scan(&idx, &id))
		idxs = append(idxs, idx)
		ids = append(ids, id)
	}
	assert.Equal(t, []int64{1, 2}, idxs)
	assert.Equal(t, []string{"I1", "I2"}, ids)

	var hasNextPage bool
	var endCursor string
	require.NoError(t, st.DB().QueryRow(`SELECT has_next_page, end_cursor FROM connections WHERE object_id='R' AND field_name='issues'`).Scan(&hasNextPage, &endCursor))
	assert.False(t, hasNextPage)
	assert.Equal(t, "c2", endCursor)
}

func TestIngestConnectionZeroNodesCompletesWithNullCursor(t *testing.T) {
	s := repoIssueSchema(t)
	st := openStore(t, s)
	ctx := context.Background()
	repo := "Repo"
	register(t, st, s, "R", &repo)

	ig := New(s, nil, nil, nil)
	_, err := ig.Ingest(ctx, st, 1000, map[string]any{
		"node_0": map[string]any{
			"id": "R",
			"issues": map[string]any{
				"totalCount": float64(0),
				"pageInfo":   map[string]any{"endCursor": nil, "hasNextPage": false},
				"nodes":      []any{},
			},
		},
	})
	require.NoError(t, err)

	var hasNextPage bool
	var endCursor *string
	require.NoError(t, st.DB().QueryRow(`SELECT has_next_page, end_cursor FROM connections WHERE object_id='R' AND field_name='issues'`).Scan(&hasNextPage, &endCursor))
	assert.False(t, hasNextPage)
	assert.Nil(t, endCursor)
}

func TestIngestUnknownConnectionFails(t *testing.T) {
	s := repoIssueSchema(t)
	st := openStore(t, s)
	ctx := context.Background()
	repo := "Repo"
	register(t, st, s, "R", &repo)

	ig := New(s, nil, nil, nil)
	_, err := ig.Ingest(ctx, st, 1000, map[string]any{
		"node_0": map[string]any{
			"id":            "R",
			"notAConnection": map[string]any{"totalCount": float64(0), "pageInfo": map[string]any{"hasNextPage": false}, "nodes": []any{}},
		},
	})
	assert.ErrorIs(t, err, ErrUnknownConnection)
}

func TestIngestBlacklistedLinkTargetBecomesNullWithoutRegistration(t *testing.T) {
	s, err := schema.NewBuilder().
		Scalar("String", schema.CategoryString).
		Object("User").
		ID("id").
		Primitive("name", "String", schema.NonNull).
		End().
		Object("Commit").
		ID("id").
		Node("author", "User", schema.Faithful).
		End().
		Build()
	require.NoError(t, err)
	st := openStore(t, s)
	ctx := context.Background()
	commit := "Commit"
	register(t, st, s, "C", &commit)

	blacklist := map[string]struct{}{"ghost": {}}
	ig := New(s, blacklist, nil, nil)
	_, err = ig.Ingest(ctx, st, 1000, map[string]any{
		"owndata_0": []any{map[string]any{
			"__typename": "Commit",
			"id":         "C",
			"author":     map[string]any{"__typename": "User", "id": "ghost"},
		}},
	})
	require.NoError(t, err)

	var childID *string
	require.NoError(t, st.DB().QueryRow(`SELECT child_id FROM links WHERE parent_id='C' AND field_name='author'`).Scan(&childID))
	assert.Nil(t, childID)

	var count int
	require.NoError(t, st.DB().QueryRow(`SELECT COUNT(*) FROM objects WHERE id='ghost'`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestIngestNestedNullLeavesEggsUntouched(t *testing.T) {
	s, err := schema.NewBuilder().
		Scalar("String", schema.CategoryString).
		Object("User").
		ID("id").
		End().
		Object("Commit").
		ID("id").
		Nested("author").
		Primitive("date", "String", schema.NonNull).
		Node("user", "User", schema.Faithful).
		End().
		End().
		Build()
	require.NoError(t, err)
	st := openStore(t, s)
	ctx := context.Background()
	commit := "Commit"
	register(t, st, s, "C", &commit)

	ig := New(s, nil, nil, nil)
	_, err = ig.Ingest(ctx, st, 1000, map[string]any{
		"owndata_0": []any{map[string]any{
			"__typename": "Commit",
			"id":         "C",
			"author":     nil,
		}},
	})
	require.NoError(t, err)

	var presence string
	require.NoError(t, st.DB().QueryRow(`SELECT value FROM primitives WHERE object_id='C' AND field_name='author'`).Scan(&presence))
	assert.Equal(t, "0", presence)

	var dateValue *string
	require.NoError(t, st.DB().QueryRow(`SELECT value FROM primitives WHERE object_id='C' AND field_name='author.date'`).Scan(&dateValue))
	assert.Nil(t, dateValue)
}
