package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildRepoIssueSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := NewBuilder().
		Scalar("String", CategoryString).
		Object("Issue").
		ID("id").
		Primitive("title", "String", NonNull).
		End().
		Object("Repo").
		ID("id").
		Primitive("name", "String", NonNull).
		Connection("issues", "Issue", Faithful).
		End().
		Build()
	require.NoError(t, err)
	return s
}

func TestBuilderProducesValidSchema(t *testing.T) {
	s := buildRepoIssueSchema(t)
	assert.True(t, s.IsObject("Repo"))
	assert.True(t, s.IsObject("Issue"))
	assert.Equal(t, []string{"String", "Issue", "Repo"}, s.Order)

	assert.Equal(t, []string{"name"}, s.PrimitiveFieldNames("Repo"))
	assert.Equal(t, []string{"issues"}, s.ConnectionFieldNames("Repo"))
	assert.Nil(t, s.LinkFieldNames("Repo"))
}

func TestBuilderWithNestedField(t *testing.T) {
	s, err := NewBuilder().
		Scalar("String", CategoryString).
		Object("User").
		ID("id").
		End().
		Object("Commit").
		ID("id").
		Nested("author").
		Primitive("date", "String", NonNull).
		Node("user", "User", Faithful).
		End().
		End().
		Build()
	require.NoError(t, err)

	d := s.Lookup("Commit")
	nested := d.Field("author")
	require.NotNil(t, nested)
	assert.Equal(t, KindNested, nested.Kind)
	require.Len(t, nested.Eggs, 2)
	assert.Equal(t, "date", nested.Eggs[0].Name)
	assert.Equal(t, "user", nested.Eggs[1].Name)
}

func TestValidateRejectsMissingID(t *testing.T) {
	_, err := NewBuilder().
		Scalar("String", CategoryString).
		Object("Broken").
		Primitive("name", "String", NonNull).
		End().
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one ID field")
}

func TestValidateRejectsDuplicateID(t *testing.T) {
	_, err := NewBuilder().
		Object("Broken").
		ID("id").
		ID("id2").
		End().
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one ID field")
}

func TestValidateRejectsReservedTypenameField(t *testing.T) {
	_, err := NewBuilder().
		Object("Broken").
		ID("id").
		Primitive("__typename", "String", NonNull).
		End().
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "__typename")
}

func TestValidateRejectsUndeclaredNodeTarget(t *testing.T) {
	_, err := NewBuilder().
		Object("Repo").
		ID("id").
		Node("owner", "User", Faithful).
		End().
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undeclared type")
}

func TestValidateRejectsUnionWithNonObjectClause(t *testing.T) {
	_, err := NewBuilder().
		Scalar("String", CategoryString).
		Union("GitObject", "String").
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be an object type")
}

func TestValidateAcceptsNodeTargetingUnion(t *testing.T) {
	s, err := NewBuilder().
		Object("Blob").
		ID("id").
		End().
		Object("Commit").
		ID("id").
		End().
		Union("GitObject", "Blob", "Commit").
		Object("Ref").
		ID("id").
		Node("target", "GitObject", Faithful).
		End().
		Build()
	require.NoError(t, err)
	assert.True(t, s.IsUnion("GitObject"))
}

func TestValidateRejectsNestedEggWithUndeclaredScalar(t *testing.T) {
	_, err := NewBuilder().
		Enum("Role", "ADMIN", "MEMBER").
		Object("Commit").
		ID("id").
		Nested("author").
		Primitive("date", "String", NonNull).
		End().
		End().
		Build()
	// "date" references scalar "String" which is never declared, so the
	// egg's own reference check fails with the undeclared-scalar error.
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undeclared scalar")
}

func TestFingerprintStableAcrossEquivalentBuilds(t *testing.T) {
	build := func() *Schema {
		s, err := NewBuilder().
			Scalar("String", CategoryString).
			Object("Issue").
			ID("id").
			Primitive("title", "String", NonNull).
			End().
			Build()
		require.NoError(t, err)
		return s
	}
	a, err := Fingerprint(build())
	require.NoError(t, err)
	b, err := Fingerprint(build())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFingerprintChangesWithFieldOrder(t *testing.T) {
	first, err := NewBuilder().
		Scalar("String", CategoryString).
		Object("Issue").
		ID("id").
		Primitive("title", "String", NonNull).
		Primitive("body", "String", Nullable).
		End().
		Build()
	require.NoError(t, err)

	second, err := NewBuilder().
		Scalar("String", CategoryString).
		Object("Issue").
		ID("id").
		Primitive("body", "String", Nullable).
		Primitive("title", "String", NonNull).
		End().
		Build()
	require.NoError(t, err)

	fpA, err := Fingerprint(first)
	require.NoError(t, err)
	fpB, err := Fingerprint(second)
	require.NoError(t, err)
	assert.NotEqual(t, fpA, fpB)
}
