package schema

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testdataPath(file string) string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	return filepath.Join(dir, "testdata", file)
}

func TestLoadTOMLFile(t *testing.T) {
	s, err := LoadTOML(testdataPath("repo_issue.toml"))
	require.NoError(t, err)

	assert.True(t, s.IsObject("Repo"))
	assert.True(t, s.IsObject("Issue"))
	assert.Equal(t, []string{"issues"}, s.ConnectionFieldNames("Repo"))

	repo := s.Lookup("Repo")
	issuesField := repo.Field("issues")
	require.NotNil(t, issuesField)
	assert.Equal(t, KindConnection, issuesField.Kind)
	assert.Equal(t, Faithful, issuesField.Fidelity)
}

func TestLoadTOMLMatchesBuilderFingerprint(t *testing.T) {
	fromFile, err := LoadTOML(testdataPath("repo_issue.toml"))
	require.NoError(t, err)

	fromBuilder := buildRepoIssueSchema(t)

	a, err := Fingerprint(fromFile)
	require.NoError(t, err)
	b, err := Fingerprint(fromBuilder)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLoadTOMLMissingFile(t *testing.T) {
	_, err := LoadTOML(testdataPath("does_not_exist.toml"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "open"))
}

func TestDecodeTOMLRejectsUnknownFieldKind(t *testing.T) {
	doc := `
[[objects]]
name = "Broken"

  [[objects.fields]]
  name = "id"
  kind = "mystery"
`
	_, err := DecodeTOML(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field kind")
}
