package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadharvest/leadharvest-cli/internal/model"
)

func TestReadArtifact_MissingFileIsNotAnError(t *testing.T) {
	t.Parallel()

	records, found, err := ReadArtifact(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, records)
}

func TestReadArtifact_ParsesRecords(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "websearch-s1.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"email":"a@b.ma"},{"phone":"0612345678"}]`), 0o644))

	records, found, err := ReadArtifact(path)
	require.NoError(t, err)
	assert.True(t, found)
	require.Len(t, records, 2)
	assert.Equal(t, "a@b.ma", records[0].Email)
	assert.Equal(t, "0612345678", records[1].Phone)
}

func TestReadArtifact_CorruptFileIsAnError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{truncated`), 0o644))

	_, _, err := ReadArtifact(path)
	assert.Error(t, err)
}

func TestArtifactPath(t *testing.T) {
	t.Parallel()

	got := ArtifactPath("/tmp/artifacts", model.SourceMapSearch, "abc-123")
	assert.Equal(t, "/tmp/artifacts/mapsearch-abc-123.json", got)
}
