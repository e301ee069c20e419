package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileDigest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mod.jar")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	digest, err := FileDigest(path)
	require.NoError(t, err)

	// sha256("hello world")
	assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", digest)
}

func TestFileDigest_Missing(t *testing.T) {
	_, err := FileDigest(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestReaderDigest_MatchesFileDigest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob")
	require.NoError(t, os.WriteFile(path, []byte("same bytes"), 0o644))

	fromFile, err := FileDigest(path)
	require.NoError(t, err)

	fromReader, err := ReaderDigest(strings.NewReader("same bytes"))
	require.NoError(t, err)

	assert.Equal(t, fromFile, fromReader)
}

func TestIsDigest(t *testing.T) {
	assert.True(t, IsDigest(strings.Repeat("ab", 32)))
	assert.False(t, IsDigest(strings.Repeat("AB", 32)))
	assert.False(t, IsDigest("abc"))
	assert.False(t, IsDigest(strings.Repeat("zz", 32)))
	assert.False(t, IsDigest("../../etc/passwd"))
}
