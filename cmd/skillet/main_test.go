package main

import (
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepoRef(t *testing.T) {
	tests := []struct {
		arg  string
		repo string
		ref  string
	}{
		{"acme/infra-pack", "acme/infra-pack", ""},
		{"acme/infra-pack@v1.0.0", "acme/infra-pack", "v1.0.0"},
		{"acme/infra-pack@feature/new", "acme/infra-pack", "feature/new"},
	}
	for _, tt := range tests {
		repo, ref := parseRepoRef(tt.arg)
		assert.Equal(t, tt.repo, repo, tt.arg)
		assert.Equal(t, tt.ref, ref, tt.arg)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly-10", truncate("exactly-10", 10))
	assert.Equal(t, "this is...", truncate("this is far too long", 10))

	// Truncation counts runes, not bytes.
	assert.Equal(t, "héllo...", truncate("héllo wörld désc", 8))
	assert.True(t, utf8.ValidString(truncate("désçription désçription", 12)))
}

func TestWriteIfAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")

	wrote, err := writeIfAbsent(path, "first", false)
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = writeIfAbsent(path, "second", false)
	require.NoError(t, err)
	assert.False(t, wrote)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(content))

	wrote, err = writeIfAbsent(path, "second", true)
	require.NoError(t, err)
	assert.True(t, wrote)

	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))
}
