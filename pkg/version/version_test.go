package version

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	info := Get()

	assert.Equal(t, Version, info.Version)
	assert.Equal(t, GitCommit, info.GitCommit)
	assert.Contains(t, info.GoVersion, "go")
}

func TestInfoString(t *testing.T) {
	info := Info{Version: "1.0.0", GitCommit: "abc123", GoVersion: "go1.25.1"}
	assert.Equal(t, "Version: 1.0.0, GitCommit: abc123, GoVersion: go1.25.1", info.String())
}

func TestInfoJSON(t *testing.T) {
	out, err := Info{Version: "1.0.0", GitCommit: "abc123", GoVersion: "go1.25.1"}.JSON()
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "1.0.0", decoded["version"])
	assert.Equal(t, "abc123", decoded["gitCommit"])
}
