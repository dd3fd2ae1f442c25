package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLoggerFallsBackToGlobal(t *testing.T) {
	ctx := context.Background()
	entry := G(ctx)
	require.NotNil(t, entry)
	assert.Equal(t, L.Logger, entry.Logger)
}

func TestWithLoggerRoundTrip(t *testing.T) {
	base := logrus.New()
	entry := logrus.NewEntry(base).WithField("component", "lint")

	ctx := WithLogger(context.Background(), entry)
	got := G(ctx)

	assert.Equal(t, base, got.Logger)
	assert.Equal(t, "lint", got.Data["component"])
}

func TestSetLogLevel(t *testing.T) {
	t.Cleanup(func() { L.Logger.SetLevel(logrus.InfoLevel) })

	require.NoError(t, SetLogLevel("debug"))
	assert.Equal(t, logrus.DebugLevel, L.Logger.GetLevel())

	assert.Error(t, SetLogLevel("not-a-level"))
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	SetLogFormat("json")
	t.Cleanup(func() {
		SetLogFormat("text")
		SetLogOutput(logrus.New().Out)
	})

	G(context.Background()).WithField("doc", "caching.md").Info("indexed")

	line := strings.TrimSpace(buf.String())
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &payload))
	assert.Equal(t, "indexed", payload["message"])
	assert.Equal(t, "caching.md", payload["doc"])
	assert.Equal(t, "info", payload["level"])
}
