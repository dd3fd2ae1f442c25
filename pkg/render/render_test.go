package render

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSubstitution(t *testing.T) {
	renderer := NewRenderer()

	out, err := renderer.Render(context.Background(),
		"Review the claim for {{.customer}} in {{.region}}.",
		map[string]string{"customer": "Acme", "region": "emea"})
	require.NoError(t, err)
	assert.Equal(t, "Review the claim for Acme in emea.", out)
}

func TestRenderMissingArgument(t *testing.T) {
	renderer := NewRenderer()

	out, err := renderer.Render(context.Background(), "Hello {{.name}}!", nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello <no value>!", out)
}

func TestRenderParseError(t *testing.T) {
	renderer := NewRenderer()

	_, err := renderer.Render(context.Background(), "{{.broken", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse template")
}

func TestRenderBash(t *testing.T) {
	renderer := NewRenderer()

	out, err := renderer.Render(context.Background(), `Value: {{bash "echo" "hello"}}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "Value: hello", out)
}

func TestRenderBashFailure(t *testing.T) {
	renderer := NewRenderer()

	out, err := renderer.Render(context.Background(), `{{bash "false"}}`, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "[ERROR executing command 'false'")
}

func TestRenderBashNoArguments(t *testing.T) {
	renderer := NewRenderer()

	out, err := renderer.Render(context.Background(), `{{bash}}`, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "requires at least one argument")
}

func TestRenderBashDisabled(t *testing.T) {
	renderer := NewRenderer(WithBashDisabled())

	out, err := renderer.Render(context.Background(), `{{bash "echo" "hi"}}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "[ERROR: bash execution is disabled]", out)
}

func TestParseArguments(t *testing.T) {
	args, err := ParseArguments([]string{"env=prod", "region=us-east-1", "note=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"env":    "prod",
		"region": "us-east-1",
		"note":   "a=b",
	}, args)

	_, err = ParseArguments([]string{"missing-separator"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected key=value")

	_, err = ParseArguments([]string{"=value"})
	require.Error(t, err)
}
