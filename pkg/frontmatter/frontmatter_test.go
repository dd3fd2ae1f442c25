package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWithHeader(t *testing.T) {
	content := []byte(`---
name: redis-caching
description: Cache invalidation patterns for Django
applies_to: django
category: performance
---

# Redis Caching

Use versioned keys.
`)

	m, body, err := Parse(content)
	require.NoError(t, err)

	assert.Equal(t, "redis-caching", m.String("name"))
	assert.Equal(t, "Cache invalidation patterns for Django", m.String("description"))
	assert.Equal(t, "django", m.String("applies_to"))
	assert.Equal(t, "performance", m.String("category"))
	assert.Contains(t, body, "# Redis Caching")
	assert.NotContains(t, body, "applies_to")
}

func TestParseWithoutHeader(t *testing.T) {
	content := []byte("# Just Prose\n\nNo metadata here.\n")

	m, body, err := Parse(content)
	require.NoError(t, err)

	assert.Empty(t, m)
	assert.Equal(t, string(content), body)
}

func TestParseMalformedYAML(t *testing.T) {
	content := []byte("---\nname: [unbalanced\n---\n\nbody\n")

	_, _, err := Parse(content)
	assert.Error(t, err)
}

func TestParseUnknownKeysPreserved(t *testing.T) {
	content := []byte(`---
name: claims-agent
x_experimental: true
---

body
`)

	m, _, err := Parse(content)
	require.NoError(t, err)
	assert.True(t, m.Has("x_experimental"))
}

func TestStringList(t *testing.T) {
	m := Meta{
		"triggers":     []any{"generate crud", " add endpoint ", ""},
		"capabilities": "rest api, validation , ",
		"tier":         2,
	}

	assert.Equal(t, []string{"generate crud", "add endpoint"}, m.StringList("triggers"))
	assert.Equal(t, []string{"rest api", "validation"}, m.StringList("capabilities"))
	assert.Nil(t, m.StringList("tier"))
	assert.Nil(t, m.StringList("missing"))
}

func TestInt(t *testing.T) {
	m := Meta{"tier": 2, "weight": int64(3), "ratio": 1.0, "name": "x"}

	assert.Equal(t, 2, m.Int("tier"))
	assert.Equal(t, 3, m.Int("weight"))
	assert.Equal(t, 1, m.Int("ratio"))
	assert.Equal(t, 0, m.Int("name"))
	assert.Equal(t, 0, m.Int("missing"))
}

func TestExtractBody(t *testing.T) {
	t.Run("strips header", func(t *testing.T) {
		content := "---\nname: x\n---\n\nbody text\n"
		assert.Equal(t, "body text\n", ExtractBody(content))
	})

	t.Run("no header", func(t *testing.T) {
		content := "plain text\n"
		assert.Equal(t, content, ExtractBody(content))
	})

	t.Run("unterminated header returned unchanged", func(t *testing.T) {
		content := "---\nname: x\nbody without closing delimiter\n"
		assert.Equal(t, content, ExtractBody(content))
	})
}

func TestCheckUTF8(t *testing.T) {
	assert.NoError(t, CheckUTF8([]byte("valid ✓ content")))
	assert.Error(t, CheckUTF8([]byte{0xff, 0xfe, 0xfd}))
}

func TestUnterminatedFence(t *testing.T) {
	t.Run("balanced fences", func(t *testing.T) {
		content := "text\n```go\nfunc main() {}\n```\nmore\n~~~\nliteral\n~~~\n"
		_, open := UnterminatedFence(content)
		assert.False(t, open)
	})

	t.Run("dangling fence", func(t *testing.T) {
		content := "intro\n\n```python\nprint('hi')\n"
		line, open := UnterminatedFence(content)
		assert.True(t, open)
		assert.Equal(t, 3, line)
	})

	t.Run("backtick fence not closed by tilde", func(t *testing.T) {
		content := "```\ncode\n~~~\n"
		line, open := UnterminatedFence(content)
		assert.True(t, open)
		assert.Equal(t, 1, line)
	})

	t.Run("opener with info string inside fence is content", func(t *testing.T) {
		content := "````md\n```go\nnested example\n```\n````\n"
		_, open := UnterminatedFence(content)
		assert.False(t, open)
	})
}
