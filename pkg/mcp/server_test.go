package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillet-ai/skillet/pkg/agents"
	"github.com/skillet-ai/skillet/pkg/skills"
)

func writeDoc(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testServer(t *testing.T) (*Server, string) {
	t.Helper()
	root := t.TempDir()

	writeDoc(t, filepath.Join(root, "skills", "caching.md"), `---
name: caching
description: Response caching patterns
---

Cache aggressively.
`)
	writeDoc(t, filepath.Join(root, "stacks", "infra", "helm", "skills", "helm-templating.md"), `---
name: helm-templating
description: Author Helm chart templates
applies_to: helm
---

Use named templates.
`)
	writeDoc(t, filepath.Join(root, "agents", "claims-reviewer.md"), `---
name: claims-reviewer
description: Reviews insurance claims
tier: domain
domain: insurance
triggers:
  - review claim
  - "claim *"
---

You review claims.
`)

	skillDiscovery, err := skills.NewDiscovery(skills.WithCatalogDirs(root))
	require.NoError(t, err)
	agentLoader, err := agents.NewLoader(agents.WithCatalogDirs(root))
	require.NoError(t, err)

	server, err := NewServer(skillDiscovery, agentLoader)
	require.NoError(t, err)
	return server, root
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	return result
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	return text.Text
}

func TestSkillSearch(t *testing.T) {
	server, _ := testServer(t)

	result := callTool(t, server.handleSkillSearch(), map[string]any{"query": "caching"})
	require.False(t, result.IsError)

	var decoded struct {
		Results []map[string]any `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &decoded))
	require.Len(t, decoded.Results, 1)
	assert.Equal(t, "caching", decoded.Results[0]["name"])
}

func TestSkillSearchStackFilter(t *testing.T) {
	server, _ := testServer(t)

	result := callTool(t, server.handleSkillSearch(), map[string]any{"query": "templates", "stack": "helm"})
	require.False(t, result.IsError)

	var decoded struct {
		Results []map[string]any `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &decoded))
	require.Len(t, decoded.Results, 1)
	assert.Equal(t, "helm-templating", decoded.Results[0]["name"])
}

func TestSkillShow(t *testing.T) {
	server, _ := testServer(t)

	result := callTool(t, server.handleSkillShow(), map[string]any{"name": "caching"})
	require.False(t, result.IsError)
	assert.Contains(t, textContent(t, result), "Cache aggressively.")

	result = callTool(t, server.handleSkillShow(), map[string]any{"name": "nope"})
	assert.True(t, result.IsError)
}

func TestAgentMatch(t *testing.T) {
	server, _ := testServer(t)

	result := callTool(t, server.handleAgentMatch(), map[string]any{"phrase": "review claim"})
	require.False(t, result.IsError)

	var decoded struct {
		Matches []map[string]any `json:"matches"`
	}
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &decoded))
	require.Len(t, decoded.Matches, 1)
	assert.Equal(t, "claims-reviewer", decoded.Matches[0]["name"])
	assert.Equal(t, "review claim", decoded.Matches[0]["trigger"])
}

func TestAgentMatchDomainFilter(t *testing.T) {
	server, _ := testServer(t)

	result := callTool(t, server.handleAgentMatch(), map[string]any{"phrase": "review claim", "domain": "retail"})
	require.False(t, result.IsError)

	var decoded struct {
		Matches []map[string]any `json:"matches"`
	}
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &decoded))
	assert.Empty(t, decoded.Matches)
}

func TestCatalogLint(t *testing.T) {
	server, root := testServer(t)

	result := callTool(t, server.handleCatalogLint(), map[string]any{"path": root})
	require.False(t, result.IsError)

	var decoded struct {
		Checked int  `json:"checked"`
		Failed  bool `json:"failed"`
	}
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &decoded))
	assert.Equal(t, 3, decoded.Checked)
	assert.False(t, decoded.Failed)
}
