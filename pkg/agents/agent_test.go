package agents

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillet-ai/skillet/pkg/catalog"
)

const claimsAgent = `---
id: claims-processing
name: claims-agent
description: Generates claims-handling modules for insurance backends
tier: domain
domain: insurance
triggers:
  - generate claims module
  - "claims * endpoint"
capabilities:
  - crud scaffolding
  - validation rules
---

# Claims Agent

You generate claims-processing code.

## Output Templates

` + "```template claims-module" + `
Module: {{.Name}}
Domain: insurance
` + "```" + `

` + "```template" + `
Summary: {{.Summary}}
` + "```" + `
`

func writeAgent(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestListAgents(t *testing.T) {
	root := t.TempDir()
	writeAgent(t, filepath.Join(root, "domains", "insurance", "agents", "claims-agent.md"), claimsAgent)

	loader, err := NewLoader(WithCatalogDirs(root))
	require.NoError(t, err)

	agents, err := loader.ListAgents(context.Background())
	require.NoError(t, err)
	require.Len(t, agents, 1)

	agent := agents[0]
	assert.Equal(t, "claims-processing", agent.Metadata.ID)
	assert.Equal(t, "claims-agent", agent.Metadata.Name)
	assert.Equal(t, TierDomain, agent.Metadata.Tier)
	assert.Equal(t, "insurance", agent.Metadata.Domain)
	assert.Equal(t, []string{"generate claims module", "claims * endpoint"}, agent.Metadata.Triggers)
	assert.Equal(t, []string{"crud scaffolding", "validation rules"}, agent.Metadata.Capabilities)
	assert.Contains(t, agent.Body, "# Claims Agent")
}

func TestLoadAgentDefaults(t *testing.T) {
	root := t.TempDir()
	writeAgent(t, filepath.Join(root, "domains", "hr-management", "agents", "onboarding.md"),
		"# Onboarding Playbook\n\nPlain body, no header.\n")

	loader, err := NewLoader(WithCatalogDirs(root))
	require.NoError(t, err)

	agent, err := loader.GetAgent(context.Background(), "onboarding")
	require.NoError(t, err)

	assert.Equal(t, "onboarding", agent.Metadata.ID)
	assert.Equal(t, "hr-management", agent.Metadata.Domain)
	assert.Empty(t, agent.Templates)
}

func TestGetAgentNotFound(t *testing.T) {
	loader, err := NewLoader(WithCatalogDirs(t.TempDir()))
	require.NoError(t, err)

	_, err = loader.GetAgent(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListAgentsPrecedence(t *testing.T) {
	repoRoot := t.TempDir()
	globalRoot := t.TempDir()

	writeAgent(t, filepath.Join(repoRoot, "agents", "reviewer.md"), "---\nname: reviewer\ndescription: repo\n---\nrepo body\n")
	writeAgent(t, filepath.Join(globalRoot, "agents", "reviewer.md"), "---\nname: reviewer\ndescription: global\n---\nglobal body\n")

	loader, err := NewLoader(WithSources(
		catalog.Source{Root: repoRoot},
		catalog.Source{Root: globalRoot},
	))
	require.NoError(t, err)

	agents, err := loader.ListAgents(context.Background())
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, "repo", agents[0].Metadata.Description)
}

func TestExtractTemplates(t *testing.T) {
	root := t.TempDir()
	writeAgent(t, filepath.Join(root, "agents", "claims-agent.md"), claimsAgent)

	loader, err := NewLoader(WithCatalogDirs(root))
	require.NoError(t, err)

	agent, err := loader.GetAgent(context.Background(), "claims-agent")
	require.NoError(t, err)
	require.Len(t, agent.Templates, 2)

	named, err := agent.Template("claims-module")
	require.NoError(t, err)
	assert.Contains(t, named.Body, "Module: {{.Name}}")

	unnamed, err := agent.Template("default")
	require.NoError(t, err)
	assert.Contains(t, unnamed.Body, "Summary:")

	_, err = agent.Template("absent")
	assert.Error(t, err)

	// Ambiguous without a name when multiple templates exist.
	_, err = agent.Template("")
	assert.Error(t, err)
}

func TestExtractTemplatesUnnamedNaming(t *testing.T) {
	root := t.TempDir()
	writeAgent(t, filepath.Join(root, "agents", "reporter.md"), `---
id: reporter
name: reporter
---

`+"```template\nFirst: {{.One}}\n```"+`

`+"```template\nSecond: {{.Two}}\n```"+`
`)

	loader, err := NewLoader(WithCatalogDirs(root))
	require.NoError(t, err)

	agent, err := loader.GetAgent(context.Background(), "reporter")
	require.NoError(t, err)
	require.Len(t, agent.Templates, 2)

	// The first unnamed block is the default; later ones are numbered by
	// their position.
	assert.Equal(t, "default", agent.Templates[0].Name)
	assert.Equal(t, "template-2", agent.Templates[1].Name)
}

func TestValidateAgent(t *testing.T) {
	valid := &Agent{
		Metadata: Metadata{
			ID:       "claims-processing",
			Name:     "claims-agent",
			Tier:     TierDomain,
			Triggers: []string{"generate claims module"},
		},
		Body: "content",
	}
	assert.NoError(t, ValidateAgent(valid))

	t.Run("missing id", func(t *testing.T) {
		a := *valid
		a.Metadata.ID = ""
		assert.Error(t, ValidateAgent(&a))
	})

	t.Run("blank trigger", func(t *testing.T) {
		a := *valid
		a.Metadata.Triggers = []string{"ok", "   "}
		assert.Error(t, ValidateAgent(&a))
	})

	t.Run("unknown tier", func(t *testing.T) {
		a := *valid
		a.Metadata.Tier = "platinum"
		assert.Error(t, ValidateAgent(&a))
	})

	t.Run("empty tier is allowed", func(t *testing.T) {
		a := *valid
		a.Metadata.Tier = ""
		assert.NoError(t, ValidateAgent(&a))
	})

	t.Run("empty body", func(t *testing.T) {
		a := *valid
		a.Body = "  \n"
		assert.Error(t, ValidateAgent(&a))
	})
}
