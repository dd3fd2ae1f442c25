package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillet-ai/skillet/pkg/catalog"
)

func writeSkill(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDiscoverSkills(t *testing.T) {
	root := t.TempDir()

	writeSkill(t, filepath.Join(root, "stacks", "backend", "django", "skills", "performance", "caching.md"), `---
name: django-caching
description: Cache invalidation patterns for Django
applies_to: django
category: performance
---

# Django Caching

Use versioned cache keys.
`)
	writeSkill(t, filepath.Join(root, "domains", "insurance", "skills", "claims-workflow.md"), `---
name: claims-workflow
description: Claims lifecycle reference
---

# Claims Workflow
`)

	d, err := NewDiscovery(WithCatalogDirs(root))
	require.NoError(t, err)

	found, err := d.DiscoverSkills()
	require.NoError(t, err)
	require.Len(t, found, 2)

	caching := found["django-caching"]
	require.NotNil(t, caching)
	assert.Equal(t, "Cache invalidation patterns for Django", caching.Description)
	assert.Equal(t, "django", caching.AppliesTo)
	assert.Equal(t, "performance", caching.Category)
	assert.Equal(t, "backend", caching.Layer)
	assert.Contains(t, caching.Content, "# Django Caching")
	assert.NotContains(t, caching.Content, "applies_to")

	claims := found["claims-workflow"]
	require.NotNil(t, claims)
	assert.Equal(t, "insurance", claims.Domain)
}

func TestDiscoverSkillsPathDefaults(t *testing.T) {
	root := t.TempDir()

	// No header at all: everything derives from the path.
	writeSkill(t, filepath.Join(root, "stacks", "backend", "laravel", "skills", "architecture", "service-layer.md"),
		"# Service Layer\n\nKeep controllers thin.\n")

	d, err := NewDiscovery(WithCatalogDirs(root))
	require.NoError(t, err)

	found, err := d.DiscoverSkills()
	require.NoError(t, err)
	require.Len(t, found, 1)

	skill := found["service-layer"]
	require.NotNil(t, skill)
	assert.Equal(t, "laravel", skill.AppliesTo)
	assert.Equal(t, "architecture", skill.Category)
	assert.Empty(t, skill.Description)
	assert.Contains(t, skill.Content, "Keep controllers thin.")
}

func TestDiscoverSkillsPrecedence(t *testing.T) {
	repoRoot := t.TempDir()
	globalRoot := t.TempDir()

	writeSkill(t, filepath.Join(repoRoot, "skills", "jwt-auth.md"), `---
name: jwt-auth
description: repo-local version
---
body`)
	writeSkill(t, filepath.Join(globalRoot, "skills", "jwt-auth.md"), `---
name: jwt-auth
description: global version
---
body`)

	d, err := NewDiscovery(WithSources(
		catalog.Source{Root: repoRoot},
		catalog.Source{Root: globalRoot},
	))
	require.NoError(t, err)

	found, err := d.DiscoverSkills()
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "repo-local version", found["jwt-auth"].Description)
}

func TestDiscoverSkillsPluginPrefix(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, filepath.Join(root, "skills", "helm-templating.md"), `---
name: helm-templating
description: Helm chart reference
---
body`)

	d, err := NewDiscovery(WithSources(catalog.Source{
		Root:   root,
		Plugin: "acme/infra-pack",
		Prefix: "acme/infra-pack/",
	}))
	require.NoError(t, err)

	found, err := d.DiscoverSkills()
	require.NoError(t, err)

	skill := found["acme/infra-pack/helm-templating"]
	require.NotNil(t, skill)
	assert.Equal(t, "acme/infra-pack", skill.Plugin)
}

func TestDiscoverSkillsSkipsMalformed(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, filepath.Join(root, "skills", "broken.md"), "---\nname: [unbalanced\n---\nbody")
	writeSkill(t, filepath.Join(root, "skills", "good.md"), "---\nname: good\ndescription: fine\n---\nbody")

	d, err := NewDiscovery(WithCatalogDirs(root))
	require.NoError(t, err)

	found, err := d.DiscoverSkills()
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Contains(t, found, "good")
}

func TestGetSkill(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, filepath.Join(root, "skills", "pinia-stores.md"), `---
name: pinia-stores
description: Vue state management
---
body`)

	d, err := NewDiscovery(WithCatalogDirs(root))
	require.NoError(t, err)

	skill, err := d.GetSkill("pinia-stores")
	require.NoError(t, err)
	assert.Equal(t, "Vue state management", skill.Description)

	_, err = d.GetSkill("absent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestFilterByAllowlist(t *testing.T) {
	all := map[string]*Skill{
		"a": {Name: "a"},
		"b": {Name: "b"},
	}

	assert.Len(t, FilterByAllowlist(all, nil), 2)

	filtered := FilterByAllowlist(all, []string{"b", "missing"})
	require.Len(t, filtered, 1)
	assert.Contains(t, filtered, "b")
}
