package index

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillet-ai/skillet/pkg/agents"
	"github.com/skillet-ai/skillet/pkg/skills"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func fixtureCatalog() (map[string]*skills.Skill, []*agents.Agent) {
	skillDocs := map[string]*skills.Skill{
		"helm-templating": {
			Name:        "helm-templating",
			Description: "Author Helm chart templates",
			AppliesTo:   "helm",
			Layer:       "infra",
			Content:     "Prefer named templates; publish charts to chartmuseum.",
			Path:        "/catalog/stacks/infra/helm/skills/helm-templating.md",
		},
		"acme/infra-pack/caching": {
			Name:        "acme/infra-pack/caching",
			Description: "Response caching patterns",
			Plugin:      "acme/infra-pack",
			Domain:      "performance",
			Path:        "/catalog/plugins/acme@infra-pack/domains/performance/skills/caching.md",
		},
	}
	agentDocs := []*agents.Agent{
		{
			Metadata: agents.Metadata{
				ID:           "claims-reviewer",
				Name:         "claims-reviewer",
				Description:  "Reviews insurance claims",
				Tier:         agents.TierDomain,
				Domain:       "insurance",
				Triggers:     []string{"review claim", "claim *"},
				Capabilities: []string{"triage", "escalation"},
			},
			Body: "Escalate ambiguous adjudication to a human reviewer.",
			Path: "/catalog/agents/claims-reviewer.md",
		},
	}
	return skillDocs, agentDocs
}

func TestRebuildAndSearch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	skillDocs, agentDocs := fixtureCatalog()
	snapshot, err := store.Rebuild(ctx, skillDocs, agentDocs)
	require.NoError(t, err)
	require.NotEmpty(t, snapshot)

	docs, err := store.Search(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, docs, 3)
	for _, doc := range docs {
		assert.Equal(t, snapshot, doc.Snapshot)
	}

	// Agents sort before skills
	assert.Equal(t, "agent", docs[0].Kind)
	assert.Equal(t, "claims-reviewer", docs[0].Name)
	assert.Equal(t, "domain", docs[0].Tier)
}

func TestSearchMatchesBody(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	skillDocs, agentDocs := fixtureCatalog()
	_, err := store.Rebuild(ctx, skillDocs, agentDocs)
	require.NoError(t, err)

	// "chartmuseum" appears only in the skill body, not in its name or
	// description.
	docs, err := store.Search(ctx, Query{Term: "chartmuseum"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "helm-templating", docs[0].Name)

	docs, err = store.Search(ctx, Query{Term: "adjudication"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "claims-reviewer", docs[0].Name)
}

func TestSearchFilters(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	skillDocs, agentDocs := fixtureCatalog()
	_, err := store.Rebuild(ctx, skillDocs, agentDocs)
	require.NoError(t, err)

	docs, err := store.Search(ctx, Query{Kind: "skill"})
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	docs, err = store.Search(ctx, Query{Term: "caching"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "acme/infra-pack/caching", docs[0].Name)

	docs, err = store.Search(ctx, Query{Stack: "helm"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "helm-templating", docs[0].Name)

	docs, err = store.Search(ctx, Query{Domain: "insurance"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "agent", docs[0].Kind)

	docs, err = store.Search(ctx, Query{Term: "no-such-thing"})
	require.NoError(t, err)
	assert.Empty(t, docs)

	docs, err = store.Search(ctx, Query{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestRebuildReplacesSnapshot(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	skillDocs, agentDocs := fixtureCatalog()
	first, err := store.Rebuild(ctx, skillDocs, agentDocs)
	require.NoError(t, err)

	delete(skillDocs, "helm-templating")
	second, err := store.Rebuild(ctx, skillDocs, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	docs, err := store.Search(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, second, docs[0].Snapshot)

	triggers, err := store.TriggersFor(ctx, "claims-reviewer")
	require.NoError(t, err)
	assert.Empty(t, triggers)
}

func TestTriggersFor(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, agentDocs := fixtureCatalog()
	_, err := store.Rebuild(ctx, nil, agentDocs)
	require.NoError(t, err)

	triggers, err := store.TriggersFor(ctx, "claims-reviewer")
	require.NoError(t, err)
	assert.Equal(t, []string{"claim *", "review claim"}, triggers)
}

func TestStats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Nil(t, stats)

	skillDocs, agentDocs := fixtureCatalog()
	snapshot, err := store.Rebuild(ctx, skillDocs, agentDocs)
	require.NoError(t, err)

	stats, err = store.Stats(ctx)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, snapshot, stats.Snapshot)
	assert.Equal(t, 2, stats.Skills)
	assert.Equal(t, 1, stats.Agents)
	assert.Equal(t, 2, stats.Triggers)
	assert.False(t, stats.BuiltAt.IsZero())
}
