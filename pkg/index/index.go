// Package index maintains a queryable SQLite index over discovered catalog
// documents. The index is rebuilt as a whole: every rebuild writes a fresh
// snapshot in a single transaction so readers never observe a half-built
// catalog.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/skillet-ai/skillet/pkg/agents"
	"github.com/skillet-ai/skillet/pkg/db"
	"github.com/skillet-ai/skillet/pkg/skills"
)

// Document is a single indexed catalog entry.
type Document struct {
	Snapshot    string `db:"snapshot" json:"-"`
	Kind        string `db:"kind" json:"kind"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description,omitempty"`
	Plugin      string `db:"plugin" json:"plugin,omitempty"`
	Domain      string `db:"domain" json:"domain,omitempty"`
	Layer       string `db:"layer" json:"layer,omitempty"`
	Stack       string `db:"stack" json:"stack,omitempty"`
	Category    string `db:"category" json:"category,omitempty"`
	Tier        string `db:"tier" json:"tier,omitempty"`
	Path        string `db:"path" json:"path"`
}

// Query selects documents from the index. Zero-valued fields are not
// filtered on.
type Query struct {
	Term     string
	Kind     string
	Stack    string
	Domain   string
	Plugin   string
	Category string
	Limit    int
}

// Stats summarizes the current snapshot.
type Stats struct {
	Snapshot string    `json:"snapshot"`
	BuiltAt  time.Time `json:"built_at"`
	Skills   int       `json:"skills"`
	Agents   int       `json:"agents"`
	Triggers int       `json:"triggers"`
}

// Store wraps the index database.
type Store struct {
	db *sqlx.DB
}

// Open opens the index database at dbPath and applies pending migrations.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	database, err := db.Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}

	runner := db.NewMigrationRunner(database)
	if err := runner.Run(ctx, migrations); err != nil {
		database.Close()
		return nil, errors.Wrap(err, "failed to migrate index database")
	}

	return &Store{db: database}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Rebuild replaces the index contents with the given skills and agents and
// returns the new snapshot ID. The swap happens in one transaction.
func (s *Store) Rebuild(ctx context.Context, skillDocs map[string]*skills.Skill, agentDocs []*agents.Agent) (string, error) {
	snapshot := uuid.New().String()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	for _, table := range []string{"documents", "agent_triggers", "agent_capabilities"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return "", errors.Wrapf(err, "failed to clear %s", table)
		}
	}

	insertDoc := `
		INSERT INTO documents (snapshot, kind, name, description, plugin, domain, layer, stack, category, tier, content, path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for _, skill := range skillDocs {
		_, err := tx.ExecContext(ctx, insertDoc,
			snapshot, "skill", skill.Name, skill.Description,
			skill.Plugin, skill.Domain, skill.Layer, skill.AppliesTo, skill.Category, "", skill.Content, skill.Path)
		if err != nil {
			return "", errors.Wrapf(err, "failed to index skill %s", skill.Name)
		}
	}

	for _, agent := range agentDocs {
		_, err := tx.ExecContext(ctx, insertDoc,
			snapshot, "agent", agent.Metadata.Name, agent.Metadata.Description,
			agent.Plugin, agent.Metadata.Domain, "", "", "", agent.Metadata.Tier, agent.Body, agent.Path)
		if err != nil {
			return "", errors.Wrapf(err, "failed to index agent %s", agent.Metadata.Name)
		}
		for _, trigger := range agent.Metadata.Triggers {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO agent_triggers (snapshot, agent_name, trigger_phrase) VALUES (?, ?, ?)",
				snapshot, agent.Metadata.Name, trigger)
			if err != nil {
				return "", errors.Wrapf(err, "failed to index triggers for %s", agent.Metadata.Name)
			}
		}
		for _, capability := range agent.Metadata.Capabilities {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO agent_capabilities (snapshot, agent_name, capability) VALUES (?, ?, ?)",
				snapshot, agent.Metadata.Name, capability)
			if err != nil {
				return "", errors.Wrapf(err, "failed to index capabilities for %s", agent.Metadata.Name)
			}
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO index_meta (id, snapshot, built_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET snapshot = excluded.snapshot, built_at = excluded.built_at`,
		snapshot, time.Now().UTC())
	if err != nil {
		return "", errors.Wrap(err, "failed to record snapshot")
	}

	if err := tx.Commit(); err != nil {
		return "", errors.Wrap(err, "failed to commit index rebuild")
	}

	return snapshot, nil
}

// Search returns documents matching the query, ordered by kind then name.
func (s *Store) Search(ctx context.Context, q Query) ([]Document, error) {
	conditions := []string{"1=1"}
	args := []any{}

	if q.Term != "" {
		conditions = append(conditions, "(name LIKE ? OR description LIKE ? OR content LIKE ?)")
		pattern := "%" + q.Term + "%"
		args = append(args, pattern, pattern, pattern)
	}
	for _, f := range []struct {
		column string
		value  string
	}{
		{"kind", q.Kind},
		{"stack", q.Stack},
		{"domain", q.Domain},
		{"plugin", q.Plugin},
		{"category", q.Category},
	} {
		if f.value != "" {
			conditions = append(conditions, f.column+" = ?")
			args = append(args, f.value)
		}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`
		SELECT snapshot, kind, name, description, plugin, domain, layer, stack, category, tier, path
		FROM documents WHERE %s ORDER BY kind, name LIMIT %d`,
		strings.Join(conditions, " AND "), limit)

	var docs []Document
	if err := s.db.SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to search index")
	}
	return docs, nil
}

// TriggersFor returns the indexed trigger phrases for an agent.
func (s *Store) TriggersFor(ctx context.Context, agentName string) ([]string, error) {
	var triggers []string
	err := s.db.SelectContext(ctx, &triggers,
		"SELECT trigger_phrase FROM agent_triggers WHERE agent_name = ? ORDER BY trigger_phrase", agentName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query triggers")
	}
	return triggers, nil
}

// Stats reports counts for the current snapshot. Returns nil when the index
// has never been built.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	var meta struct {
		Snapshot string    `db:"snapshot"`
		BuiltAt  time.Time `db:"built_at"`
	}
	err := s.db.GetContext(ctx, &meta, "SELECT snapshot, built_at FROM index_meta WHERE id = 1")
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to query index metadata")
	}

	stats := &Stats{Snapshot: meta.Snapshot, BuiltAt: meta.BuiltAt}
	if err := s.db.GetContext(ctx, &stats.Skills, "SELECT COUNT(*) FROM documents WHERE kind = 'skill'"); err != nil {
		return nil, errors.Wrap(err, "failed to count skills")
	}
	if err := s.db.GetContext(ctx, &stats.Agents, "SELECT COUNT(*) FROM documents WHERE kind = 'agent'"); err != nil {
		return nil, errors.Wrap(err, "failed to count agents")
	}
	if err := s.db.GetContext(ctx, &stats.Triggers, "SELECT COUNT(*) FROM agent_triggers"); err != nil {
		return nil, errors.Wrap(err, "failed to count triggers")
	}
	return stats, nil
}
