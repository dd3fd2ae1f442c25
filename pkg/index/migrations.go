package index

import (
	"database/sql"

	"github.com/pkg/errors"

	"github.com/skillet-ai/skillet/pkg/db"
)

var migrations = []db.Migration{
	migration20250801120000CreateDocuments(),
}

func migration20250801120000CreateDocuments() db.Migration {
	return db.Migration{
		Version:     20250801120000,
		Description: "Create documents, agent_triggers, agent_capabilities and index_meta tables",
		Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS documents (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					snapshot TEXT NOT NULL,
					kind TEXT NOT NULL,
					name TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					plugin TEXT NOT NULL DEFAULT '',
					domain TEXT NOT NULL DEFAULT '',
					layer TEXT NOT NULL DEFAULT '',
					stack TEXT NOT NULL DEFAULT '',
					category TEXT NOT NULL DEFAULT '',
					tier TEXT NOT NULL DEFAULT '',
					content TEXT NOT NULL DEFAULT '',
					path TEXT NOT NULL
				)
			`); err != nil {
				return errors.Wrap(err, "failed to create documents table")
			}

			if _, err := tx.Exec(`
				CREATE INDEX IF NOT EXISTS idx_documents_kind_name
				ON documents(kind, name)
			`); err != nil {
				return errors.Wrap(err, "failed to create kind/name index")
			}

			if _, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS agent_triggers (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					snapshot TEXT NOT NULL,
					agent_name TEXT NOT NULL,
					trigger_phrase TEXT NOT NULL
				)
			`); err != nil {
				return errors.Wrap(err, "failed to create agent_triggers table")
			}

			if _, err := tx.Exec(`
				CREATE INDEX IF NOT EXISTS idx_agent_triggers_agent_name
				ON agent_triggers(agent_name)
			`); err != nil {
				return errors.Wrap(err, "failed to create agent_name index")
			}

			if _, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS agent_capabilities (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					snapshot TEXT NOT NULL,
					agent_name TEXT NOT NULL,
					capability TEXT NOT NULL
				)
			`); err != nil {
				return errors.Wrap(err, "failed to create agent_capabilities table")
			}

			if _, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS index_meta (
					id INTEGER PRIMARY KEY CHECK (id = 1),
					snapshot TEXT NOT NULL,
					built_at DATETIME NOT NULL
				)
			`); err != nil {
				return errors.Wrap(err, "failed to create index_meta table")
			}

			return nil
		},
		Down: func(tx *sql.Tx) error {
			for _, table := range []string{"index_meta", "agent_capabilities", "agent_triggers", "documents"} {
				if _, err := tx.Exec("DROP TABLE IF EXISTS " + table); err != nil {
					return errors.Wrapf(err, "failed to drop %s table", table)
				}
			}
			return nil
		},
	}
}
