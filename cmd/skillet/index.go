package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/skillet-ai/skillet/pkg/agents"
	"github.com/skillet-ai/skillet/pkg/db"
	"github.com/skillet-ai/skillet/pkg/index"
	"github.com/skillet-ai/skillet/pkg/presenter"
	"github.com/skillet-ai/skillet/pkg/skills"
	"github.com/skillet-ai/skillet/pkg/telemetry"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the catalog search index",
	Long: `Discover all skills and agents and rebuild the search index. The index
is replaced atomically; searches never observe a partial rebuild.

Examples:
  skillet index                             # Rebuild from default catalogs
  skillet index --db /tmp/index.db          # Use an alternate database
`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dbPath, _ := cmd.Flags().GetString("db")
		return rebuildIndex(cmd.Context(), dbPath)
	},
}

var indexStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show search index statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		dbPath, _ := cmd.Flags().GetString("db")
		if dbPath == "" {
			var err error
			dbPath, err = db.DefaultDBPath()
			if err != nil {
				return err
			}
		}

		store, err := index.Open(ctx, dbPath)
		if err != nil {
			return errors.Wrap(err, "failed to open index (run 'skillet index' first)")
		}
		defer store.Close()

		stats, err := store.Stats(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to read index stats")
		}
		if stats == nil {
			presenter.Warning("Index has not been built yet; run 'skillet index'")
			return nil
		}

		presenter.Section("Index")
		presenter.Info(fmt.Sprintf("Snapshot: %s", stats.Snapshot))
		presenter.Info(fmt.Sprintf("Built:    %s", stats.BuiltAt.Local().Format("2006-01-02 15:04:05")))
		presenter.Info(fmt.Sprintf("Skills:   %d", stats.Skills))
		presenter.Info(fmt.Sprintf("Agents:   %d", stats.Agents))
		presenter.Info(fmt.Sprintf("Triggers: %d", stats.Triggers))
		return nil
	},
}

func rebuildIndex(ctx context.Context, dbPath string) error {
	if dbPath == "" {
		var err error
		dbPath, err = db.DefaultDBPath()
		if err != nil {
			return err
		}
	}

	discovery, err := skills.NewDiscovery(skills.WithDefaultDirs())
	if err != nil {
		return err
	}
	discovered, err := discovery.DiscoverSkills()
	if err != nil {
		return errors.Wrap(err, "failed to discover skills")
	}

	loader, err := agents.NewLoader(agents.WithDefaultDirs())
	if err != nil {
		return err
	}
	loaded, err := loader.ListAgents(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load agents")
	}

	store, err := index.Open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	var snapshot string
	err = telemetry.WithSpan(ctx, "index.rebuild", func(ctx context.Context) error {
		telemetry.SetAttributes(ctx,
			attribute.Int("catalog.skills", len(discovered)),
			attribute.Int("catalog.agents", len(loaded)))

		var rebuildErr error
		snapshot, rebuildErr = store.Rebuild(ctx, discovered, loaded)
		if rebuildErr != nil {
			return rebuildErr
		}

		telemetry.AddEvent(ctx, "index.snapshot", attribute.String("snapshot", snapshot))
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to rebuild index")
	}

	presenter.Success(fmt.Sprintf("Indexed %d skills and %d agents (snapshot %s)",
		len(discovered), len(loaded), snapshot))
	return nil
}

func init() {
	indexCmd.Flags().String("db", "", "Index database path (default ~/.skillet/index.db)")
	indexStatsCmd.Flags().String("db", "", "Index database path (default ~/.skillet/index.db)")
	indexCmd.AddCommand(indexStatsCmd)
}
