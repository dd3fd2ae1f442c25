package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/agents"
	"github.com/skillet-ai/skillet/pkg/db"
	"github.com/skillet-ai/skillet/pkg/httpapi"
	"github.com/skillet-ai/skillet/pkg/index"
	"github.com/skillet-ai/skillet/pkg/logger"
	"github.com/skillet-ai/skillet/pkg/presenter"
	"github.com/skillet-ai/skillet/pkg/skills"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog over HTTP",
	Long: `Start a local HTTP API over the catalog. Discovery endpoints always
work; search and stats require a built index.

Examples:
  skillet serve                             # Serve on 127.0.0.1:8998
  skillet serve --host 0.0.0.0 --port 9000
`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		host, _ := cmd.Flags().GetString("host")
		port, _ := cmd.Flags().GetInt("port")

		discovery, err := skills.NewDiscovery(skills.WithDefaultDirs())
		if err != nil {
			return err
		}
		loader, err := agents.NewLoader(agents.WithDefaultDirs())
		if err != nil {
			return err
		}

		var store *index.Store
		dbPath, err := db.DefaultDBPath()
		if err == nil {
			if _, statErr := os.Stat(dbPath); statErr == nil {
				store, err = index.Open(cmd.Context(), dbPath)
				if err != nil {
					logger.G(cmd.Context()).WithError(err).Warn("Failed to open index, search endpoints disabled")
					store = nil
				}
			}
		}
		if store != nil {
			defer store.Close()
		}

		server, err := httpapi.NewServer(&httpapi.ServerConfig{Host: host, Port: port}, discovery, loader, store)
		if err != nil {
			return err
		}

		presenter.Info(fmt.Sprintf("Serving catalog API on http://%s:%d", host, port))
		return server.Start(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().String("host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().Int("port", 8998, "Port to listen on")
}
