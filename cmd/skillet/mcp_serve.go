package main

import (
	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog as an MCP stdio server",
	Long: `Expose the catalog to MCP clients over stdio. Provides skill-search,
skill-show, agent-match, and catalog-lint tools.

Example client configuration:

  {
    "mcpServers": {
      "skillet": {
        "command": "skillet",
        "args": ["mcp", "serve"]
      }
    }
  }
`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		server, err := mcp.NewServer(nil, nil)
		if err != nil {
			return err
		}
		return server.ServeStdio(cmd.Context())
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
}
