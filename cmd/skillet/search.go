package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/db"
	"github.com/skillet-ai/skillet/pkg/index"
	"github.com/skillet-ai/skillet/pkg/presenter"
)

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search the catalog index",
	Long: `Search indexed documents by name and description. Requires a built
index; run 'skillet index' first.

Examples:
  skillet search caching                    # Full-catalog search
  skillet search caching --kind skill       # Only skills
  skillet search deploy --stack helm        # Scope to a framework
  skillet search claims --json              # Machine-readable output
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, _ := cmd.Flags().GetString("db")
		if dbPath == "" {
			var err error
			dbPath, err = db.DefaultDBPath()
			if err != nil {
				return err
			}
		}

		store, err := index.Open(cmd.Context(), dbPath)
		if err != nil {
			return errors.Wrap(err, "failed to open index (run 'skillet index' first)")
		}
		defer store.Close()

		kind, _ := cmd.Flags().GetString("kind")
		stack, _ := cmd.Flags().GetString("stack")
		domain, _ := cmd.Flags().GetString("domain")
		plugin, _ := cmd.Flags().GetString("plugin")
		category, _ := cmd.Flags().GetString("category")
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		docs, err := store.Search(cmd.Context(), index.Query{
			Term:     args[0],
			Kind:     kind,
			Stack:    stack,
			Domain:   domain,
			Plugin:   plugin,
			Category: category,
			Limit:    limit,
		})
		if err != nil {
			return err
		}

		if asJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(docs)
		}

		if len(docs) == 0 {
			presenter.Info("No matches found")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		defer tw.Flush()
		fmt.Fprintln(tw, "KIND\tNAME\tSTACK\tDOMAIN\tDESCRIPTION")
		for _, doc := range docs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				doc.Kind, doc.Name, doc.Stack, doc.Domain, truncate(doc.Description, 60))
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().String("db", "", "Index database path (default ~/.skillet/index.db)")
	searchCmd.Flags().String("kind", "", "Filter by kind (skill, agent)")
	searchCmd.Flags().String("stack", "", "Filter by framework")
	searchCmd.Flags().String("domain", "", "Filter by domain")
	searchCmd.Flags().String("plugin", "", "Filter by plugin name")
	searchCmd.Flags().String("category", "", "Filter by category")
	searchCmd.Flags().Int("limit", 50, "Maximum number of results")
	searchCmd.Flags().Bool("json", false, "Output results as JSON")
}
