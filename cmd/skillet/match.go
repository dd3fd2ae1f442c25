package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/agents"
	"github.com/skillet-ai/skillet/pkg/presenter"
)

var matchCmd = &cobra.Command{
	Use:   "match <phrase>...",
	Short: "Match a phrase against agent triggers",
	Long: `Match a request phrase against agent trigger patterns. Exact trigger
matches rank above glob matches, which rank above substring matches; ties
break on tier (domain over specialist over core), then name.

Examples:
  skillet match review claim                # Rank matching agents
  skillet match "claim for water damage" --domain insurance
  skillet match deploy service --json
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		phrase := strings.Join(args, " ")
		domain, _ := cmd.Flags().GetString("domain")
		asJSON, _ := cmd.Flags().GetBool("json")

		loader, err := agents.NewLoader(agents.WithDefaultDirs())
		if err != nil {
			return err
		}
		loaded, err := loader.ListAgents(cmd.Context())
		if err != nil {
			return errors.Wrap(err, "failed to load agents")
		}

		var opts []agents.MatcherOption
		if domain != "" {
			opts = append(opts, agents.WithDomain(domain))
		}
		matches := agents.NewMatcher(loaded, opts...).Match(phrase)

		if asJSON {
			results := make([]map[string]any, 0, len(matches))
			for _, match := range matches {
				results = append(results, map[string]any{
					"name":    match.Agent.Metadata.Name,
					"tier":    match.Agent.Metadata.Tier,
					"domain":  match.Agent.Metadata.Domain,
					"trigger": match.Trigger,
					"score":   match.Score,
				})
			}
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(results)
		}

		if len(matches) == 0 {
			presenter.Info(fmt.Sprintf("No agents match %q", phrase))
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		defer tw.Flush()
		fmt.Fprintln(tw, "AGENT\tTIER\tDOMAIN\tTRIGGER\tSCORE")
		for _, match := range matches {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
				match.Agent.Metadata.Name, match.Agent.Metadata.Tier,
				match.Agent.Metadata.Domain, match.Trigger, match.Score)
		}
		return nil
	},
}

func init() {
	matchCmd.Flags().String("domain", "", "Only consider agents in this domain")
	matchCmd.Flags().Bool("json", false, "Output matches as JSON")
}
