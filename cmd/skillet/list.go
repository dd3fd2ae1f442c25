package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/agents"
	"github.com/skillet-ai/skillet/pkg/presenter"
	"github.com/skillet-ai/skillet/pkg/skills"
)

var listCmd = &cobra.Command{
	Use:   "list [skills|agents]",
	Short: "List discovered catalog documents",
	Long: `List skills and agents discovered across the repo-local and user-global
catalogs, with repo-local documents taking precedence on name conflicts.

Examples:
  skillet list                              # List everything
  skillet list skills                       # Only skills
  skillet list skills --stack helm          # Skills scoped to a framework
  skillet list agents --domain insurance    # Agents in a domain
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := ""
		if len(args) > 0 {
			kind = args[0]
		}

		stack, _ := cmd.Flags().GetString("stack")
		domain, _ := cmd.Flags().GetString("domain")
		effective, _ := cmd.Flags().GetBool("effective")

		switch kind {
		case "", "skills", "agents":
		default:
			return errors.Errorf("unknown kind %q (expected skills or agents)", kind)
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		defer tw.Flush()

		if kind == "" || kind == "skills" {
			if err := listSkills(cmd, tw, stack, effective); err != nil {
				return err
			}
		}
		if kind == "" || kind == "agents" {
			if err := listAgents(cmd, tw, domain); err != nil {
				return err
			}
		}
		return nil
	},
}

func listSkills(cmd *cobra.Command, tw *tabwriter.Writer, stack string, effective bool) error {
	var discovered map[string]*skills.Skill

	if effective {
		var enabled bool
		discovered, enabled = skills.Initialize(cmd.Context())
		if !enabled {
			presenter.Info("Skills are disabled by configuration")
			return nil
		}
	} else {
		discovery, err := skills.NewDiscovery(skills.WithDefaultDirs())
		if err != nil {
			return err
		}
		discovered, err = discovery.DiscoverSkills()
		if err != nil {
			return errors.Wrap(err, "failed to discover skills")
		}
	}

	names := make([]string, 0, len(discovered))
	for name := range discovered {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(tw, "SKILL\tSTACK\tCATEGORY\tDESCRIPTION")
	count := 0
	for _, name := range names {
		skill := discovered[name]
		if stack != "" && skill.AppliesTo != stack {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", skill.Name, skill.AppliesTo, skill.Category, truncate(skill.Description, 60))
		count++
	}
	if count == 0 {
		presenter.Info("No skills found")
	}
	return nil
}

func listAgents(cmd *cobra.Command, tw *tabwriter.Writer, domain string) error {
	loader, err := agents.NewLoader(agents.WithDefaultDirs())
	if err != nil {
		return err
	}

	loaded, err := loader.ListAgents(cmd.Context())
	if err != nil {
		return errors.Wrap(err, "failed to load agents")
	}
	sort.Slice(loaded, func(i, j int) bool {
		return loaded[i].Metadata.Name < loaded[j].Metadata.Name
	})

	fmt.Fprintln(tw, "AGENT\tTIER\tDOMAIN\tTRIGGERS")
	count := 0
	for _, agent := range loaded {
		if domain != "" && agent.Metadata.Domain != domain {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			agent.Metadata.Name, agent.Metadata.Tier, agent.Metadata.Domain,
			truncate(strings.Join(agent.Metadata.Triggers, ", "), 60))
		count++
	}
	if count == 0 {
		presenter.Info("No agents found")
	}
	return nil
}

// truncate shortens s to max runes so multi-byte prose is never split
// mid-character.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func init() {
	listCmd.Flags().String("stack", "", "Filter skills by framework (applies_to)")
	listCmd.Flags().String("domain", "", "Filter agents by domain")
	listCmd.Flags().Bool("effective", false, "Apply skills.enabled and skills.allowed from configuration")
}
