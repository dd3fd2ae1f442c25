package main

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/agents"
	"github.com/skillet-ai/skillet/pkg/skills"
)

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a skill or agent document",
	Long: `Render a catalog document to the terminal. Skills are looked up first,
then agents. Plugin-provided documents use their prefixed name.

Examples:
  skillet show helm-templating              # Render a skill
  skillet show acme/infra-pack/caching      # Render a plugin skill
  skillet show claims-reviewer              # Render an agent
  skillet show helm-templating --raw        # Print raw markdown
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		raw, _ := cmd.Flags().GetBool("raw")

		content, err := lookupContent(cmd, name)
		if err != nil {
			return err
		}

		if raw {
			fmt.Print(content)
			return nil
		}

		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err != nil {
			return errors.Wrap(err, "failed to create markdown renderer")
		}

		rendered, err := renderer.Render(content)
		if err != nil {
			return errors.Wrap(err, "failed to render markdown")
		}
		fmt.Print(rendered)
		return nil
	},
}

func lookupContent(cmd *cobra.Command, name string) (string, error) {
	discovery, err := skills.NewDiscovery(skills.WithDefaultDirs())
	if err != nil {
		return "", err
	}
	if skill, err := discovery.GetSkill(name); err == nil {
		return skill.Content, nil
	}

	loader, err := agents.NewLoader(agents.WithDefaultDirs())
	if err != nil {
		return "", err
	}
	if agent, err := loader.GetAgent(cmd.Context(), name); err == nil {
		return agent.Body, nil
	}

	return "", errors.Errorf("no skill or agent named %q found", name)
}

func init() {
	showCmd.Flags().Bool("raw", false, "Print the raw markdown without rendering")
}
