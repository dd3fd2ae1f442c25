package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/agents"
	"github.com/skillet-ai/skillet/pkg/render"
)

var renderCmd = &cobra.Command{
	Use:   "render <agent>",
	Short: "Render an agent prompt template",
	Long: `Render one of an agent's embedded templates with argument substitution.
Templates may invoke the bash helper to inline command output; use
--no-bash to render untrusted documents.

Examples:
  skillet render claims-reviewer                       # Render the only template
  skillet render claims-reviewer --template escalation # Pick a template
  skillet render claims-reviewer --arg customer=Acme --arg region=emea
  skillet render claims-reviewer --no-bash             # Disable command execution
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		templateName, _ := cmd.Flags().GetString("template")
		argPairs, _ := cmd.Flags().GetStringArray("arg")
		noBash, _ := cmd.Flags().GetBool("no-bash")

		arguments, err := render.ParseArguments(argPairs)
		if err != nil {
			return err
		}

		loader, err := agents.NewLoader(agents.WithDefaultDirs())
		if err != nil {
			return err
		}
		agent, err := loader.GetAgent(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		tmpl, err := agent.Template(templateName)
		if err != nil {
			return errors.Wrapf(err, "failed to select template for agent %s", args[0])
		}

		var opts []render.Option
		if noBash {
			opts = append(opts, render.WithBashDisabled())
		}

		out, err := render.NewRenderer(opts...).Render(cmd.Context(), tmpl.Body, arguments)
		if err != nil {
			return errors.Wrapf(err, "failed to render template %q", tmpl.Name)
		}

		fmt.Print(out)
		return nil
	},
}

func init() {
	renderCmd.Flags().String("template", "", "Template name (required when the agent has several)")
	renderCmd.Flags().StringArray("arg", nil, "Template argument as key=value (repeatable)")
	renderCmd.Flags().Bool("no-bash", false, "Disable the bash template helper")
}
