package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema <skill|agent>",
	Short: "Print the JSON Schema for document front matter",
	Long: `Print the JSON Schema describing the YAML front matter of skill or
agent documents, for use in editor validation.

Examples:
  skillet schema skill
  skillet schema agent
`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		s, err := schema.ForKind(args[0])
		if err != nil {
			return err
		}

		out, err := schema.MarshalIndent(s)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}
