package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/lint"
	"github.com/skillet-ai/skillet/pkg/presenter"
)

var lintCmd = &cobra.Command{
	Use:   "lint [path]",
	Short: "Lint catalog documents",
	Long: `Check catalog markdown documents for malformed front matter, invalid
trigger lists, framework mismatches, encoding problems, and duplicate names.

Defaults to linting ./.skillet when no path is given.

Examples:
  skillet lint                              # Lint the repo-local catalog
  skillet lint ./docs/catalog               # Lint a specific directory
  skillet lint --include 'skills/**'        # Only lint skill documents
  skillet lint --format json                # Machine-readable output
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "./.skillet"
		if len(args) > 0 {
			root = args[0]
		}

		include, _ := cmd.Flags().GetStringSlice("include")
		exclude, _ := cmd.Flags().GetStringSlice("exclude")
		format, _ := cmd.Flags().GetString("format")

		var opts []lint.RunnerOption
		if len(include) > 0 {
			opts = append(opts, lint.WithInclude(include...))
		}
		if len(exclude) > 0 {
			opts = append(opts, lint.WithExclude(exclude...))
		}

		result, err := lint.NewRunner(opts...).Run(root)
		if err != nil {
			return errors.Wrapf(err, "failed to lint %s", root)
		}

		switch format {
		case "json":
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(result); err != nil {
				return errors.Wrap(err, "failed to encode lint result")
			}
		case "text":
			for _, issue := range result.Issues {
				line := issue.Path
				if issue.Line > 0 {
					line = fmt.Sprintf("%s:%d", issue.Path, issue.Line)
				}
				message := fmt.Sprintf("%s [%s] %s", line, issue.Rule, issue.Message)
				if issue.Severity == lint.SeverityWarning {
					presenter.Warning(message)
				} else {
					presenter.Error(errors.New(issue.Message), fmt.Sprintf("%s [%s]", line, issue.Rule))
				}
			}
			if len(result.Issues) == 0 {
				presenter.Success(fmt.Sprintf("%d documents checked, no issues found", result.Checked))
			} else {
				presenter.Info(fmt.Sprintf("%d documents checked, %d issues found", result.Checked, len(result.Issues)))
			}
		default:
			return errors.Errorf("unknown format %q (expected text or json)", format)
		}

		if result.HasErrors() {
			return errors.New("lint failed")
		}
		return nil
	},
}

func init() {
	lintCmd.Flags().StringSlice("include", nil, "Glob patterns of documents to lint (default '**/*.md')")
	lintCmd.Flags().StringSlice("exclude", nil, "Glob patterns of documents to skip")
	lintCmd.Flags().String("format", "text", "Output format (text, json)")
}
