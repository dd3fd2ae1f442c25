package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skillet-ai/skillet/pkg/catalog"
	"github.com/skillet-ai/skillet/pkg/presenter"
)

var pluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "Manage catalog plugins",
	Long:  `Install, list, and remove catalog plugins from GitHub repositories.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var pluginAddCmd = &cobra.Command{
	Use:   "add <repo>[@ref]...",
	Short: "Install plugins from GitHub repositories",
	Long: `Install catalog plugins from one or more GitHub repositories.

The repository should contain skills/, agents/, domains/, or stacks/
directories with markdown documents.

Examples:
  skillet plugin add acme/infra-pack              # Install from a repo
  skillet plugin add acme/a acme/b                # Install several
  skillet plugin add acme/infra-pack@v1.0.0       # Pin to a tag
  skillet plugin add acme/infra-pack -g           # Install globally
  skillet plugin add acme/infra-pack --force      # Overwrite existing files
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		global, _ := cmd.Flags().GetBool("global")
		force, _ := cmd.Flags().GetBool("force")
		subdir, _ := cmd.Flags().GetString("dir")

		opts := []catalog.InstallerOption{
			catalog.WithGlobal(global),
			catalog.WithForce(force),
		}
		if subdir != "" {
			opts = append(opts, catalog.WithSubdir(subdir))
		}

		installer, err := catalog.NewInstaller(opts...)
		if err != nil {
			return err
		}

		for _, arg := range args {
			repo, ref := parseRepoRef(arg)
			presenter.Info(fmt.Sprintf("Installing plugin from %s...", repo))

			result, err := installer.Install(cmd.Context(), repo, ref)
			if err != nil {
				return errors.Wrapf(err, "failed to install from %s", repo)
			}

			if len(result.Skills) > 0 {
				presenter.Success(fmt.Sprintf("Installed skills: %s", strings.Join(result.Skills, ", ")))
			}
			if len(result.Agents) > 0 {
				presenter.Success(fmt.Sprintf("Installed agents: %s", strings.Join(result.Agents, ", ")))
			}

			location := "local (.skillet/plugins/)"
			if global {
				location = "global (~/.skillet/plugins/)"
			}
			presenter.Info(fmt.Sprintf("Plugin '%s' installed to %s", result.PluginName, location))
		}

		return nil
	},
}

var pluginListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed plugins",
	Long: `List installed plugins with their skills and agents.

Shows both local (.skillet/plugins/) and global (~/.skillet/plugins/)
plugins.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		discovery, err := catalog.NewDiscovery()
		if err != nil {
			return err
		}

		localPlugins, err := discovery.ListInstalledPlugins(false)
		if err != nil {
			return errors.Wrap(err, "failed to list local plugins")
		}
		globalPlugins, err := discovery.ListInstalledPlugins(true)
		if err != nil {
			return errors.Wrap(err, "failed to list global plugins")
		}

		if len(localPlugins) == 0 && len(globalPlugins) == 0 {
			presenter.Info("No plugins installed")
			return nil
		}

		type row struct {
			plugin   catalog.InstalledPlugin
			location string
		}
		rows := make([]row, 0, len(localPlugins)+len(globalPlugins))
		for _, p := range localPlugins {
			rows = append(rows, row{p, "local"})
		}
		for _, p := range globalPlugins {
			rows = append(rows, row{p, "global"})
		}
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].plugin.Name != rows[j].plugin.Name {
				return rows[i].plugin.Name < rows[j].plugin.Name
			}
			return rows[i].location < rows[j].location
		})

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		defer tw.Flush()
		fmt.Fprintln(tw, "NAME\tLOCATION\tSKILLS\tAGENTS")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n",
				catalog.PluginNameToID(r.plugin.Name), r.location,
				len(r.plugin.Skills), len(r.plugin.Agents))
		}
		return nil
	},
}

var pluginRemoveCmd = &cobra.Command{
	Use:   "remove <name>...",
	Short: "Remove installed plugins",
	Long: `Remove installed plugins by name. Accepts both the display name
('org/repo') and the on-disk name ('org@repo').

Examples:
  skillet plugin remove acme/infra-pack
  skillet plugin remove acme/infra-pack -g
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		global, _ := cmd.Flags().GetBool("global")

		remover, err := catalog.NewRemover(catalog.WithGlobal(global))
		if err != nil {
			return err
		}

		// Removal continues past failures; the aggregate error reports
		// every plugin that could not be removed.
		if err := remover.RemoveAll(args); err != nil {
			return err
		}
		for _, name := range args {
			presenter.Success(fmt.Sprintf("Removed plugin '%s'", name))
		}
		return nil
	},
}

func parseRepoRef(arg string) (repo, ref string) {
	if idx := strings.LastIndex(arg, "@"); idx > 0 {
		return arg[:idx], arg[idx+1:]
	}
	return arg, ""
}

func init() {
	pluginAddCmd.Flags().BoolP("global", "g", false, "Install to the global directory (~/.skillet/)")
	pluginAddCmd.Flags().Bool("force", false, "Overwrite existing plugin files")
	pluginAddCmd.Flags().String("dir", "", "Only install documents from this subdirectory of the repo")

	pluginRemoveCmd.Flags().BoolP("global", "g", false, "Remove from the global directory")

	pluginCmd.AddCommand(pluginAddCmd)
	pluginCmd.AddCommand(pluginListCmd)
	pluginCmd.AddCommand(pluginRemoveCmd)
}
