package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/skillet-ai/skillet/pkg/logger"
	"github.com/skillet-ai/skillet/pkg/presenter"
)

const sampleSkill = `---
name: sample-skill
description: Replace this with a real skill
category: general
---

# Sample Skill

Describe the practice here. Delete this file once you have real skills.
`

const sampleAgent = `---
name: sample-agent
description: Replace this with a real agent
tier: core
triggers:
  - sample request
---

# Sample Agent

Describe the agent's behavior here.

` + "```template default\n" + `You are a sample agent. Handle: {{.request}}
` + "```\n"

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a catalog directory",
	Long: `Create a .skillet catalog with sample skill and agent documents and a
default configuration file.

Examples:
  skillet init                              # Scaffold ./.skillet
  skillet init --global                     # Scaffold ~/.skillet
  skillet init --override                   # Overwrite existing config
`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		global, _ := cmd.Flags().GetBool("global")
		override, _ := cmd.Flags().GetBool("override")

		root := ".skillet"
		if global {
			home, err := os.UserHomeDir()
			if err != nil {
				return errors.Wrap(err, "failed to get home directory")
			}
			root = filepath.Join(home, ".skillet")
		}

		presenter.Section("Catalog Setup")

		for _, dir := range []string{"skills", "agents", "plugins"} {
			path := filepath.Join(root, dir)
			if err := os.MkdirAll(path, 0o755); err != nil {
				return errors.Wrapf(err, "failed to create %s", path)
			}
			logger.G(ctx).WithField("directory", path).Debug("Created catalog directory")
		}

		wrote, err := writeIfAbsent(filepath.Join(root, "skills", "sample-skill.md"), sampleSkill, override)
		if err != nil {
			return err
		}
		if wrote {
			presenter.Success("Created skills/sample-skill.md")
		}

		wrote, err = writeIfAbsent(filepath.Join(root, "agents", "sample-agent.md"), sampleAgent, override)
		if err != nil {
			return err
		}
		if wrote {
			presenter.Success("Created agents/sample-agent.md")
		}

		config := map[string]any{
			"log_level":  "warn",
			"log_format": "text",
			"skills": map[string]any{
				"enabled": true,
			},
		}
		configBytes, err := yaml.Marshal(config)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config")
		}

		configFile := filepath.Join(root, "config.yaml")
		if !override {
			if _, err := os.Stat(configFile); err == nil {
				presenter.Warning(fmt.Sprintf("Configuration file already exists at %s", configFile))
				presenter.Info("Use --override to overwrite it")
				return nil
			}
		}
		if err := os.WriteFile(configFile, configBytes, 0o644); err != nil {
			return errors.Wrap(err, "failed to write config file")
		}
		presenter.Success(fmt.Sprintf("Created %s", configFile))

		presenter.Separator()
		presenter.Info("Run 'skillet lint' to check the catalog and 'skillet list' to browse it")
		return nil
	},
}

func writeIfAbsent(path, content string, override bool) (bool, error) {
	if !override {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, errors.Wrapf(err, "failed to write %s", path)
	}
	return true, nil
}

func init() {
	initCmd.Flags().Bool("global", false, "Scaffold the user-global catalog (~/.skillet)")
	initCmd.Flags().Bool("override", false, "Overwrite existing files")
}
