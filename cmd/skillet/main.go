package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skillet-ai/skillet/pkg/logger"
	"github.com/skillet-ai/skillet/pkg/presenter"
)

func init() {
	// Environment variables
	viper.SetEnvPrefix("SKILLET")
	viper.AutomaticEnv()

	// Config file support
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.skillet")
	viper.AddConfigPath("./.skillet")

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()
}

var rootCmd = &cobra.Command{
	Use:   "skillet",
	Short: "Skillet manages markdown skill and agent catalogs",
	Long: `Skillet discovers, lints, indexes, and serves markdown skill and agent
documents from repo-local and user-global catalogs, including plugins
installed from GitHub repositories.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logger.SetLogLevel(viper.GetString("log_level"))
		logger.SetLogFormat(viper.GetString("log_format"))
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().Bool("no-skills", false, "Disable skill loading regardless of configuration")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("no_skills", rootCmd.PersistentFlags().Lookup("no-skills"))

	rootCmd.AddCommand(withTracing(lintCmd))
	rootCmd.AddCommand(withTracing(listCmd))
	rootCmd.AddCommand(withTracing(showCmd))
	rootCmd.AddCommand(withTracing(searchCmd))
	rootCmd.AddCommand(withTracing(indexCmd))
	rootCmd.AddCommand(withTracing(matchCmd))
	rootCmd.AddCommand(withTracing(renderCmd))
	rootCmd.AddCommand(pluginCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(withTracing(serveCmd))
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(withTracing(watchCmd))
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	shutdown, err := initTracing(ctx)
	if err != nil {
		presenter.Error(err, "Failed to initialize tracing")
	}
	defer func() {
		if shutdown != nil {
			if err := shutdown(context.Background()); err != nil {
				logger.G(ctx).WithError(err).Debug("Failed to shut down tracing")
			}
		}
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
