package main

import (
	"fmt"

	"github.com/andreyxaxa/Photo-Transformer/config"
	"github.com/andreyxaxa/Photo-Transformer/internal/app"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// rootCmd serves the API when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:          "photo-transformer",
	Short:        "Photo transformation service",
	Long:         "Accepts photo uploads, runs them through an image-generation provider and serves the results from memory.",
	SilenceUsage: true,
	RunE:         serve,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  serve,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long:  "Print the configuration resolved from the environment. Secrets are never printed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		out, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("config - yaml.Marshal: %w", err)
		}

		_, err = cmd.OutOrStdout().Write(out)

		return err
	},
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := config.New()
	if err != nil {
		return err
	}

	app.Run(cfg)

	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd, configCmd)
}
