/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ssargent/cccc/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the cccc configuration file",
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write the default configuration to --path, or to
$HOME/.config/cccc/config.yaml when no path is given.

Examples:
	  cccc config init
	  cccc config init --path ./cccc.yaml --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("path")
		force, _ := cmd.Flags().GetBool("force")
		if path == "" {
			path = config.GetDefaultConfigPath()
		}
		if err := initConfig(path, force); err != nil {
			return err
		}
		cmd.Printf("Wrote configuration to %s\n", path)
		return nil
	},
}

func initConfig(path string, force bool) error {
	if config.ConfigExists(path) && !force {
		return errors.WithHint(
			errors.Newf("configuration already exists at %s", path),
			"use --force to overwrite it",
		)
	}
	return config.SaveConfig(config.DefaultConfig(), path)
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().String("path", "", "Where to write the configuration")
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
}
