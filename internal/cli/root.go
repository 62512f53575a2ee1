// Package cli implements the veritext commands.
package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"veritext/internal/config"
)

var configPath string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "veritext",
	Short: "Misinformation text analysis service",
	Long:  "Classifies short texts as real or fake news, explains which words pushed each decision, and ranks the distinctive vocabulary of both buckets.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yml", "Path to YAML config file")
	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(analyzeCmd)
	RootCmd.AddCommand(initModelCmd)
}

// loadConfig reads the configured YAML file, falling back to built-in
// defaults when the default path does not exist.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !RootCmd.PersistentFlags().Changed("config") {
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}
