package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create or show the draze configuration",
}

var newConfig Config

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Write a configuration file",
	Long: `Write a configuration file, by default to the user config directory.

Example:
  draze config create --server api.example.com --timeout 30s --page-size 20`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := newConfig
		if err := cfg.ValidateConfig(); err != nil {
			return err
		}
		if err := cfg.WriteConfig(configFile); err != nil {
			return err
		}
		printMessage(cmd.OutOrStdout(), "Configuration written to "+configFile, cfg)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the configuration in effect",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := LoadConfig(configFile); err != nil {
			return err
		}
		cfg := GetConfig()
		if outputFormat != "table" {
			printMessage(cmd.OutOrStdout(), "", cfg)
			return nil
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Config file: %s\n", configFile)
		fmt.Fprintf(w, "Server: %s\n", cfg.GetServerURL())
		if t := cfg.GetRequestTimeout(); t > 0 {
			fmt.Fprintf(w, "Request timeout: %s\n", t)
		}
		fmt.Fprintf(w, "Page size: %d\n", cfg.GetPageSize())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configCreateCmd, configShowCmd)

	f := configCreateCmd.Flags()
	f.StringVar(&newConfig.ServerURL, "server", "", "Marketplace API URL (required)")
	f.StringVar(&newConfig.RequestTimeout, "timeout", "", "Timeout of each API call, e.g. 30s")
	f.IntVar(&newConfig.PageSize, "page-size", 0, "Rows per page of list output")
	f.StringVar(&newConfig.Debounce, "debounce", "", "Quiet period of interactive search, e.g. 500ms")
	f.StringVar(&newConfig.LogLevel, "log-level-default", "", "Log level written to the file")
	configCreateCmd.MarkFlagRequired("server")
}
