package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/draze/draze-cli/internal/common/logtrace"
)

const version = "v0.3.0"

var (
	// Global flags
	jsonOutput   bool
	outputFormat string
	configFile   string
	logLevel     string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "draze",
	Short: "draze - command line client for the rental marketplace",
	Long: `draze is a command line client for the rental marketplace API.
It keeps one session per role, lists tenants, properties, dues and verifications,
and submits validated changes.`,
	PersistentPreRunE: preRunHandlePersistents,
}

func init() {
	// Set up persistent flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "", "", "Path to configuration file to override default")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json or yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	// Add commands
	rootCmd.AddCommand(newVersionCmd())
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SilenceErrors = true // Prevent Cobra from printing the error
	rootCmd.SilenceUsage = true  // Prevent Cobra from printing usage on error

	err := rootCmd.Execute()
	if err != nil {
		if jsonOutput {
			printJSON(os.Stdout, errorJSON(err))
		} else {
			printError(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func preRunHandlePersistents(cmd *cobra.Command, args []string) error {
	if jsonOutput {
		outputFormat = "json"
	}
	switch outputFormat {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q", outputFormat)
	}

	if err := loadDotEnv(); err != nil {
		return err
	}

	// if a config file is provided, load config from config file
	if configFile == "" {
		var err error
		configFile, err = GetDefaultConfigPath()
		if err != nil {
			return err
		}
	}

	level := logLevel
	if level == "" {
		level = os.Getenv(EnvLogLevel)
	}

	if !isConfigCommand(cmd) && cmd.Name() != "version" {
		if err := LoadConfig(configFile); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("draze config file not found. Configure draze with \"draze config create\" first")
			}
			return fmt.Errorf("unable to load config file: %w", err)
		}
		if level == "" {
			level = GetConfig().LogLevel
		}
	}

	logtrace.InitLogger(level)
	return nil
}

func isConfigCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" {
			return true
		}
	}
	return false
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of draze",
		Run: func(cmd *cobra.Command, args []string) {
			if jsonOutput {
				printJSON(cmd.OutOrStdout(), map[string]string{
					"version": version,
				})
			} else {
				cmd.Println("draze " + version)
			}
		},
	}
}

// printJSON prints data as indented JSON
func printJSON(w io.Writer, data any) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintln(w, string(jsonData))
}
