package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/draze/draze-cli/internal/marketplace"
	"github.com/draze/draze-cli/internal/session"
)

var forecastColumns = []column[marketplace.ForecastEntry]{
	{"month", func(f marketplace.ForecastEntry) string { return f.Month }},
	{"expected", func(f marketplace.ForecastEntry) string { return money(f.Expected) }},
	{"collected", func(f marketplace.ForecastEntry) string { return money(f.Collected) }},
	{"pending", func(f marketplace.ForecastEntry) string { return money(f.Pending()) }},
}

var forecastOpts listOptions

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Show a sub-owner's collections forecast",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(session.RoleSubOwner)
		if err != nil {
			return err
		}
		entries, err := runList(cmd, e, marketplace.ForecastEndpoint, &forecastOpts, nil, "forecast", forecastColumns)
		if err != nil || outputFormat != "table" {
			return err
		}
		expected, collected := marketplace.ForecastTotal(entries)
		fmt.Fprintf(cmd.OutOrStdout(), "Total expected: %s, collected: %s\n", money(expected), money(collected))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(forecastCmd)
	forecastOpts.bind(forecastCmd, false)
}
