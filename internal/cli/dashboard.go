package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/draze/draze-cli/internal/marketplace"
	"github.com/draze/draze-cli/internal/session"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the landlord overview",
	Long: `Show the landlord overview. Properties, tenants, subscriptions and complaints are
fetched at the same time; a card that fails shows its error without hiding the others.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(session.RoleLandlord)
		if err != nil {
			return err
		}
		landlordID, err := e.userID(cmd)
		if err != nil {
			return err
		}
		d, err := e.client.Dashboard(cmd.Context(), landlordID)
		if err != nil {
			return err
		}

		cards := d.Cards()
		if outputFormat != "table" {
			out := make(map[string]any, len(cards))
			for _, c := range cards {
				v := map[string]any{"count": c.Count, "amount": c.Amount, "detail": c.Detail}
				if c.Err != nil {
					v = map[string]any{"error": c.Err.Error()}
				}
				out[c.Title] = v
			}
			return render[*marketplace.Card](cmd.OutOrStdout(), "", out, nil, nil)
		}
		return render(cmd.OutOrStdout(), "dashboard", d, cards, dashboardColumns)
	},
}

var dashboardColumns = []column[*marketplace.Card]{
	{"card", func(c *marketplace.Card) string { return c.Title }},
	{"value", func(c *marketplace.Card) string {
		if c.Err != nil {
			return "unavailable"
		}
		return strconv.Itoa(c.Count)
	}},
	{"detail", func(c *marketplace.Card) string {
		switch {
		case c.Err != nil:
			return c.Err.Error()
		case c.Amount != 0:
			return fmt.Sprintf("%s %s", money(c.Amount), c.Detail)
		}
		return c.Detail
	}},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
