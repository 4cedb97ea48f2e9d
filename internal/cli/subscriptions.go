package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/draze/draze-cli/internal/marketplace"
	"github.com/draze/draze-cli/internal/session"
)

var subscriptionColumns = []column[marketplace.Subscription]{
	{"id", func(s marketplace.Subscription) string { return string(s.ID) }},
	{"plan", func(s marketplace.Subscription) string { return s.Plan.Name }},
	{"max beds", func(s marketplace.Subscription) string { return strconv.Itoa(s.Plan.MaxBeds) }},
	{"beds used", func(s marketplace.Subscription) string { return strconv.Itoa(s.BedsUsed) }},
	{"ends", func(s marketplace.Subscription) string { return dateOf(s.EndDate) }},
	{"status", func(s marketplace.Subscription) string { return colorStatus(s.Status) }},
}

var subscriptionsCmd = &cobra.Command{
	Use:   "subscriptions",
	Short: "Show the landlord's plan subscriptions",
}

var subscriptionsListOpts listOptions

var subscriptionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subscriptions and the beds their active plans allow",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(session.RoleLandlord)
		if err != nil {
			return err
		}
		landlordID, err := e.userID(cmd)
		if err != nil {
			return err
		}
		ep, err := marketplace.SubscriptionsEndpoint(landlordID)
		if err != nil {
			return err
		}
		subs, err := runList(cmd, e, ep, &subscriptionsListOpts, nil, "subscriptions", subscriptionColumns)
		if err != nil || outputFormat != "table" {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Active beds: %d (%d used)\n",
			marketplace.ActiveBeds(subs), marketplace.BedsUsed(subs))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(subscriptionsCmd)
	subscriptionsCmd.AddCommand(subscriptionsListCmd)
	subscriptionsListOpts.bind(subscriptionsListCmd, false)
}
