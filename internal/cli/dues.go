package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/draze/draze-cli/internal/marketplace"
	"github.com/draze/draze-cli/internal/session"
)

var dueColumns = []column[marketplace.Due]{
	{"bill", func(d marketplace.Due) string { return string(d.BillID) }},
	{"type", func(d marketplace.Due) string { return d.Type }},
	{"amount", func(d marketplace.Due) string { return money(d.Amount) }},
	{"due", func(d marketplace.Due) string { return dateOf(d.DueDate) }},
	{"status", func(d marketplace.Due) string { return colorStatus(d.Status) }},
}

var accommodationColumns = []column[marketplace.Accommodation]{
	{"property", func(a marketplace.Accommodation) string { return a.PropertyName }},
	{"room", func(a marketplace.Accommodation) string { return string(a.RoomID) }},
	{"bed", func(a marketplace.Accommodation) string { return string(a.BedID) }},
	{"rent", func(a marketplace.Accommodation) string { return money(a.RentAmount) }},
	{"since", func(a marketplace.Accommodation) string { return dateOf(a.MoveInDate) }},
}

var duesCmd = &cobra.Command{
	Use:   "dues",
	Short: "Show a tenant's bills",
}

var duesListOpts listOptions

var duesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bills and the amount still outstanding",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(session.RoleTenant)
		if err != nil {
			return err
		}
		dues, err := runList(cmd, e, marketplace.DuesEndpoint, &duesListOpts, nil, "dues", dueColumns)
		if err != nil || outputFormat != "table" {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Outstanding: %s\n", money(marketplace.TotalDues(dues)))
		return nil
	},
}

var accommodationsCmd = &cobra.Command{
	Use:   "accommodations",
	Short: "Show where a tenant lives",
}

var accommodationsListOpts listOptions

var accommodationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tenant's property, room and bed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(session.RoleTenant)
		if err != nil {
			return err
		}
		_, err = runList(cmd, e, marketplace.AccommodationsEndpoint, &accommodationsListOpts,
			nil, "accommodations", accommodationColumns)
		return err
	},
}

func init() {
	rootCmd.AddCommand(duesCmd, accommodationsCmd)
	duesCmd.AddCommand(duesListCmd)
	accommodationsCmd.AddCommand(accommodationsListCmd)
	duesListOpts.bind(duesListCmd, false)
	accommodationsListOpts.bind(accommodationsListCmd, false)
}
