package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/draze/draze-cli/internal/fetch"
	"github.com/draze/draze-cli/internal/marketplace"
	"github.com/draze/draze-cli/internal/session"
)

var complaintColumns = []column[marketplace.Complaint]{
	{"id", func(c marketplace.Complaint) string { return string(c.ComplaintID) }},
	{"subject", func(c marketplace.Complaint) string { return c.Subject }},
	{"priority", func(c marketplace.Complaint) string { return c.Priority }},
	{"status", func(c marketplace.Complaint) string { return colorStatus(c.Status) }},
}

var complaintsCmd = &cobra.Command{
	Use:   "complaints",
	Short: "Review and update tenant complaints",
}

var complaintsListOpts listOptions

var complaintsListCmd = &cobra.Command{
	Use:   "list <tenant-id>",
	Short: "List a tenant's complaints",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(session.RoleLandlord)
		if err != nil {
			return err
		}
		ep, err := marketplace.ComplaintsEndpoint(args[0])
		if err != nil {
			return err
		}
		complaints, err := runList(cmd, e, ep, &complaintsListOpts, nil, "complaints", complaintColumns)
		if err != nil || outputFormat != "table" {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Open: %d\n", marketplace.OpenComplaints(complaints))
		return nil
	},
}

var complaintsTenant string

var complaintsSetStatusCmd = &cobra.Command{
	Use:   "set-status <complaint-id> <status>",
	Short: "Change a complaint's status",
	Long: `Change a complaint's status to open, in_progress, resolved or closed. The tenant's
complaint list is fetched again afterwards.

Example:
  draze complaints set-status C1 resolved --tenant T1`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(session.RoleLandlord)
		if err != nil {
			return err
		}
		ep, err := marketplace.ComplaintsEndpoint(complaintsTenant)
		if err != nil {
			return err
		}
		loader := fetch.ListLoader[marketplace.Complaint](e.client.Fetcher(), ep)
		defer loader.Cancel()
		if err := e.client.SetComplaintStatus(cmd.Context(), args[0], args[1], loader.Retry); err != nil {
			return err
		}
		msg := fmt.Sprintf("Complaint %s is now %s. Open complaints of %s: %d", args[0], colorStatus(args[1]),
			complaintsTenant, marketplace.OpenComplaints(loader.State().Items))
		printMessage(cmd.OutOrStdout(), msg,
			map[string]string{"complaintId": args[0], "status": args[1]})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(complaintsCmd)
	complaintsCmd.AddCommand(complaintsListCmd, complaintsSetStatusCmd)
	complaintsListOpts.bind(complaintsListCmd, false)
	complaintsSetStatusCmd.Flags().StringVar(&complaintsTenant, "tenant", "", "Tenant whose complaint list is refreshed")
	complaintsSetStatusCmd.MarkFlagRequired("tenant")
}
