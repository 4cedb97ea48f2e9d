package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/draze/draze-cli/internal/derive"
	"github.com/draze/draze-cli/internal/fetch"
	"github.com/draze/draze-cli/internal/session"
	"github.com/draze/draze-cli/internal/verification"
)

var verificationColumns = []column[verification.Record]{
	{"id", func(r verification.Record) string { return r.ID }},
	{"tenant", func(r verification.Record) string { return r.TenantName }},
	{"landlord", func(r verification.Record) string { return r.LandlordID }},
	{"region", func(r verification.Record) string { return r.RegionID }},
	{"documents", func(r verification.Record) string { return fmt.Sprint(len(r.Documents)) }},
	{"status", func(r verification.Record) string { return colorStatus(string(r.Status)) }},
}

var verificationCmd = &cobra.Command{
	Use:     "verification",
	Aliases: []string{"verifications"},
	Short:   "Review police verifications",
}

var verificationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List verifications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(session.RoleRegionalManager)
		if err != nil {
			return err
		}
		records, err := e.client.Verifications().List(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), "verifications", records, records, verificationColumns)
	},
}

var verificationCurrent string

// currentStatus parses --current, the status the caller last saw.
func currentStatus() (verification.Status, error) {
	if verificationCurrent == "" {
		return "", nil
	}
	return verification.ParseStatus(verificationCurrent)
}

var verificationApproveCmd = &cobra.Command{
	Use:   "approve <verification-id>",
	Short: "Mark a verification as verified",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := currentStatus()
		if err != nil {
			return err
		}
		e, err := newEnv(session.RoleRegionalManager)
		if err != nil {
			return err
		}
		svc := e.client.Verifications()
		records := svc.Loader()
		defer records.Cancel()
		if err := svc.Approve(cmd.Context(), args[0], current); err != nil {
			return err
		}
		printMessage(cmd.OutOrStdout(), "Verification "+args[0]+" approved"+underReview(records),
			map[string]string{"id": args[0], "status": string(verification.StatusVerified)})
		return nil
	},
}

var verificationRemark string

// underReview summarizes the refreshed list after a decision.
func underReview(records *fetch.Loader[verification.Record]) string {
	st := records.State()
	if st.Err != "" {
		return ""
	}
	n := derive.CountWhere(st.Items, func(r verification.Record) bool {
		return r.Status == verification.StatusUnderReview
	})
	return fmt.Sprintf(". %d still under review.", n)
}

var verificationRejectCmd = &cobra.Command{
	Use:   "reject <verification-id>",
	Short: "Reject a verification with a remark",
	Long: `Reject a verification. A remark of at least three characters is required.

Example:
  draze verification reject V1 --remark "documents are unreadable"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := currentStatus()
		if err != nil {
			return err
		}
		e, err := newEnv(session.RoleRegionalManager)
		if err != nil {
			return err
		}
		svc := e.client.Verifications()
		records := svc.Loader()
		defer records.Cancel()
		if err := svc.Reject(cmd.Context(), args[0], verificationRemark, current); err != nil {
			return err
		}
		printMessage(cmd.OutOrStdout(), "Verification "+args[0]+" rejected"+underReview(records),
			map[string]string{"id": args[0], "status": string(verification.StatusRejected), "remark": verificationRemark})
		return nil
	},
}

var assignRequest verification.AssignRequest

var verificationAssignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Link a landlord to a police region",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(session.RoleRegionalManager)
		if err != nil {
			return err
		}
		if err := e.client.Verifications().Assign(cmd.Context(), assignRequest); err != nil {
			return err
		}
		printMessage(cmd.OutOrStdout(),
			fmt.Sprintf("Landlord %s assigned to region %s", assignRequest.LandlordID, assignRequest.RegionID),
			assignRequest)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verificationCmd)
	verificationCmd.AddCommand(verificationListCmd, verificationApproveCmd, verificationRejectCmd, verificationAssignCmd)

	for _, c := range []*cobra.Command{verificationApproveCmd, verificationRejectCmd} {
		c.Flags().StringVar(&verificationCurrent, "current", "", "Status last seen, checked before sending")
	}
	verificationRejectCmd.Flags().StringVar(&verificationRemark, "remark", "", "Reason for the rejection")
	verificationAssignCmd.Flags().StringVar(&assignRequest.LandlordID, "landlord", "", "Landlord id")
	verificationAssignCmd.Flags().StringVar(&assignRequest.RegionID, "region", "", "Police region id")
}
