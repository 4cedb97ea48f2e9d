package cli

import (
	"github.com/spf13/cobra"

	"github.com/draze/draze-cli/internal/session"
)

var kycCmd = &cobra.Command{
	Use:   "kyc",
	Short: "Verify a person's Aadhaar by OTP",
	Long: `Verify a person's Aadhaar by OTP. No login is needed.

Example:
  draze kyc generate-otp 123412341234
  draze kyc submit-otp --ref <reference-id> --otp 123456`,
}

var kycGenerateCmd = &cobra.Command{
	Use:   "generate-otp <aadhaar-number>",
	Short: "Send an OTP to the mobile linked to an Aadhaar number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(session.RoleTenant)
		if err != nil {
			return err
		}
		issued, err := e.client.GenerateAadhaarOTP(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		msg := "OTP sent. Reference id: " + issued.ReferenceID
		printMessage(cmd.OutOrStdout(), msg, issued)
		return nil
	},
}

var (
	kycReference string
	kycOTP       string
)

var kycSubmitCmd = &cobra.Command{
	Use:   "submit-otp",
	Short: "Complete an Aadhaar check with the OTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(session.RoleTenant)
		if err != nil {
			return err
		}
		res, err := e.client.SubmitAadhaarOTP(cmd.Context(), kycReference, kycOTP)
		if err != nil {
			return err
		}
		msg := "Aadhaar verified for " + res.Name
		if !res.Verified {
			msg = "Aadhaar could not be verified"
		}
		printMessage(cmd.OutOrStdout(), msg, res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(kycCmd)
	kycCmd.AddCommand(kycGenerateCmd, kycSubmitCmd)
	kycSubmitCmd.Flags().StringVar(&kycReference, "ref", "", "Reference id from generate-otp")
	kycSubmitCmd.Flags().StringVar(&kycOTP, "otp", "", "6 digit OTP")
}
