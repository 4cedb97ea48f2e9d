package cli

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/draze/draze-cli/internal/fetch"
	"github.com/draze/draze-cli/internal/session"
)

var (
	loginToken    string
	loginNoVerify bool
)

// loginCmd stores a role's token
var loginCmd = &cobra.Command{
	Use:   "login <role>",
	Short: "Store the token of a role",
	Long: `Store the bearer token of a role. Every role keeps its own session, so a
landlord and a tenant can be logged in at the same time.

Roles: landlord, tenant, seller, subowner, regional_manager, organization, worker

Example:
  draze login landlord --token eyJhbGciOi...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := session.ParseRole(args[0])
		if err != nil {
			return err
		}
		if exp, ok := session.TokenExpiry(loginToken); ok && !time.Now().Before(exp) {
			return session.ErrTokenExpired
		}

		e, err := newEnv(role)
		if err != nil {
			return err
		}
		if err := e.store.Put(role, loginToken, time.Now()); err != nil {
			return err
		}

		out := map[string]string{"role": string(role)}
		if !loginNoVerify {
			id, err := e.resolver.UserID(cmd.Context(), role)
			if err != nil {
				if fetch.Unauthenticated(err) {
					if derr := e.store.Delete(role); derr != nil {
						log.Warn().Err(derr).Msg("unable to remove rejected token")
					}
				}
				return err
			}
			out["userId"] = id
		}

		msg := "Logged in as " + string(role)
		if id := out["userId"]; id != "" {
			msg += " (user " + id + ")"
		}
		printMessage(cmd.OutOrStdout(), msg, out)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout <role>",
	Short: "Forget the token of a role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := session.ParseRole(args[0])
		if err != nil {
			return err
		}
		store, err := openSessionStore()
		if err != nil {
			return err
		}
		if err := store.Delete(role); err != nil {
			return err
		}
		snaps, err := openSnapshots()
		if err != nil {
			return err
		}
		if err := snaps.Clear(string(role)); err != nil {
			log.Warn().Err(err).Str("role", string(role)).Msg("unable to clear snapshots")
		}
		printMessage(cmd.OutOrStdout(), "Logged out of "+string(role), map[string]string{"role": string(role)})
		return nil
	},
}

type whoamiEntry struct {
	Role      session.Role `json:"role"`
	Key       string       `json:"key"`
	UserID    string       `json:"userId,omitempty"`
	ExpiresAt string       `json:"expiresAt,omitempty"`
	Status    string       `json:"status"`
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami [role]",
	Short: "Show the logged in roles",
	Long: `Show the logged in roles. With a role, its user id is looked up from the profile
endpoint when not yet known.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSessionStore()
		if err != nil {
			return err
		}
		roles := store.Roles()
		if len(args) == 1 {
			role, err := session.ParseRole(args[0])
			if err != nil {
				return err
			}
			e, err := newEnv(role)
			if err != nil {
				return err
			}
			if _, err := e.resolver.UserID(cmd.Context(), role); err != nil {
				return err
			}
			store, roles = e.store, []session.Role{role}
		}

		now := time.Now()
		entries := make([]whoamiEntry, 0, len(roles))
		for _, r := range roles {
			en, _ := store.Get(r)
			w := whoamiEntry{Role: r, Key: en.Key, UserID: en.UserID, Status: "active"}
			if exp, ok := en.Expiry(); ok {
				w.ExpiresAt = exp.Format(time.RFC3339)
				if !now.Before(exp) {
					w.Status = "expired"
				}
			}
			entries = append(entries, w)
		}
		if len(entries) == 0 && outputFormat == "table" {
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in. "+loginHint)
			return nil
		}
		return render(cmd.OutOrStdout(), "", entries, entries, []column[whoamiEntry]{
			{"role", func(w whoamiEntry) string { return string(w.Role) }},
			{"user", func(w whoamiEntry) string { return w.UserID }},
			{"expires", func(w whoamiEntry) string { return w.ExpiresAt }},
			{"status", func(w whoamiEntry) string { return colorStatus(w.Status) }},
		})
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
	loginCmd.Flags().StringVar(&loginToken, "token", "", "Bearer token issued by the marketplace (required)")
	loginCmd.MarkFlagRequired("token")
	loginCmd.Flags().BoolVar(&loginNoVerify, "no-verify", false, "Store the token without calling the profile endpoint")
}
