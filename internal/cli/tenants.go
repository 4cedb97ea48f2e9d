package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/draze/draze-cli/internal/derive"
	"github.com/draze/draze-cli/internal/fetch"
	"github.com/draze/draze-cli/internal/marketplace"
	"github.com/draze/draze-cli/internal/mutate"
	"github.com/draze/draze-cli/internal/session"
)

var tenantColumns = []column[marketplace.Tenant]{
	{"id", marketplace.Tenant.Key},
	{"name", func(t marketplace.Tenant) string { return t.Name }},
	{"mobile", func(t marketplace.Tenant) string { return t.Mobile }},
	{"property", func(t marketplace.Tenant) string { return string(t.PropertyID) }},
	{"room", func(t marketplace.Tenant) string { return string(t.RoomID) }},
	{"bed", func(t marketplace.Tenant) string { return string(t.BedID) }},
	{"rent", func(t marketplace.Tenant) string { return money(t.RentAmount) }},
}

var tenantsCmd = &cobra.Command{
	Use:   "tenants",
	Short: "Manage a landlord's tenants",
}

var tenantsListOpts listOptions

var tenantsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tenants",
	Long: `List the landlord's tenants.

Examples:
  draze tenants list
  draze tenants list --search kumar --page 2 --page-size 5
  draze tenants list --cached`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(session.RoleLandlord)
		if err != nil {
			return err
		}
		_, err = runList(cmd, e, marketplace.TenantsEndpoint, &tenantsListOpts,
			marketplace.SearchTenants, "tenants", tenantColumns)
		return err
	},
}

var (
	newTenant   marketplace.NewTenant
	tenantFile  string
	tenantSets  []string
	tenantFlags = map[string]string{
		"name":     "name",
		"mobile":   "mobile",
		"email":    "email",
		"aadhaar":  "aadhaar",
		"property": "propertyId",
		"room":     "roomId",
		"bed":      "bedId",
	}
)

var tenantsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a tenant to a bed",
	Long: `Add a tenant. Fields come from a YAML or JSON file, the flags and --set, in that
order, later ones winning.

Examples:
  draze tenants add --name "Gamma Rao" --mobile 9000000001 --property P1 --room R3 --bed B5 --rent 4500
  draze tenants add -f tenant.yaml --set bedId=B6 --set rentAmount:=5200`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := tenantPayload(cmd)
		if err != nil {
			return err
		}
		var form marketplace.NewTenant
		if err := decodePayload(payload, &form); err != nil {
			return err
		}

		e, err := newEnv(session.RoleLandlord)
		if err != nil {
			return err
		}
		loader := fetch.ListLoader[marketplace.Tenant](e.client.Fetcher(), marketplace.TenantsEndpoint)
		defer loader.Cancel()
		created, err := e.client.AddTenant(cmd.Context(), form, loader.Retry)
		if err != nil && created.Name == "" {
			return err
		}
		msg := fmt.Sprintf("Tenant %s added", created.Name)
		if id := created.Key(); id != "" {
			msg += " with id " + id
		}
		if err == nil {
			msg += fmt.Sprintf(". The landlord now has %d tenants.", len(loader.State().Items))
		}
		printMessage(cmd.OutOrStdout(), msg, created)
		return err
	},
}

// tenantPayload merges the payload file, the flags that were set and --set values.
func tenantPayload(cmd *cobra.Command) ([]byte, error) {
	payload := []byte("{}")
	if tenantFile != "" {
		var err error
		if payload, err = LoadPayloadFile(tenantFile); err != nil {
			return nil, err
		}
	}

	var err error
	for flag, field := range tenantFlags {
		if !cmd.Flags().Changed(flag) {
			continue
		}
		v, _ := cmd.Flags().GetString(flag)
		if payload, err = sjson.SetBytes(payload, field, v); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("rent") {
		if payload, err = sjson.SetBytes(payload, "rentAmount", newTenant.RentAmount); err != nil {
			return nil, err
		}
	}
	return ApplySets(payload, tenantSets)
}

var tenantsDeleteCmd = &cobra.Command{
	Use:   "delete <tenant-id>...",
	Short: "Remove one or more tenants",
	Long: `Remove tenants. Each id is deleted once, in ascending order, and the tenant list is
fetched again afterwards. Deleting stops at the first failure.

Example:
  draze tenants delete T1 T4`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(session.RoleLandlord)
		if err != nil {
			return err
		}
		sel := derive.NewSelection[string]()
		for _, id := range args {
			if !sel.Has(id) {
				sel.Toggle(id)
			}
		}

		loader := fetch.ListLoader[marketplace.Tenant](e.client.Fetcher(), marketplace.TenantsEndpoint)
		defer loader.Cancel()
		ids := sel.Keys()
		var removed []string
		for i, id := range ids {
			var refresh func(context.Context) error
			if i == len(ids)-1 {
				refresh = loader.Retry
			}
			err := e.client.DeleteTenant(cmd.Context(), id, refresh)
			if errors.Is(err, mutate.ErrRefreshFailed) {
				return errors.Wrapf(err, "removed %s", strings.Join(append(removed, id), ", "))
			}
			if err != nil {
				if len(removed) == 0 {
					return err
				}
				if lerr := loader.Load(cmd.Context()); lerr != nil {
					log.Warn().Err(lerr).Msg("unable to refresh tenants")
				}
				return errors.Wrapf(err, "removed %s, %s failed", strings.Join(removed, ", "), id)
			}
			removed = append(removed, id)
		}

		msg := fmt.Sprintf("Removed %s. The landlord now has %d tenants.",
			strings.Join(removed, ", "), len(loader.State().Items))
		printMessage(cmd.OutOrStdout(), msg, map[string][]string{"removed": removed})
		return nil
	},
}

var tenantsSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search tenants interactively",
	Long: `Fetch the tenant list once, then read search text from standard input, one query
per line. Matches are printed once typing pauses.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(session.RoleLandlord)
		if err != nil {
			return err
		}
		tenants, err := e.client.Tenants(cmd.Context())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		return searchLoop(cmd, e.cfg.GetDebounce(), func(q string) error {
			found := marketplace.SearchTenants(tenants, q)
			return render(w, strconv.Itoa(len(found))+" matches", found, found, tenantColumns)
		})
	},
}

func init() {
	rootCmd.AddCommand(tenantsCmd)
	tenantsCmd.AddCommand(tenantsListCmd, tenantsAddCmd, tenantsDeleteCmd, tenantsSearchCmd)

	tenantsListOpts.bind(tenantsListCmd, true)

	f := tenantsAddCmd.Flags()
	f.StringVarP(&tenantFile, "file", "f", "", "YAML or JSON file with the tenant")
	f.StringArrayVar(&tenantSets, "set", nil, "Set a field, key=value or key:=json")
	f.StringVar(&newTenant.Name, "name", "", "Full name")
	f.StringVar(&newTenant.Mobile, "mobile", "", "10 digit mobile number")
	f.StringVar(&newTenant.Email, "email", "", "Email address")
	f.StringVar(&newTenant.Aadhaar, "aadhaar", "", "12 digit Aadhaar number")
	f.StringVar(&newTenant.PropertyID, "property", "", "Property id")
	f.StringVar(&newTenant.RoomID, "room", "", "Room id")
	f.StringVar(&newTenant.BedID, "bed", "", "Bed id")
	f.Float64Var(&newTenant.RentAmount, "rent", 0, "Monthly rent")

}
