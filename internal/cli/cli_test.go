package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draze/draze-cli/internal/apitest"
	"github.com/draze/draze-cli/internal/common/httpclient"
	"github.com/draze/draze-cli/internal/derive"
	"github.com/draze/draze-cli/internal/fetch"
	"github.com/draze/draze-cli/internal/mutate"
	"github.com/draze/draze-cli/internal/session"
	"github.com/draze/draze-cli/internal/snapshot"
	"github.com/draze/draze-cli/internal/verification"
)

type harness struct {
	api   *apitest.API
	store *session.Store
	dir   string
	cfg   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		api:   apitest.New(),
		store: session.NewMemoryStore(),
		dir:   t.TempDir(),
	}
	h.cfg = filepath.Join(h.dir, "config.yaml")
	require.NoError(t, os.WriteFile(h.cfg, []byte("server_url: api.test\npage_size: 10\n"), 0o600))

	snaps := snapshot.New(filepath.Join(h.dir, "snapshots"))
	newRequester = func(cfg httpclient.Configurator) httpclient.Requester { return h.api.Client(cfg) }
	openSessionStore = func() (*session.Store, error) { return h.store, nil }
	openSnapshots = func() (*snapshot.Store, error) { return snaps, nil }
	retryDelay = time.Millisecond
	return h
}

func (h *harness) login(t *testing.T, roles ...session.Role) {
	t.Helper()
	for _, r := range roles {
		require.NoError(t, h.store.Put(r, apitest.Token, time.Now()))
	}
}

// run executes the command line with fresh flag values and returns its output.
func (h *harness) run(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	jsonOutput, outputFormat, configFile, roleFlag = false, "table", "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(append([]string{"--config", h.cfg}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
		} else {
			f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestLoginRequired(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "", "tenants", "list")
	require.Error(t, err)
	assert.True(t, fetch.Unauthenticated(err))
	assert.Empty(t, h.api.Calls())

	var msg bytes.Buffer
	printError(&msg, err)
	assert.Contains(t, msg.String(), loginHint)
	assert.Equal(t, true, errorJSON(err)["login"])
}

func TestLogin(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "", "login", "landlord", "--token", apitest.Token)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as landlord (user L1)")

	_, err = h.run(t, "", "login", "tenant", "--token", "stale")
	require.Error(t, err)
	_, ok := h.store.Get(session.RoleTenant)
	assert.False(t, ok)

	out, err = h.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "landlord")
	assert.Contains(t, out, "L1")

	out, err = h.run(t, "", "logout", "landlord")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out of landlord")
	assert.Empty(t, h.store.Roles())
}

func TestLoginForbiddenKeepsToken(t *testing.T) {
	h := newHarness(t)
	h.api.FailPaths["/api/landlord/profile"] = http.StatusForbidden

	_, err := h.run(t, "", "login", "landlord", "--token", apitest.Token)
	require.Error(t, err)
	assert.False(t, fetch.Unauthenticated(err))
	_, ok := h.store.Get(session.RoleLandlord)
	assert.True(t, ok)

	var msg bytes.Buffer
	printError(&msg, err)
	assert.NotContains(t, msg.String(), loginHint)
}

func TestTenantsList(t *testing.T) {
	h := newHarness(t)
	h.login(t, session.RoleLandlord)

	out, err := h.run(t, "", "tenants", "list", "--search", "beta")
	require.NoError(t, err)
	assert.Contains(t, out, "Beta Singh")
	assert.NotContains(t, out, "Alpha Kumar")

	out, err = h.run(t, "", "--json", "tenants", "list", "--page-size", "1", "--page", "2")
	require.NoError(t, err)
	var rsp struct {
		Result int `json:"result"`
		Value  struct {
			Items []struct {
				Name string `json:"name"`
			} `json:"items"`
			Total      int `json:"total"`
			TotalPages int `json:"totalPages"`
		} `json:"value"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rsp))
	assert.Equal(t, 1, rsp.Result)
	assert.Equal(t, 2, rsp.Value.Total)
	assert.Equal(t, 2, rsp.Value.TotalPages)
	require.Len(t, rsp.Value.Items, 1)
	assert.Equal(t, "Beta Singh", rsp.Value.Items[0].Name)

	_, err = h.run(t, "", "tenants", "list", "--page", "0")
	assert.Error(t, err)
}

func TestCachedList(t *testing.T) {
	h := newHarness(t)
	h.login(t, session.RoleLandlord)

	_, err := h.run(t, "", "properties", "list", "--cached")
	assert.ErrorContains(t, err, "without --cached")

	_, err = h.run(t, "", "properties", "list")
	require.NoError(t, err)

	h.api.FailPaths["/api/landlord/properties"] = http.StatusInternalServerError
	calls := len(h.api.Calls())
	out, err := h.run(t, "", "properties", "list", "--cached")
	require.NoError(t, err)
	assert.Contains(t, out, "Lake View PG")
	assert.Len(t, h.api.Calls(), calls)
}

func TestCachedListAfterLogout(t *testing.T) {
	h := newHarness(t)
	h.login(t, session.RoleLandlord, session.RoleTenant)

	_, err := h.run(t, "", "tenants", "list")
	require.NoError(t, err)
	_, err = h.run(t, "", "dues", "list")
	require.NoError(t, err)

	_, err = h.run(t, "", "logout", "landlord")
	require.NoError(t, err)

	out, err := h.run(t, "", "tenants", "list", "--cached")
	require.Error(t, err)
	assert.True(t, fetch.Unauthenticated(err))
	assert.NotContains(t, out, "Alpha Kumar")

	h.login(t, session.RoleLandlord)
	_, err = h.run(t, "", "tenants", "list", "--cached")
	assert.ErrorContains(t, err, "without --cached")

	out, err = h.run(t, "", "dues", "list", "--cached")
	require.NoError(t, err)
	assert.Contains(t, out, "Outstanding: 7320.50")
}

func TestCachedListPerUser(t *testing.T) {
	h := newHarness(t)
	h.login(t, session.RoleLandlord)
	require.NoError(t, h.store.SetUserID(session.RoleLandlord, "L1"))

	_, err := h.run(t, "", "tenants", "list")
	require.NoError(t, err)

	require.NoError(t, h.store.SetUserID(session.RoleLandlord, "L9"))
	_, err = h.run(t, "", "tenants", "list", "--cached")
	assert.ErrorContains(t, err, "without --cached")
}

func TestListRetry(t *testing.T) {
	h := newHarness(t)
	h.login(t, session.RoleLandlord)

	h.api.FailPaths["/api/landlord/properties"] = http.StatusServiceUnavailable
	_, err := h.run(t, "", "properties", "list", "--retry", "2")
	require.Error(t, err)
	assert.Equal(t, 3, h.api.CallCount("/api/landlord/properties"))

	h.api.FailPaths["/api/landlord/tenant"] = http.StatusBadRequest
	_, err = h.run(t, "", "tenants", "list", "--retry", "2")
	require.Error(t, err)
	assert.Equal(t, 1, h.api.CallCount("/api/landlord/tenant"))
}

func TestTenantsAdd(t *testing.T) {
	h := newHarness(t)
	h.login(t, session.RoleLandlord)

	_, err := h.run(t, "", "tenants", "add", "--name", "Gamma", "--mobile", "12",
		"--property", "P1", "--room", "R3", "--bed", "B5")
	var fe mutate.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Empty(t, h.api.Calls())

	var msg bytes.Buffer
	printError(&msg, err)
	assert.Contains(t, msg.String(), "  mobile: ")
	assert.Contains(t, msg.String(), "  rentAmount: ")

	out, err := h.run(t, "", "tenants", "add", "--name", "Gamma Rao", "--mobile", "9000000001",
		"--property", "P1", "--room", "R3", "--set", "bedId=B5", "--set", "rentAmount:=4500")
	require.NoError(t, err)
	assert.Contains(t, out, "Tenant Gamma Rao added with id T3. The landlord now has 3 tenants.")

	_, err = h.run(t, "", "tenants", "add", "--set", "nickname=G")
	assert.ErrorContains(t, err, "invalid payload")
}

func TestTenantsAddFromFile(t *testing.T) {
	h := newHarness(t)
	h.login(t, session.RoleLandlord)
	file := filepath.Join(h.dir, "tenant.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`name: Delta Jain
mobile: 9000000002
propertyId: P1
roomId: R4
bedId: B7
rentAmount: 3900
`), 0o600))

	out, err := h.run(t, "", "tenants", "add", "-f", file, "--rent", "4100")
	require.NoError(t, err)
	assert.Contains(t, out, "Tenant Delta Jain added")
	assert.Equal(t, 4100.0, h.api.Tenants[2]["rentAmount"])
	assert.Equal(t, "9000000002", h.api.Tenants[2]["mobile"])
}

func TestTenantsDelete(t *testing.T) {
	h := newHarness(t)
	h.login(t, session.RoleLandlord)

	_, err := h.run(t, "", "tenants", "delete", ".")
	var fe mutate.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Empty(t, h.api.Calls())

	out, err := h.run(t, "", "tenants", "delete", "T2", "T1", "T2")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed T1, T2. The landlord now has 0 tenants.")
	assert.Equal(t, 1, h.api.CallCount("/api/landlord/tenant/T1"))
	assert.Equal(t, 1, h.api.CallCount("/api/landlord/tenant/T2"))
	assert.Equal(t, 1, h.api.CallCount("/api/landlord/tenant"))
}

func TestTenantsDeletePartial(t *testing.T) {
	h := newHarness(t)
	h.login(t, session.RoleLandlord)

	_, err := h.run(t, "", "tenants", "delete", "T1", "T9")
	require.Error(t, err)
	assert.Equal(t, "removed T1, T9 failed: Tenant not found", err.Error())
	assert.Len(t, h.api.Tenants, 1)
	assert.Equal(t, 1, h.api.CallCount("/api/landlord/tenant"))

	_, err = h.run(t, "", "tenants", "delete", "T9")
	assert.EqualError(t, err, "Tenant not found")
}

func TestTenantsSearch(t *testing.T) {
	h := newHarness(t)
	h.login(t, session.RoleLandlord)

	out, err := h.run(t, "al\nbeta\n", "tenants", "search")
	require.NoError(t, err)
	assert.Contains(t, out, "Beta Singh")
	assert.Equal(t, 1, h.api.CallCount("/api/landlord/tenant"))
}

func TestSearchLoopStopsOnError(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	cmd := &cobra.Command{}
	cmd.SetIn(pr)
	cmd.SetContext(context.Background())

	boom := errors.New("render failed")
	done := make(chan error, 1)
	go func() {
		done <- searchLoop(cmd, time.Millisecond, func(q string) error { return boom })
	}()
	_, err := pw.Write([]byte("al\n"))
	require.NoError(t, err)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, boom)
	case <-time.After(2 * time.Second):
		t.Fatal("search loop did not return")
	}

	// The reader still drains input after the loop is gone.
	_, err = pw.Write([]byte("beta\n"))
	require.NoError(t, err)
}

func TestSubscriptionsAndDashboard(t *testing.T) {
	h := newHarness(t)
	h.login(t, session.RoleLandlord)

	out, err := h.run(t, "", "subscriptions", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Active beds: 4 (3 used)")

	out, err = h.run(t, "", "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Properties")
	assert.Contains(t, out, "Open complaints")
	assert.Equal(t, 1, h.api.CallCount("/api/landlord/profile"))

	h.api.FailPaths["/api/landlord/properties"] = http.StatusInternalServerError
	out, err = h.run(t, "", "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "unavailable")
	assert.Contains(t, out, "Tenants")
}

func TestTenantViews(t *testing.T) {
	h := newHarness(t)
	h.login(t, session.RoleTenant, session.RoleSubOwner)

	out, err := h.run(t, "", "dues", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Outstanding: 7320.50")

	out, err = h.run(t, "", "accommodations", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Lake View PG")

	out, err = h.run(t, "", "forecast")
	require.NoError(t, err)
	assert.Contains(t, out, "Total expected: 23000.00, collected: 6500.00")
}

func TestComplaints(t *testing.T) {
	h := newHarness(t)
	h.login(t, session.RoleLandlord)

	out, err := h.run(t, "", "complaints", "list", "T1")
	require.NoError(t, err)
	assert.Contains(t, out, "Leaking tap")
	assert.Contains(t, out, "Open: 1")

	_, err = h.run(t, "", "complaints", "set-status", "C1", "resolved")
	assert.ErrorContains(t, err, "tenant")

	out, err = h.run(t, "", "complaints", "set-status", "C1", "resolved", "--tenant", "T1")
	require.NoError(t, err)
	assert.Equal(t, "resolved", h.api.Complaints[0]["status"])
	assert.Contains(t, out, "Open complaints of T1: 0")
	assert.Equal(t, 2, h.api.CallCount("/api/landlord/tenant/T1/complaints"))

	_, err = h.run(t, "", "complaints", "list", "..")
	var fe mutate.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 2, h.api.CallCount("/api/landlord/tenant/T1/complaints"))
}

func TestVerificationCommands(t *testing.T) {
	h := newHarness(t)
	h.login(t, session.RoleRegionalManager)

	_, err := h.run(t, "", "verification", "reject", "V1", "--remark", "no")
	var fe mutate.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Empty(t, h.api.Calls())

	_, err = h.run(t, "", "verification", "approve", "V2", "--current", "verified")
	assert.ErrorIs(t, err, verification.ErrIllegalTransition)

	out, err := h.run(t, "", "verification", "approve", "V1")
	require.NoError(t, err)
	assert.Contains(t, out, "Verification V1 approved. 0 still under review.")
	assert.Equal(t, 1, h.api.CallCount("/api/verification/links"))

	_, err = h.run(t, "", "verification", "assign", "--landlord", "L1", "--region", "REG2")
	require.NoError(t, err)
	_, err = h.run(t, "", "verification", "assign", "--landlord", "L1", "--region", "REG2")
	assert.EqualError(t, err, "duplicate assignment")

	out, err = h.run(t, "", "-o", "yaml", "verification", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "status: verified")
}

func TestKYC(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "", "kyc", "generate-otp", "123412341234")
	require.NoError(t, err)
	assert.Contains(t, out, "Reference id: "+apitest.OTPRef)

	out, err = h.run(t, "", "kyc", "submit-otp", "--ref", apitest.OTPRef, "--otp", apitest.OTP)
	require.NoError(t, err)
	assert.Contains(t, out, "Aadhaar verified for Alpha Kumar")
}

func TestPageFooter(t *testing.T) {
	list := []int{1, 2, 3, 4, 5}
	tests := []struct {
		page int
		want string
	}{
		{1, "Page 1 of 3 (5 total), next: --page 2\n"},
		{2, "Page 2 of 3 (5 total), previous: --page 1, next: --page 3\n"},
		{3, "Page 3 of 3 (5 total), previous: --page 2\n"},
		{7, "Page 7 of 3 (5 total), previous: --page 3\n"},
	}
	for _, tt := range tests {
		p, err := derive.Paginate(list, tt.page, 2)
		require.NoError(t, err)
		assert.Equal(t, tt.want, pageFooter(p))
	}
}

func TestImageIndex(t *testing.T) {
	assert.Equal(t, 0, imageIndex(0, 3))
	assert.Equal(t, 2, imageIndex(2, 3))
	assert.Equal(t, 0, imageIndex(3, 3))
	assert.Equal(t, 2, imageIndex(-1, 3))
	assert.Equal(t, 1, imageIndex(-5, 3))
}
