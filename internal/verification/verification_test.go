package verification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draze/draze-cli/internal/apitest"
	"github.com/draze/draze-cli/internal/fetch"
	"github.com/draze/draze-cli/internal/mutate"
)

type testConfig struct{}

func (testConfig) GetServerURL() string             { return "http://api.test" }
func (testConfig) GetRequestTimeout() time.Duration { return 0 }

func newService(api *apitest.API) *Service {
	rq := api.Client(testConfig{})
	tok := func() (string, error) { return apitest.Token, nil }
	return NewService(fetch.NewFetcher(rq, tok), mutate.NewSubmitter(rq, tok))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusUnderReview, StatusVerified, true},
		{StatusUnderReview, StatusRejected, true},
		{StatusVerified, StatusRejected, false},
		{StatusRejected, StatusVerified, false},
		{StatusVerified, StatusUnderReview, false},
		{StatusUnderReview, StatusUnderReview, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("Pending")
	require.NoError(t, err)
	assert.Equal(t, StatusUnderReview, s)

	s, err = ParseStatus(" verified ")
	require.NoError(t, err)
	assert.True(t, s.Final())

	_, err = ParseStatus("archived")
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	svc := newService(apitest.New())
	records, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, StatusUnderReview, records[0].Status)
	assert.Len(t, records[0].Documents, 1)
}

func TestReject(t *testing.T) {
	t.Run("short remark is refused locally", func(t *testing.T) {
		api := apitest.New()
		svc := newService(api)

		for _, remark := range []string{"", "no", "  ok  "} {
			err := svc.Reject(context.Background(), "V1", remark, StatusUnderReview)
			var fe mutate.FieldErrors
			require.ErrorAs(t, err, &fe, remark)
			assert.Contains(t, fe, "remark")
		}
		assert.Empty(t, api.Calls())
	})

	t.Run("rejected with remark", func(t *testing.T) {
		api := apitest.New()
		svc := newService(api)
		loader := svc.Loader()

		require.NoError(t, svc.Reject(context.Background(), "V1", "blurred documents", StatusUnderReview))
		st := loader.State()
		require.Len(t, st.Items, 2)
		assert.Equal(t, StatusRejected, st.Items[0].Status)
		assert.Equal(t, "blurred documents", st.Items[0].Remark)
	})
}

func TestApprove(t *testing.T) {
	t.Run("final status is refused locally", func(t *testing.T) {
		api := apitest.New()
		svc := newService(api)

		err := svc.Approve(context.Background(), "V2", StatusVerified)
		assert.ErrorIs(t, err, ErrIllegalTransition)
		assert.EqualError(t, err, "verification is already verified")

		err = svc.Reject(context.Background(), "V2", "late remark", StatusRejected)
		assert.EqualError(t, err, "verification is already rejected")
		assert.Empty(t, api.Calls())
	})

	t.Run("unknown status defers to the server", func(t *testing.T) {
		api := apitest.New()
		svc := newService(api)

		err := svc.Approve(context.Background(), "V2", "")
		require.Error(t, err)
		assert.Equal(t, "Verification already processed", err.Error())
	})

	t.Run("approved", func(t *testing.T) {
		api := apitest.New()
		svc := newService(api)

		require.NoError(t, svc.Approve(context.Background(), "V1", StatusUnderReview))
		assert.Equal(t, "verified", api.Verifications[0]["status"])
	})
}

func TestAssign(t *testing.T) {
	api := apitest.New()
	svc := newService(api)
	req := AssignRequest{LandlordID: "L1", RegionID: "REG9"}

	require.NoError(t, svc.Assign(context.Background(), req))

	err := svc.Assign(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, "duplicate assignment", err.Error())

	err = svc.Assign(context.Background(), AssignRequest{LandlordID: "L1"})
	var fe mutate.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "regionId")
}
