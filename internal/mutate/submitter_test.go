package mutate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draze/draze-cli/internal/common/httpclient"
	"github.com/draze/draze-cli/internal/session"
)

type testConfig struct{}

func (testConfig) GetServerURL() string             { return "http://api.test" }
func (testConfig) GetRequestTimeout() time.Duration { return 0 }

type otpRequest struct {
	Aadhaar string `json:"aadhaarNumber" validate:"required,aadhaar"`
}

type tenantForm struct {
	Name   string  `json:"name" validate:"required"`
	Mobile string  `json:"mobile" validate:"required,mobile"`
	Email  string  `json:"email" validate:"omitempty,email"`
	Rent   float64 `json:"rentAmount" validate:"gte=0"`
}

type rejectForm struct {
	Remark string `json:"remark" validate:"remark"`
}

type recorder struct {
	calls   atomic.Int32
	last    *http.Request
	body    string
	status  int
	rspBody string
}

func (r *recorder) client() httpclient.Requester {
	return httpclient.NewHandlerClient(testConfig{}, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.calls.Add(1)
		r.last = req
		b, _ := io.ReadAll(req.Body)
		r.body = string(b)
		status := r.status
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		body := r.rspBody
		if body == "" {
			body = `{"success":true}`
		}
		w.Write([]byte(body))
	}))
}

func token(tok string) TokenFunc {
	return func() (string, error) { return tok, nil }
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		fields []string
	}{
		{name: "aadhaar too short", in: otpRequest{Aadhaar: "12345"}, fields: []string{"aadhaarNumber"}},
		{name: "aadhaar letters", in: otpRequest{Aadhaar: "12345678901a"}, fields: []string{"aadhaarNumber"}},
		{name: "aadhaar ok", in: otpRequest{Aadhaar: "123456789012"}},
		{name: "mobile and name", in: &tenantForm{Mobile: "98765"}, fields: []string{"mobile", "name"}},
		{name: "bad email", in: tenantForm{Name: "A", Mobile: "9876543210", Email: "nope"}, fields: []string{"email"}},
		{name: "negative rent", in: tenantForm{Name: "A", Mobile: "9876543210", Rent: -1}, fields: []string{"rentAmount"}},
		{name: "remark short", in: rejectForm{Remark: "no"}, fields: []string{"remark"}},
		{name: "remark padded", in: rejectForm{Remark: "  no  "}, fields: []string{"remark"}},
		{name: "remark ok", in: rejectForm{Remark: "bad scan"}},
		{name: "not a struct", in: json.RawMessage(`{}`)},
		{name: "nil", in: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}
			var fe FieldErrors
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.fields, fe.Fields())
		})
	}
}

func TestFieldErrorsMessage(t *testing.T) {
	err := Validate(tenantForm{Mobile: "1"})
	assert.EqualError(t, err, "mobile: must be exactly 10 digits; name: is required")
}

func TestSubmitValidationBlocksRequest(t *testing.T) {
	rec := &recorder{}
	s := NewSubmitter(rec.client(), token("tok"))

	_, err := s.Submit(context.Background(), Mutation{
		Method: http.MethodPost,
		Path:   "/api/kyc/aadhaar/generate-otp",
		Body:   otpRequest{Aadhaar: "12345"},
		Public: true,
	})
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "must be exactly 12 digits", fe["aadhaarNumber"])
	assert.Zero(t, rec.calls.Load())
}

func TestSubmitMissingPathID(t *testing.T) {
	rec := &recorder{}
	s := NewSubmitter(rec.client(), token("tok"))

	_, err := s.Submit(context.Background(), Mutation{
		Method:  http.MethodPost,
		Path:    "/api/verification/:id/reject",
		PathIDs: map[string]string{"id": " "},
		Body:    rejectForm{Remark: "no"},
	})
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, []string{"id", "remark"}, fe.Fields())
	assert.Zero(t, rec.calls.Load())
}

func TestSubmitDotPathID(t *testing.T) {
	for _, id := range []string{".", "..", " .. "} {
		t.Run(id, func(t *testing.T) {
			rec := &recorder{}
			s := NewSubmitter(rec.client(), token("tok"))

			_, err := s.Submit(context.Background(), Mutation{
				Method:  http.MethodDelete,
				Path:    "/api/landlord/tenant/:id",
				PathIDs: map[string]string{"id": id},
			})
			var fe FieldErrors
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, "is not a valid id", fe["id"])
			assert.Zero(t, rec.calls.Load())
		})
	}
}

func TestExpandPath(t *testing.T) {
	p, err := ExpandPath("/api/landlord/tenant/:id/complaints", map[string]string{"id": "T1"})
	require.NoError(t, err)
	assert.Equal(t, "/api/landlord/tenant/T1/complaints", p)

	for _, id := range []string{"", "..", "a/b"} {
		_, err := ExpandPath("/api/landlord/tenant/:id/complaints", map[string]string{"id": id})
		var fe FieldErrors
		assert.ErrorAs(t, err, &fe, "id %q", id)
	}
}

func TestSubmitSuccessRefreshes(t *testing.T) {
	rec := &recorder{rspBody: `{"success":true,"data":{"id":"T9"}}`}
	s := NewSubmitter(rec.client(), token("tok"))
	refreshed := 0

	rsp, err := s.Submit(context.Background(), Mutation{
		Method:  http.MethodPut,
		Path:    "/api/landlord/complaints/:id/status",
		PathIDs: map[string]string{"id": "C 1"},
		Body:    map[string]string{"status": "resolved"},
		Refresh: func(ctx context.Context) error {
			refreshed++
			return nil
		},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"id":"T9"}}`, string(rsp))
	assert.Equal(t, 1, refreshed)

	assert.Equal(t, http.MethodPut, rec.last.Method)
	assert.Equal(t, "/api/landlord/complaints/C%201/status", rec.last.URL.EscapedPath())
	assert.Equal(t, "Bearer tok", rec.last.Header.Get("Authorization"))
	assert.Len(t, rec.last.Header.Get("Idempotency-Key"), 36)
	assert.JSONEq(t, `{"status":"resolved"}`, rec.body)
}

func TestSubmitServerMessage(t *testing.T) {
	rec := &recorder{status: http.StatusConflict, rspBody: `{"success":false,"message":"duplicate assignment"}`}
	s := NewSubmitter(rec.client(), token("tok"))

	_, err := s.Submit(context.Background(), Mutation{Method: http.MethodPost, Path: "/api/verification/assign", Body: json.RawMessage(`{}`)})
	assert.EqualError(t, err, "duplicate assignment")
	assert.ErrorIs(t, err, ErrRequestFailed)
	var httpErr *httpclient.HTTPError
	assert.ErrorAs(t, err, &httpErr)
}

func TestSubmitGenericMessage(t *testing.T) {
	rec := &recorder{status: http.StatusInternalServerError, rspBody: `{}`}
	s := NewSubmitter(rec.client(), token("tok"))
	_, err := s.Submit(context.Background(), Mutation{Method: http.MethodDelete, Path: "/api/landlord/tenant/1"})
	assert.EqualError(t, err, "request failed")

	rec = &recorder{rspBody: `{"success":false,"message":"Tenant already assigned"}`}
	s = NewSubmitter(rec.client(), token("tok"))
	_, err = s.Submit(context.Background(), Mutation{Method: http.MethodPost, Path: "/x"})
	assert.EqualError(t, err, "Tenant already assigned")
}

func TestSubmitRefreshFailure(t *testing.T) {
	rec := &recorder{}
	s := NewSubmitter(rec.client(), token("tok"))
	_, err := s.Submit(context.Background(), Mutation{
		Method:  http.MethodDelete,
		Path:    "/api/landlord/tenant/1",
		Refresh: func(ctx context.Context) error { return errors.New("offline") },
	})
	assert.ErrorIs(t, err, ErrRefreshFailed)
}

func TestSubmitAuth(t *testing.T) {
	rec := &recorder{}
	s := NewSubmitter(rec.client(), func() (string, error) { return "", session.ErrTokenExpired })
	_, err := s.Submit(context.Background(), Mutation{Method: http.MethodPost, Path: "/x"})
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)

	s = NewSubmitter(rec.client(), nil)
	_, err = s.Submit(context.Background(), Mutation{Method: http.MethodPost, Path: "/x"})
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)
	assert.Zero(t, rec.calls.Load())

	_, err = s.Submit(context.Background(), Mutation{Method: http.MethodPost, Path: "/x", Public: true})
	assert.NoError(t, err)
	assert.Empty(t, rec.last.Header.Get("Authorization"))
}

func TestSubmitMethod(t *testing.T) {
	s := NewSubmitter((&recorder{}).client(), token("tok"))
	_, err := s.Submit(context.Background(), Mutation{Method: http.MethodGet, Path: "/x"})
	assert.ErrorIs(t, err, ErrInvalidMethod)
}

func TestSubmitBusy(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	h := httpclient.NewHandlerClient(testConfig{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		w.Write([]byte(`{}`))
	}))
	s := NewSubmitter(h, token("tok"))

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background(), Mutation{Method: http.MethodPost, Path: "/x"})
		done <- err
	}()
	<-entered
	assert.True(t, s.Busy())
	_, err := s.Submit(context.Background(), Mutation{Method: http.MethodPost, Path: "/x"})
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	assert.NoError(t, <-done)
	assert.False(t, s.Busy())
}
