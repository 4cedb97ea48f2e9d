// Package apitest is an in-memory stand-in for the marketplace API used by tests. It
// answers with the response shapes the real endpoints use and records every call.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/draze/draze-cli/internal/common/httpclient"
	"github.com/draze/draze-cli/internal/common/logtrace"
)

const (
	Token      = "good-token"
	LandlordID = "L1"
	TenantID   = "T1"
	OTPRef     = "ref-1"
	OTP        = "123456"
)

// Call is one request the fake served.
type Call struct {
	Method         string
	Path           string
	Authorization  string
	IdempotencyKey string
	Body           string
}

// API holds the fake's data. Fields may be changed by tests before use.
type API struct {
	mu    sync.Mutex
	calls []Call

	Tenants        []map[string]any
	Properties     []map[string]any
	Subscriptions  []map[string]any
	Accommodations []map[string]any
	Complaints     []map[string]any
	Dues           []map[string]any
	Forecast       []map[string]any
	Verifications  []map[string]any
	SellerListings []map[string]any
	Assignments    map[string]bool
	FailPaths      map[string]int
	Delay          map[string]time.Duration
	Router         *chi.Mux
}

// New returns a fake with a small fixture data set.
func New() *API {
	a := &API{
		Tenants: []map[string]any{
			{"tenantId": "T1", "name": "Alpha Kumar", "mobile": "9876543210", "email": "alpha@example.com", "propertyId": "P1", "roomId": "R1", "bedId": "B1", "rentAmount": 6500},
			{"tenantId": "T2", "name": "Beta Singh", "mobile": "9123456780", "email": "beta@example.com", "propertyId": "P1", "roomId": "R2", "bedId": "B3", "rentAmount": 5000},
		},
		Properties: []map[string]any{
			{"_id": "P1", "name": "Lake View PG", "address": "12 MG Road", "city": "Indore", "images": []string{}, "totalRooms": 4, "totalBeds": 12, "price": 6000},
		},
		Subscriptions: []map[string]any{
			{"_id": "S1", "status": "active", "startDate": "2026-01-01T00:00:00Z", "endDate": "2026-12-31T00:00:00Z", "bedsUsed": 3, "planId": map[string]any{"_id": "plan-basic", "name": "Basic", "maxBeds": 4, "price": 999}},
			{"_id": "S2", "status": "expired", "startDate": "2025-01-01T00:00:00Z", "endDate": "2025-12-31T00:00:00Z", "bedsUsed": 0, "planId": map[string]any{"_id": "plan-pro", "name": "Pro", "maxBeds": 9, "price": 1999}},
		},
		Accommodations: []map[string]any{
			{"propertyId": "P1", "propertyName": "Lake View PG", "roomId": "R1", "bedId": "B1", "rentAmount": 6500, "moveInDate": "2026-02-01T00:00:00Z"},
		},
		Complaints: []map[string]any{
			{"complaintId": "C1", "subject": "Leaking tap", "status": "open", "priority": "high", "otp": "4455"},
			{"complaintId": "C2", "subject": "Wifi down", "status": "resolved", "priority": "low"},
		},
		Dues: []map[string]any{
			{"billId": "D1", "type": "rent", "amount": 6500, "dueDate": "2026-03-05T00:00:00Z", "status": "pending"},
			{"billId": "D2", "type": "electricity", "amount": 820.5, "dueDate": "2026-03-10T00:00:00Z", "status": "pending"},
			{"billId": "D3", "type": "rent", "amount": 6500, "dueDate": "2026-02-05T00:00:00Z", "status": "paid"},
		},
		Forecast: []map[string]any{
			{"month": "2026-03", "expected": 11500, "collected": 6500},
			{"month": "2026-04", "expected": 11500, "collected": 0},
		},
		Verifications: []map[string]any{
			{"_id": "V1", "landlordId": "L1", "regionId": "REG1", "tenantName": "Alpha Kumar", "status": "under_review", "documents": []map[string]any{{"type": "aadhaar", "url": "https://cdn.test/a.png"}}},
			{"_id": "V2", "landlordId": "L1", "regionId": "REG1", "tenantName": "Beta Singh", "status": "verified", "documents": []map[string]any{}},
		},
		SellerListings: []map[string]any{
			{"_id": "SP1", "name": "Shop 4", "city": "Bhopal", "price": 15000},
		},
		Assignments: map[string]bool{},
		FailPaths:   map[string]int{},
		Delay:       map[string]time.Duration{},
	}
	a.Router = a.routes()
	return a
}

// Client returns a requester that serves from the fake without a network.
func (a *API) Client(cfg httpclient.Configurator) *httpclient.HandlerClient {
	return httpclient.NewHandlerClient(cfg, a.Router)
}

// Calls returns the requests served so far.
func (a *API) Calls() []Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Call(nil), a.calls...)
}

// CallCount returns how many requests hit path.
func (a *API) CallCount(path string) int {
	n := 0
	for _, c := range a.Calls() {
		if c.Path == path {
			n++
		}
	}
	return n
}

func (a *API) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(a.record)
	r.Use(a.faults)

	r.Post("/api/kyc/aadhaar/generate-otp", a.generateOTP)
	r.Post("/api/kyc/aadhaar/submit-otp", a.submitOTP)

	r.Group(func(r chi.Router) {
		r.Use(a.authenticate)

		r.Get("/api/{role}/profile", a.profile)

		r.Get("/api/landlord/tenant", a.list("tenants", func() []map[string]any { return a.Tenants }))
		r.Post("/api/landlord/tenant", a.addTenant)
		r.Delete("/api/landlord/tenant/{id}", a.deleteTenant)
		r.Get("/api/landlord/tenant/{id}/complaints", a.list("complaints", func() []map[string]any { return a.Complaints }))
		r.Put("/api/landlord/complaints/{id}/status", a.complaintStatus)
		r.Get("/api/landlord/properties", a.list("properties", func() []map[string]any { return a.Properties }))
		r.Get("/api/landlord/subscriptions/my-subscriptions/{id}", a.subscriptions)

		r.Get("/api/tenant/accommodations", a.list("accommodations", func() []map[string]any { return a.Accommodations }))
		r.Get("/api/tenant/dues", a.list("dues", func() []map[string]any { return a.Dues }))

		r.Get("/api/subowner/collections/forecast", a.list("data", func() []map[string]any { return a.Forecast }))
		r.Get("/api/seller/properties", a.bare(func() []map[string]any { return a.SellerListings }))

		r.Get("/api/verification/links", a.list("data", func() []map[string]any { return a.Verifications }))
		r.Post("/api/verification/assign", a.assign)
		r.Post("/api/verification/{id}/approve", a.transition("verified"))
		r.Post("/api/verification/{id}/reject", a.transition("rejected"))
	})
	return r
}

// requestLogger echoes the caller's request id and logs the request with it.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = logtrace.NewRequestId()
		}
		ctx := logtrace.WithRequestId(r.Context(), requestID)
		ctx = log.With().Str("request_id", requestID).Logger().WithContext(ctx)
		w.Header().Set("X-Request-ID", requestID)
		log.Ctx(ctx).Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("fake api request")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *API) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		a.mu.Lock()
		a.calls = append(a.calls, Call{
			Method:         r.Method,
			Path:           r.URL.Path,
			Authorization:  r.Header.Get("Authorization"),
			IdempotencyKey: r.Header.Get("Idempotency-Key"),
			Body:           string(body),
		})
		a.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (a *API) faults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		status := a.FailPaths[r.URL.Path]
		delay := a.Delay[r.URL.Path]
		a.mu.Unlock()
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if status != 0 {
			writeJSON(w, status, map[string]any{"success": false, "message": "injected failure"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+Token {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) list(key string, items func() []map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		out := items()
		a.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"success": true, key: out})
	}
}

func (a *API) bare(items func() []map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		out := items()
		a.mu.Unlock()
		writeJSON(w, http.StatusOK, out)
	}
}

func (a *API) profile(w http.ResponseWriter, r *http.Request) {
	role := chi.URLParam(r, "role")
	id := LandlordID
	if role == "tenant" {
		id = TenantID
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": map[string]any{"_id": id, "name": "Test " + role, "role": role}})
}

func (a *API) subscriptions(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "id") != LandlordID {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Landlord not found"})
		return
	}
	a.list("data", func() []map[string]any { return a.Subscriptions })(w, r)
}

func (a *API) addTenant(w http.ResponseWriter, r *http.Request) {
	var in map[string]any
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "invalid body"})
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, t := range a.Tenants {
		if t["mobile"] == in["mobile"] {
			writeJSON(w, http.StatusConflict, map[string]any{"success": false, "message": "Tenant with this mobile already exists"})
			return
		}
	}
	in["tenantId"] = "T" + strconv.Itoa(len(a.Tenants)+1)
	a.Tenants = append(a.Tenants, in)
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "tenant": in})
}

func (a *API) deleteTenant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, t := range a.Tenants {
		if t["tenantId"] == id {
			a.Tenants = append(a.Tenants[:i], a.Tenants[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Tenant not found"})
}

func (a *API) complaintStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in struct {
		Status string `json:"status"`
	}
	json.NewDecoder(r.Body).Decode(&in)
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, c := range a.Complaints {
		if c["complaintId"] == id {
			c["status"] = in.Status
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "complaint": c})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Complaint not found"})
}

func (a *API) assign(w http.ResponseWriter, r *http.Request) {
	var in struct {
		LandlordID string `json:"landlordId"`
		RegionID   string `json:"regionId"`
	}
	json.NewDecoder(r.Body).Decode(&in)
	key := in.LandlordID + "/" + in.RegionID
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Assignments[key] {
		writeJSON(w, http.StatusConflict, map[string]any{"success": false, "message": "duplicate assignment"})
		return
	}
	a.Assignments[key] = true
	writeJSON(w, http.StatusCreated, map[string]any{"success": true})
}

func (a *API) transition(to string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var in struct {
			Remark string `json:"remark"`
		}
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&in)
		}
		if to == "rejected" && len(strings.TrimSpace(in.Remark)) < 3 {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Remark must be at least 3 characters"})
			return
		}
		a.mu.Lock()
		defer a.mu.Unlock()
		for _, v := range a.Verifications {
			if v["_id"] != id {
				continue
			}
			if v["status"] != "under_review" {
				writeJSON(w, http.StatusConflict, map[string]any{"success": false, "message": "Verification already processed"})
				return
			}
			v["status"] = to
			if in.Remark != "" {
				v["remark"] = in.Remark
			}
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Verification not found"})
	}
}

func (a *API) generateOTP(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Aadhaar string `json:"aadhaarNumber"`
	}
	json.NewDecoder(r.Body).Decode(&in)
	if len(in.Aadhaar) != 12 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Invalid Aadhaar number"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"referenceId": OTPRef, "message": "OTP sent"}})
}

func (a *API) submitOTP(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ReferenceID string `json:"referenceId"`
		OTP         string `json:"otp"`
	}
	json.NewDecoder(r.Body).Decode(&in)
	if in.ReferenceID != OTPRef || in.OTP != OTP {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Invalid OTP"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"name": "Alpha Kumar", "verified": true}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
