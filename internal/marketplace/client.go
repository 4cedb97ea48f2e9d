package marketplace

import (
	"context"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/draze/draze-cli/internal/common/httpclient"
	"github.com/draze/draze-cli/internal/fetch"
	"github.com/draze/draze-cli/internal/mutate"
	"github.com/draze/draze-cli/internal/session"
	"github.com/draze/draze-cli/internal/verification"
)

// Endpoints of the API, each with its one declared response shape.
var (
	TenantsEndpoint        = fetch.Endpoint{Path: "/api/landlord/tenant", Shape: fetch.ShapeKey("tenants")}
	PropertiesEndpoint     = fetch.Endpoint{Path: "/api/landlord/properties", Shape: fetch.ShapeKey("properties")}
	AccommodationsEndpoint = fetch.Endpoint{Path: "/api/tenant/accommodations", Shape: fetch.ShapeKey("accommodations")}
	DuesEndpoint           = fetch.Endpoint{Path: "/api/tenant/dues", Shape: fetch.ShapeKey("dues")}
	ForecastEndpoint       = fetch.Endpoint{Path: "/api/subowner/collections/forecast", Shape: fetch.ShapeData}
	// The seller listing has answered with items, data and a bare array over time.
	SellerPropertiesEndpoint = fetch.Endpoint{Path: "/api/seller/properties", Shape: fetch.Tolerant}
)

// SubscriptionsEndpoint is the landlord's subscription list. The id must be a single
// path segment.
func SubscriptionsEndpoint(landlordID string) (fetch.Endpoint, error) {
	p, err := mutate.ExpandPath("/api/landlord/subscriptions/my-subscriptions/:landlordId",
		map[string]string{"landlordId": landlordID})
	if err != nil {
		return fetch.Endpoint{}, err
	}
	return fetch.Endpoint{Path: p, Shape: fetch.ShapeData}, nil
}

func ComplaintsEndpoint(tenantID string) (fetch.Endpoint, error) {
	p, err := mutate.ExpandPath("/api/landlord/tenant/:tenantId/complaints",
		map[string]string{"tenantId": tenantID})
	if err != nil {
		return fetch.Endpoint{}, err
	}
	return fetch.Endpoint{Path: p, Shape: fetch.ShapeKey("complaints")}, nil
}

func ProfileEndpoint(role session.Role) fetch.Endpoint {
	return fetch.Endpoint{Path: "/api/" + role.APIPrefix() + "/profile"}
}

// Client is the typed surface of the marketplace API for one role.
type Client struct {
	Role      session.Role
	fetcher   *fetch.Fetcher
	submitter *mutate.Submitter
}

func NewClient(role session.Role, f *fetch.Fetcher, s *mutate.Submitter) *Client {
	return &Client{
		Role:      role,
		fetcher:   f,
		submitter: s,
	}
}

func (c *Client) Fetcher() *fetch.Fetcher {
	return c.fetcher
}

// Verifications returns the verification service bound to this client.
func (c *Client) Verifications() *verification.Service {
	return verification.NewService(c.fetcher, c.submitter)
}

func (c *Client) Tenants(ctx context.Context) ([]Tenant, error) {
	return fetch.List[Tenant](ctx, c.fetcher, TenantsEndpoint)
}

func (c *Client) Properties(ctx context.Context) ([]Property, error) {
	return fetch.List[Property](ctx, c.fetcher, PropertiesEndpoint)
}

func (c *Client) SellerProperties(ctx context.Context) ([]Property, error) {
	return fetch.List[Property](ctx, c.fetcher, SellerPropertiesEndpoint)
}

// Subscriptions lists the landlord's subscriptions with their plans populated.
func (c *Client) Subscriptions(ctx context.Context, landlordID string) ([]Subscription, error) {
	ep, err := SubscriptionsEndpoint(landlordID)
	if err != nil {
		return nil, err
	}
	return fetch.List[Subscription](ctx, c.fetcher, ep)
}

func (c *Client) Accommodations(ctx context.Context) ([]Accommodation, error) {
	return fetch.List[Accommodation](ctx, c.fetcher, AccommodationsEndpoint)
}

func (c *Client) Complaints(ctx context.Context, tenantID string) ([]Complaint, error) {
	ep, err := ComplaintsEndpoint(tenantID)
	if err != nil {
		return nil, err
	}
	return fetch.List[Complaint](ctx, c.fetcher, ep)
}

func (c *Client) Dues(ctx context.Context) ([]Due, error) {
	return fetch.List[Due](ctx, c.fetcher, DuesEndpoint)
}

func (c *Client) Forecast(ctx context.Context) ([]ForecastEntry, error) {
	return fetch.List[ForecastEntry](ctx, c.fetcher, ForecastEndpoint)
}

// Profile returns the logged in user.
func (c *Client) Profile(ctx context.Context) (Profile, error) {
	body, err := c.fetcher.Get(ctx, ProfileEndpoint(c.Role))
	if err != nil {
		return Profile{}, err
	}
	return decodeProfile(body)
}

// ProfileFunc adapts the profile endpoint for session.Resolver. The token of the role
// being resolved is used rather than the active one.
func ProfileFunc(requester httpclient.Requester) session.ProfileFunc {
	return func(ctx context.Context, role session.Role, token string) (string, error) {
		body, err := requester.DoRequest(ctx, httpclient.RequestOptions{
			Method: http.MethodGet,
			Path:   ProfileEndpoint(role).Path,
			Token:  token,
		})
		if err != nil {
			return "", err
		}
		p, err := decodeProfile(body)
		if err != nil {
			return "", err
		}
		return string(p.ID), nil
	}
}

// The API nests the profile under user or data depending on the role.
func decodeProfile(body []byte) (Profile, error) {
	path := "user"
	if !gjson.GetBytes(body, path).IsObject() {
		path = "data"
	}
	return decodeObject[Profile](body, path)
}

// AddTenant validates the form, creates the tenant and runs refresh.
func (c *Client) AddTenant(ctx context.Context, t NewTenant, refresh func(context.Context) error) (Tenant, error) {
	rsp, err := c.submitter.Submit(ctx, mutate.Mutation{
		Method:  http.MethodPost,
		Path:    TenantsEndpoint.Path,
		Body:    t,
		Refresh: refresh,
	})
	if rsp == nil {
		return Tenant{}, err
	}
	created, decodeErr := decodeObject[Tenant](rsp, "tenant")
	if decodeErr != nil {
		created = Tenant{Name: t.Name, Mobile: t.Mobile}
	}
	return created, err
}

func (c *Client) DeleteTenant(ctx context.Context, tenantID string, refresh func(context.Context) error) error {
	_, err := c.submitter.Submit(ctx, mutate.Mutation{
		Method:  http.MethodDelete,
		Path:    TenantsEndpoint.Path + "/:id",
		PathIDs: map[string]string{"id": tenantID},
		Refresh: refresh,
	})
	return err
}

func (c *Client) SetComplaintStatus(ctx context.Context, complaintID, status string, refresh func(context.Context) error) error {
	_, err := c.submitter.Submit(ctx, mutate.Mutation{
		Method:  http.MethodPut,
		Path:    "/api/landlord/complaints/:id/status",
		PathIDs: map[string]string{"id": complaintID},
		Body:    ComplaintStatusUpdate{Status: status},
		Refresh: refresh,
	})
	return err
}

// GenerateAadhaarOTP asks the KYC service to send an OTP. The endpoint is public; the
// Aadhaar number is checked locally first.
func (c *Client) GenerateAadhaarOTP(ctx context.Context, aadhaar string) (OTPIssued, error) {
	rsp, err := c.submitter.Submit(ctx, mutate.Mutation{
		Method: http.MethodPost,
		Path:   "/api/kyc/aadhaar/generate-otp",
		Body:   AadhaarOTPRequest{Aadhaar: aadhaar},
		Public: true,
	})
	if err != nil {
		return OTPIssued{}, err
	}
	return decodeObject[OTPIssued](rsp, "data")
}

func (c *Client) SubmitAadhaarOTP(ctx context.Context, referenceID, otp string) (KYCResult, error) {
	rsp, err := c.submitter.Submit(ctx, mutate.Mutation{
		Method: http.MethodPost,
		Path:   "/api/kyc/aadhaar/submit-otp",
		Body:   AadhaarOTPSubmit{ReferenceID: referenceID, OTP: otp},
		Public: true,
	})
	if err != nil {
		return KYCResult{}, err
	}
	return decodeObject[KYCResult](rsp, "data")
}
