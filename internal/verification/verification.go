package verification

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/draze/draze-cli/internal/fetch"
	"github.com/draze/draze-cli/internal/mutate"
)

// Document is an uploaded proof attached to a verification.
type Document struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Record is a police verification linking a landlord to a region.
type Record struct {
	ID         string     `json:"_id"`
	LandlordID string     `json:"landlordId"`
	RegionID   string     `json:"regionId"`
	TenantName string     `json:"tenantName,omitempty"`
	Status     Status     `json:"status"`
	Remark     string     `json:"remark,omitempty"`
	Documents  []Document `json:"documents"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// RejectRequest carries the mandatory rejection remark.
type RejectRequest struct {
	Remark string `json:"remark" validate:"remark"`
}

// AssignRequest links a landlord to a police region.
type AssignRequest struct {
	LandlordID string `json:"landlordId" validate:"required"`
	RegionID   string `json:"regionId" validate:"required"`
}

var listEndpoint = fetch.Endpoint{
	Path:  "/api/verification/links",
	Shape: fetch.ShapeData,
}

// Service lists verifications and moves them through their statuses. The server stays
// authoritative; the local transition check only runs when the caller knows the
// current status.
type Service struct {
	fetcher   *fetch.Fetcher
	submitter *mutate.Submitter
	// Refresh is run after every successful change.
	Refresh func(ctx context.Context) error
}

func NewService(f *fetch.Fetcher, s *mutate.Submitter) *Service {
	return &Service{
		fetcher:   f,
		submitter: s,
	}
}

func (s *Service) List(ctx context.Context) ([]Record, error) {
	return fetch.List[Record](ctx, s.fetcher, listEndpoint)
}

// Loader returns a loader over the verification list; its Retry becomes the refresh
// action when none is set.
func (s *Service) Loader() *fetch.Loader[Record] {
	l := fetch.ListLoader[Record](s.fetcher, listEndpoint)
	if s.Refresh == nil {
		s.Refresh = l.Retry
	}
	return l
}

// Approve moves a record to verified. current may be empty when unknown.
func (s *Service) Approve(ctx context.Context, id string, current Status) error {
	if err := checkTransition(current, StatusVerified); err != nil {
		return err
	}
	_, err := s.submitter.Submit(ctx, mutate.Mutation{
		Method:  http.MethodPost,
		Path:    "/api/verification/:id/approve",
		PathIDs: map[string]string{"id": id},
		Refresh: s.Refresh,
	})
	return err
}

// Reject moves a record to rejected. The remark must have at least three characters;
// shorter remarks are refused before any request.
func (s *Service) Reject(ctx context.Context, id string, remark string, current Status) error {
	if err := checkTransition(current, StatusRejected); err != nil {
		return err
	}
	_, err := s.submitter.Submit(ctx, mutate.Mutation{
		Method:  http.MethodPost,
		Path:    "/api/verification/:id/reject",
		PathIDs: map[string]string{"id": id},
		Body:    RejectRequest{Remark: remark},
		Refresh: s.Refresh,
	})
	return err
}

// Assign links a landlord to a region. Duplicate links are refused by the server and
// its message is returned as is.
func (s *Service) Assign(ctx context.Context, req AssignRequest) error {
	_, err := s.submitter.Submit(ctx, mutate.Mutation{
		Method:  http.MethodPost,
		Path:    "/api/verification/assign",
		Body:    req,
		Refresh: s.Refresh,
	})
	return err
}

func checkTransition(current, to Status) error {
	switch {
	case current == "" || CanTransition(current, to):
		return nil
	case current.Final():
		return ErrIllegalTransition.Msg(fmt.Sprintf("verification is already %s", strings.ToLower(current.Label())))
	}
	return ErrIllegalTransition.Msg(fmt.Sprintf("cannot move a %s verification to %s", current.Label(), to.Label()))
}
