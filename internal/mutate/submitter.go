package mutate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/draze/draze-cli/internal/common/httpclient"
	"github.com/draze/draze-cli/internal/session"
)

// TokenFunc returns the bearer token for the active role or a session error.
type TokenFunc func() (string, error)

// Mutation is one write against the API.
type Mutation struct {
	Method string
	// Path may contain :name placeholders filled from PathIDs.
	Path    string
	PathIDs map[string]string
	// Body is validated against its validate tags and sent as JSON. A json.RawMessage
	// or []byte is sent as is.
	Body   any
	Public bool
	// Refresh runs after a successful write, typically the affected list's Retry.
	Refresh func(ctx context.Context) error
}

// Guard rejects a second submission while one is in flight.
type Guard struct {
	busy atomic.Bool
}

func (g *Guard) TryAcquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

func (g *Guard) Release() {
	g.busy.Store(false)
}

func (g *Guard) Busy() bool {
	return g.busy.Load()
}

// Submitter validates and sends mutations.
type Submitter struct {
	requester httpclient.Requester
	token     TokenFunc
	guard     Guard
}

func NewSubmitter(requester httpclient.Requester, token TokenFunc) *Submitter {
	return &Submitter{
		requester: requester,
		token:     token,
	}
}

// Busy reports whether a submission is in flight.
func (s *Submitter) Busy() bool {
	return s.guard.Busy()
}

// Submit checks path ids and body fields, then sends the request. Local failures are
// FieldErrors and no request is made. On success Refresh is run; a refresh failure is
// returned as ErrRefreshFailed together with the response body.
func (s *Submitter) Submit(ctx context.Context, m Mutation) ([]byte, error) {
	switch m.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return nil, ErrInvalidMethod
	}

	path, fe := expandPath(m.Path, m.PathIDs)
	if err := Validate(m.Body); err != nil {
		var bodyErrs FieldErrors
		if !errors.As(err, &bodyErrs) {
			return nil, err
		}
		for k, v := range bodyErrs {
			fe[k] = v
		}
	}
	if len(fe) > 0 {
		return nil, fe
	}

	var token string
	if !m.Public {
		if s.token == nil {
			return nil, session.ErrNotAuthenticated
		}
		tok, err := s.token()
		if err != nil {
			return nil, err
		}
		if tok == "" {
			return nil, session.ErrNotAuthenticated
		}
		token = tok
	}

	body, err := encodeBody(m.Body)
	if err != nil {
		return nil, err
	}

	if !s.guard.TryAcquire() {
		return nil, ErrBusy
	}
	rsp, err := s.requester.DoRequest(ctx, httpclient.RequestOptions{
		Method:  m.Method,
		Path:    path,
		Body:    body,
		Token:   token,
		Headers: map[string]string{"Idempotency-Key": uuid.NewString()},
	})
	s.guard.Release()
	if err != nil {
		return nil, surface(err)
	}
	if r := gjson.GetBytes(rsp, "success"); r.Exists() && r.Type == gjson.False {
		if msg := httpclient.ServerMessage(rsp); msg != "" {
			return nil, ErrRequestFailed.Msg(msg)
		}
		return nil, ErrRequestFailed
	}

	if m.Refresh != nil {
		if err := m.Refresh(ctx); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("refresh after mutation failed")
			return rsp, ErrRefreshFailed.Err(err)
		}
	}
	return rsp, nil
}

// surface keeps the server's own message when it sent one and otherwise reports the
// generic failure, keeping the cause for errors.Is/As.
func surface(err error) error {
	var httpErr *httpclient.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Message != "" {
			return ErrRequestFailed.MsgErr(httpErr.Message, err)
		}
		return ErrRequestFailed.Err(err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return ErrRequestFailed.Err(err)
}

// ExpandPath fills the :name placeholders of path from ids. Every id must be a single
// non-empty path segment; "." and ".." are refused since the transport would resolve them
// to a different resource.
func ExpandPath(path string, ids map[string]string) (string, error) {
	p, fe := expandPath(path, ids)
	if len(fe) > 0 {
		return "", fe
	}
	return p, nil
}

func expandPath(path string, ids map[string]string) (string, FieldErrors) {
	fe := FieldErrors{}
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		name := seg[1:]
		v := strings.TrimSpace(ids[name])
		switch {
		case v == "":
			fe[name] = "is required"
			continue
		case strings.Contains(v, "/"):
			fe[name] = "must not contain /"
			continue
		case v == "." || v == "..":
			fe[name] = "is not a valid id"
			continue
		}
		segments[i] = v
	}
	return strings.Join(segments, "/"), fe
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return b, nil
	case []byte:
		return b, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("unable to encode request: %w", err)
	}
	return data, nil
}
