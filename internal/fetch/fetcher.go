package fetch

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/draze/draze-cli/internal/common/httpclient"
	"github.com/draze/draze-cli/internal/session"
)

// TokenFunc returns the bearer token for the active role or a session error.
type TokenFunc func() (string, error)

// Endpoint describes one list or object resource of the API.
type Endpoint struct {
	Path  string
	Query map[string]string
	Shape Shape
	// Public endpoints are called without a token.
	Public bool
}

// Key identifies the endpoint in snapshot storage.
func (e Endpoint) Key() string {
	return strings.Trim(e.Path, "/")
}

// Fetcher issues authenticated GET requests and normalises list responses.
type Fetcher struct {
	requester httpclient.Requester
	token     TokenFunc
	// OnList observes every successfully extracted list, e.g. to keep a snapshot.
	OnList func(ep Endpoint, list []byte)
}

func NewFetcher(requester httpclient.Requester, token TokenFunc) *Fetcher {
	return &Fetcher{
		requester: requester,
		token:     token,
	}
}

// Token returns the current bearer token. The fetch is skipped with
// session.ErrNotAuthenticated when there is none.
func (f *Fetcher) Token() (string, error) {
	if f.token == nil {
		return "", session.ErrNotAuthenticated
	}
	tok, err := f.token()
	if err != nil {
		return "", err
	}
	if tok == "" {
		return "", session.ErrNotAuthenticated
	}
	return tok, nil
}

// Requester exposes the transport for components that issue their own requests.
func (f *Fetcher) Requester() httpclient.Requester {
	return f.requester
}

// Get performs the GET and returns the raw body.
func (f *Fetcher) Get(ctx context.Context, ep Endpoint) ([]byte, error) {
	var token string
	if !ep.Public {
		var err error
		if token, err = f.Token(); err != nil {
			return nil, err
		}
	}
	return f.requester.DoRequest(ctx, httpclient.RequestOptions{
		Method:      http.MethodGet,
		Path:        ep.Path,
		QueryParams: ep.Query,
		Token:       token,
	})
}

// RawList fetches ep and returns its list as a raw JSON array.
func (f *Fetcher) RawList(ctx context.Context, ep Endpoint) ([]byte, error) {
	body, err := f.Get(ctx, ep)
	if err != nil {
		return nil, err
	}
	list, err := ep.Shape.Extract(body)
	if err != nil {
		return nil, err
	}
	if f.OnList != nil {
		f.OnList(ep, list)
	}
	return list, nil
}

// List fetches ep and decodes its list. The result is never nil.
func List[T any](ctx context.Context, f *Fetcher, ep Endpoint) ([]T, error) {
	raw, err := f.RawList(ctx, ep)
	if err != nil {
		return nil, err
	}
	return DecodeList[T](raw, ep.Shape)
}

// DecodeList decodes a raw JSON array as produced by Shape.Extract.
func DecodeList[T any](raw []byte, shape Shape) ([]T, error) {
	items := []T{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &DecodeError{Shape: shape.String(), Reason: err.Error()}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Object fetches ep and decodes the object found at path ("" for the body).
func Object[T any](ctx context.Context, f *Fetcher, ep Endpoint, path string) (T, error) {
	var out T
	body, err := f.Get(ctx, ep)
	if err != nil {
		return out, err
	}
	raw, err := ExtractObject(body, path)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &DecodeError{Shape: path, Reason: err.Error()}
	}
	return out, nil
}
