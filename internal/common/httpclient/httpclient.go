package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/draze/draze-cli/internal/common/logtrace"
)

// GenericFailure is shown when the server gives no message of its own.
const GenericFailure = "request failed"

const maxPlainMessage = 200

// HTTPError represents an error response from the server with a status code
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s (status %d)", GenericFailure, e.StatusCode)
	}
	return e.Message
}

// Unauthorized reports whether the server rejected the credentials. A 403 is a refusal
// of a valid session and does not count.
func (e *HTTPError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// Configurator supplies the connection settings shared by all requests.
type Configurator interface {
	GetServerURL() string
	GetRequestTimeout() time.Duration
}

// RequestOptions contains options for making HTTP requests
type RequestOptions struct {
	Method      string
	Path        string
	QueryParams map[string]string
	Body        []byte
	// Token is sent as a Bearer credential when non-empty.
	Token   string
	Headers map[string]string
}

// HTTPClient makes requests against the marketplace API.
type HTTPClient struct {
	config     Configurator
	httpClient *http.Client
}

// NewClient creates a new HTTP client using the provided configuration
func NewClient(config Configurator) *HTTPClient {
	return &HTTPClient{
		config:     config,
		httpClient: &http.Client{},
	}
}

// WithTransport replaces the underlying round tripper.
func (c *HTTPClient) WithTransport(rt http.RoundTripper) *HTTPClient {
	c.httpClient.Transport = rt
	return c
}

// DoRequest makes an HTTP request with the given options. Any status outside 2xx is
// returned as *HTTPError carrying the server's message when it sent one.
func (c *HTTPClient) DoRequest(ctx context.Context, opts RequestOptions) ([]byte, error) {
	req, err := newRequest(ctx, c.config, opts)
	if err != nil {
		return nil, err
	}

	if timeout := c.config.GetRequestTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(req.Context(), timeout)
		defer cancel()
		req = req.WithContext(ctx)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("method", opts.Method).Str("path", opts.Path).
			Str("request_id", req.Header.Get("X-Request-ID")).Msg("request failed")
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	log.Debug().Str("method", opts.Method).Str("path", opts.Path).Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).Str("request_id", req.Header.Get("X-Request-ID")).Msg("api call")

	return checkStatus(resp.StatusCode, body)
}

func newRequest(ctx context.Context, config Configurator, opts RequestOptions) (*http.Request, error) {
	u, err := url.Parse(config.GetServerURL())
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %v", err)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	u.Path = path.Join(u.Path, opts.Path)

	q := u.Query()
	for k, v := range opts.QueryParams {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}
	req, err := http.NewRequestWithContext(ctx, opts.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("Accept", "application/json")
	if opts.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}
	requestId := logtrace.RequestIdFromContext(ctx)
	if requestId == "" {
		requestId = logtrace.NewRequestId()
	}
	req.Header.Set("X-Request-ID", requestId)
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

func checkStatus(status int, body []byte) ([]byte, error) {
	if status >= 200 && status < 300 {
		return body, nil
	}
	return nil, &HTTPError{
		StatusCode: status,
		Message:    ServerMessage(body),
	}
}

// ServerMessage extracts the human readable message from an error body. The API is
// not consistent about the field name, so message, error and msg are all accepted.
func ServerMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		msg := strings.TrimSpace(string(body))
		if len(msg) > maxPlainMessage || strings.HasPrefix(msg, "<") {
			return ""
		}
		return msg
	}
	for _, key := range []string{"message", "error", "msg"} {
		if r := gjson.GetBytes(body, key); r.Type == gjson.String && r.String() != "" {
			return r.String()
		}
	}
	return ""
}
