package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
)

// HandlerClient serves requests directly through an http.Handler without a network
// round trip. Tests use it with the fake API router.
type HandlerClient struct {
	config  Configurator
	handler http.Handler
}

// NewHandlerClient creates a client that dispatches to handler.
func NewHandlerClient(config Configurator, handler http.Handler) *HandlerClient {
	return &HandlerClient{
		config:  config,
		handler: handler,
	}
}

// DoRequest serves the request with the handler and applies the same status handling
// as HTTPClient.
func (c *HandlerClient) DoRequest(ctx context.Context, opts RequestOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req, err := newRequest(ctx, c.config, opts)
	if err != nil {
		return nil, err
	}

	rr := httptest.NewRecorder()
	c.handler.ServeHTTP(rr, req)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return checkStatus(rr.Code, rr.Body.Bytes())
}
