package httpclient

import "context"

// Requester is implemented by anything that can carry a request to the API.
type Requester interface {
	// DoRequest makes an HTTP request with the given options
	DoRequest(ctx context.Context, opts RequestOptions) ([]byte, error)
}

// Verify that the HTTPClient and HandlerClient implement the Requester interface
var _ Requester = &HTTPClient{}
var _ Requester = &HandlerClient{}
