package logtrace

import (
	"context"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

type ctxKey struct{}

const requestIdAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewRequestId returns a short random id sent as X-Request-ID.
func NewRequestId() string {
	id, err := gonanoid.Generate(requestIdAlphabet, 12)
	if err != nil {
		return ""
	}
	return id
}

func WithRequestId(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func RequestIdFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	r, ok := ctx.Value(ctxKey{}).(string)
	if !ok {
		return ""
	}
	return r
}
