package fetch

import (
	"context"
	"errors"
	"sync"

	"github.com/draze/draze-cli/internal/common/httpclient"
	"github.com/draze/draze-cli/internal/session"
)

// State is the view state owned by one Loader.
type State[T any] struct {
	Loading bool
	Items   []T
	// Err is the message shown in place of the list after a failed fetch.
	Err string
	// Unauthenticated is set when the fetch was skipped for lack of a valid token; the
	// view should send the user to log in.
	Unauthenticated bool
}

// Loader runs a fetch and keeps its result. Starting a new load cancels the one in
// flight; a cancelled load never touches the state. Failures are not retried until
// Retry is called.
type Loader[T any] struct {
	load func(ctx context.Context) ([]T, error)

	mu     sync.Mutex
	state  State[T]
	gen    uint64
	cancel context.CancelFunc
}

func NewLoader[T any](load func(ctx context.Context) ([]T, error)) *Loader[T] {
	return &Loader[T]{
		load:  load,
		state: State[T]{Items: []T{}},
	}
}

// ListLoader is a Loader over a single list endpoint.
func ListLoader[T any](f *Fetcher, ep Endpoint) *Loader[T] {
	return NewLoader(func(ctx context.Context) ([]T, error) {
		return List[T](ctx, f, ep)
	})
}

// Load fetches and stores the result. It returns ErrSuperseded when a later Load
// started before this one finished.
func (l *Loader[T]) Load(ctx context.Context) error {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	gen := l.gen
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.state.Loading = true
	l.mu.Unlock()

	items, err := l.load(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return ErrSuperseded
	}
	cancel()
	l.cancel = nil
	l.state.Loading = false

	if err != nil {
		l.state.Err = err.Error()
		l.state.Unauthenticated = Unauthenticated(err)
		return err
	}
	if items == nil {
		items = []T{}
	}
	l.state.Items = items
	l.state.Err = ""
	l.state.Unauthenticated = false
	return nil
}

// Retry re-runs the same fetch; it is the manual retry action.
func (l *Loader[T]) Retry(ctx context.Context) error {
	return l.Load(ctx)
}

// Cancel aborts the load in flight, if any.
func (l *Loader[T]) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
		l.gen++
		l.state.Loading = false
	}
}

// State returns a copy of the current state.
func (l *Loader[T]) State() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.state
	s.Items = append([]T{}, l.state.Items...)
	return s
}

// Unauthenticated reports whether err means the user has to log in again, either
// because no valid token was held or because the server refused it.
func Unauthenticated(err error) bool {
	if errors.Is(err, session.ErrNotAuthenticated) {
		return true
	}
	var httpErr *httpclient.HTTPError
	return errors.As(err, &httpErr) && httpErr.Unauthorized()
}
