package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ProfileFunc fetches the id of the logged in user from the role's profile endpoint.
type ProfileFunc func(ctx context.Context, role Role, token string) (string, error)

// Resolver is the single source of the current user's id. The id always comes from the
// profile endpoint and is cached in the store; it is never decoded from the token.
type Resolver struct {
	store   *Store
	profile ProfileFunc
	now     func() time.Time
	mu      sync.Mutex
}

func NewResolver(store *Store, profile ProfileFunc) *Resolver {
	return &Resolver{
		store:   store,
		profile: profile,
		now:     time.Now,
	}
}

// UserID returns the cached id of role, fetching it from the profile endpoint once.
func (r *Resolver) UserID(ctx context.Context, role Role) (string, error) {
	token, err := r.store.Token(role, r.now())
	if err != nil {
		return "", err
	}
	if e, _ := r.store.Get(role); e.UserID != "" {
		return e.UserID, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, _ := r.store.Get(role); e.UserID != "" {
		return e.UserID, nil
	}

	id, err := r.profile(ctx, role, token)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", ErrNoUserID
	}
	if err := r.store.SetUserID(role, id); err != nil {
		log.Warn().Err(err).Str("role", string(role)).Msg("unable to cache user id")
	}
	return id, nil
}
