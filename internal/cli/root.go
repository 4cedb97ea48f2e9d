package cli

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/draze/draze-cli/internal/common/httpclient"
	"github.com/draze/draze-cli/internal/fetch"
	"github.com/draze/draze-cli/internal/marketplace"
	"github.com/draze/draze-cli/internal/mutate"
	"github.com/draze/draze-cli/internal/session"
	"github.com/draze/draze-cli/internal/snapshot"
)

var roleFlag string

// newRequester builds the transport for API calls.
var newRequester = func(cfg httpclient.Configurator) httpclient.Requester {
	return httpclient.NewClient(cfg)
}

var openSessionStore = func() (*session.Store, error) {
	path, err := session.GetDefaultStorePath()
	if err != nil {
		return nil, err
	}
	return session.Open(path)
}

var openSnapshots = func() (*snapshot.Store, error) {
	dir, err := snapshot.GetDefaultDir()
	if err != nil {
		return nil, err
	}
	return snapshot.New(dir), nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&roleFlag, "role", "", "Role whose session is used, overriding the command's default")
}

// env is everything a command needs to talk to the API as one role.
type env struct {
	role      session.Role
	cfg       *Config
	store     *session.Store
	requester httpclient.Requester
	client    *marketplace.Client
	resolver  *session.Resolver
	snapshots *snapshot.Store
}

// newEnv wires the session, transport and snapshot store for role. The --role flag
// takes precedence over def.
func newEnv(def session.Role) (*env, error) {
	role := def
	if roleFlag != "" {
		r, err := session.ParseRole(roleFlag)
		if err != nil {
			return nil, err
		}
		role = r
	}

	store, err := openSessionStore()
	if err != nil {
		return nil, err
	}
	snaps, err := openSnapshots()
	if err != nil {
		return nil, err
	}

	cfg := GetConfig()
	rq := newRequester(cfg)
	token := func() (string, error) {
		return store.Token(role, time.Now())
	}

	f := fetch.NewFetcher(rq, token)
	f.OnList = func(ep fetch.Endpoint, list []byte) {
		if err := snaps.Put(snapshotKey(store, role, ep), list); err != nil {
			log.Warn().Err(err).Str("endpoint", ep.Path).Msg("unable to store snapshot")
		}
	}

	return &env{
		role:      role,
		cfg:       cfg,
		store:     store,
		requester: rq,
		client:    marketplace.NewClient(role, f, mutate.NewSubmitter(rq, token)),
		resolver:  session.NewResolver(store, marketplace.ProfileFunc(rq)),
		snapshots: snaps,
	}, nil
}

// snapshotKey scopes an endpoint's snapshot to the role and its cached user id, so a
// different login never sees the previous user's rows.
func snapshotKey(store *session.Store, role session.Role, ep fetch.Endpoint) string {
	entry, _ := store.Get(role)
	return snapshot.Key(string(role), entry.UserID, ep.Key())
}

// userID is the id of the logged in user as reported by the profile endpoint.
func (e *env) userID(cmd *cobra.Command) (string, error) {
	return e.resolver.UserID(cmd.Context(), e.role)
}
