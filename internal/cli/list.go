package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/draze/draze-cli/internal/common/httpclient"
	"github.com/draze/draze-cli/internal/derive"
	"github.com/draze/draze-cli/internal/fetch"
	"github.com/draze/draze-cli/internal/mutate"
	"github.com/draze/draze-cli/internal/snapshot"
)

var retryDelay = 500 * time.Millisecond

// listOptions are the flags shared by every list command.
type listOptions struct {
	search   string
	page     int
	pageSize int
	cached   bool
	retries  uint
}

func (o *listOptions) bind(cmd *cobra.Command, withSearch bool) {
	if withSearch {
		cmd.Flags().StringVarP(&o.search, "search", "s", "", "Only show rows containing this text")
	}
	cmd.Flags().IntVar(&o.page, "page", 1, "Page number")
	cmd.Flags().IntVar(&o.pageSize, "page-size", 0, "Rows per page (defaults to page_size from the config)")
	cmd.Flags().BoolVar(&o.cached, "cached", false, "Show the last fetched copy without calling the API")
	cmd.Flags().UintVar(&o.retries, "retry", 0, "Retry a failed fetch up to N times")
}

// loadList fetches ep, or reads its snapshot when --cached is set. Both need a live
// session for the role.
func loadList[T any](ctx context.Context, e *env, ep fetch.Endpoint, opts *listOptions) ([]T, error) {
	if opts.cached {
		if _, err := e.client.Fetcher().Token(); err != nil {
			return nil, err
		}
		raw, taken, err := e.snapshots.Get(snapshotKey(e.store, e.role, ep))
		if errors.Is(err, snapshot.ErrNotFound) {
			return nil, fmt.Errorf("no cached copy of %s, run the command without --cached first", ep.Key())
		}
		if err != nil {
			return nil, err
		}
		log.Info().Time("taken", taken).Str("endpoint", ep.Path).Msg("showing cached copy")
		return fetch.DecodeList[T](raw, ep.Shape)
	}

	var items []T
	err := retry.Do(func() error {
		var err error
		items, err = fetch.List[T](ctx, e.client.Fetcher(), ep)
		return err
	},
		retry.Context(ctx),
		retry.Attempts(opts.retries+1),
		retry.Delay(retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Uint("attempt", n+1).Str("endpoint", ep.Path).Msg("fetch failed, retrying")
		}))
	return items, err
}

// retryable reports whether another attempt could succeed. Session, validation and
// shape errors, and 4xx answers, will not change by asking again.
func retryable(err error) bool {
	var (
		decodeErr *fetch.DecodeError
		fe        mutate.FieldErrors
		httpErr   *httpclient.HTTPError
	)
	switch {
	case fetch.Unauthenticated(err), errors.As(err, &decodeErr), errors.As(err, &fe):
		return false
	case errors.Is(err, fetch.ErrRequestFailed):
		return false
	case errors.As(err, &httpErr):
		return httpErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}

// runList loads, filters, pages and renders one list. It returns the filtered list
// before paging so callers can print totals.
func runList[T any](cmd *cobra.Command, e *env, ep fetch.Endpoint, opts *listOptions,
	search func([]T, string) []T, title string, cols []column[T]) ([]T, error) {
	items, err := loadList[T](cmd.Context(), e, ep, opts)
	if err != nil {
		return nil, err
	}
	if search != nil && opts.search != "" {
		items = search(items, opts.search)
	}

	size := opts.pageSize
	if size == 0 {
		size = e.cfg.GetPageSize()
	}
	page, err := derive.Paginate(items, opts.page, size)
	if err != nil {
		return nil, err
	}

	w := cmd.OutOrStdout()
	if err := render(w, title, page, page.Items, cols); err != nil {
		return nil, err
	}
	if outputFormat == "table" && page.TotalPages > 1 {
		fmt.Fprint(w, pageFooter(page))
	}
	return items, nil
}

func pageFooter[T any](p derive.Page[T]) string {
	footer := fmt.Sprintf("Page %d of %d (%d total)", p.PageNum, p.TotalPages, p.Total)
	if p.HasPrev() {
		footer += fmt.Sprintf(", previous: --page %d", min(p.PageNum-1, p.TotalPages))
	}
	if p.HasNext() {
		footer += fmt.Sprintf(", next: --page %d", p.PageNum+1)
	}
	return footer + "\n"
}
