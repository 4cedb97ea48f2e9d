package marketplace

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/draze/draze-cli/internal/session"
)

// Card is one tile of the landlord dashboard. Err is set when its fetch failed; the
// other cards are unaffected.
type Card struct {
	Title  string  `json:"title"`
	Count  int     `json:"count"`
	Amount float64 `json:"amount,omitempty"`
	Detail string  `json:"detail,omitempty"`
	Err    error   `json:"-"`
}

// Dashboard is the landlord overview.
type Dashboard struct {
	Properties    Card `json:"properties"`
	Tenants       Card `json:"tenants"`
	Subscriptions Card `json:"subscriptions"`
	Complaints    Card `json:"complaints"`
}

// Cards returns the cards in display order.
func (d *Dashboard) Cards() []*Card {
	return []*Card{&d.Properties, &d.Tenants, &d.Subscriptions, &d.Complaints}
}

const complaintFetchLimit = 4

// Dashboard fetches the landlord's properties, tenants, subscriptions and complaints
// concurrently. Each card keeps its own result. Only a missing session fails the whole
// dashboard.
func (c *Client) Dashboard(ctx context.Context, landlordID string) (*Dashboard, error) {
	d := &Dashboard{
		Properties:    Card{Title: "Properties"},
		Tenants:       Card{Title: "Tenants"},
		Subscriptions: Card{Title: "Active beds"},
		Complaints:    Card{Title: "Open complaints"},
	}

	g, ctx := errgroup.WithContext(ctx)
	tenantsReady := make(chan []Tenant, 1)

	g.Go(func() error {
		props, err := c.Properties(ctx)
		if err != nil {
			return d.Properties.fail(err)
		}
		d.Properties.Count = len(props)
		return nil
	})

	g.Go(func() error {
		defer close(tenantsReady)
		tenants, err := c.Tenants(ctx)
		if err != nil {
			return d.Tenants.fail(err)
		}
		d.Tenants.Count = len(tenants)
		d.Tenants.Amount = MonthlyRent(tenants)
		d.Tenants.Detail = "monthly rent"
		tenantsReady <- tenants
		return nil
	})

	g.Go(func() error {
		subs, err := c.Subscriptions(ctx, landlordID)
		if err != nil {
			return d.Subscriptions.fail(err)
		}
		d.Subscriptions.Count = ActiveBeds(subs)
		d.Subscriptions.Detail = fmt.Sprintf("%d used", BedsUsed(subs))
		return nil
	})

	g.Go(func() error {
		tenants, ok := <-tenantsReady
		if !ok {
			return d.Complaints.fail(errTenantsUnavailable)
		}
		open, err := c.openComplaints(ctx, tenants)
		if err != nil {
			return d.Complaints.fail(err)
		}
		d.Complaints.Count = open
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

var errTenantsUnavailable = errors.New("tenants unavailable")

func (c *Client) openComplaints(ctx context.Context, tenants []Tenant) (int, error) {
	counts := make([]int, len(tenants))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(complaintFetchLimit)
	for i, t := range tenants {
		g.Go(func() error {
			cs, err := c.Complaints(ctx, t.Key())
			if err != nil {
				return err
			}
			counts[i] = OpenComplaints(cs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return total, nil
}

// fail records err on the card. A session error is returned so the group stops.
func (card *Card) fail(err error) error {
	card.Err = err
	log.Debug().Err(err).Str("card", card.Title).Msg("dashboard card failed")
	if errors.Is(err, session.ErrNotAuthenticated) {
		return err
	}
	return nil
}
