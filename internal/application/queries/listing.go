package queries

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yuzvak/eventsales-service/internal/application/ports"
	"github.com/yuzvak/eventsales-service/internal/domain/event"
	"github.com/yuzvak/eventsales-service/internal/domain/sale"
	"github.com/yuzvak/eventsales-service/internal/domain/user"
	"github.com/yuzvak/eventsales-service/internal/pkg/clock"
	"github.com/yuzvak/eventsales-service/internal/pkg/logger"
)

// SaleView is a sale joined with what the listing screens show next to it.
// Event is nil when the referenced event does not resolve.
type SaleView struct {
	Sale  *sale.Sale
	Event *event.Event
	User  user.Summary
}

func (v SaleView) EventFound() bool {
	return v.Event != nil
}

type EventView struct {
	Event  *event.Event
	Active bool
}

// Listing builds read-only projections. It enforces no business rules and
// substitutes placeholders for dangling references instead of failing.
type Listing struct {
	eventRepo ports.EventRepository
	saleRepo  ports.SaleRepository
	users     ports.UserDirectory
	clock     clock.Clock
	log       *logger.Logger
}

func NewListing(
	eventRepo ports.EventRepository,
	saleRepo ports.SaleRepository,
	users ports.UserDirectory,
	clk clock.Clock,
	log *logger.Logger,
) *Listing {
	return &Listing{
		eventRepo: eventRepo,
		saleRepo:  saleRepo,
		users:     users,
		clock:     clk,
		log:       log,
	}
}

func (l *Listing) ListSalesWithContext(ctx context.Context) ([]SaleView, error) {
	sales, err := l.saleRepo.ListSales(ctx)
	if err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return []SaleView{}, nil
	}

	var (
		events []*event.Event
		users  map[string]user.Summary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = l.eventRepo.ListEvents(gctx)
		return err
	})
	g.Go(func() error {
		users = l.lookupUsers(gctx, userIDs(sales))
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[string]*event.Event, len(events))
	for _, e := range events {
		byID[e.ID] = e
	}

	views := make([]SaleView, 0, len(sales))
	for _, s := range sales {
		summary, ok := users[s.UserID]
		if !ok {
			summary = user.Missing(s.UserID)
		}
		views = append(views, SaleView{
			Sale:  s,
			Event: byID[s.EventID],
			User:  summary,
		})
	}
	return views, nil
}

// ListEventsWithActivityFlag marks each event with whether its sales window contains now.
func (l *Listing) ListEventsWithActivityFlag(ctx context.Context, now time.Time) ([]EventView, error) {
	events, err := l.eventRepo.ListEvents(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]EventView, 0, len(events))
	for _, e := range events {
		views = append(views, EventView{
			Event:  e,
			Active: event.IsWithinSalesWindow(e, now),
		})
	}
	return views, nil
}

// ListEventsActiveNow is ListEventsWithActivityFlag at the service clock.
func (l *Listing) ListEventsActiveNow(ctx context.Context) ([]EventView, error) {
	return l.ListEventsWithActivityFlag(ctx, l.clock.Now())
}

func (l *Listing) lookupUsers(ctx context.Context, ids []string) map[string]user.Summary {
	if l.users == nil || len(ids) == 0 {
		return nil
	}
	found, err := l.users.LookupUsers(ctx, ids)
	if err != nil {
		l.log.Warn("User lookup failed, rendering placeholders", "error", err, "users", len(ids))
		return nil
	}
	return found
}

func userIDs(sales []*sale.Sale) []string {
	seen := make(map[string]struct{}, len(sales))
	ids := make([]string, 0, len(sales))
	for _, s := range sales {
		if _, ok := seen[s.UserID]; ok {
			continue
		}
		seen[s.UserID] = struct{}{}
		ids = append(ids, s.UserID)
	}
	return ids
}
