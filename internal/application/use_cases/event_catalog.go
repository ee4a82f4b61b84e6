package use_cases

import (
	"context"
	"time"

	"github.com/yuzvak/eventsales-service/internal/application/ports"
	"github.com/yuzvak/eventsales-service/internal/domain/event"
	"github.com/yuzvak/eventsales-service/internal/pkg/clock"
	"github.com/yuzvak/eventsales-service/internal/pkg/generator"
	"github.com/yuzvak/eventsales-service/internal/pkg/logger"
)

// EventCatalog is the pass-through CRUD for events. Writes are validated
// and drop the cached copy served by GetEvent. cache may be nil.
type EventCatalog struct {
	eventRepo ports.EventRepository
	cache     ports.EventCache
	clock     clock.Clock
	ids       generator.IDGenerator
	log       *logger.Logger
}

func NewEventCatalog(
	eventRepo ports.EventRepository,
	cache ports.EventCache,
	clk clock.Clock,
	ids generator.IDGenerator,
	log *logger.Logger,
) *EventCatalog {
	return &EventCatalog{
		eventRepo: eventRepo,
		cache:     cache,
		clock:     clk,
		ids:       ids,
		log:       log,
	}
}

type CreateEventInput struct {
	Description string
	Type        event.Type
	Location    string
	OccursAt    time.Time
	SalesStart  time.Time
	SalesEnd    time.Time
	PriceCents  int64
}

func (uc *EventCatalog) CreateEvent(ctx context.Context, in CreateEventInput) (*event.Event, error) {
	e, err := event.NewEvent(
		uc.ids.NewID(),
		in.Description,
		in.Type,
		in.OccursAt,
		in.SalesStart,
		in.SalesEnd,
		in.PriceCents,
		uc.clock.Now(),
	)
	if err != nil {
		return nil, err
	}
	e.Location = in.Location

	if err := uc.eventRepo.CreateEvent(ctx, e); err != nil {
		return nil, err
	}

	uc.log.Info("Event created", "event_id", e.ID, "type", string(e.Type))
	return e, nil
}

// UpdateEvent merges patch into the stored event and validates the result.
func (uc *EventCatalog) UpdateEvent(ctx context.Context, id string, patch event.Patch) (*event.Event, error) {
	current, err := uc.eventRepo.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := current.Apply(patch, uc.clock.Now())
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	if err := uc.eventRepo.UpdateEvent(ctx, &updated); err != nil {
		return nil, err
	}
	uc.invalidate(ctx, id)

	return &updated, nil
}

// GetEvent reads through the cache. A cache failure only costs the store read.
func (uc *EventCatalog) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	if uc.cache == nil {
		return uc.eventRepo.GetEventByID(ctx, id)
	}

	cached, err := uc.cache.GetEvent(ctx, id)
	if err != nil {
		uc.log.Warn("Event cache lookup failed", "event_id", id, "error", err)
	} else if cached != nil {
		return cached, nil
	}

	// The generation is taken before the store read so that an update landing
	// in between invalidates this fill.
	gen, genErr := uc.cache.Generation(ctx, id)

	e, err := uc.eventRepo.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if genErr != nil {
		uc.log.Warn("Event cache generation lookup failed", "event_id", id, "error", genErr)
		return e, nil
	}
	if err := uc.cache.SetEvent(ctx, e, gen); err != nil {
		uc.log.Warn("Failed to cache event", "event_id", id, "error", err)
	}
	return e, nil
}

func (uc *EventCatalog) ListEvents(ctx context.Context) ([]*event.Event, error) {
	return uc.eventRepo.ListEvents(ctx)
}

// DeleteEvent is rejected with ErrConflict while sales reference the event.
func (uc *EventCatalog) DeleteEvent(ctx context.Context, id string) error {
	if err := uc.eventRepo.DeleteEvent(ctx, id); err != nil {
		return err
	}
	uc.invalidate(ctx, id)
	uc.log.Info("Event deleted", "event_id", id)
	return nil
}

func (uc *EventCatalog) invalidate(ctx context.Context, id string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.InvalidateEvent(ctx, id); err != nil {
		uc.log.Error("Failed to invalidate cached event", "event_id", id, "error", err)
	}
}
