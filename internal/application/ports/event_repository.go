package ports

import (
	"context"

	"github.com/yuzvak/eventsales-service/internal/domain/event"
)

type EventRepository interface {
	CreateEvent(ctx context.Context, e *event.Event) error
	GetEventByID(ctx context.Context, id string) (*event.Event, error)
	ListEvents(ctx context.Context) ([]*event.Event, error)
	UpdateEvent(ctx context.Context, e *event.Event) error
	// DeleteEvent fails with ErrConflict while any sale references the event.
	DeleteEvent(ctx context.Context, id string) error
}
