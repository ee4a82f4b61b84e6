package ports

import (
	"context"

	"github.com/yuzvak/eventsales-service/internal/domain/event"
)

// EventCache holds short-lived copies of events for display reads. Sale
// admission never consults it. A miss returns (nil, nil).
type EventCache interface {
	GetEvent(ctx context.Context, id string) (*event.Event, error)
	// Generation returns a token that changes on every InvalidateEvent for id.
	Generation(ctx context.Context, id string) (int64, error)
	// SetEvent stores e only while the generation of e.ID still equals gen,
	// so a fill that raced with an invalidation is dropped.
	SetEvent(ctx context.Context, e *event.Event, gen int64) error
	InvalidateEvent(ctx context.Context, id string) error
}
