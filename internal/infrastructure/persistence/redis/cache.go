package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yuzvak/eventsales-service/internal/domain/event"
	"github.com/yuzvak/eventsales-service/internal/infrastructure/monitoring"
	"github.com/yuzvak/eventsales-service/internal/pkg/logger"
)

const (
	eventKeyPrefix = "eventsales:event:"
	genKeyPrefix   = "eventsales:event-gen:"
)

var errStaleFill = errors.New("event cache generation moved")

// EventCache keeps short-lived copies of events for display reads.
// Entries expire after ttl and are dropped on every event write. Each drop
// bumps a per-event generation counter; fills carrying an older generation
// are discarded inside a WATCH transaction.
type EventCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

func NewEventCache(conn *Connection, ttl time.Duration, log *logger.Logger) *EventCache {
	return &EventCache{
		client: conn.GetClient(),
		ttl:    ttl,
		logger: log,
	}
}

type cachedEvent struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Location    string    `json:"location,omitempty"`
	OccursAt    time.Time `json:"occurs_at"`
	SalesStart  time.Time `json:"sales_start"`
	SalesEnd    time.Time `json:"sales_end"`
	PriceCents  int64     `json:"price_cents"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func eventKey(id string) string {
	return eventKeyPrefix + id
}

func genKey(id string) string {
	return genKeyPrefix + id
}

func (c *EventCache) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	payload, err := c.client.Get(ctx, eventKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			monitoring.RecordEventCacheMiss()
			return nil, nil
		}
		monitoring.RecordEventCacheError()
		return nil, err
	}

	e, err := decodeEvent(payload)
	if err != nil {
		c.logger.Warn("Dropping undecodable cached event", "event_id", id, "error", err)
		monitoring.RecordEventCacheMiss()
		if delErr := c.client.Del(ctx, eventKey(id)).Err(); delErr != nil {
			c.logger.Warn("Failed to drop cached event", "event_id", id, "error", delErr)
		}
		return nil, nil
	}

	monitoring.RecordEventCacheHit()
	return e, nil
}

func (c *EventCache) Generation(ctx context.Context, id string) (int64, error) {
	gen, err := c.client.Get(ctx, genKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *EventCache) SetEvent(ctx context.Context, e *event.Event, gen int64) error {
	payload, err := encodeEvent(e)
	if err != nil {
		return err
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey(e.ID)).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, eventKey(e.ID), payload, c.ttl)
			return nil
		})
		return err
	}, genKey(e.ID))

	if errors.Is(err, errStaleFill) || errors.Is(err, redis.TxFailedErr) {
		c.logger.Debug("Skipping stale event cache fill", "event_id", e.ID)
		return nil
	}
	return err
}

func (c *EventCache) InvalidateEvent(ctx context.Context, id string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey(id))
		pipe.Del(ctx, eventKey(id))
		return nil
	})
	return err
}

func encodeEvent(e *event.Event) ([]byte, error) {
	return json.Marshal(cachedEvent{
		ID:          e.ID,
		Description: e.Description,
		Type:        string(e.Type),
		Location:    e.Location,
		OccursAt:    e.OccursAt,
		SalesStart:  e.SalesStart,
		SalesEnd:    e.SalesEnd,
		PriceCents:  e.PriceCents,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	})
}

func decodeEvent(payload []byte) (*event.Event, error) {
	var ce cachedEvent
	if err := json.Unmarshal(payload, &ce); err != nil {
		return nil, err
	}
	e := &event.Event{
		ID:          ce.ID,
		Description: ce.Description,
		Type:        event.Type(ce.Type),
		Location:    ce.Location,
		OccursAt:    ce.OccursAt.UTC(),
		SalesStart:  ce.SalesStart.UTC(),
		SalesEnd:    ce.SalesEnd.UTC(),
		PriceCents:  ce.PriceCents,
		CreatedAt:   ce.CreatedAt.UTC(),
		UpdatedAt:   ce.UpdatedAt.UTC(),
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}
