package use_cases

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yuzvak/eventsales-service/internal/application/ports"
	"github.com/yuzvak/eventsales-service/internal/domain/event"
)

type sequenceIDs struct {
	prefix string
	n      atomic.Int64
}

func (g *sequenceIDs) NewID() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.n.Add(1))
}

type fakeEventCache struct {
	mu          sync.Mutex
	events      map[string]event.Event
	gens        map[string]int64
	invalidated []string
	getErr      error
}

func newFakeEventCache() *fakeEventCache {
	return &fakeEventCache{
		events: make(map[string]event.Event),
		gens:   make(map[string]int64),
	}
}

func (c *fakeEventCache) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	e, ok := c.events[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (c *fakeEventCache) Generation(ctx context.Context, id string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[id], nil
}

func (c *fakeEventCache) SetEvent(ctx context.Context, e *event.Event, gen int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[e.ID] != gen {
		return nil
	}
	c.events[e.ID] = *e
	return nil
}

func (c *fakeEventCache) InvalidateEvent(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[id]++
	delete(c.events, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

func (c *fakeEventCache) cached(id string) (event.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.events[id]
	return e, ok
}

func (c *fakeEventCache) has(id string) bool {
	_, ok := c.cached(id)
	return ok
}

// gatedEvents holds its first GetEventByID after the store read until release
// is closed, so a test can slip a write in between.
type gatedEvents struct {
	ports.EventRepository
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func newGatedEvents(repo ports.EventRepository) *gatedEvents {
	g := &gatedEvents{
		EventRepository: repo,
		entered:         make(chan struct{}),
		release:         make(chan struct{}),
	}
	g.armed.Store(true)
	return g
}

func (g *gatedEvents) GetEventByID(ctx context.Context, id string) (*event.Event, error) {
	if !g.armed.CompareAndSwap(true, false) {
		return g.EventRepository.GetEventByID(ctx, id)
	}
	e, err := g.EventRepository.GetEventByID(ctx, id)
	close(g.entered)
	<-g.release
	return e, err
}

func ts(s string) time.Time {
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		panic(err)
	}
	return t
}
