package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/yuzvak/eventsales-service/internal/domain/errors"
	"github.com/yuzvak/eventsales-service/internal/domain/event"
	"github.com/yuzvak/eventsales-service/internal/domain/sale"
)

// Store keeps events and sales behind one lock so that the cross-collection
// rules (no sale without its event, no event deletion while sales exist)
// hold without a database. It satisfies both repository ports.
type Store struct {
	mu     sync.RWMutex
	events map[string]*event.Event
	sales  map[string]*sale.Sale
}

func NewStore() *Store {
	return &Store{
		events: make(map[string]*event.Event),
		sales:  make(map[string]*sale.Sale),
	}
}

func (s *Store) CreateEvent(ctx context.Context, e *event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.events[e.ID]; exists {
		return domainErrors.ErrConflict
	}
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

func (s *Store) GetEventByID(ctx context.Context, id string) (*event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return nil, domainErrors.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *Store) ListEvents(ctx context.Context) ([]*event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]*event.Event, 0, len(s.events))
	for _, e := range s.events {
		cp := *e
		events = append(events, &cp)
	}
	sort.Slice(events, func(i, j int) bool {
		return before(events[i].CreatedAt, events[j].CreatedAt, events[i].ID, events[j].ID)
	})
	return events, nil
}

func (s *Store) UpdateEvent(ctx context.Context, e *event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[e.ID]; !ok {
		return domainErrors.ErrEventNotFound
	}
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return domainErrors.ErrEventNotFound
	}
	for _, sl := range s.sales {
		if sl.EventID == id {
			return domainErrors.ErrConflict
		}
	}
	delete(s.events, id)
	return nil
}

func (s *Store) CreateSale(ctx context.Context, sl *sale.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[sl.EventID]; !ok {
		return domainErrors.ErrEventNotFound
	}
	if _, exists := s.sales[sl.ID]; exists {
		return domainErrors.ErrConflict
	}
	cp := *sl
	s.sales[sl.ID] = &cp
	return nil
}

func (s *Store) GetSaleByID(ctx context.Context, id string) (*sale.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sl, ok := s.sales[id]
	if !ok {
		return nil, domainErrors.ErrSaleNotFound
	}
	cp := *sl
	return &cp, nil
}

func (s *Store) ListSales(ctx context.Context) ([]*sale.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make([]*sale.Sale, 0, len(s.sales))
	for _, sl := range s.sales {
		cp := *sl
		sales = append(sales, &cp)
	}
	sort.Slice(sales, func(i, j int) bool {
		return before(sales[i].DateTime, sales[j].DateTime, sales[i].ID, sales[j].ID)
	})
	return sales, nil
}

func (s *Store) CompareAndSetStatus(ctx context.Context, id string, from, to sale.Status, updatedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.sales[id]
	if !ok {
		return false, domainErrors.ErrSaleNotFound
	}
	if sl.Status != from {
		return false, nil
	}
	sl.Status = to
	sl.UpdatedAt = updatedAt.UTC()
	return true, nil
}

func (s *Store) DeleteSale(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sales[id]; !ok {
		return domainErrors.ErrSaleNotFound
	}
	delete(s.sales, id)
	return nil
}

func before(a, b time.Time, idA, idB string) bool {
	if a.Equal(b) {
		return idA < idB
	}
	return a.Before(b)
}
