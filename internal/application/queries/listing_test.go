package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuzvak/eventsales-service/internal/domain/event"
	"github.com/yuzvak/eventsales-service/internal/domain/sale"
	"github.com/yuzvak/eventsales-service/internal/domain/user"
	"github.com/yuzvak/eventsales-service/internal/infrastructure/persistence/memory"
	"github.com/yuzvak/eventsales-service/internal/pkg/clock"
	"github.com/yuzvak/eventsales-service/internal/pkg/logger"
)

var base = time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)

type stubDirectory struct {
	users map[string]user.Summary
	err   error
	calls [][]string
}

func (d *stubDirectory) LookupUsers(ctx context.Context, ids []string) (map[string]user.Summary, error) {
	d.calls = append(d.calls, ids)
	if d.err != nil {
		return nil, d.err
	}
	return d.users, nil
}

// orphanStore lists sales whose event has been removed behind the store's back.
type orphanStore struct {
	*memory.Store
	extra []*sale.Sale
}

func (o *orphanStore) ListSales(ctx context.Context) ([]*sale.Sale, error) {
	sales, err := o.Store.ListSales(ctx)
	if err != nil {
		return nil, err
	}
	return append(sales, o.extra...), nil
}

func seed(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	open, err := event.NewEvent("event-open", "Open event", event.TypeShow,
		base.Add(72*time.Hour), base.Add(-time.Hour), base.Add(time.Hour), 1000, base)
	require.NoError(t, err)
	closed, err := event.NewEvent("event-closed", "Closed event", event.TypeCourse,
		base.Add(72*time.Hour), base.Add(-48*time.Hour), base.Add(-24*time.Hour), 1000, base)
	require.NoError(t, err)
	require.NoError(t, store.CreateEvent(ctx, open))
	require.NoError(t, store.CreateEvent(ctx, closed))

	s, err := sale.NewSale("sale-1", "user-1", "event-open", base)
	require.NoError(t, err)
	require.NoError(t, store.CreateSale(ctx, s))
	return store
}

func TestListSalesWithContext(t *testing.T) {
	store := seed(t)
	orphan, err := sale.NewSale("sale-2", "user-2", "event-gone", base.Add(time.Minute))
	require.NoError(t, err)
	repo := &orphanStore{Store: store, extra: []*sale.Sale{orphan}}

	dir := &stubDirectory{users: map[string]user.Summary{
		"user-1": {ID: "user-1", Name: "Ana", Email: "ana@example.com", Found: true},
	}}
	listing := NewListing(store, repo, dir, clock.NewMockClock(base), logger.Nop())

	views, err := listing.ListSalesWithContext(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.True(t, views[0].EventFound())
	assert.Equal(t, "Open event", views[0].Event.Description)
	assert.Equal(t, "Ana", views[0].User.Name)

	assert.False(t, views[1].EventFound())
	assert.Equal(t, user.Missing("user-2"), views[1].User)

	require.Len(t, dir.calls, 1)
	assert.ElementsMatch(t, []string{"user-1", "user-2"}, dir.calls[0])
}

func TestListSalesWithContext_DirectoryFailureDegrades(t *testing.T) {
	store := seed(t)
	dir := &stubDirectory{err: errors.New("users service unavailable")}
	listing := NewListing(store, store, dir, clock.NewMockClock(base), logger.Nop())

	views, err := listing.ListSalesWithContext(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.False(t, views[0].User.Found)
	assert.Equal(t, "user-1", views[0].User.ID)
}

func TestListSalesWithContext_Empty(t *testing.T) {
	listing := NewListing(memory.NewStore(), memory.NewStore(), nil, clock.NewMockClock(base), logger.Nop())

	views, err := listing.ListSalesWithContext(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestListEventsWithActivityFlag(t *testing.T) {
	store := seed(t)
	listing := NewListing(store, store, nil, clock.NewMockClock(base), logger.Nop())

	views, err := listing.ListEventsWithActivityFlag(context.Background(), base)
	require.NoError(t, err)

	active := map[string]bool{}
	for _, v := range views {
		active[v.Event.ID] = v.Active
	}
	assert.Equal(t, map[string]bool{"event-open": true, "event-closed": false}, active)

	later, err := listing.ListEventsWithActivityFlag(context.Background(), base.Add(time.Hour))
	require.NoError(t, err)
	for _, v := range later {
		if v.Event.ID == "event-open" {
			assert.True(t, v.Active, "salesEnd is inclusive")
		}
	}

	now, err := listing.ListEventsActiveNow(context.Background())
	require.NoError(t, err)
	assert.Len(t, now, 2)
}
