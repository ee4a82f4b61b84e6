package event

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/yuzvak/eventsales-service/internal/domain/errors"
)

func windowEvent(start, end time.Time) *Event {
	return &Event{
		ID:          "event-1",
		Description: "Concert",
		Type:        TypeShow,
		OccursAt:    end.Add(24 * time.Hour),
		SalesStart:  start,
		SalesEnd:    end,
	}
}

func TestIsWithinSalesWindow(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	e := windowEvent(start, end)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before start", start.Add(-time.Second), false},
		{"at start", start, true},
		{"inside", time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC), true},
		{"at end", end, true},
		{"after end", end.Add(time.Nanosecond), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWithinSalesWindow(e, tt.now))
		})
	}
}

func TestIsWithinSalesWindow_MalformedAlwaysClosed(t *testing.T) {
	at := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)

	equal := windowEvent(at, at)
	inverted := windowEvent(at.Add(time.Hour), at)

	for _, now := range []time.Time{at.Add(-time.Hour), at, at.Add(30 * time.Minute), at.Add(time.Hour)} {
		assert.False(t, IsWithinSalesWindow(equal, now))
		assert.False(t, IsWithinSalesWindow(inverted, now))
	}
	assert.False(t, IsWithinSalesWindow(nil, at))
}

func TestIsWithinSalesWindow_IgnoresOccursAt(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	e := windowEvent(start, end)
	e.OccursAt = start.Add(time.Hour)

	assert.True(t, IsWithinSalesWindow(e, start.Add(48*time.Hour)))
}

func TestCheckSalesWindow_Reasons(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	e := windowEvent(start, end)

	tests := []struct {
		name   string
		event  *Event
		now    time.Time
		reason string
	}{
		{"not yet open", e, start.Add(-time.Minute), domainErrors.WindowNotYetOpen},
		{"already closed", e, end.Add(time.Minute), domainErrors.WindowAlreadyClosed},
		{"invalid", windowEvent(end, start), start, domainErrors.WindowInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSalesWindow(tt.event, tt.now)
			require.ErrorIs(t, err, domainErrors.ErrSalesWindowClosed)

			var windowErr *domainErrors.SalesWindowError
			require.True(t, errors.As(err, &windowErr))
			assert.Equal(t, tt.reason, windowErr.Reason)
		})
	}
}
