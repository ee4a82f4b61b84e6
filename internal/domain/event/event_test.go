package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/yuzvak/eventsales-service/internal/domain/errors"
)

func TestNewEvent(t *testing.T) {
	now := time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	occurs := time.Date(2025, 1, 15, 20, 0, 0, 0, time.UTC)

	t.Run("valid", func(t *testing.T) {
		e, err := NewEvent("event-1", "  Rock night ", TypeShow, occurs, start, end, 5000, now)
		require.NoError(t, err)
		assert.Equal(t, "Rock night", e.Description)
		assert.Equal(t, now, e.CreatedAt)
		assert.Equal(t, now, e.UpdatedAt)
	})

	t.Run("empty description", func(t *testing.T) {
		_, err := NewEvent("event-1", "   ", TypeShow, occurs, start, end, 0, now)
		assert.ErrorIs(t, err, domainErrors.ErrValidation)
	})

	t.Run("negative price", func(t *testing.T) {
		_, err := NewEvent("event-1", "Rock night", TypeShow, occurs, start, end, -1, now)
		assert.ErrorIs(t, err, domainErrors.ErrValidation)
	})

	t.Run("price above column range", func(t *testing.T) {
		_, err := NewEvent("event-1", "Rock night", TypeShow, occurs, start, end, MaxPriceCents+1, now)
		var verr *domainErrors.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "price", verr.Field)

		_, err = NewEvent("event-1", "Rock night", TypeShow, occurs, start, end, MaxPriceCents, now)
		assert.NoError(t, err)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := NewEvent("event-1", "Rock night", Type("OPERA"), occurs, start, end, 0, now)
		assert.ErrorIs(t, err, domainErrors.ErrValidation)
	})

	t.Run("window start equals end", func(t *testing.T) {
		_, err := NewEvent("event-1", "Rock night", TypeShow, occurs, start, start, 0, now)
		assert.ErrorIs(t, err, domainErrors.ErrInvalidEventWindow)
	})

	t.Run("window inverted", func(t *testing.T) {
		_, err := NewEvent("event-1", "Rock night", TypeShow, occurs, end, start, 0, now)
		assert.ErrorIs(t, err, domainErrors.ErrInvalidEventWindow)
	})

	t.Run("sales end after occurrence is accepted", func(t *testing.T) {
		_, err := NewEvent("event-1", "Rock night", TypeShow, start.Add(time.Hour), start, end, 0, now)
		assert.NoError(t, err)
	})
}

func TestParseType(t *testing.T) {
	tests := map[string]Type{
		"PALESTRA": TypeLecture,
		"lecture":  TypeLecture,
		"Show":     TypeShow,
		"TEATRO":   TypeTheater,
		"theater":  TypeTheater,
		"curso":    TypeCourse,
		"GENERAL":  TypeGeneral,
		" geral ":  TypeGeneral,
	}
	for in, want := range tests {
		got, err := ParseType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseType("concert")
	assert.ErrorIs(t, err, domainErrors.ErrValidation)
}

func TestApplyPatch(t *testing.T) {
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	base := Event{
		ID:          "event-1",
		Description: "Rock night",
		Type:        TypeShow,
		SalesStart:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		SalesEnd:    time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		PriceCents:  1000,
	}

	desc := "Jazz night"
	price := int64(2500)
	got := base.Apply(Patch{Description: &desc, PriceCents: &price}, now)

	assert.Equal(t, "Jazz night", got.Description)
	assert.Equal(t, int64(2500), got.PriceCents)
	assert.Equal(t, base.SalesStart, got.SalesStart)
	assert.Equal(t, now, got.UpdatedAt)
	assert.Equal(t, "Rock night", base.Description)
}
