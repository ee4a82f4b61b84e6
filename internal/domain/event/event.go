package event

import (
	"strings"
	"time"

	domainErrors "github.com/yuzvak/eventsales-service/internal/domain/errors"
)

type Type string

const (
	TypeLecture Type = "PALESTRA"
	TypeShow    Type = "SHOW"
	TypeTheater Type = "TEATRO"
	TypeCourse  Type = "CURSO"
	TypeGeneral Type = "GERAL"
)

var typeAliases = map[string]Type{
	"PALESTRA": TypeLecture,
	"LECTURE":  TypeLecture,
	"SHOW":     TypeShow,
	"TEATRO":   TypeTheater,
	"THEATER":  TypeTheater,
	"THEATRE":  TypeTheater,
	"CURSO":    TypeCourse,
	"COURSE":   TypeCourse,
	"GERAL":    TypeGeneral,
	"GENERAL":  TypeGeneral,
}

// ParseType accepts the stored values and their English names.
func ParseType(s string) (Type, error) {
	t, ok := typeAliases[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return "", domainErrors.NewValidationError("type", "unknown event type")
	}
	return t, nil
}

func (t Type) Valid() bool {
	switch t {
	case TypeLecture, TypeShow, TypeTheater, TypeCourse, TypeGeneral:
		return true
	default:
		return false
	}
}

type Event struct {
	ID          string
	Description string
	Type        Type
	Location    string
	OccursAt    time.Time
	SalesStart  time.Time
	SalesEnd    time.Time
	PriceCents  int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewEvent(id, description string, typ Type, occursAt, salesStart, salesEnd time.Time, priceCents int64, now time.Time) (*Event, error) {
	e := &Event{
		ID:          id,
		Description: strings.TrimSpace(description),
		Type:        typ,
		OccursAt:    occursAt.UTC(),
		SalesStart:  salesStart.UTC(),
		SalesEnd:    salesEnd.UTC(),
		PriceCents:  priceCents,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// MaxPriceCents is the largest price the events table can hold (NUMERIC(12,2)).
const MaxPriceCents int64 = 999_999_999_999

// Validate enforces the write-time invariants of an event record.
func (e *Event) Validate() error {
	if e.ID == "" {
		return domainErrors.NewValidationError("id", "required")
	}
	if strings.TrimSpace(e.Description) == "" {
		return domainErrors.NewValidationError("description", "required")
	}
	if !e.Type.Valid() {
		return domainErrors.NewValidationError("type", "unknown event type")
	}
	if e.OccursAt.IsZero() {
		return domainErrors.NewValidationError("dateTime", "required")
	}
	if e.SalesStart.IsZero() {
		return domainErrors.NewValidationError("startingSales", "required")
	}
	if e.SalesEnd.IsZero() {
		return domainErrors.NewValidationError("endingSales", "required")
	}
	if e.PriceCents < 0 {
		return domainErrors.NewValidationError("price", "must not be negative")
	}
	if e.PriceCents > MaxPriceCents {
		return domainErrors.NewValidationError("price", "exceeds maximum")
	}
	if !e.SalesStart.Before(e.SalesEnd) {
		return domainErrors.ErrInvalidEventWindow
	}
	return nil
}

// Patch holds the fields of a partial update; nil means unchanged.
type Patch struct {
	Description *string
	Type        *Type
	Location    *string
	OccursAt    *time.Time
	SalesStart  *time.Time
	SalesEnd    *time.Time
	PriceCents  *int64
}

// Apply returns a copy of e with the patch applied. The result is not validated.
func (e Event) Apply(p Patch, now time.Time) Event {
	if p.Description != nil {
		e.Description = strings.TrimSpace(*p.Description)
	}
	if p.Type != nil {
		e.Type = *p.Type
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.OccursAt != nil {
		e.OccursAt = p.OccursAt.UTC()
	}
	if p.SalesStart != nil {
		e.SalesStart = p.SalesStart.UTC()
	}
	if p.SalesEnd != nil {
		e.SalesEnd = p.SalesEnd.UTC()
	}
	if p.PriceCents != nil {
		e.PriceCents = *p.PriceCents
	}
	e.UpdatedAt = now.UTC()
	return e
}
