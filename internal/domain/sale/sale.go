package sale

import (
	"strings"
	"time"

	domainErrors "github.com/yuzvak/eventsales-service/internal/domain/errors"
)

type Status string

const (
	StatusOpen     Status = "EM_ABERTO"
	StatusPaid     Status = "PAGO"
	StatusCanceled Status = "CANCELADO"
	StatusUsed     Status = "UTILIZADO"
)

var statusAliases = map[string]Status{
	"EM_ABERTO": StatusOpen,
	"OPEN":      StatusOpen,
	"PAGO":      StatusPaid,
	"PAID":      StatusPaid,
	"CANCELADO": StatusCanceled,
	"CANCELED":  StatusCanceled,
	"CANCELLED": StatusCanceled,
	"UTILIZADO": StatusUsed,
	"USED":      StatusUsed,
}

// ParseStatus accepts the stored values and their English names.
func ParseStatus(s string) (Status, error) {
	st, ok := statusAliases[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return "", domainErrors.NewValidationError("status", "unknown sale status")
	}
	return st, nil
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

type Sale struct {
	ID        string
	UserID    string
	EventID   string
	DateTime  time.Time
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSale is the only constructor; every sale starts OPEN with DateTime = now.
func NewSale(id, userID, eventID string, now time.Time) (*Sale, error) {
	if id == "" {
		return nil, domainErrors.NewValidationError("id", "required")
	}
	if strings.TrimSpace(userID) == "" {
		return nil, domainErrors.NewValidationError("userId", "required")
	}
	if strings.TrimSpace(eventID) == "" {
		return nil, domainErrors.NewValidationError("eventId", "required")
	}

	now = now.UTC()
	return &Sale{
		ID:        id,
		UserID:    userID,
		EventID:   eventID,
		DateTime:  now,
		Status:    StatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
