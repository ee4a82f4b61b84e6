package event

import (
	"time"

	domainErrors "github.com/yuzvak/eventsales-service/internal/domain/errors"
)

// IsWithinSalesWindow reports whether now falls in [SalesStart, SalesEnd].
// Both ends are inclusive. A window with SalesStart >= SalesEnd is never open.
// OccursAt is not consulted.
func IsWithinSalesWindow(e *Event, now time.Time) bool {
	return CheckSalesWindow(e, now) == nil
}

// CheckSalesWindow is IsWithinSalesWindow with the reason for a closed window.
func CheckSalesWindow(e *Event, now time.Time) error {
	if e == nil || !e.SalesStart.Before(e.SalesEnd) {
		return &domainErrors.SalesWindowError{Reason: domainErrors.WindowInvalid}
	}
	if now.Before(e.SalesStart) {
		return &domainErrors.SalesWindowError{Reason: domainErrors.WindowNotYetOpen}
	}
	if now.After(e.SalesEnd) {
		return &domainErrors.SalesWindowError{Reason: domainErrors.WindowAlreadyClosed}
	}
	return nil
}
