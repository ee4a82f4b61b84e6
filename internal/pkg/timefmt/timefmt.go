package timefmt

import (
	"strings"
	"time"

	domainErrors "github.com/yuzvak/eventsales-service/internal/domain/errors"
)

const (
	secondLayout = "2006-01-02T15:04:05"
	minuteLayout = "2006-01-02T15:04"
	minuteLen    = len(minuteLayout)
)

var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	secondLayout,
	minuteLayout,
}

// Parse reads an ISO-8601 timestamp. Values without an offset are UTC.
// Fractional seconds are accepted and truncated, so the stored instant is
// always the one Format renders.
func Parse(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, domainErrors.NewValidationError(field, "required")
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC().Truncate(time.Second), nil
		}
	}
	return time.Time{}, domainErrors.NewValidationError(field, "invalid timestamp")
}

// Format renders t in UTC with second precision.
func Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// ToInputMinutes truncates a timestamp string to YYYY-MM-DDTHH:MM for editing.
func ToInputMinutes(value string) string {
	if len(value) < minuteLen {
		return value
	}
	return value[:minuteLen]
}

// FromInputMinutes re-appends ":00" to a minute-precision value.
// Anything else is returned untouched, so values that already carry seconds round-trip.
func FromInputMinutes(value string) string {
	if len(value) != minuteLen {
		return value
	}
	return value + ":00"
}
