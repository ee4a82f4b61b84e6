package sale

import (
	domainErrors "github.com/yuzvak/eventsales-service/internal/domain/errors"
)

// transitions lists, per status, the statuses it may move to.
// OPEN -> USED is deliberately absent: payment precedes use.
var transitions = map[Status][]Status{
	StatusOpen:     {StatusPaid, StatusCanceled},
	StatusPaid:     {StatusUsed, StatusCanceled},
	StatusCanceled: nil,
	StatusUsed:     nil,
}

// CanTransition reports whether from -> to is allowed. Same-state moves never are.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition returns an IllegalTransitionError when from -> to is not allowed.
func CheckTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return &domainErrors.IllegalTransitionError{From: string(from), To: string(to)}
	}
	return nil
}

// Statuses returns every status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusOpen, StatusPaid, StatusCanceled, StatusUsed}
}
