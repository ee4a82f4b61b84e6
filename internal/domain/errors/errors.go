package errors

import (
	"errors"
	"fmt"
)

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrSaleNotFound       = errors.New("sale not found")
	ErrSalesWindowClosed  = errors.New("sales window is closed")
	ErrIllegalTransition  = errors.New("illegal sale status transition")
	ErrInvalidEventWindow = errors.New("sales start must be before sales end")
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Kind names are stable identifiers handed to callers; they never change with messages.
const (
	KindEventNotFound      = "EventNotFound"
	KindSaleNotFound       = "SaleNotFound"
	KindSalesWindowClosed  = "SalesWindowClosed"
	KindIllegalTransition  = "IllegalTransition"
	KindInvalidEventWindow = "InvalidEventWindow"
	KindValidationError    = "ValidationError"
	KindConflict           = "Conflict"
	KindStorageUnavailable = "StorageUnavailable"
	KindInternal           = "Internal"
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrEventNotFound, KindEventNotFound},
	{ErrSaleNotFound, KindSaleNotFound},
	{ErrSalesWindowClosed, KindSalesWindowClosed},
	{ErrIllegalTransition, KindIllegalTransition},
	{ErrInvalidEventWindow, KindInvalidEventWindow},
	{ErrValidation, KindValidationError},
	{ErrConflict, KindConflict},
	{ErrStorageUnavailable, KindStorageUnavailable},
}

// Kind returns the error kind of err, or KindInternal when it is not a domain error.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// Retryable reports whether a caller may retry the failed operation.
func Retryable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}

// IllegalTransitionError carries the attempted status pair.
type IllegalTransitionError struct {
	From string
	To   string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal sale status transition %s -> %s", e.From, e.To)
}

func (e *IllegalTransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}

const (
	WindowNotYetOpen    = "not_yet_open"
	WindowAlreadyClosed = "already_closed"
	WindowInvalid       = "invalid_window"
)

// SalesWindowError tells why the admission check failed.
type SalesWindowError struct {
	Reason string
}

func (e *SalesWindowError) Error() string {
	return "sales window is closed: " + e.Reason
}

func (e *SalesWindowError) Is(target error) bool {
	return target == ErrSalesWindowClosed
}

// ValidationError is a field-level input failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// StorageError wraps a store failure (connectivity, driver error).
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
