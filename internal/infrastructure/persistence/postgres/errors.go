package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/lib/pq"

	domainErrors "github.com/yuzvak/eventsales-service/internal/domain/errors"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeInvalidText         = "22P02"
	codeNumericOutOfRange   = "22003"
)

// sqlState extracts the SQLSTATE from either driver's error type.
func sqlState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func constraintName(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// classify maps a driver error to the domain vocabulary. Codes listed in
// overrides win over the defaults; anything unrecognised is a storage failure.
func classify(op string, err error, notFound error, overrides map[string]error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}

	code := sqlState(err)
	if mapped, ok := overrides[code]; ok {
		return mapped
	}

	switch code {
	case codeUniqueViolation:
		return fmt.Errorf("%s: %w", op, domainErrors.ErrConflict)
	case codeInvalidText:
		return notFound
	case codeCheckViolation:
		return domainErrors.NewValidationError(constraintName(err), "rejected by storage constraint")
	case codeNumericOutOfRange:
		// price is the only numeric column.
		return domainErrors.NewValidationError("price", "exceeds maximum")
	}

	return domainErrors.NewStorageError(op, err)
}
