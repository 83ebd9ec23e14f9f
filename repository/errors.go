package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// StoreErrorKind classifies a data store failure
type StoreErrorKind string

const (
	KindNotFound    StoreErrorKind = "NOT_FOUND"
	KindConstraint  StoreErrorKind = "CONSTRAINT_VIOLATION"
	KindInvalid     StoreErrorKind = "INVALID_REQUEST"
	KindUnavailable StoreErrorKind = "STORE_UNAVAILABLE"
)

// StoreError is the only error kind returned by the entity stores
type StoreError struct {
	Kind    StoreErrorKind
	Op      string
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new store error
func NewStoreError(kind StoreErrorKind, op, message string, err error) *StoreError {
	return &StoreError{Kind: kind, Op: op, Message: message, Err: err}
}

func notFound(op, entity string, id any) *StoreError {
	return NewStoreError(KindNotFound, op, fmt.Sprintf("%s %v not found", entity, id), nil)
}

// toStoreError classifies err and wraps it. StoreErrors pass through unchanged.
func toStoreError(op string, err error) error {
	if err == nil {
		return nil
	}

	var se *StoreError
	if errors.As(err, &se) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewStoreError(KindNotFound, op, "record not found", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return NewStoreError(KindConstraint, op, "duplicate value", err)
		case "23503":
			return NewStoreError(KindConstraint, op, "referenced record is missing or still in use", err)
		case "23502", "23514", "23P01":
			return NewStoreError(KindConstraint, op, "constraint violated", err)
		case "22P02", "22001", "22003", "22007", "22008", "42703", "42601", "42804":
			return NewStoreError(KindInvalid, op, "rejected by the store", err)
		}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return NewStoreError(KindUnavailable, op, "request cancelled", err)
	}

	return NewStoreError(KindUnavailable, op, "store unavailable", err)
}

func kindOf(err error) (StoreErrorKind, bool) {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return "", false
}

// IsNotFound checks if the error is a not-found store error
func IsNotFound(err error) bool {
	kind, ok := kindOf(err)
	return ok && kind == KindNotFound
}

func IsConstraint(err error) bool {
	kind, ok := kindOf(err)
	return ok && kind == KindConstraint
}

func IsInvalid(err error) bool {
	kind, ok := kindOf(err)
	return ok && kind == KindInvalid
}

func IsUnavailable(err error) bool {
	kind, ok := kindOf(err)
	return ok && kind == KindUnavailable
}
