package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a record does not exist, its identifier is
// malformed, or it is not visible to the caller.
var ErrNotFound = errors.New("not found")

// NotFoundError is an ErrNotFound with a client-facing message.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound returns an error matching ErrNotFound that carries message.
func NotFound(message string) error {
	return &NotFoundError{Message: message}
}

// ConflictError is returned when a write collides with existing application state.
type ConflictError struct {
	Code    string
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Is(target error) bool {
	_, ok := target.(*ConflictError)
	return ok
}

// ErrConflict matches any *ConflictError with errors.Is.
var ErrConflict = &ConflictError{Code: "CONFLICT", Message: "conflict"}

const (
	pgUniqueViolation           = "23505"
	pgInvalidTextRepresentation = "22P02"
)

// DuplicateKeyError reports a unique constraint collision on Field.
type DuplicateKeyError struct {
	Field string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate %s", e.Field)
}

// ErrDuplicateKey matches any *DuplicateKeyError with errors.Is.
var ErrDuplicateKey = &DuplicateKeyError{}

func (e *DuplicateKeyError) Is(target error) bool {
	_, ok := target.(*DuplicateKeyError)
	return ok
}

// MapError translates driver errors into the package sentinels. Unknown errors
// are returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &DuplicateKeyError{Field: constraintField(pgErr.TableName, pgErr.ConstraintName)}
		case pgInvalidTextRepresentation:
			return ErrNotFound
		}
	}
	return err
}

// constraintField recovers the column from postgres' default "<table>_<column>_key" naming.
func constraintField(table, constraint string) string {
	name := strings.TrimSuffix(constraint, "_key")
	if table != "" {
		name = strings.TrimPrefix(name, table+"_")
	}
	if name == "" {
		return "value"
	}
	return name
}
