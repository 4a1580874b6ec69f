package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrConflict indicates a unique or concurrency conflict.
	ErrConflict = errors.New("store conflict")
	// ErrRetryable indicates a transient failure worth another attempt later.
	ErrRetryable = errors.New("store retryable")
	// ErrNotFound indicates a missing row.
	ErrNotFound = errors.New("store not found")
	// ErrInternal is everything else.
	ErrInternal = errors.New("store internal")
)

// Classify maps driver and gorm failures onto the store error categories. The result wraps
// err, so errors.Is works against both the category and the original.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrConflict), errors.Is(err, ErrRetryable), errors.Is(err, ErrNotFound), errors.Is(err, ErrInternal):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Join(ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Join(ErrConflict, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errors.Join(ErrRetryable, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505": // unique_violation
			return errors.Join(ErrConflict, err)
		case "40001", "40P01", "55P03": // serialization, deadlock, lock_not_available
			return errors.Join(ErrRetryable, err)
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "unique constraint"):
		return errors.Join(ErrConflict, err)
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "database is locked"):
		return errors.Join(ErrRetryable, err)
	default:
		return errors.Join(ErrInternal, err)
	}
}

// Kind names the category for log fields.
func Kind(err error) string {
	c := Classify(err)
	switch {
	case c == nil:
		return ""
	case errors.Is(c, ErrConflict):
		return "conflict"
	case errors.Is(c, ErrRetryable):
		return "retryable"
	case errors.Is(c, ErrNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
