package apperr

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation recognizes a duplicate-key failure from any driver we
// run on: gorm's translated error, pgx, lib/pq, and sqlite messages.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, pgUniqueViolation)
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// FromStore maps a store error: not-found and duplicate keys become domain
// errors, everything else is Internal.
func FromStore(err error, notFoundMsg, conflictMsg string) error {
	switch {
	case err == nil:
		return nil
	case IsNotFound(err):
		return NotFound(notFoundMsg)
	case IsUniqueViolation(err):
		return Conflict(conflictMsg, err)
	default:
		if _, ok := As(err); ok {
			return err
		}
		return Internal("database error", err)
	}
}
