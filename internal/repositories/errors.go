package repositories

import (
	"database/sql"
	"errors"

	intdb "busbooking/internal/db"
	"busbooking/internal/domain"
)

// classify maps driver errors onto domain errors so callers never inspect
// MySQL error numbers.
func classify(op, resource, key string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return domain.NotFoundError{Resource: resource, Key: key, Err: err}
	case intdb.IsDuplicateKey(err):
		return domain.DuplicateError{Resource: resource, Key: key, Err: err}
	case intdb.IsLockTimeout(err):
		return domain.ConflictError{Resource: resource, Msg: op + ": row is locked by another booking, retry later", Err: err}
	case intdb.IsConnError(err):
		return domain.UnavailableError{Op: op, Err: err}
	}
	return domain.InternalError{Msg: op, Err: err}
}
