package repositories

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"social-service/internal/apperror"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation
}

// wrapStore classifies an unexpected driver or network failure as a transient
// store error so callers know the operation may be retried with backoff.
// Already-classified errors and row-shape sentinels pass through untouched.
func wrapStore(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return err
	}
	return apperror.Transient(err)
}
