package database

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/assetledger/backend/internal/apierrors"
)

const pqUniqueViolation = "23505"

// translate maps a raw SQL error onto the apierrors taxonomy so repository
// callers never have to know about database/sql or lib/pq directly.
func translate(op, resource string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apierrors.NotFound(resource, "")
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return apierrors.Conflict(resource + " already exists")
	}
	return apierrors.Database(op, err)
}
