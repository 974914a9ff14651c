// Package storage persists links and click records in PostgreSQL and
// serves the aggregate reads behind the reporting endpoints.
package storage

import (
	"errors"

	"github.com/lib/pq"
)

// pqUniqueViolation is the SQLSTATE for unique_violation.
const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
