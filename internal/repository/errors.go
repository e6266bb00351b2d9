package repository

import (
	"errors"

	"github.com/lib/pq"
)

// PostgreSQL SQLSTATE codes the repositories translate.
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	errCodeUniqueViolation     = "23505"
	errCodeForeignKeyViolation = "23503"
)

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pqCode(err) == errCodeUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pqCode(err) == errCodeForeignKeyViolation
}
