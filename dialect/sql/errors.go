package sql

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// isUniqueViolation reports whether err is a unique-constraint breach from
// any of the supported drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqe *pq.Error
	if errors.As(err, &pqe) {
		return pqe.Code == "23505"
	}
	var mye *mysql.MySQLError
	if errors.As(err, &mye) {
		return mye.Number == 1062
	}
	// modernc.org/sqlite wraps constraint failures without a typed code we
	// can depend on across versions; match the message.
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "violates unique constraint")
}
