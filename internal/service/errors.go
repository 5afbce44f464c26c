package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/lib/pq"

	appErrors "github.com/noah-isme/discipulus-api/pkg/errors"
)

// storageError maps a repository failure onto the public error kinds.
// Connection level failures surface as retryable transient errors.
func storageError(err error, message string) *appErrors.Error {
	if isTransient(err) {
		return appErrors.Transient(err, message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		class := string(pqErr.Code.Class())
		return class == "08" || class == "53" || class == "57" || class == "40"
	}
	return strings.Contains(err.Error(), "connection refused")
}

func notFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
