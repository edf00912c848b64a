package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/lib/pq"
	apperrors "github.com/zatekoja/courtside/pkg/errors"
)

const pqUniqueViolation = "23505"

// classify maps a driver error onto the application error taxonomy.
// Connection-class failures become UNAVAILABLE so callers can tell a
// transient store outage from a broken query.
func classify(message string, err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code := string(pqErr.Code)
		switch {
		case code == pqUniqueViolation:
			return &apperrors.AppError{Type: apperrors.ErrorTypeConflict, Message: message, Err: err}
		case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "57P"):
			return apperrors.NewUnavailableError(message, err)
		}
		return apperrors.NewInternalError(message, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewUnavailableError(message, err)
	}

	return apperrors.NewInternalError(message, err)
}

// isUniqueViolation reports whether err came from a unique index
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation
}
