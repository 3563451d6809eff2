package postgres

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/velmie/skiplock"
)

// SQLSTATE codes worth retrying on a later pass.
const (
	classConnectionException = "08"
	codeSerialization        = "40001"
	codeDeadlock             = "40P01"
	codeLockNotAvailable     = "55P03"
	codeAdminShutdown        = "57P01"
	codeTooManyConnections   = "53300"
)

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if isTransient(err) {
		return &skiplock.TransientError{Op: "postgres " + op, Err: err}
	}

	return fmt.Errorf("skiplock postgres: %s failed: %w", op, err)
}

func isTransient(err error) bool {
	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerialization, codeDeadlock, codeLockNotAvailable, codeAdminShutdown, codeTooManyConnections:
			return true
		}

		return strings.HasPrefix(pgErr.Code, classConnectionException)
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr)
}
