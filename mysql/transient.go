package mysql

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	mysqldriver "github.com/go-sql-driver/mysql"

	"github.com/velmie/skiplock"
)

// Server error numbers worth retrying on a later pass.
const (
	errTooManyConnections = 1040
	errServerShutdown     = 1053
	errLockWaitTimeout    = 1205
	errDeadlock           = 1213
)

// wrapErr classifies err and annotates it with op.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if isTransient(err) {
		return &skiplock.TransientError{Op: "mysql " + op, Err: err}
	}

	return fmt.Errorf("skiplock mysql: %s failed: %w", op, err)
}

func isTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysqldriver.ErrInvalidConn) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case errTooManyConnections, errServerShutdown, errLockWaitTimeout, errDeadlock:
			return true
		}

		return false
	}

	var netErr net.Error

	return errors.As(err, &netErr)
}
