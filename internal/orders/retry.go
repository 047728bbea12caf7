package orders

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// retryableRead reports whether a failed lookup may succeed on another try:
// a connection-level failure, or the per-attempt timeout while the caller is
// still waiting.
func retryableRead(parent context.Context, err error) bool {
	if parent.Err() != nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return true
	}
	return transient(err)
}

// retryableInsert reports whether an insert may be run again without risk of
// storing the order twice: the id was taken, or the statement never reached
// the server.
func retryableInsert(err error) bool {
	return errors.Is(err, ErrIDCollision) || pgconn.SafeToRetry(err)
}

func transient(err error) bool {
	if pgconn.SafeToRetry(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case len(pgErr.Code) == 5 && pgErr.Code[:2] == "08": // connection exception
			return true
		case pgErr.Code == "40001", pgErr.Code == "40P01", pgErr.Code == "57P01", pgErr.Code == "53300":
			return true
		}
		return false
	}

	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
