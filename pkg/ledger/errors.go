package ledger

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Normalized failure descriptions carried by failed receipts.
var (
	ErrUnavailable = errors.New("ledger unavailable")
	ErrRejected    = errors.New("submission rejected")
	ErrReverted    = errors.New("transaction reverted")
	ErrTimeout     = errors.New("transaction timeout")
)

// ErrCredential indicates the signing key could not be resolved.
var ErrCredential = errors.New("ledger credential unavailable")

var errAlreadyRecorded = errors.New("already recorded")

// classify maps a backend error onto a normalized failure, using fallback
// when the cause is neither a deadline nor a network fault.
func classify(ctx context.Context, err, fallback error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrUnavailable
	}
	return fallback
}

func alreadyVerified(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "already verified")
}
