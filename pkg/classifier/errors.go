package classifier

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable indicates the classifier could not be reached or timed out.
	ErrUnavailable = errors.New("classifier unavailable")
	// ErrRejected indicates the classifier answered with a non-2xx status.
	ErrRejected = errors.New("classifier rejected request")
	// ErrProtocol indicates the classifier answered with an unusable body.
	ErrProtocol = errors.New("classifier protocol error")
	// ErrTextUnsupported indicates no text endpoint is configured.
	ErrTextUnsupported = errors.New("classifier text endpoint not configured")
)

// RejectedError carries the status and body of a non-2xx classifier response.
type RejectedError struct {
	StatusCode int
	Body       string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: status %d", ErrRejected, e.StatusCode)
}

func (e *RejectedError) Unwrap() error {
	return ErrRejected
}
