package verification

import (
	"errors"
	"log/slog"
	"net/http"
)

// Domain errors for verification operations. Each carries a stable kind
// reported to clients alongside the message.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrClassifierUnavailable = errors.New("classifier unavailable")
	ErrClassifierRejected    = errors.New("classifier rejected the document")
	ErrClassifierProtocol    = errors.New("classifier returned an unusable response")
	ErrTextUnsupported       = errors.New("text verification is not configured")
	ErrNotFound              = errors.New("verification not found")
	ErrNotArchived           = errors.New("document not archived")
	ErrHistory               = errors.New("history unavailable")
	ErrArchive               = errors.New("archive unavailable")
)

var kinds = map[error]string{
	ErrInvalidInput:          "invalid_input",
	ErrClassifierUnavailable: "classifier_unavailable",
	ErrClassifierRejected:    "classifier_rejected",
	ErrClassifierProtocol:    "classifier_protocol_error",
	ErrTextUnsupported:       "text_unsupported",
	ErrNotFound:              "not_found",
	ErrNotArchived:           "not_found",
	ErrHistory:               "history_failure",
	ErrArchive:               "archive_failure",
}

// Failure pairs a domain error with a client-safe detail and the
// underlying cause. Only the cause-free message is returned to clients;
// the cause is included when the failure is logged.
type Failure struct {
	Err    error
	Detail string
	Cause  error
}

func fail(err error, detail string, cause error) *Failure {
	return &Failure{Err: err, Detail: detail, Cause: cause}
}

func (f *Failure) Error() string {
	if f.Detail == "" {
		return f.Err.Error()
	}
	return f.Err.Error() + ": " + f.Detail
}

func (f *Failure) Unwrap() []error {
	if f.Cause == nil {
		return []error{f.Err}
	}
	return []error{f.Err, f.Cause}
}

// Kind returns the machine-readable kind of the wrapped domain error.
func (f *Failure) Kind() string {
	if k, ok := kinds[f.Err]; ok {
		return k
	}
	return "internal"
}

// LogValue implements slog.LogValuer.
func (f *Failure) LogValue() slog.Value {
	if f.Cause == nil {
		return slog.StringValue(f.Error())
	}
	return slog.StringValue(f.Error() + ": " + f.Cause.Error())
}

// MapHTTPStatus maps verification errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrClassifierUnavailable),
		errors.Is(err, ErrClassifierRejected),
		errors.Is(err, ErrClassifierProtocol),
		errors.Is(err, ErrArchive):
		return http.StatusBadGateway
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNotArchived):
		return http.StatusNotFound
	case errors.Is(err, ErrTextUnsupported):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}
