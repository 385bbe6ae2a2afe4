package verification

import (
	"github.com/JaimeStill/attest/internal/history"
	"github.com/JaimeStill/attest/pkg/classifier"
	"github.com/JaimeStill/attest/pkg/storage"
)

// State names a step of a single verification.
type State string

const (
	StateReceived         State = "received"
	StateHashing          State = "hashing"
	StateClassifying      State = "classifying"
	StateRecording        State = "recording"
	StateRecordingSkipped State = "recording_skipped"
	StateCompleted        State = "completed"
	StateFailed           State = "failed"
	StateInvalid          State = "invalid"
)

// Upload is a submitted document. It lives for one request.
type Upload struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Document is an archived original. The caller must close Body.
type Document struct {
	Filename string
	*storage.Blob
}

// Result is the response to a completed verification: the stored record
// plus the identifier under which it can be fetched again.
type Result struct {
	VerificationID string `json:"verification_id"`
	history.Record
}

// OutcomeFor maps a fraud risk onto a verdict. Only Low is Genuine;
// Medium, High and unrecognized levels are Invalid.
func OutcomeFor(risk classifier.Risk) history.Outcome {
	if risk == classifier.RiskLow {
		return history.Genuine
	}
	return history.Invalid
}
