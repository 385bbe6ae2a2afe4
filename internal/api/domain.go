package api

import (
	"github.com/JaimeStill/attest/internal/verification"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Verification verification.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	return &Domain{
		Verification: verification.New(
			runtime.Classifier,
			runtime.Ledger,
			runtime.Storage,
			runtime.History,
			runtime.Verification,
			runtime.Logger,
		),
	}
}
