// Package toolerr classifies handler failures. All of them are rendered as
// text results by the dispatcher; the class only feeds logs and metrics.
package toolerr

import (
	"context"
	"errors"
	"fmt"
)

// Outcome labels.
const (
	OutcomeOK        = "ok"
	OutcomeDomain    = "domain_error"
	OutcomeTransport = "transport_error"
	OutcomeTimeout   = "timeout"
	OutcomeError     = "error"
)

// DomainError is a handler condition that is a meaningful answer rather than
// a fault, such as division by zero or an unknown address.
type DomainError struct {
	Msg string
}

func (e *DomainError) Error() string { return e.Msg }

// Domainf builds a DomainError.
func Domainf(format string, args ...any) error {
	return &DomainError{Msg: fmt.Sprintf(format, args...)}
}

// TransportFault is an upstream call that returned a non-2xx status or a body
// that could not be parsed.
type TransportFault struct {
	Service string
	Status  int
	Err     error
}

func (e *TransportFault) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s request failed: status %d: %v", e.Service, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s request failed: status %d", e.Service, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s request failed: %v", e.Service, e.Err)
	default:
		return e.Service + " request failed"
	}
}

func (e *TransportFault) Unwrap() error { return e.Err }

// Classify returns the outcome label for err.
func Classify(err error) string {
	if err == nil {
		return OutcomeOK
	}
	var de *DomainError
	if errors.As(err, &de) {
		return OutcomeDomain
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return OutcomeTimeout
	}
	var tf *TransportFault
	if errors.As(err, &tf) {
		return OutcomeTransport
	}
	return OutcomeError
}
