// Package verdict defines the outcome of one resource operation and the kinds of failure it
// can report.
package verdict

import (
	"errors"
	"fmt"

	"github.com/launchdarkly/rest-contract-tests/envelope"
)

// Kind classifies a Failure.
type Kind int

const (
	// PreconditionFailure means a supporting call, such as counting a collection before a
	// create, did not succeed. It always ends the run.
	PreconditionFailure Kind = iota + 1
	StatusMismatch
	CountMismatch
	RoundTripMismatch
	MessageMismatch
	AnomalousSuccess
	// TransportFailure means no response was received at all.
	TransportFailure
)

func (k Kind) String() string {
	switch k {
	case PreconditionFailure:
		return "PreconditionFailure"
	case StatusMismatch:
		return "StatusMismatch"
	case CountMismatch:
		return "CountMismatch"
	case RoundTripMismatch:
		return "RoundTripMismatch"
	case MessageMismatch:
		return "MessageMismatch"
	case AnomalousSuccess:
		return "AnomalousSuccess"
	case TransportFailure:
		return "TransportFailure"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Failure is the error type carried by every failed Verdict.
type Failure struct {
	Kind     Kind
	Message  string
	Expected interface{}
	Actual   interface{}
	Err      error
}

func (f *Failure) Error() string {
	msg := f.Message
	if f.Expected != nil || f.Actual != nil {
		msg = fmt.Sprintf("%s [expected: %v, actual: %v]", msg, f.Expected, f.Actual)
	}
	if f.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, f.Err)
	}
	return msg
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func StatusCodeFailure(expected, actual int) *Failure {
	return &Failure{
		Kind:     StatusMismatch,
		Message:  "The API response did not match the expected status code.",
		Expected: expected,
		Actual:   actual,
	}
}

// CountFailure reports that a collection did not grow by exactly one after a create.
func CountFailure(expected, actual int) *Failure {
	return &Failure{
		Kind:    CountMismatch,
		Message: fmt.Sprintf("Count verification failed [expected: %d, returned: %d]", expected, actual),
	}
}

// QueryFailure reports that a created resource could not be fetched back.
func QueryFailure(id interface{}, err error) *Failure {
	return &Failure{
		Kind:    RoundTripMismatch,
		Message: fmt.Sprintf("Failed to query user by id - %v", id),
		Err:     err,
	}
}

// ContentFailure reports that a fetched resource does not match what was sent.
func ContentFailure(diff error) *Failure {
	return &Failure{
		Kind:    RoundTripMismatch,
		Message: "Created resource does not match the payload",
		Err:     diff,
	}
}

func Precondition(message string, err error) *Failure {
	return &Failure{Kind: PreconditionFailure, Message: message, Err: err}
}

func Transport(err error) *Failure {
	return &Failure{Kind: TransportFailure, Message: "No response from the API", Err: err}
}

// KindOf returns the Kind of the first Failure in err's chain, or zero if there is none.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return 0
}

// Verdict is the result of one resource operation.
type Verdict struct {
	Envelope *envelope.Envelope
	Err      error
	Success  bool
}

func Pass(e *envelope.Envelope) Verdict {
	return Verdict{Envelope: e, Success: true}
}

func Fail(e *envelope.Envelope, err error) Verdict {
	return Verdict{Envelope: e, Err: err}
}

// IsPrecondition reports whether the verdict failed because a supporting call failed.
func (v Verdict) IsPrecondition() bool {
	return !v.Success && KindOf(v.Err) == PreconditionFailure
}
