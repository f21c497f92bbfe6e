// Package report turns verdicts into tagged console diagnostics and decides whether a failed
// step ends the run.
package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/launchdarkly/rest-contract-tests/envelope"
	"github.com/launchdarkly/rest-contract-tests/framework"
	"github.com/launchdarkly/rest-contract-tests/verdict"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// messageKeys are the fields of a JSON error body that may hold the error message, in the
// order they are tried.
var messageKeys = []string{"message", "debugMessage", "statusMessage", "codeDesc", "errorMessage"}

// Config controls how failures are handled.
type Config struct {
	// ContinueOnError keeps the run going after a failed step. When false, the first failure
	// exits the process with status 1.
	ContinueOnError bool

	// Exit is called to end the process. It defaults to os.Exit.
	Exit func(code int)
}

// Step identifies what was attempted, for example Subject "2", ResourceType "User",
// Operation "Get".
type Step struct {
	Subject      interface{}
	ResourceType string
	Operation    string
}

// ExpectedMessage is an expected error message: either a substring or a list of exact values.
type ExpectedMessage struct {
	substring string
	oneOf     []string
	defined   bool
}

func MessageContaining(s string) ExpectedMessage {
	return ExpectedMessage{substring: s, defined: true}
}

func MessageOneOf(values ...string) ExpectedMessage {
	return ExpectedMessage{oneOf: append([]string{}, values...), defined: true}
}

func (m ExpectedMessage) IsDefined() bool { return m.defined }

func (m ExpectedMessage) matches(actual string) bool {
	if m.oneOf != nil {
		for _, v := range m.oneOf {
			if v == actual {
				return true
			}
		}
		return false
	}
	return strings.Contains(actual, m.substring)
}

func (m ExpectedMessage) String() string {
	if m.oneOf != nil {
		return "[" + strings.Join(m.oneOf, ", ") + "]"
	}
	return m.substring
}

// Expectation describes whether a step should succeed and, if not, how it should fail.
type Expectation struct {
	ShouldPass    bool
	Message       ExpectedMessage
	FailureStatus ldvalue.OptionalInt
}

// ShouldPass is the expectation for an ordinary step.
func ShouldPass() Expectation {
	return Expectation{ShouldPass: true}
}

// ShouldBeDenied is the expectation for a step that the service must refuse.
func ShouldBeDenied(status int, message ExpectedMessage) Expectation {
	exp := Expectation{Message: message}
	if status != 0 {
		exp.FailureStatus = ldvalue.NewOptionalInt(status)
	}
	return exp
}

// Reporter renders verdicts. It is not safe for concurrent use.
type Reporter struct {
	console  *framework.Console
	config   Config
	failures []error
}

func NewReporter(console *framework.Console, config Config) *Reporter {
	if config.Exit == nil {
		config.Exit = os.Exit
	}
	if console == nil {
		console = framework.NewConsole(nil, false)
	}
	return &Reporter{console: console, config: config}
}

// Console returns the console that the reporter writes to.
func (r *Reporter) Console() *framework.Console {
	return r.console
}

// Failures returns everything recorded as a failure so far in continue mode.
func (r *Reporter) Failures() []error {
	return append([]error(nil), r.failures...)
}

// Report prints the outcome of one step and returns true if it went as expected. A verdict
// that failed a precondition is always fatal.
func (r *Reporter) Report(v verdict.Verdict, step Step, exp Expectation) bool {
	if v.Envelope != nil {
		r.console.Curl(v.Envelope.ReplayCommand)
	}
	if v.IsPrecondition() {
		r.Fatal(v.Envelope, v.Err)
		return false
	}

	op := step.Operation
	switch {
	case v.Success && exp.ShouldPass:
		r.console.Info("%s operation on %s [%v] was successful.", titleCase(op), step.ResourceType, step.Subject)
		return true

	case v.Success:
		return r.fail(&verdict.Failure{
			Kind:    verdict.AnomalousSuccess,
			Message: fmt.Sprintf("Unprivileged %s operation on %s [%v] was successful.", op, step.ResourceType, step.Subject),
		})

	case exp.ShouldPass:
		r.console.Error("Failed to %s %s [%v].", op, step.ResourceType, step.Subject)
		if v.Err != nil {
			r.console.Error("%s", v.Err)
		}
		return r.record(v.Err, fmt.Sprintf("failed to %s %s [%v]", op, step.ResourceType, step.Subject))
	}

	// An unanswered call denied nothing.
	if verdict.KindOf(v.Err) == verdict.TransportFailure {
		r.console.Error("Failed to %s %s [%v].", op, step.ResourceType, step.Subject)
		r.console.Error("%s", v.Err)
		return r.record(v.Err, "")
	}
	r.console.Info("Failed to %s %s [%v] (unprivileged operation).", op, step.ResourceType, step.Subject)
	return r.verifyDenial(v.Envelope, step, exp)
}

func (r *Reporter) verifyDenial(e *envelope.Envelope, step Step, exp Expectation) bool {
	status := 0
	if e != nil {
		status = e.StatusCode
	}
	ok := true

	if status == 500 && exp.FailureStatus.OrElse(0) != 500 {
		ok = r.fail(&verdict.Failure{
			Kind:    verdict.StatusMismatch,
			Message: fmt.Sprintf("Failed to %s %s [%v] with 500 status code.", step.Operation, step.ResourceType, step.Subject),
		})
	}

	if exp.FailureStatus.IsDefined() {
		expected := exp.FailureStatus.IntValue()
		r.console.Info("Verifying status code for %s %s", step.Operation, step.ResourceType)
		if status != expected {
			r.console.Debug("Actual code: [%d]", status)
			r.console.Debug("Expected code: [%d]", expected)
			ok = r.fail(&verdict.Failure{
				Kind:     verdict.StatusMismatch,
				Message:  "Failed to verify status code.",
				Expected: expected,
				Actual:   status,
			})
		} else {
			r.console.Info("Status code [%d] verified.", expected)
		}
	}

	if exp.Message.IsDefined() {
		r.console.Info("Verifying error message for %s %s", step.Operation, step.ResourceType)
		actual, found := ErrorMessage(e)
		if !found {
			if e != nil {
				r.console.Pretty(e.Dump())
			}
			return r.fail(&verdict.Failure{Kind: verdict.MessageMismatch, Message: "No error message found."})
		}
		if !exp.Message.matches(actual) {
			r.console.Debug("Actual message: [%s]", actual)
			r.console.Debug("Expected message: [%s]", exp.Message)
			return r.fail(&verdict.Failure{
				Kind:     verdict.MessageMismatch,
				Message:  "Error message is not correct.",
				Expected: exp.Message.String(),
				Actual:   actual,
			})
		}
		r.console.Info("Error message [%s] verified.", actual)
	}
	return ok
}

// ErrorMessage returns the first non-empty string among the known message fields of a JSON
// object body.
func ErrorMessage(e *envelope.Envelope) (string, bool) {
	value, ok := e.JSON()
	if !ok || value.Type() != ldvalue.ObjectType {
		return "", false
	}
	for _, key := range messageKeys {
		if v, present := value.TryGetByKey(key); present {
			if s := v.StringValue(); s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// Fatal reports a failure that always ends the run, regardless of ContinueOnError.
func (r *Reporter) Fatal(e *envelope.Envelope, err error) {
	r.console.Error("%s", err)
	if e != nil && e.StatusCode != 0 {
		r.console.Debug("API Response:")
		r.console.Pretty(e.Dump())
	}
	r.failures = append(r.failures, err)
	r.config.Exit(1)
}

func (r *Reporter) fail(f *verdict.Failure) bool {
	r.console.Error("%s", f.Message)
	return r.record(f, "")
}

func (r *Reporter) record(err error, fallback string) bool {
	if err == nil {
		err = fmt.Errorf("%s", fallback)
	}
	r.failures = append(r.failures, err)
	if !r.config.ContinueOnError {
		r.config.Exit(1)
	}
	return false
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
