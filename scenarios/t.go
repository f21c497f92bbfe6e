package scenarios

import (
	"github.com/launchdarkly/rest-contract-tests/framework"
	"github.com/launchdarkly/rest-contract-tests/modules"
	"github.com/launchdarkly/rest-contract-tests/report"
	"github.com/launchdarkly/rest-contract-tests/resources"
)

// T represents a scenario or sub-scenario.
//
// It implements the same basic functionality as Go's testing.T, outside of the Go test runner,
// so the assert and require packages can be used by passing the *T as if it were a
// *testing.T. It also gives access to the report-wrapped resource operations.
type T struct {
	context *framework.Context
	env     *environment
}

type environment struct {
	modules  *modules.Modules
	reporter *report.Reporter
}

func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		action(&T{context: c, env: t.env})
	})
}

func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

func (t *T) FailNow() {
	t.context.FailNow()
}

func (t *T) Skip() {
	t.context.Skip()
}

func (t *T) Debug(message string, args ...interface{}) {
	t.context.Debug(message, args...)
}

// Modules returns the report-wrapped operations. Each one returns false if the step did not
// go as expected.
func (t *T) Modules() *modules.Modules {
	return t.env.modules
}

func (t *T) Users() *resources.Users {
	return t.env.modules.Users
}

func (t *T) Todos() *resources.Todos {
	return t.env.modules.Todos
}

func (t *T) Reporter() *report.Reporter {
	return t.env.reporter
}

// RequireStep stops the scenario if a reported step did not go as expected. The reporter has
// already printed the details.
func (t *T) RequireStep(ok bool, description string) {
	if !ok {
		t.Errorf("step failed: %s", description)
		t.FailNow()
	}
}

// RequirePrecondition ends the run through the reporter if a supporting call, such as a
// count, failed. The scenario stops too, in case the reporter's exit function returns.
func (t *T) RequirePrecondition(err error) {
	if err != nil {
		t.env.reporter.Fatal(nil, err)
		t.Errorf("precondition failed: %s", err)
		t.FailNow()
	}
}
