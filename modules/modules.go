// Package modules combines a resource operation with its report, so that a scenario step is a
// single call. Each function returns the decoded payload and whether the step went as
// expected.
package modules

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/launchdarkly/rest-contract-tests/envelope"
	"github.com/launchdarkly/rest-contract-tests/report"
	"github.com/launchdarkly/rest-contract-tests/resources"
	"github.com/launchdarkly/rest-contract-tests/servicedef"
	"github.com/launchdarkly/rest-contract-tests/verdict"
)

type Modules struct {
	Users    *resources.Users
	Todos    *resources.Todos
	Reporter *report.Reporter
}

func (m *Modules) ListUsers(params url.Values, exp report.Expectation) ([]servicedef.User, bool) {
	var users []servicedef.User
	ok := m.run(m.Users.List(params), report.Step{Subject: params.Encode(), ResourceType: "Users", Operation: "List"},
		exp, &users)
	return users, ok
}

func (m *Modules) GetUser(id int, exp report.Expectation) (servicedef.User, bool) {
	var user servicedef.User
	ok := m.run(m.Users.Get(id), report.Step{Subject: id, ResourceType: "User", Operation: "Get"}, exp, &user)
	return user, ok
}

// CreateUser posts payload and reports it under its username.
func (m *Modules) CreateUser(
	payload servicedef.User,
	opts resources.CreateOptions,
	exp report.Expectation,
) (servicedef.User, bool) {
	var user servicedef.User
	ok := m.run(m.Users.Create(payload, opts),
		report.Step{Subject: payload.Username, ResourceType: "User", Operation: "Create"}, exp, &user)
	return user, ok
}

func (m *Modules) ListTodos(params url.Values, exp report.Expectation) ([]servicedef.Todo, bool) {
	var todos []servicedef.Todo
	ok := m.run(m.Todos.List(params), report.Step{Subject: params.Encode(), ResourceType: "Todos", Operation: "List"},
		exp, &todos)
	return todos, ok
}

func (m *Modules) GetTodo(id int, exp report.Expectation) (servicedef.Todo, bool) {
	var todo servicedef.Todo
	ok := m.run(m.Todos.Get(id), report.Step{Subject: id, ResourceType: "Todo", Operation: "Get"}, exp, &todo)
	return todo, ok
}

func (m *Modules) run(v verdict.Verdict, step report.Step, exp report.Expectation, out interface{}) bool {
	if !m.Reporter.Report(v, step, exp) {
		return false
	}
	if !v.Success {
		// an expected denial has no payload
		return true
	}
	if err := decode(v.Envelope, out); err != nil {
		m.Reporter.Console().Warning("Could not decode %s %s response: %s", step.Operation, step.ResourceType, err)
		return false
	}
	return true
}

func decode(e *envelope.Envelope, out interface{}) error {
	value, ok := e.JSON()
	if !ok {
		return fmt.Errorf("response body is not JSON")
	}
	return json.Unmarshal([]byte(value.JSONString()), out)
}
