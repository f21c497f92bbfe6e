package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/launchdarkly/rest-contract-tests/framework"
	"github.com/launchdarkly/rest-contract-tests/report"
	"github.com/launchdarkly/rest-contract-tests/verdict"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exitCode int

type cliResult struct {
	output string
	exit   int
	err    error
}

func runCLI(t *testing.T, args ...string) (result cliResult) {
	var out bytes.Buffer
	params := newCommandParams(&out, func(code int) { panic(exitCode(code)) })
	cmd := newRootCommand(params)
	cmd.SetArgs(append(args, "--no-color", "--env-file", filepath.Join(t.TempDir(), "none.env")))
	defer func() {
		if r := recover(); r != nil {
			code, ok := r.(exitCode)
			require.True(t, ok, "unexpected panic: %v", r)
			result.exit = int(code)
		}
		result.output = out.String()
	}()
	result.err = cmd.Execute()
	return result
}

func serviceHandler() http.Handler {
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, status int, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "POST" {
			var u map[string]interface{}
			_ = json.NewDecoder(r.Body).Decode(&u)
			u["id"] = 11
			data, _ := json.Marshal(u)
			writeJSON(w, 201, string(data))
			return
		}
		writeJSON(w, 200, `[{"id":1,"name":"Leanne","address":{"geo":{"lat":"-37.3","lng":"81.1"}}}]`)
	})
	mux.HandleFunc("/users/1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"id":1,"name":"Leanne"}`)
	})
	mux.HandleFunc("/users/2", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"id":2,"name":"Ervin"}`)
	})
	mux.HandleFunc("/users/9999", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 404, `{"message":"User not found"}`)
	})
	mux.HandleFunc("/todos", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("completed") == "true" {
			writeJSON(w, 200, `[]`)
			return
		}
		writeJSON(w, 200, `[{"id":1,"userId":1,"title":"a","completed":false}]`)
	})
	return mux
}

func TestGetUserCommand(t *testing.T) {
	httphelpers.WithServer(serviceHandler(), func(server *httptest.Server) {
		result := runCLI(t, "users", "get", "1", "--url", server.URL)
		require.NoError(t, result.err)
		assert.Equal(t, 0, result.exit)
		assert.Contains(t, result.output, "[cURL] curl -v -k -X GET -H 'Accept: application/json' "+server.URL+"/users/1")
		assert.Contains(t, result.output, "[INFO] Get operation on User [1] was successful.")
		assert.Contains(t, result.output, `"name": "Leanne"`)
	})
}

func TestExpectedDenialCommand(t *testing.T) {
	httphelpers.WithServer(serviceHandler(), func(server *httptest.Server) {
		result := runCLI(t, "users", "get", "9999", "--url", server.URL,
			"--deny-status", "404", "--deny-message", "not found")
		require.NoError(t, result.err)
		assert.Equal(t, 0, result.exit)
		assert.Contains(t, result.output, "[INFO] Error message [User not found] verified.")
	})
}

func TestFailFastExits(t *testing.T) {
	httphelpers.WithServer(serviceHandler(), func(server *httptest.Server) {
		result := runCLI(t, "users", "get", "9999", "--url", server.URL, "--fail-fast")
		assert.Equal(t, 1, result.exit)
		assert.Contains(t, result.output, "[ERROR] Failed to Get User [9999].")

		result = runCLI(t, "users", "get", "9999", "--url", server.URL)
		assert.Equal(t, 0, result.exit)
		assert.NoError(t, result.err)
	})
}

func TestCreateUserCommand(t *testing.T) {
	httphelpers.WithServer(serviceHandler(), func(server *httptest.Server) {
		result := runCLI(t, "users", "create", "--url", server.URL, "--username", "amol_more")
		require.NoError(t, result.err)
		assert.Contains(t, result.output, "[INFO] Create operation on User [amol_more] was successful.")
		assert.Contains(t, result.output, `"id": 11`)
	})
}

func TestTaskCompletionCommand(t *testing.T) {
	httphelpers.WithServer(serviceHandler(), func(server *httptest.Server) {
		result := runCLI(t, "task-completion", "--url", server.URL)
		require.Error(t, result.err)
		assert.Contains(t, result.output, "[INFO] Completion percentage for user 1: 0%")
	})
}

func TestRunCommandWithFilter(t *testing.T) {
	httphelpers.WithServer(serviceHandler(), func(server *httptest.Server) {
		result := runCLI(t, "run", "--url", server.URL, "--run", "^users($|/(list|get)$)")
		require.NoError(t, result.err)
		assert.Contains(t, result.output, "[users/list]")
		assert.Contains(t, result.output, "skip any not matching")
		assert.Contains(t, result.output, "All scenarios passed (3 run, 0 skipped)")
		assert.False(t, strings.Contains(result.output, "[todos/list]"))
	})
}

func TestInvalidURL(t *testing.T) {
	result := runCLI(t, "users", "list", "--url", "localhost:8080")
	assert.Error(t, result.err)
}

func TestConsoleScenarioLoggerNamesStepFailureKinds(t *testing.T) {
	var out bytes.Buffer
	reporter := report.NewReporter(framework.NewConsole(framework.NullLogger(), false),
		report.Config{ContinueOnError: true, Exit: func(int) {}})
	logger := &ConsoleScenarioLogger{Out: &out, Reporter: reporter}

	parent := framework.ScenarioID{Path: []string{"users"}}
	child := framework.ScenarioID{Path: []string{"users", "get"}}
	logger.ScenarioStarted(parent)
	logger.ScenarioStarted(child)
	reporter.Report(verdict.Fail(nil, verdict.StatusCodeFailure(200, 404)),
		report.Step{Subject: 2, ResourceType: "User", Operation: "get"}, report.ShouldPass())
	logger.ScenarioError(child, errors.New("step failed: get user 2"))
	logger.ScenarioFinished(child, true, nil)
	logger.ScenarioFinished(parent, false, nil)

	assert.Equal(t, "[users]\n"+
		"  [users/get]\n"+
		"    step failed: get user 2\n"+
		"    FAILED: users/get\n"+
		"    step failures: StatusMismatch\n", out.String())
}
