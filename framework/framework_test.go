package framework

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

type recordingScenarioLogger struct {
	started  []string
	finished map[string]bool
	skipped  []string
	errors   []string
}

func (r *recordingScenarioLogger) ScenarioStarted(id ScenarioID) {
	r.started = append(r.started, id.String())
}

func (r *recordingScenarioLogger) ScenarioError(id ScenarioID, err error) {
	r.errors = append(r.errors, id.String()+": "+err.Error())
}

func (r *recordingScenarioLogger) ScenarioFinished(id ScenarioID, failed bool, _ CapturedOutput) {
	if r.finished == nil {
		r.finished = make(map[string]bool)
	}
	r.finished[id.String()] = failed
}

func (r *recordingScenarioLogger) ScenarioSkipped(id ScenarioID, reason string) {
	r.skipped = append(r.skipped, id.String())
}

func TestRunCollectsFailuresFromNestedScenarios(t *testing.T) {
	logger := &recordingScenarioLogger{}
	results := Run(nil, logger, func(c *Context) {
		c.Run("users", func(c *Context) {
			c.Run("list", func(c *Context) {})
			c.Run("create", func(c *Context) {
				c.Errorf("count verification failed")
			})
		})
	})

	assert.False(t, results.OK())
	require.Len(t, results.Failures, 1)
	assert.Equal(t, "users/create", results.Failures[0].ID.String())
	assert.Len(t, results.Scenarios, 3)
	assert.Equal(t, []string{"users", "users/list", "users/create"}, logger.started)
	assert.False(t, logger.finished["users/list"])
	assert.True(t, logger.finished["users/create"])
}

func TestFailNowStopsScenario(t *testing.T) {
	reached := false
	results := Run(nil, nil, func(c *Context) {
		c.Run("step", func(c *Context) {
			require.NoError(c, errors.New("boom"))
			reached = true
		})
	})
	assert.False(t, reached)
	require.Len(t, results.Failures, 1)
}

func TestPanicIsRecordedAsFailure(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("step", func(c *Context) {
			panic("unexpected")
		})
	})
	require.Len(t, results.Failures, 1)
	assert.Contains(t, results.Failures[0].Errors[0].Error(), "unexpected panic in scenario")
}

func TestSkippedScenarioIsNotAFailure(t *testing.T) {
	logger := &recordingScenarioLogger{}
	results := Run(nil, logger, func(c *Context) {
		c.Run("step", func(c *Context) {
			c.SkipWithReason("not supported")
		})
	})
	assert.True(t, results.OK())
	assert.Equal(t, []string{"step"}, logger.skipped)
	require.Len(t, results.Scenarios, 1)
	assert.True(t, results.Scenarios[0].Skipped)
}

func TestRegexFilters(t *testing.T) {
	var filters RegexFilters
	require.NoError(t, filters.MustMatch.Set("^users/"))
	require.NoError(t, filters.MustNotMatch.Set("create"))
	assert.Error(t, filters.MustMatch.Set("("))

	assert.True(t, filters.AsFilter(ScenarioID{Path: []string{"users", "list"}}))
	assert.False(t, filters.AsFilter(ScenarioID{Path: []string{"users", "create"}}))
	assert.False(t, filters.AsFilter(ScenarioID{Path: []string{"todos", "list"}}))

	logger := &recordingScenarioLogger{}
	Run(filters.AsFilter, logger, func(c *Context) {
		c.Run("todos", func(c *Context) {})
	})
	assert.Equal(t, []string{"todos"}, logger.skipped)
	assert.Empty(t, logger.started)
}

func TestConsoleTagsWithoutColor(t *testing.T) {
	var captured CapturingLogger
	console := NewConsole(&captured, false)
	console.Info("created %s", "user")
	console.Error("bad")
	console.Curl("")
	console.Curl("curl -X GET http://x")

	assert.Equal(t, []string{
		"[INFO] created user",
		"[ERROR] bad",
		"[cURL] curl -X GET http://x",
	}, captured.Output().Messages())
}

func TestPrettyJSONSortsKeys(t *testing.T) {
	out := PrettyJSON(map[string]interface{}{"b": 1, "a": []int{1}})
	assert.Equal(t, "{\n    \"a\": [\n        1\n    ],\n    \"b\": 1\n}", out)
	assert.Equal(t, "(1+2i)", PrettyJSON(complex(1, 2)))
}

func TestPrettyJSONSortsKeysOfSelfMarshalingValues(t *testing.T) {
	raw := json.RawMessage(`{"b":1,"a":{"d":2.50,"c":3}}`)
	assert.Equal(t, "{\n    \"a\": {\n        \"c\": 3,\n        \"d\": 2.50\n    },\n    \"b\": 1\n}", PrettyJSON(raw))

	value := ldvalue.ObjectBuild().Set("f", ldvalue.Int(1)).Set("e", ldvalue.Int(2)).Set("d", ldvalue.Int(3)).
		Set("c", ldvalue.Int(4)).Set("b", ldvalue.Int(5)).Set("a", ldvalue.Int(6)).Build()
	expected := PrettyJSON(map[string]interface{}{
		"json_data": map[string]int{"a": 6, "b": 5, "c": 4, "d": 3, "e": 2, "f": 1},
	})
	for i := 0; i < 5; i++ {
		assert.Equal(t, expected, PrettyJSON(map[string]interface{}{"json_data": value}))
	}
}

func TestLoggerWithPrefixAndWriterLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LoggerWithPrefix(WriterLogger(&buf), "[http] ")
	logger.Printf("GET %s", "/users")
	assert.Equal(t, "[http] GET /users\n", buf.String())
}
