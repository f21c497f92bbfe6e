package scenarios

import (
	"github.com/launchdarkly/rest-contract-tests/report"
	"github.com/launchdarkly/rest-contract-tests/resources"
	"github.com/launchdarkly/rest-contract-tests/usecases"

	"github.com/stretchr/testify/assert"
)

func DoTodoScenarios(t *T) {
	t.Run("list", func(t *T) {
		todos, ok := t.Modules().ListTodos(nil, report.ShouldPass())
		t.RequireStep(ok, "list todos")
		assert.NotEmpty(t, todos)
	})

	t.Run("get", func(t *T) {
		todo, ok := t.Modules().GetTodo(1, report.ShouldPass())
		t.RequireStep(ok, "get todo 1")
		assert.Equal(t, 1, todo.ID)
	})

	t.Run("filter by user and completion", func(t *T) {
		completed := true
		todos, ok := t.Modules().ListTodos(resources.FilterParams(1, &completed), report.ShouldPass())
		t.RequireStep(ok, "list completed todos of user 1")
		for _, todo := range todos {
			assert.Equal(t, 1, todo.UserID)
			assert.True(t, todo.Completed)
		}

		n, err := t.Todos().Count(resources.FilterParams(1, &completed))
		t.RequirePrecondition(err)
		assert.Equal(t, len(todos), n)
	})
}

func DoTaskCompletionScenarios(t *T) {
	t.Run("users in FanCode have completed half of their tasks", func(t *T) {
		users, ok := t.Modules().ListUsers(nil, report.ShouldPass())
		t.RequireStep(ok, "list users")

		summary := usecases.CheckTaskCompletion(users, usecases.FanCode, t.Todos(), t.Reporter())
		t.Debug("checked %d users", len(summary.Checked))
		assert.Empty(t, summary.BelowHalf, "users below %d%%", usecases.CompletionThreshold)
		assert.Empty(t, summary.NoTasks, "users without tasks")
	})
}
