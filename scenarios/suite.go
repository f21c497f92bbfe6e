package scenarios

import (
	"github.com/launchdarkly/rest-contract-tests/framework"
	"github.com/launchdarkly/rest-contract-tests/modules"
	"github.com/launchdarkly/rest-contract-tests/report"
	"github.com/launchdarkly/rest-contract-tests/resources"
	"github.com/launchdarkly/rest-contract-tests/restapi"
)

// RunSuite runs every scenario that passes the filter.
func RunSuite(
	client *restapi.Client,
	reporter *report.Reporter,
	filter framework.Filter,
	scenarioLogger framework.ScenarioLogger,
) framework.Results {
	return framework.Run(filter, scenarioLogger, func(c *framework.Context) {
		t := &T{
			context: c,
			env: &environment{
				modules: &modules.Modules{
					Users:    resources.NewUsers(client),
					Todos:    resources.NewTodos(client),
					Reporter: reporter,
				},
				reporter: reporter,
			},
		}

		t.Run("users", DoUserScenarios)
		t.Run("todos", DoTodoScenarios)
		t.Run("task completion", DoTaskCompletionScenarios)
	})
}
