package main

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/launchdarkly/rest-contract-tests/framework"
	"github.com/launchdarkly/rest-contract-tests/modules"
	"github.com/launchdarkly/rest-contract-tests/report"
	"github.com/launchdarkly/rest-contract-tests/resources"
	"github.com/launchdarkly/rest-contract-tests/restapi"
	"github.com/launchdarkly/rest-contract-tests/scenarios"
	"github.com/launchdarkly/rest-contract-tests/usecases"

	"github.com/spf13/cobra"
)

func newRootCommand(p *commandParams) *cobra.Command {
	root := &cobra.Command{
		Use:           "restcheck",
		Short:         "Functional checks for a REST users/todos service",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return p.resolve(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			p.close()
		},
	}
	root.SetOut(p.out)
	root.SetErr(p.out)
	p.addFlags(root)

	root.AddCommand(newUsersCommand(p), newTodosCommand(p), newTaskCompletionCommand(p), newRunCommand(p))
	return root
}

func (p *commandParams) modules() *modules.Modules {
	return &modules.Modules{
		Users:    resources.NewUsers(p.client),
		Todos:    resources.NewTodos(p.client),
		Reporter: p.reporter,
	}
}

// denialFlags lets a get command expect a refusal instead of a success.
type denialFlags struct {
	status   int
	messages []string
}

func (d *denialFlags) add(cmd *cobra.Command) {
	cmd.Flags().IntVar(&d.status, "deny-status", 0, "expect the call to fail with this status code")
	cmd.Flags().StringArrayVar(&d.messages, "deny-message", nil,
		"expect this error message; one value matches as a substring, several must match one exactly")
}

func (d *denialFlags) expectation() report.Expectation {
	if d.status == 0 && len(d.messages) == 0 {
		return report.ShouldPass()
	}
	var message report.ExpectedMessage
	switch len(d.messages) {
	case 0:
	case 1:
		message = report.MessageContaining(d.messages[0])
	default:
		message = report.MessageOneOf(d.messages...)
	}
	return report.ShouldBeDenied(d.status, message)
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func newUsersCommand(p *commandParams) *cobra.Command {
	cmd := &cobra.Command{Use: "users", Short: "Operations on /users"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if users, ok := p.modules().ListUsers(nil, report.ShouldPass()); ok {
				p.console.Pretty(users)
			}
			return nil
		},
	}

	var getDenial denialFlags
	get := &cobra.Command{
		Use:   "get ID",
		Short: "Get one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			exp := getDenial.expectation()
			if user, ok := p.modules().GetUser(id, exp); ok && exp.ShouldPass {
				p.console.Pretty(user)
			}
			return nil
		},
	}
	getDenial.add(get)

	var createOpts resources.CreateOptions
	var name, username, email string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user, optionally verifying the count and the stored content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := scenarios.NewUserPayload()
			if name != "" {
				payload.Name = name
			}
			if username != "" {
				payload.Username = username
			}
			if email != "" {
				payload.Email = email
			}
			if user, ok := p.modules().CreateUser(payload, createOpts, report.ShouldPass()); ok {
				p.console.Pretty(user)
			}
			return nil
		},
	}
	create.Flags().StringVar(&name, "name", "", "name of the new user")
	create.Flags().StringVar(&username, "username", "", "username of the new user (default: generated)")
	create.Flags().StringVar(&email, "email", "", "email of the new user")
	create.Flags().BoolVar(&createOpts.Verify, "verify", false, "fetch the new user and compare it with the payload")
	create.Flags().BoolVar(&createOpts.VerifyCount, "verify-count", false, "check that the user count grew by one")
	create.Flags().StringSliceVar(&createOpts.IgnoreKeys, "ignore-key", nil, "key left out of the comparison (default: id)")

	cmd.AddCommand(list, get, create)
	return cmd
}

func newTodosCommand(p *commandParams) *cobra.Command {
	cmd := &cobra.Command{Use: "todos", Short: "Operations on /todos"}

	var userID int
	var completed string
	list := &cobra.Command{
		Use:   "list",
		Short: "List todos, optionally filtered by user and completion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var params url.Values
			if userID != 0 || completed != "" {
				var completedFilter *bool
				if completed != "" {
					b, err := strconv.ParseBool(completed)
					if err != nil {
						return fmt.Errorf("invalid --completed value %q", completed)
					}
					completedFilter = &b
				}
				params = resources.FilterParams(userID, completedFilter)
				if userID == 0 {
					delete(params, "userId")
				}
			}
			if todos, ok := p.modules().ListTodos(params, report.ShouldPass()); ok {
				p.console.Pretty(todos)
			}
			return nil
		},
	}
	list.Flags().IntVar(&userID, "user-id", 0, "only todos of this user")
	list.Flags().StringVar(&completed, "completed", "", "only todos with this completion state (true or false)")

	var getDenial denialFlags
	get := &cobra.Command{
		Use:   "get ID",
		Short: "Get one todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			exp := getDenial.expectation()
			if todo, ok := p.modules().GetTodo(id, exp); ok && exp.ShouldPass {
				p.console.Pretty(todo)
			}
			return nil
		},
	}
	getDenial.add(get)

	cmd.AddCommand(list, get)
	return cmd
}

func newTaskCompletionCommand(p *commandParams) *cobra.Command {
	return &cobra.Command{
		Use:   "task-completion",
		Short: "Check that users in the FanCode region have completed at least half of their todos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := p.modules()
			users, ok := m.ListUsers(nil, report.ShouldPass())
			if !ok {
				return fmt.Errorf("could not list users")
			}
			summary := usecases.CheckTaskCompletion(users, usecases.FanCode, m.Todos, p.reporter)
			if !summary.OK() {
				return fmt.Errorf("task completion check failed")
			}
			return nil
		},
	}
}

func newRunCommand(p *commandParams) *cobra.Command {
	var filters framework.RegexFilters
	var debugOnFailure, debugAll bool
	var awaitSeconds int
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scenario suite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if awaitSeconds > 0 {
				if err := restapi.AwaitService(p.client.BaseURL(), time.Duration(awaitSeconds)*time.Second, p.out); err != nil {
					return err
				}
			}
			framework.PrintFilterDescription(p.out, filters)
			fmt.Fprintln(p.out, "Running scenarios")

			scenarioLogger := &ConsoleScenarioLogger{
				Out:                  p.out,
				Reporter:             p.reporter,
				DebugOutputOnFailure: debugOnFailure || debugAll,
				DebugOutputOnSuccess: debugAll,
			}
			results := scenarios.RunSuite(p.client, p.reporter, filters.AsFilter, scenarioLogger)

			fmt.Fprintln(p.out)
			framework.PrintResults(p.out, results)
			if !results.OK() {
				return fmt.Errorf("%d scenario(s) failed", len(results.Failures))
			}
			return nil
		},
	}
	cmd.Flags().Var(&filters.MustMatch, "run", "regex pattern(s) to select scenarios to run")
	cmd.Flags().Var(&filters.MustNotMatch, "skip", "regex pattern(s) to select scenarios not to run")
	cmd.Flags().BoolVar(&debugOnFailure, "debug-output", false, "show scenario debug output for failed scenarios")
	cmd.Flags().BoolVar(&debugAll, "debug-output-all", false, "show scenario debug output for all scenarios")
	cmd.Flags().IntVar(&awaitSeconds, "await", 0, "wait up to this many seconds for the service to respond first")
	return cmd
}
