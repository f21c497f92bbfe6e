package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/launchdarkly/rest-contract-tests/framework"
	"github.com/launchdarkly/rest-contract-tests/report"
	"github.com/launchdarkly/rest-contract-tests/verdict"
)

// ConsoleScenarioLogger prints the scenario tree as it runs, indented by depth. For a failed
// scenario it also names the kinds of the step failures the reporter recorded while the
// scenario ran, and optionally dumps the scenario's debug output.
type ConsoleScenarioLogger struct {
	Out                  io.Writer
	Reporter             *report.Reporter
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool

	failuresAtStart map[string]int
}

func indent(id framework.ScenarioID) string {
	if len(id.Path) < 2 {
		return ""
	}
	return strings.Repeat("  ", len(id.Path)-1)
}

func (c *ConsoleScenarioLogger) reportedFailures() []error {
	if c.Reporter == nil {
		return nil
	}
	return c.Reporter.Failures()
}

func (c *ConsoleScenarioLogger) ScenarioStarted(id framework.ScenarioID) {
	if c.failuresAtStart == nil {
		c.failuresAtStart = make(map[string]int)
	}
	c.failuresAtStart[id.String()] = len(c.reportedFailures())
	fmt.Fprintf(c.Out, "%s[%s]\n", indent(id), id)
}

func (c *ConsoleScenarioLogger) ScenarioError(id framework.ScenarioID, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(c.Out, "%s  %s\n", indent(id), line)
	}
}

func (c *ConsoleScenarioLogger) ScenarioFinished(id framework.ScenarioID, failed bool, debugOutput framework.CapturedOutput) {
	if failed {
		fmt.Fprintf(c.Out, "%s  FAILED: %s\n", indent(id), id)
		if kinds := c.stepFailureKinds(id); len(kinds) > 0 {
			fmt.Fprintf(c.Out, "%s  step failures: %s\n", indent(id), strings.Join(kinds, ", "))
		}
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(c.Out, indent(id)+"    DEBUG ")
	}
	delete(c.failuresAtStart, id.String())
}

func (c *ConsoleScenarioLogger) stepFailureKinds(id framework.ScenarioID) []string {
	all := c.reportedFailures()
	start, ok := c.failuresAtStart[id.String()]
	if !ok || start > len(all) {
		return nil
	}
	var kinds []string
	for _, err := range all[start:] {
		if kind := verdict.KindOf(err); kind != 0 {
			kinds = append(kinds, kind.String())
		} else {
			kinds = append(kinds, "unclassified")
		}
	}
	return kinds
}

func (c *ConsoleScenarioLogger) ScenarioSkipped(id framework.ScenarioID, reason string) {
	if reason == "" {
		fmt.Fprintf(c.Out, "%s  SKIPPED: %s\n", indent(id), id)
	} else {
		fmt.Fprintf(c.Out, "%s  SKIPPED: %s (%s)\n", indent(id), id, reason)
	}
}
