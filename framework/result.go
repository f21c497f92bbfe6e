package framework

import (
	"fmt"
	"io"
	"strings"
)

type Results struct {
	Scenarios []ScenarioResult
	Failures  []ScenarioResult
}

type ScenarioResult struct {
	ID      ScenarioID
	Errors  []error
	Skipped bool
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// ScenarioID is the slash-separated path of a scenario, such as "users/create".
type ScenarioID struct {
	Path []string
}

func (s ScenarioID) String() string {
	return strings.Join(s.Path, "/")
}

// PrintResults writes a summary of a run.
func PrintResults(out io.Writer, results Results) {
	skipped := 0
	for _, s := range results.Scenarios {
		if s.Skipped {
			skipped++
		}
	}
	ran := len(results.Scenarios) - skipped
	if results.OK() {
		fmt.Fprintf(out, "All scenarios passed (%d run, %d skipped)\n", ran, skipped)
		return
	}
	fmt.Fprintf(out, "FAILED SCENARIOS (%d of %d):\n", len(results.Failures), ran)
	for _, f := range results.Failures {
		fmt.Fprintf(out, "  %s\n", f.ID)
		for _, err := range f.Errors {
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Fprintf(out, "    %s\n", line)
			}
		}
	}
}
