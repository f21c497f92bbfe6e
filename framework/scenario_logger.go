package framework

// ScenarioLogger receives progress notifications from the scenario runner. Calls for a child
// scenario always arrive between its parent's ScenarioStarted and ScenarioFinished.
type ScenarioLogger interface {
	ScenarioStarted(id ScenarioID)
	// ScenarioError is called once per failed assertion or recovered panic.
	ScenarioError(id ScenarioID, err error)
	// ScenarioFinished reports whether the scenario itself failed; a child's failure does not
	// fail its parent. debugOutput holds whatever the scenario wrote through Debug.
	ScenarioFinished(id ScenarioID, failed bool, debugOutput CapturedOutput)
	// ScenarioSkipped is called instead of ScenarioStarted for a scenario rejected by the
	// filter, and after ScenarioStarted for one that skipped itself.
	ScenarioSkipped(id ScenarioID, reason string)
}

type nullScenarioLogger struct{}

func (nullScenarioLogger) ScenarioStarted(ScenarioID)                        {}
func (nullScenarioLogger) ScenarioError(ScenarioID, error)                   {}
func (nullScenarioLogger) ScenarioFinished(ScenarioID, bool, CapturedOutput) {}
func (nullScenarioLogger) ScenarioSkipped(ScenarioID, string)                {}
