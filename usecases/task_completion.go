// Package usecases holds multi-step checks built on the resource layer.
package usecases

import (
	"fmt"

	"github.com/launchdarkly/rest-contract-tests/report"
	"github.com/launchdarkly/rest-contract-tests/resources"
	"github.com/launchdarkly/rest-contract-tests/servicedef"
)

// Region is a latitude/longitude box, bounds inclusive.
type Region struct {
	Name           string
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// FanCode is the region whose users are expected to have finished most of their tasks.
var FanCode = Region{Name: "FanCode", MinLat: -40, MaxLat: 5, MinLng: 5, MaxLng: 100}

// Contains reports whether a user's address lies inside the region. Unparseable
// coordinates are outside every region.
func (r Region) Contains(user servicedef.User) bool {
	lat, lng, err := user.Address.Geo.Coordinates()
	if err != nil {
		return false
	}
	return lat >= r.MinLat && lat <= r.MaxLat && lng >= r.MinLng && lng <= r.MaxLng
}

func UsersInRegion(users []servicedef.User, region Region) []servicedef.User {
	var ret []servicedef.User
	for _, u := range users {
		if region.Contains(u) {
			ret = append(ret, u)
		}
	}
	return ret
}

// TaskCompletionPercentage returns the integer percentage of a user's todos that are
// completed. ok is false if the user has no todos.
func TaskCompletionPercentage(todos *resources.Todos, userID int) (percent int, ok bool, err error) {
	total, err := todos.Count(resources.FilterParams(userID, nil))
	if err != nil {
		return 0, false, err
	}
	if total == 0 {
		return 0, false, nil
	}
	completed := true
	done, err := todos.Count(resources.FilterParams(userID, &completed))
	if err != nil {
		return 0, false, err
	}
	return done * 100 / total, true, nil
}

// UserRef identifies a user in a summary.
type UserRef struct {
	ID   int
	Name string
}

func (u UserRef) String() string {
	return fmt.Sprintf("(%d, %s)", u.ID, u.Name)
}

// CompletionSummary is the outcome of CheckTaskCompletion.
type CompletionSummary struct {
	Checked   []UserRef
	BelowHalf []UserRef
	NoTasks   []UserRef
}

func (s CompletionSummary) OK() bool {
	return len(s.BelowHalf) == 0 && len(s.NoTasks) == 0
}

// CompletionThreshold is the percentage a user must reach.
const CompletionThreshold = 50

// CheckTaskCompletion finds the users in region and checks that each has completed at least
// CompletionThreshold percent of their todos. A failure to count todos goes to the reporter
// as a fatal error.
func CheckTaskCompletion(
	users []servicedef.User,
	region Region,
	todos *resources.Todos,
	reporter *report.Reporter,
) CompletionSummary {
	console := reporter.Console()
	var summary CompletionSummary

	console.Debug("Filtering %s users from the list...", region.Name)
	for _, user := range UsersInRegion(users, region) {
		ref := UserRef{ID: user.ID, Name: user.Name}
		summary.Checked = append(summary.Checked, ref)

		console.Debug("Calculating completion percentage for user - %d", user.ID)
		percent, ok, err := TaskCompletionPercentage(todos, user.ID)
		if err != nil {
			reporter.Fatal(nil, err)
			return summary
		}
		if !ok {
			console.Error("No tasks found for user %d.", user.ID)
			summary.NoTasks = append(summary.NoTasks, ref)
			continue
		}
		console.Info("Completion percentage for user %d: %d%%", user.ID, percent)
		if percent < CompletionThreshold {
			summary.BelowHalf = append(summary.BelowHalf, ref)
		}
	}

	if len(summary.BelowHalf) > 0 {
		console.Error("The following users from %s city have not completed more than half of their tasks:", region.Name)
		console.Debug("%v", summary.BelowHalf)
	}
	if len(summary.NoTasks) > 0 {
		console.Error("The following users from %s city have no tasks assigned.", region.Name)
		console.Debug("%v", summary.NoTasks)
	}
	if summary.OK() {
		console.Info("All the users from %s city have completed more than half of their tasks.", region.Name)
	}
	return summary
}
