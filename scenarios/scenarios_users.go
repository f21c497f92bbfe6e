package scenarios

import (
	"github.com/launchdarkly/rest-contract-tests/report"
	"github.com/launchdarkly/rest-contract-tests/resources"
	"github.com/launchdarkly/rest-contract-tests/servicedef"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

const missingID = 9999

// NewUserPayload returns a complete user whose username is unique to this run.
func NewUserPayload() servicedef.User {
	username := "user_" + uuid.NewString()[:8]
	return servicedef.User{
		Name:     "Test User",
		Username: username,
		Email:    username + "@example.com",
		Address: servicedef.Address{
			Street:  "High street",
			Suite:   "Apt. 556",
			City:    "Pune",
			Zipcode: "92998-3874",
			Geo:     servicedef.Geo{Lat: "-78.3159", Lng: "109.1496"},
		},
		Phone:   "91-16862381",
		Website: "hildegard.org",
		Company: servicedef.Company{
			Name:        "Romaguera-Crona",
			CatchPhrase: "Multi-layered client-server neural-net",
			BS:          "harness real-time e-markets",
		},
	}
}

func DoUserScenarios(t *T) {
	t.Run("list", func(t *T) {
		users, ok := t.Modules().ListUsers(nil, report.ShouldPass())
		t.RequireStep(ok, "list users")
		assert.NotEmpty(t, users)
	})

	t.Run("get", func(t *T) {
		user, ok := t.Modules().GetUser(2, report.ShouldPass())
		t.RequireStep(ok, "get user 2")
		assert.Equal(t, 2, user.ID)
	})

	t.Run("get missing user is denied", func(t *T) {
		_, ok := t.Modules().GetUser(missingID, report.ShouldBeDenied(404, report.ExpectedMessage{}))
		t.RequireStep(ok, "get missing user")
	})

	t.Run("create", func(t *T) {
		payload := NewUserPayload()
		t.Debug("creating user %s", payload.Username)
		// The public service accepts creates without storing them, so the count and round-trip
		// checks are left off here.
		user, ok := t.Modules().CreateUser(payload, resources.CreateOptions{}, report.ShouldPass())
		t.RequireStep(ok, "create user")
		assert.NotZero(t, user.ID)
		assert.Equal(t, payload.Username, user.Username)
	})
}
