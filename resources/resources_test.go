package resources

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/launchdarkly/rest-contract-tests/jsondiff"
	"github.com/launchdarkly/rest-contract-tests/restapi"
	"github.com/launchdarkly/rest-contract-tests/verdict"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUsersService keeps users in memory. If persist is false it answers POST with 201 but
// forgets the user, the way a mock API does.
type fakeUsersService struct {
	lock    sync.Mutex
	users   []map[string]interface{}
	persist bool
	mangle  func(map[string]interface{})
}

func (s *fakeUsersService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()
	switch {
	case r.Method == "GET" && r.URL.Path == "/users":
		writeJSON(w, 200, s.users)
	case r.Method == "GET" && strings.HasPrefix(r.URL.Path, "/users/"):
		id, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/users/"))
		for _, u := range s.users {
			if u["id"] == float64(id) {
				writeJSON(w, 200, u)
				return
			}
		}
		writeJSON(w, 404, map[string]interface{}{})
	case r.Method == "POST" && r.URL.Path == "/users":
		var u map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
			w.WriteHeader(400)
			return
		}
		u["id"] = float64(len(s.users) + 1)
		if s.persist {
			stored := make(map[string]interface{}, len(u))
			for k, v := range u {
				stored[k] = v
			}
			if s.mangle != nil {
				s.mangle(stored)
			}
			s.users = append(s.users, stored)
		}
		writeJSON(w, 201, u)
	default:
		w.WriteHeader(404)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newService(persist bool) *fakeUsersService {
	return &fakeUsersService{
		persist: persist,
		users: []map[string]interface{}{
			{"id": float64(1), "name": "Leanne Graham"},
			{"id": float64(2), "name": "Ervin Howell"},
		},
	}
}

func withUsers(t *testing.T, service http.Handler, action func(*Users)) {
	httphelpers.WithServer(service, func(server *httptest.Server) {
		action(NewUsers(restapi.NewClient(restapi.Config{BaseURL: server.URL})))
	})
}

var newUser = map[string]interface{}{"name": "Test User", "username": "test_user"}

func TestListUsersReturnsParsedArray(t *testing.T) {
	withUsers(t, newService(true), func(users *Users) {
		v := users.List(nil)
		require.True(t, v.Success)
		require.NoError(t, v.Err)
		value, ok := v.Envelope.JSON()
		require.True(t, ok)
		assert.Equal(t, 2, value.Count())
		assert.Equal(t, "Ervin Howell", value.GetByIndex(1).GetByKey("name").StringValue())
	})
}

func TestGetMissingUserIsStatusMismatch(t *testing.T) {
	withUsers(t, newService(true), func(users *Users) {
		v := users.Get(9999)
		assert.False(t, v.Success)
		assert.Equal(t, verdict.StatusMismatch, verdict.KindOf(v.Err))
		assert.Equal(t, 404, v.Envelope.StatusCode)
	})
}

func TestCreateWithFullVerification(t *testing.T) {
	service := newService(true)
	withUsers(t, service, func(users *Users) {
		v := users.Create(newUser, CreateOptions{Verify: true, VerifyCount: true})
		require.True(t, v.Success, "%v", v.Err)
		assert.Equal(t, 201, v.Envelope.StatusCode)

		n, err := users.Count(nil)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})
}

func TestCreateOnNonPersistingServiceIsCountMismatch(t *testing.T) {
	withUsers(t, newService(false), func(users *Users) {
		v := users.Create(newUser, CreateOptions{Verify: true, VerifyCount: true})
		assert.False(t, v.Success)
		assert.Equal(t, 201, v.Envelope.StatusCode)
		assert.Equal(t, verdict.CountMismatch, verdict.KindOf(v.Err))
		assert.Equal(t, "Count verification failed [expected: 3, returned: 2]", v.Err.Error())
	})
}

func TestCreateWithoutVerificationTrustsStatus(t *testing.T) {
	withUsers(t, newService(false), func(users *Users) {
		v := users.Create(newUser, CreateOptions{})
		assert.True(t, v.Success)
	})
}

func TestCreateRoundTripFailures(t *testing.T) {
	t.Run("created user cannot be fetched", func(t *testing.T) {
		withUsers(t, newService(false), func(users *Users) {
			v := users.Create(newUser, CreateOptions{Verify: true})
			assert.False(t, v.Success)
			assert.Equal(t, verdict.RoundTripMismatch, verdict.KindOf(v.Err))
			assert.Contains(t, v.Err.Error(), "Failed to query user by id - 3")
		})
	})

	t.Run("fetched user differs", func(t *testing.T) {
		service := newService(true)
		service.mangle = func(u map[string]interface{}) { u["name"] = "Someone Else" }
		withUsers(t, service, func(users *Users) {
			v := users.Create(newUser, CreateOptions{Verify: true, VerifyCount: true})
			assert.False(t, v.Success)
			assert.Equal(t, verdict.RoundTripMismatch, verdict.KindOf(v.Err))
			var diff jsondiff.ValueMismatch
			require.True(t, errors.As(v.Err, &diff))
			assert.Equal(t, "name", diff.Key)
		})
	})

	t.Run("id not ignored", func(t *testing.T) {
		withUsers(t, newService(true), func(users *Users) {
			v := users.Create(newUser, CreateOptions{Verify: true, IgnoreKeys: []string{}})
			var keys jsondiff.KeySetMismatch
			require.True(t, errors.As(v.Err, &keys))
		})
	})
}

func TestCreateStatusMismatchStopsBeforeSecondCount(t *testing.T) {
	var lists int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "GET" {
			lists++
			writeJSON(w, 200, []int{})
			return
		}
		writeJSON(w, 500, map[string]string{"message": "boom"})
	})
	withUsers(t, handler, func(users *Users) {
		v := users.Create(newUser, CreateOptions{Verify: true, VerifyCount: true})
		assert.Equal(t, verdict.StatusMismatch, verdict.KindOf(v.Err))
		assert.Equal(t, 500, v.Envelope.StatusCode)
		assert.Equal(t, 1, lists)
	})
}

func TestCountFailureIsPrecondition(t *testing.T) {
	withUsers(t, httphelpers.HandlerWithResponse(200, nil, []byte("not json")), func(users *Users) {
		_, err := users.Count(nil)
		assert.Equal(t, verdict.PreconditionFailure, verdict.KindOf(err))

		v := users.Create(newUser, CreateOptions{VerifyCount: true})
		assert.True(t, v.IsPrecondition())
	})
}

func TestTransportFailureVerdict(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(200))
	server.Close()
	users := NewUsers(restapi.NewClient(restapi.Config{BaseURL: server.URL}))
	v := users.List(nil)
	assert.False(t, v.Success)
	assert.Equal(t, verdict.TransportFailure, verdict.KindOf(v.Err))
	assert.NotEmpty(t, v.Envelope.ReplayCommand)
}

func TestTodosCountWithFilter(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(
		httphelpers.HandlerWithJSONResponse([]map[string]interface{}{{"id": 1}, {"id": 2}}, nil))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		todos := NewTodos(restapi.NewClient(restapi.Config{BaseURL: server.URL}))
		completed := true
		n, err := todos.Count(FilterParams(3, &completed))
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		r := <-requestsCh
		assert.Equal(t, "/todos", r.Request.URL.Path)
		assert.Equal(t, "3", r.Request.URL.Query().Get("userId"))
		assert.Equal(t, "true", r.Request.URL.Query().Get("completed"))

		v := todos.Get(1)
		assert.True(t, v.Success)
		<-requestsCh
		assert.Equal(t, fmt.Sprintf("GET %s/todos/1", server.URL), v.Envelope.MethodAndURL())
	})
}

func TestExtractID(t *testing.T) {
	withUsers(t, newService(true), func(users *Users) {
		v := users.Get(2)
		require.True(t, v.Success)
		id, err := extractID(v.Envelope, "$.id")
		require.NoError(t, err)
		assert.Equal(t, "2", id)

		_, err = extractID(v.Envelope, "$.missing")
		assert.Error(t, err)
	})
}
