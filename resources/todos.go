package resources

import (
	"net/url"
	"strconv"

	"github.com/launchdarkly/rest-contract-tests/restapi"
	"github.com/launchdarkly/rest-contract-tests/verdict"
)

// Todos wraps GET /todos and GET /todos/{id}.
type Todos struct {
	collection
}

func NewTodos(client *restapi.Client) *Todos {
	return &Todos{collection{client: client, path: "/todos", name: "todos"}}
}

func (t *Todos) List(params url.Values) verdict.Verdict {
	return t.list(params)
}

func (t *Todos) Get(id interface{}) verdict.Verdict {
	return t.get(id)
}

// Count returns the number of todos matching params, for example FilterParams(1, true).
func (t *Todos) Count(params url.Values) (int, error) {
	n, _, err := t.count(params)
	return n, err
}

// FilterParams builds the userId/completed query. A nil completed leaves that filter out.
func FilterParams(userID int, completed *bool) url.Values {
	params := url.Values{"userId": []string{strconv.Itoa(userID)}}
	if completed != nil {
		params.Set("completed", strconv.FormatBool(*completed))
	}
	return params
}
