package resources

import (
	"net/url"

	"github.com/launchdarkly/rest-contract-tests/jsondiff"
	"github.com/launchdarkly/rest-contract-tests/restapi"
	"github.com/launchdarkly/rest-contract-tests/verdict"
)

// Users wraps GET /users, GET /users/{id}, and POST /users.
type Users struct {
	collection
}

// CreateOptions selects the secondary checks done by Users.Create.
type CreateOptions struct {
	// Verify fetches the created user by id and compares it with the payload.
	Verify bool

	// VerifyCount checks that the number of users grew by exactly one.
	VerifyCount bool

	// IgnoreKeys are left out of the payload comparison. If nil, "id" is ignored, since the
	// service assigns it.
	IgnoreKeys []string

	// IDPath is a JSONPath expression locating the new id in the create response. It
	// defaults to "$.id".
	IDPath string
}

func NewUsers(client *restapi.Client) *Users {
	return &Users{collection{client: client, path: "/users", name: "users"}}
}

func (u *Users) List(params url.Values) verdict.Verdict {
	return u.list(params)
}

func (u *Users) Get(id interface{}) verdict.Verdict {
	return u.get(id)
}

// Count returns the number of users in the list response.
func (u *Users) Count(params url.Values) (int, error) {
	n, _, err := u.count(params)
	return n, err
}

// Create posts a new user. The steps run in a fixed order and the first one that fails
// decides the verdict: count before, create, count after, then fetch and compare. The
// returned envelope is always that of the create call, except when counting fails before
// the create is attempted.
func (u *Users) Create(payload interface{}, opts CreateOptions) verdict.Verdict {
	var before int
	if opts.VerifyCount {
		n, e, err := u.count(nil)
		if err != nil {
			return verdict.Fail(e, err)
		}
		before = n
	}

	created := u.post(payload)
	if !created.Success {
		return created
	}

	if opts.VerifyCount {
		after, _, err := u.count(nil)
		if err != nil {
			return verdict.Fail(created.Envelope, err)
		}
		if after != before+1 {
			return verdict.Fail(created.Envelope, verdict.CountFailure(before+1, after))
		}
	}

	if opts.Verify {
		idPath := opts.IDPath
		if idPath == "" {
			idPath = defaultIDPath
		}
		id, err := extractID(created.Envelope, idPath)
		if err != nil {
			return verdict.Fail(created.Envelope, verdict.QueryFailure("?", err))
		}
		fetched := u.get(id)
		if !fetched.Success {
			return verdict.Fail(created.Envelope, verdict.QueryFailure(id, fetched.Err))
		}
		fetchedValue, _ := fetched.Envelope.JSON()
		ignore := opts.IgnoreKeys
		if ignore == nil {
			ignore = []string{"id"}
		}
		if diff := jsondiff.Compare(payload, fetchedValue, jsondiff.Options{
			LeftName:   "User dict",
			RightName:  "Response dict",
			IgnoreKeys: ignore,
		}); diff != nil {
			return verdict.Fail(created.Envelope, verdict.ContentFailure(diff))
		}
	}

	return verdict.Pass(created.Envelope)
}
