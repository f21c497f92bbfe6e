// Package resources wraps the REST endpoints of the service under test in resource objects.
// Each operation returns a verdict.Verdict; none of them print anything or exit.
package resources

import (
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/launchdarkly/rest-contract-tests/envelope"
	"github.com/launchdarkly/rest-contract-tests/restapi"
	"github.com/launchdarkly/rest-contract-tests/verdict"

	"github.com/ohler55/ojg/jp"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const (
	StatusList   = 200
	StatusGet    = 200
	StatusCreate = 201

	defaultIDPath = "$.id"
)

// collection is the behavior shared by every resource type: a base path on which list, get,
// count, and create are available.
type collection struct {
	client *restapi.Client
	path   string
	name   string
}

func (c *collection) list(params url.Values) verdict.Verdict {
	e, err := c.client.Get(c.path, restapi.CallOptions{Params: params})
	return expectStatus(e, err, StatusList)
}

func (c *collection) get(id interface{}) verdict.Verdict {
	e, err := c.client.Get(fmt.Sprintf("%s/%v", c.path, id), restapi.CallOptions{})
	return expectStatus(e, err, StatusGet)
}

func (c *collection) post(payload interface{}) verdict.Verdict {
	e, err := c.client.Post(c.path, payload, restapi.CallOptions{})
	return expectStatus(e, err, StatusCreate)
}

// count lists the collection and returns the number of elements in the JSON array. Any
// failure is a PreconditionFailure, since counts only ever support another operation.
func (c *collection) count(params url.Values) (int, *envelope.Envelope, error) {
	v := c.list(params)
	if !v.Success {
		return 0, v.Envelope, verdict.Precondition(
			fmt.Sprintf("Failed to get total %s from list %s API.", c.name, c.name), v.Err)
	}
	value, ok := v.Envelope.JSON()
	if !ok || value.Type() != ldvalue.ArrayType {
		return 0, v.Envelope, verdict.Precondition(
			fmt.Sprintf("Failed to get total %s from list %s API.", c.name, c.name),
			fmt.Errorf("response body is not a JSON array"))
	}
	return value.Count(), v.Envelope, nil
}

func expectStatus(e *envelope.Envelope, err error, status int) verdict.Verdict {
	if err != nil {
		return verdict.Fail(e, verdict.Transport(err))
	}
	if e.StatusCode != status {
		return verdict.Fail(e, verdict.StatusCodeFailure(status, e.StatusCode))
	}
	return verdict.Pass(e)
}

// extractID evaluates a JSONPath expression against the JSON body of e and returns the first
// match in a form suitable for a URL path segment.
func extractID(e *envelope.Envelope, path string) (string, error) {
	value, ok := e.JSON()
	if !ok {
		return "", fmt.Errorf("response body is not JSON")
	}
	expr, err := jp.ParseString(path)
	if err != nil {
		return "", fmt.Errorf("invalid id path %q: %w", path, err)
	}
	results := expr.Get(value.AsArbitraryValue())
	if len(results) == 0 || results[0] == nil {
		return "", fmt.Errorf("no value at %s in response", path)
	}
	switch id := results[0].(type) {
	case string:
		return id, nil
	case float64:
		if id == math.Trunc(id) {
			return strconv.FormatInt(int64(id), 10), nil
		}
		return strconv.FormatFloat(id, 'f', -1, 64), nil
	case int64:
		return strconv.FormatInt(id, 10), nil
	default:
		return fmt.Sprint(id), nil
	}
}
