// Package restapi issues REST calls against the service under test and wraps every
// response in an envelope.Envelope.
package restapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/launchdarkly/rest-contract-tests/envelope"
	"github.com/launchdarkly/rest-contract-tests/framework"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// Config contains the settings shared by every call made through a Client.
type Config struct {
	// BaseURL is prepended to every path, e.g. "http://jsonplaceholder.typicode.com".
	BaseURL string

	// Headers are sent with every call. Headers given for a single call take precedence.
	Headers map[string]string

	// TimeoutSeconds applies to calls that do not set their own timeout. If neither is set, or
	// the value in effect is zero, only the transport's own limits apply.
	TimeoutSeconds ldvalue.OptionalInt

	// RequestIDHeader, if set, is the name of a header that gets a fresh UUID on every call.
	RequestIDHeader string

	// Transport defaults to an HTTPTransport without a session.
	Transport Transport

	// Logger is given to the default transport. It is not used if Transport is set.
	Logger framework.Logger
}

// CallOptions are the per-call parameters.
type CallOptions struct {
	Params      url.Values
	Headers     map[string]string
	ContentType string
	Timeout     ldvalue.OptionalInt
}

// Client is a thin REST wrapper. It never treats an HTTP status as an error: whatever the
// service answers is returned in the envelope.
type Client struct {
	baseURL         string
	headers         map[string]string
	timeout         ldvalue.OptionalInt
	requestIDHeader string
	transport       Transport
}

func NewClient(config Config) *Client {
	c := &Client{
		baseURL:         strings.TrimSuffix(config.BaseURL, "/"),
		headers:         make(map[string]string, len(config.Headers)),
		timeout:         config.TimeoutSeconds,
		requestIDHeader: config.RequestIDHeader,
		transport:       config.Transport,
	}
	for k, v := range config.Headers {
		c.headers[k] = v
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport(TransportOptions{Logger: config.Logger})
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a GET request. No Content-Type is sent unless opts.ContentType is set.
func (c *Client) Get(path string, opts CallOptions) (*envelope.Envelope, error) {
	return c.Do(http.MethodGet, path, nil, opts)
}

// Post issues a POST request. The content type defaults to application/json.
func (c *Client) Post(path string, body interface{}, opts CallOptions) (*envelope.Envelope, error) {
	if opts.ContentType == "" {
		opts.ContentType = ContentTypeJSON
	}
	return c.Do(http.MethodPost, path, body, opts)
}

func (c *Client) Put(path string, body interface{}, opts CallOptions) (*envelope.Envelope, error) {
	if opts.ContentType == "" {
		opts.ContentType = ContentTypeJSON
	}
	return c.Do(http.MethodPut, path, body, opts)
}

func (c *Client) Patch(path string, body interface{}, opts CallOptions) (*envelope.Envelope, error) {
	if opts.ContentType == "" {
		opts.ContentType = ContentTypeJSON
	}
	return c.Do(http.MethodPatch, path, body, opts)
}

func (c *Client) Delete(path string, opts CallOptions) (*envelope.Envelope, error) {
	return c.Do(http.MethodDelete, path, nil, opts)
}

// Do issues a request with any method. A nil body sends no payload.
//
// If the transport fails, the returned envelope describes the request (including its replay
// command) but has no status code, and the error is non-nil.
func (c *Client) Do(method, path string, body interface{}, opts CallOptions) (*envelope.Envelope, error) {
	req := envelope.Request{
		Method:  method,
		URL:     c.resolveURL(path, opts.Params),
		Headers: c.mergeHeaders(opts),
	}
	payload, hasPayload, err := encodePayload(body, opts.ContentType)
	if err != nil {
		return envelope.NewUnanswered(req), fmt.Errorf("cannot encode %s payload for %s: %w", opts.ContentType, path, err)
	}
	req.Payload, req.HasPayload = payload, hasPayload

	ctx := context.Background()
	if timeout := c.resolveTimeout(opts.Timeout); timeout.IsDefined() && timeout.IntValue() > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout.IntValue())*time.Second)
		defer cancel()
	}

	raw, err := c.transport.Send(ctx, TransportRequest{
		Method:  req.Method,
		URL:     req.URL,
		Headers: req.Headers,
		Body:    req.Payload,
		HasBody: req.HasPayload,
	})
	if err != nil {
		return envelope.NewUnanswered(req), fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
	}
	return envelope.New(req, raw), nil
}

func (c *Client) resolveURL(path string, params url.Values) string {
	u := c.baseURL + path
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + params.Encode()
	}
	return u
}

// resolveTimeout picks the call timeout, else the client default. Zero or less means none.
func (c *Client) resolveTimeout(callTimeout ldvalue.OptionalInt) ldvalue.OptionalInt {
	if callTimeout.IsDefined() {
		return callTimeout
	}
	return c.timeout
}

// mergeHeaders applies client headers, then call headers, then the explicit content type.
func (c *Client) mergeHeaders(opts CallOptions) map[string]string {
	ret := make(map[string]string, len(c.headers)+len(opts.Headers)+2)
	for k, v := range c.headers {
		ret[k] = v
	}
	for k, v := range opts.Headers {
		ret[k] = v
	}
	if opts.ContentType != "" {
		for k := range ret {
			if strings.EqualFold(k, "Content-Type") {
				delete(ret, k)
			}
		}
		ret["Content-Type"] = opts.ContentType
	}
	if c.requestIDHeader != "" {
		ret[c.requestIDHeader] = uuid.NewString()
	}
	return ret
}

// encodePayload turns a body into bytes. Raw forms ([]byte, string, io.Reader) pass through
// unchanged. Structured bodies are serialized to JSON for a JSON content type; url.Values and
// map[string]string are form-encoded for a form content type. Any other structured body is
// an error, since there is no encoding for it.
func encodePayload(body interface{}, contentType string) ([]byte, bool, error) {
	switch b := body.(type) {
	case nil:
		return nil, false, nil
	case []byte:
		return b, true, nil
	case string:
		return []byte(b), true, nil
	case json.RawMessage:
		return []byte(b), true, nil
	case io.Reader:
		data, err := io.ReadAll(b)
		return data, true, err
	}
	switch {
	case hasMediaType(contentType, ContentTypeJSON):
		data, err := json.Marshal(body)
		return data, true, err
	case hasMediaType(contentType, ContentTypeForm):
		switch b := body.(type) {
		case url.Values:
			return []byte(b.Encode()), true, nil
		case map[string]string:
			values := make(url.Values, len(b))
			for k, v := range b {
				values.Set(k, v)
			}
			return []byte(values.Encode()), true, nil
		}
	}
	return nil, false, fmt.Errorf("no encoding for a %T body", body)
}

func hasMediaType(contentType, mediaType string) bool {
	actual := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	return strings.EqualFold(actual, mediaType)
}
