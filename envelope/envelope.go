// Package envelope normalizes one HTTP exchange into an Envelope: the request that was sent,
// the status and headers that came back, the response body classified by content, and a
// command line that replays the call.
package envelope

import (
	"encoding/base64"
	"encoding/json"
	"mime"
	"net/http"
	"sort"
	"strings"
	"unicode/utf8"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Body is the response body of an Envelope. Exactly one of JSONBody, TextBody, BinaryBody,
// or NoBody is used for each response.
type Body interface {
	isBody()
}

// JSONBody is a response body that parsed as JSON.
type JSONBody struct {
	Value ldvalue.Value
}

// TextBody is a response body that was not JSON but was valid UTF-8 text.
type TextBody struct {
	Text string
}

// BinaryBody is a response body with one of the binary content types.
type BinaryBody struct {
	Data []byte
}

// NoBody means the response had no usable body.
type NoBody struct{}

func (JSONBody) isBody()   {}
func (TextBody) isBody()   {}
func (BinaryBody) isBody() {}
func (NoBody) isBody()     {}

var binaryContentTypes = map[string]bool{
	"application/octet-stream":     true,
	"application/x-zip-compressed": true,
	"application/gzip":             true,
	"application/pdf":              true,
	"application/zip":              true,
}

// Request describes the call as it was sent.
type Request struct {
	Method     string
	URL        string
	Headers    map[string]string
	Payload    []byte
	HasPayload bool
}

// RawResponse is what the transport returned.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	FinalURL   string
	Cookies    map[string]string
}

// Envelope is the normalized record of one call. It is not modified after it is built.
type Envelope struct {
	Method          string
	URL             string
	StatusCode      int
	RequestHeaders  map[string]string
	ResponseHeaders map[string]string
	Cookies         map[string]string
	Body            Body
	Payload         []byte
	HasPayload      bool
	ReplayCommand   string
}

// New builds the Envelope for a call that got a response.
func New(req Request, resp RawResponse) *Envelope {
	e := newFromRequest(req)
	if resp.FinalURL != "" {
		e.URL = resp.FinalURL
	}
	e.StatusCode = resp.StatusCode
	e.ResponseHeaders = flattenHeaders(resp.Header)
	for k, v := range resp.Cookies {
		e.Cookies[k] = v
	}
	e.Body = SelectBody(resp.Header.Get("Content-Type"), resp.Body)
	e.ReplayCommand = ReplayCommand(e.Method, e.URL, e.RequestHeaders, e.Payload, e.HasPayload)
	return e
}

// NewUnanswered builds the Envelope for a call whose transport failed before any response
// arrived. The status code is zero and the body is NoBody.
func NewUnanswered(req Request) *Envelope {
	e := newFromRequest(req)
	e.ReplayCommand = ReplayCommand(e.Method, e.URL, e.RequestHeaders, e.Payload, e.HasPayload)
	return e
}

func newFromRequest(req Request) *Envelope {
	headers := make(map[string]string, len(req.Headers))
	for k, v := range req.Headers {
		headers[k] = v
	}
	e := &Envelope{
		Method:          strings.ToUpper(req.Method),
		URL:             req.URL,
		RequestHeaders:  headers,
		ResponseHeaders: map[string]string{},
		Cookies:         map[string]string{},
		Body:            NoBody{},
		HasPayload:      req.HasPayload,
	}
	if req.HasPayload {
		e.Payload = append([]byte(nil), req.Payload...)
	}
	return e
}

// SelectBody classifies a response body. The order is: no bytes, JSON, binary content type,
// UTF-8 text; anything else is treated as having no body. It never fails.
func SelectBody(contentType string, data []byte) Body {
	if len(data) == 0 {
		return NoBody{}
	}
	if value, err := parseJSON(data); err == nil {
		return JSONBody{Value: value}
	}
	if isBinaryContentType(contentType) {
		return BinaryBody{Data: append([]byte(nil), data...)}
	}
	if utf8.Valid(data) {
		return TextBody{Text: string(data)}
	}
	return NoBody{}
}

func parseJSON(data []byte) (ldvalue.Value, error) {
	var value ldvalue.Value
	if err := json.Unmarshal(data, &value); err != nil {
		return ldvalue.Null(), err
	}
	return value, nil
}

func isBinaryContentType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	}
	return binaryContentTypes[strings.ToLower(mediaType)]
}

func flattenHeaders(h http.Header) map[string]string {
	ret := make(map[string]string, len(h))
	for k, vv := range h {
		ret[k] = strings.Join(vv, ", ")
	}
	return ret
}

// MethodAndURL returns the verb and the resolved URL, such as "GET http://host/users?id=1".
func (e *Envelope) MethodAndURL() string {
	return e.Method + " " + e.URL
}

// JSON returns the parsed body if the response body was JSON.
func (e *Envelope) JSON() (ldvalue.Value, bool) {
	if e == nil {
		return ldvalue.Null(), false
	}
	if b, ok := e.Body.(JSONBody); ok {
		return b.Value, true
	}
	return ldvalue.Null(), false
}

// Dump returns a JSON-friendly view of the envelope for diagnostic output.
func (e *Envelope) Dump() map[string]interface{} {
	ret := map[string]interface{}{
		"url":           e.MethodAndURL(),
		"status_code":   e.StatusCode,
		"input-headers": e.RequestHeaders,
		"headers":       e.ResponseHeaders,
		"cookies":       e.Cookies,
		"curl":          e.ReplayCommand,
	}
	if e.HasPayload {
		ret["payload"] = string(e.Payload)
	}
	switch b := e.Body.(type) {
	case JSONBody:
		ret["json_data"] = b.Value
	case TextBody:
		ret["text_data"] = b.Text
	case BinaryBody:
		ret["binary_data"] = base64.StdEncoding.EncodeToString(b.Data)
	case NoBody:
	}
	return ret
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
