package restapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/launchdarkly/rest-contract-tests/envelope"
	"github.com/launchdarkly/rest-contract-tests/framework"
)

// TransportRequest is one fully resolved HTTP request. URL already includes the query string.
type TransportRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
	HasBody bool
}

// Transport sends a request and returns the raw response. A response with any status code is
// a success from the transport's point of view; errors mean that no response was received.
type Transport interface {
	Send(ctx context.Context, req TransportRequest) (envelope.RawResponse, error)
}

// TransportOptions configures an HTTPTransport.
type TransportOptions struct {
	// Session keeps cookies between calls, like a browser session.
	Session bool

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool

	// Logger receives one debug line per exchange.
	Logger framework.Logger
}

// HTTPTransport is the net/http implementation of Transport.
type HTTPTransport struct {
	client *http.Client
	jar    http.CookieJar
	logger framework.Logger
}

func NewHTTPTransport(opts TransportOptions) *HTTPTransport {
	logger := opts.Logger
	if logger == nil {
		logger = framework.NullLogger()
	}
	client := &http.Client{}
	if opts.InsecureSkipVerify {
		client.Transport = &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
		}
	}
	t := &HTTPTransport{client: client, logger: logger}
	if opts.Session {
		jar, _ := cookiejar.New(nil)
		client.Jar = jar
		t.jar = jar
	}
	return t
}

func (t *HTTPTransport) Send(ctx context.Context, req TransportRequest) (envelope.RawResponse, error) {
	var body io.Reader
	if req.HasBody {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return envelope.RawResponse{}, err
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	started := time.Now()
	resp, err := t.client.Do(httpReq)
	if err != nil {
		t.logger.Printf("%s %s failed: %s", req.Method, req.URL, err)
		return envelope.RawResponse{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return envelope.RawResponse{}, fmt.Errorf("error reading response body: %w", err)
	}
	t.logger.Printf("%s %s -> %d (%d bytes in %s)", req.Method, req.URL, resp.StatusCode, len(data),
		time.Since(started).Round(time.Millisecond))

	raw := envelope.RawResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		FinalURL:   resp.Request.URL.String(),
	}
	if t.jar != nil {
		raw.Cookies = make(map[string]string)
		for _, c := range t.jar.Cookies(resp.Request.URL) {
			raw.Cookies[c.Name] = c.Value
		}
	}
	return raw, nil
}
