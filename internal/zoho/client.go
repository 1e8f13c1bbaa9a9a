// Package zoho is a small authenticated client for the Zoho CRM REST API.
//
// It knows nothing about prospects: it sends a request with the OAuth token
// attached and classifies failures into three kinds (unavailable, rejected,
// malformed).
package zoho

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gurri8686/zohoprospects/internal/metrics"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
)

const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"

	tokenScheme     = "Zoho-oauthtoken "
	contentTypeJSON = "application/json"
)

// Recorder receives one observation per upstream call, plus one per 2xx
// response whose body fails to decode. *metrics.Metrics satisfies it.
type Recorder interface {
	ObserveUpstream(operation, outcome string, seconds float64)
	ObserveMalformedResponse(operation string)
}

// Config holds configuration for the Zoho client.
type Config struct {
	Token   string
	Timeout time.Duration

	// Transport is the base round tripper. Defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

// Client sends authenticated requests to Zoho CRM. Safe for concurrent use.
type Client struct {
	token      string
	httpClient *http.Client
	recorder   Recorder
}

// RequestOptions describes the optional parts of a request.
type RequestOptions struct {
	// Operation names the call in metrics (e.g. "create"). Defaults to the method.
	Operation string

	Query url.Values

	// JSON is marshalled as the request body when non-nil.
	JSON any

	// Headers are merged into the request. They cannot replace the
	// Authorization or Content-Type headers unless OverrideDefaultHeaders is set.
	Headers                http.Header
	OverrideDefaultHeaders bool
}

// Response is a successful (2xx) upstream response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	method    string
	url       string
	operation string
	recorder  Recorder
}

// New creates a Zoho client. The outgoing transport is wrapped with New Relic
// so calls appear as external segments when a transaction is in the context.
func New(cfg Config, recorder Recorder) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("zoho: token is required")
	}

	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &Client{
		token: cfg.Token,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: newrelic.NewRoundTripper(transport),
		},
		recorder: recorder,
	}, nil
}

// Send performs one request against endpoint. No retries.
//
// The request's New Relic transaction, if any, is read from ctx by the wrapped transport.
func (c *Client) Send(ctx context.Context, method, endpoint string, opts RequestOptions) (*Response, error) {
	start := time.Now()
	operation := opts.Operation
	if operation == "" {
		operation = strings.ToLower(method)
	}

	resp, err := c.send(ctx, method, endpoint, opts)
	c.observe(operation, err, time.Since(start))
	if resp != nil {
		resp.operation = operation
		resp.recorder = c.recorder
	}

	return resp, err
}

func (c *Client) send(ctx context.Context, method, endpoint string, opts RequestOptions) (*Response, error) {
	target, err := url.Parse(endpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "zoho: invalid endpoint %q", endpoint)
	}
	if len(opts.Query) > 0 {
		// Caller values replace same-named keys already in the endpoint.
		q := target.Query()
		for key, values := range opts.Query {
			q[key] = append([]string(nil), values...)
		}
		target.RawQuery = q.Encode()
	}

	var body io.Reader
	if opts.JSON != nil {
		payload, err := json.Marshal(opts.JSON)
		if err != nil {
			return nil, errors.Wrap(err, "zoho: failed to marshal request body")
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, errors.Wrap(err, "zoho: failed to create request")
	}

	c.applyHeaders(req, opts)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: ErrUpstreamUnavailable, Method: method, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: ErrUpstreamUnavailable, Method: method, URL: endpoint, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Kind:       ErrUpstreamRejected,
			Method:     method,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Body:       excerpt(raw),
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       raw,
		method:     method,
		url:        endpoint,
	}, nil
}

func (c *Client) applyHeaders(req *http.Request, opts RequestOptions) {
	req.Header.Set(headerAuthorization, tokenScheme+c.token)
	req.Header.Set(headerContentType, contentTypeJSON)

	for key, values := range opts.Headers {
		canonical := http.CanonicalHeaderKey(key)
		if !opts.OverrideDefaultHeaders &&
			(canonical == headerAuthorization || canonical == headerContentType) {
			continue
		}
		req.Header.Del(canonical)
		for _, v := range values {
			req.Header.Add(canonical, v)
		}
	}
}

func (c *Client) observe(operation string, err error, elapsed time.Duration) {
	if c.recorder == nil {
		return
	}
	c.recorder.ObserveUpstream(operation, Outcome(err), elapsed.Seconds())
}

// Outcome maps an error from Send or Decode onto a metrics label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrUpstreamUnavailable):
		return metrics.OutcomeUnavailable
	case errors.Is(err, ErrUpstreamRejected):
		return metrics.OutcomeRejected
	case errors.Is(err, ErrUpstreamMalformed):
		return metrics.OutcomeMalformed
	default:
		return metrics.OutcomeFailed
	}
}

// Decode parses the body as JSON into v. Numbers are kept as json.Number.
//
// An empty body (e.g. 204 No Content) decodes into the zero value.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(r.Body))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		if r.recorder != nil {
			r.recorder.ObserveMalformedResponse(r.operation)
		}
		return Malformed(r.method, r.url, err)
	}
	return nil
}
