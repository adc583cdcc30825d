package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Client dispatches Genius API calls, attaching the bearer token to each one.
// It is safe for concurrent use; nothing is written after Build returns.
type Client struct {
	c       *http.Client
	logger  *slog.Logger
	tracer  trace.Tracer
	baseURL *url.URL
	auth    string
}

// Build returns a Client authenticating with token, or [ErrMissingToken]
// when token is empty.
func Build(token string, optFns ...Option) (*Client, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	base, err := url.Parse(DefaultBaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing default base url: %w", err)
	}

	client := &Client{
		c:       &http.Client{},
		logger:  slog.Default(),
		baseURL: base,
		auth:    "Bearer " + token,
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	if opts.client != nil {
		client.c = opts.client
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	if opts.baseURL != nil {
		client.baseURL = opts.baseURL
	}

	if opts.timeout != nil {
		client.c.Timeout = *opts.timeout
	}

	if opts.noFollowRedirects {
		client.c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	tp := opts.tracerProvider
	if tp == nil {
		tp = noop.NewTracerProvider()
	}
	client.tracer = tp.Tracer("github.com/adamwoolhether/genius/client")

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	if opts.registerer != nil {
		rt, err := instrument(opts.registerer, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring metrics: %w", err)
		}
		transport = rt
	}
	client.c.Transport = transport

	return client, nil
}

// Do performs the call described by d and returns the raw response body.
//
// A transport failure is returned wrapped as-is. A response with a status
// code of 400 or above returns a [*StatusError] holding the raw body and a
// nil result. Any other response returns its body and a nil error.
func (c *Client) Do(ctx context.Context, d Descriptor) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "genius.dispatch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", d.method()),
			attribute.String("genius.path", d.Path),
		),
	)
	defer span.End()

	body, err := c.do(ctx, d, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return body, nil
}

func (c *Client) do(ctx context.Context, d Descriptor, span trace.Span) ([]byte, error) {
	req, err := c.Request(ctx, d)
	if err != nil {
		return nil, err
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exec http do: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	c.logger.Debug("dispatch completed", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode)

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, newStatusError(resp.StatusCode, b)
	}

	return b, nil
}

// Request builds the *http.Request for d. Path-only descriptors are resolved
// against the base URL, d.Query is merged into the query string, and the
// Authorization header is set last so d.Header cannot replace it.
func (c *Client) Request(ctx context.Context, d Descriptor) (*http.Request, error) {
	u, err := c.resolve(d)
	if err != nil {
		return nil, err
	}

	var payload io.Reader = http.NoBody
	if d.Body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(d.Body); err != nil {
			return nil, fmt.Errorf("encoding request payload: %w", err)
		}
		payload = &buf
	}

	req, err := http.NewRequestWithContext(ctx, d.method(), u.String(), payload)
	if err != nil {
		return nil, fmt.Errorf("instantiating request: %w", err)
	}

	for k, v := range d.Header {
		for _, element := range v {
			req.Header.Add(k, element)
		}
	}

	if d.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	req.Header.Set("Authorization", c.auth)

	return req, nil
}

// BaseURL returns a copy of the origin path-only descriptors resolve against.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

func (c *Client) resolve(d Descriptor) (*url.URL, error) {
	ref, err := url.Parse(d.Path)
	if err != nil {
		return nil, fmt.Errorf("parsing path %q: %w", d.Path, err)
	}

	var u *url.URL
	if ref.IsAbs() {
		u = ref
	} else {
		u = c.baseURL.JoinPath(ref.EscapedPath())
		u.RawQuery = ref.RawQuery
	}

	if len(d.Query) == 0 {
		return u, nil
	}

	extra, err := d.Query.Values()
	if err != nil {
		return nil, err
	}

	q := u.Query()
	for k, v := range extra {
		q[k] = v
	}
	u.RawQuery = q.Encode()

	return u, nil
}

func newStatusError(code int, body []byte) *StatusError {
	err := ErrAPI
	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		err = errors.Join(ErrAPI, ErrAuthFailure)
	}

	return &StatusError{
		StatusCode: code,
		Body:       body,
		Err:        err,
	}
}
