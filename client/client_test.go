package client_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/adamwoolhether/genius/client"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const token = "test-token"

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// captured records what a test server saw.
type captured struct {
	mu     sync.Mutex
	method string
	path   string
	query  string
	header http.Header
	body   []byte
}

func (c *captured) snapshot() captured {
	c.mu.Lock()
	defer c.mu.Unlock()
	return captured{method: c.method, path: c.path, query: c.query, header: c.header.Clone(), body: c.body}
}

func newServer(t *testing.T, status int, respBody string) (*httptest.Server, *captured) {
	t.Helper()

	var got captured
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)

		got.mu.Lock()
		got.method = r.Method
		got.path = r.URL.EscapedPath()
		got.query = r.URL.RawQuery
		got.header = r.Header.Clone()
		got.body = b
		got.mu.Unlock()

		w.WriteHeader(status)
		fmt.Fprint(w, respBody)
	}))
	t.Cleanup(ts.Close)

	return ts, &got
}

func build(t *testing.T, baseURL string, opts ...client.Option) *client.Client {
	t.Helper()

	c, err := client.Build(token, append([]client.Option{client.WithBaseURL(baseURL)}, opts...)...)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	return c
}

func TestBuild_MissingToken(t *testing.T) {
	var called bool
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		called = true
		return nil, errors.New("unreachable")
	})

	c, err := client.Build("", client.WithTransport(rt))
	if !errors.Is(err, client.ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got: %v", err)
	}
	if c != nil {
		t.Error("expected nil client")
	}
	if called {
		t.Error("transport must not be called")
	}
}

func TestBuild_InvalidOptions(t *testing.T) {
	testCases := []struct {
		name string
		opt  client.Option
	}{
		{name: "nil client", opt: client.WithClient(nil)},
		{name: "nil transport", opt: client.WithTransport(nil)},
		{name: "negative timeout", opt: client.WithTimeout(-1)},
		{name: "relative base url", opt: client.WithBaseURL("/v1")},
		{name: "nil tracer provider", opt: client.WithTracerProvider(nil)},
		{name: "nil registerer", opt: client.WithMetrics(nil)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := client.Build(token, tc.opt); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestDo_StatusClassification(t *testing.T) {
	codes := []int{200, 201, 204, 301, 304, 399, 400, 401, 403, 404, 422, 429, 500, 503}

	for _, code := range codes {
		t.Run(fmt.Sprintf("status %d", code), func(t *testing.T) {
			respBody := fmt.Sprintf(`{"meta":{"status":%d}}`, code)
			if code == http.StatusNoContent || code == http.StatusNotModified {
				respBody = ""
			}

			ts, _ := newServer(t, code, respBody)
			c := build(t, ts.URL, client.WithNoFollowRedirects())

			body, err := c.Do(t.Context(), client.Descriptor{Path: "/account"})

			if code >= 400 {
				if body != nil {
					t.Errorf("expected nil body on failure, got %q", body)
				}

				statusErr, ok := errors.AsType[*client.StatusError](err)
				if !ok {
					t.Fatalf("expected *StatusError, got: %v", err)
				}
				if statusErr.StatusCode != code {
					t.Errorf("exp status %d, got %d", code, statusErr.StatusCode)
				}
				if diff := cmp.Diff(respBody, string(statusErr.Body)); diff != "" {
					t.Errorf("error body mismatch (-want +got):\n%s", diff)
				}
				if !errors.Is(err, client.ErrAPI) {
					t.Error("expected error to wrap ErrAPI")
				}

				authFailure := code == http.StatusUnauthorized || code == http.StatusForbidden
				if errors.Is(err, client.ErrAuthFailure) != authFailure {
					t.Errorf("ErrAuthFailure match = %v, want %v", !authFailure, authFailure)
				}
				return
			}

			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if diff := cmp.Diff(respBody, string(body)); diff != "" {
				t.Errorf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDo_ErrorBodyNeverInspected(t *testing.T) {
	ts, _ := newServer(t, http.StatusOK, `{"error":"invalid_token","meta":{"status":401}}`)
	c := build(t, ts.URL)

	body, err := c.Do(t.Context(), client.Descriptor{Path: "/account"})
	if err != nil {
		t.Fatalf("a 200 must be a success regardless of body, got: %v", err)
	}
	if !strings.Contains(string(body), "invalid_token") {
		t.Errorf("unexpected body %q", body)
	}
}

func TestDo_TransportError(t *testing.T) {
	transportErr := errors.New("connection refused")
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return nil, transportErr
	})

	c, err := client.Build(token, client.WithTransport(rt))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	body, err := c.Do(t.Context(), client.Descriptor{Path: "/account"})
	if !errors.Is(err, transportErr) {
		t.Fatalf("expected transport error, got: %v", err)
	}
	if _, ok := errors.AsType[*client.StatusError](err); ok {
		t.Error("transport failure must not be a StatusError")
	}
	if body != nil {
		t.Errorf("expected nil body, got %q", body)
	}
}

func TestDo_AuthorizationHeader(t *testing.T) {
	testCases := []struct {
		name   string
		header http.Header
	}{
		{name: "no caller headers"},
		{name: "canonical override", header: http.Header{"Authorization": {"Bearer evil"}}},
		{name: "lowercase override", header: http.Header{"authorization": {"Basic abc", "Bearer evil"}}},
		{name: "unrelated header", header: http.Header{"X-Request-Id": {"abc123"}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ts, got := newServer(t, http.StatusOK, `{}`)
			c := build(t, ts.URL)

			if _, err := c.Do(t.Context(), client.Descriptor{Path: "/account", Header: tc.header}); err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}

			snap := got.snapshot()
			if diff := cmp.Diff([]string{"Bearer " + token}, snap.header.Values("Authorization")); diff != "" {
				t.Errorf("authorization mismatch (-want +got):\n%s", diff)
			}
			if rid := tc.header.Get("X-Request-Id"); rid != "" && snap.header.Get("X-Request-Id") != rid {
				t.Errorf("expected caller header to be forwarded")
			}
		})
	}
}

func TestRequest_Descriptor(t *testing.T) {
	c := build(t, "https://api.example.com/v1")

	testCases := []struct {
		name      string
		desc      client.Descriptor
		expMethod string
		expURL    string
	}{
		{
			name:      "path defaults to GET",
			desc:      client.Descriptor{Path: "/artists/16775"},
			expMethod: http.MethodGet,
			expURL:    "https://api.example.com/v1/artists/16775",
		},
		{
			name:      "path without leading slash",
			desc:      client.Descriptor{Path: "songs/378195"},
			expMethod: http.MethodGet,
			expURL:    "https://api.example.com/v1/songs/378195",
		},
		{
			name:      "escaped segment is kept",
			desc:      client.Descriptor{Path: "/artists/a%2Fb"},
			expMethod: http.MethodGet,
			expURL:    "https://api.example.com/v1/artists/a%2Fb",
		},
		{
			name:      "absolute url is used as-is",
			desc:      client.Descriptor{Path: "https://other.example.com/search", Query: client.Params{"q": "Kendrick Lamar"}},
			expMethod: http.MethodGet,
			expURL:    "https://other.example.com/search?q=Kendrick+Lamar",
		},
		{
			name: "query values of mixed types",
			desc: client.Descriptor{
				Path:   "/artists/16775/songs",
				Method: http.MethodGet,
				Query:  client.Params{"page": 2, "per_page": int64(10), "sort": "title", "ratio": 0.5, "flag": true},
			},
			expMethod: http.MethodGet,
			expURL:    "https://api.example.com/v1/artists/16775/songs?flag=true&page=2&per_page=10&ratio=0.5&sort=title",
		},
		{
			name:      "descriptor query merges into path query",
			desc:      client.Descriptor{Path: "/search?q=a", Query: client.Params{"page": 1}},
			expMethod: http.MethodGet,
			expURL:    "https://api.example.com/v1/search?page=1&q=a",
		},
		{
			name:      "explicit method",
			desc:      client.Descriptor{Path: "/annotations/1/upvote", Method: http.MethodPut},
			expMethod: http.MethodPut,
			expURL:    "https://api.example.com/v1/annotations/1/upvote",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := c.Request(t.Context(), tc.desc)
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if req.Method != tc.expMethod {
				t.Errorf("exp method %s, got %s", tc.expMethod, req.Method)
			}
			if req.URL.String() != tc.expURL {
				t.Errorf("exp url %s, got %s", tc.expURL, req.URL.String())
			}
			if req.Header.Get("Content-Type") != "" {
				t.Errorf("expected no content type without a body, got %q", req.Header.Get("Content-Type"))
			}
		})
	}
}

func TestRequest_UnsupportedParam(t *testing.T) {
	c := build(t, "https://api.example.com")

	_, err := c.Request(t.Context(), client.Descriptor{Path: "/search", Query: client.Params{"q": []string{"a"}}})
	if !errors.Is(err, client.ErrUnsupportedParam) {
		t.Fatalf("expected ErrUnsupportedParam, got: %v", err)
	}
}

func TestDo_JSONBody(t *testing.T) {
	ts, got := newServer(t, http.StatusCreated, `{"response":{"annotation":{"id":1}}}`)
	c := build(t, ts.URL)

	payload := map[string]any{"annotation": map[string]any{"body": map[string]any{"markdown": "x"}}}

	body, err := c.Do(t.Context(), client.Descriptor{Path: "/annotations", Method: http.MethodPost, Body: payload})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if string(body) != `{"response":{"annotation":{"id":1}}}` {
		t.Errorf("unexpected body %q", body)
	}

	snap := got.snapshot()
	if snap.method != http.MethodPost || snap.path != "/annotations" {
		t.Errorf("unexpected request line %s %s", snap.method, snap.path)
	}
	if ct := snap.header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("exp content type application/json, got %q", ct)
	}

	var sent map[string]any
	if err := json.Unmarshal(snap.body, &sent); err != nil {
		t.Fatalf("decoding sent body: %v", err)
	}
	if diff := cmp.Diff(payload, sent); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestDo_EmptyQuery(t *testing.T) {
	ts, got := newServer(t, http.StatusOK, `{}`)
	c := build(t, ts.URL)

	if _, err := c.Do(t.Context(), client.Descriptor{Path: "/artists/16775", Query: client.Params{}}); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if q := got.snapshot().query; q != "" {
		t.Errorf("expected empty query, got %q", q)
	}
}

func TestClient_WithUserAgent(t *testing.T) {
	expectedUA := "TestUserAgent/1.0"

	ts, got := newServer(t, http.StatusOK, `{}`)
	c := build(t, ts.URL, client.WithUserAgent(expectedUA))

	if _, err := c.Do(t.Context(), client.Descriptor{Path: "/account"}); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if ua := got.snapshot().header.Get("User-Agent"); ua != expectedUA {
		t.Errorf("expected User-Agent %q, got %q", expectedUA, ua)
	}
}

func TestClient_WithTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := build(t, ts.URL, client.WithTimeout(20*time.Millisecond))

	if _, err := c.Do(t.Context(), client.Descriptor{Path: "/account"}); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestClient_WithMetrics(t *testing.T) {
	ts, _ := newServer(t, http.StatusNotFound, `{}`)
	reg := prometheus.NewRegistry()
	c := build(t, ts.URL, client.WithMetrics(reg))

	for range 3 {
		_, _ = c.Do(t.Context(), client.Descriptor{Path: "/songs/1"})
	}

	n, err := testutil.GatherAndCount(reg, "genius_client_requests_total")
	if err != nil {
		t.Fatalf("gathering metrics: %v", err)
	}
	if n != 1 {
		t.Errorf("expected one labelled series, got %d", n)
	}

	if _, err := client.Build(token, client.WithMetrics(reg)); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestGo_Concurrent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/songs/404" {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"meta":{"status":404}}`)
			return
		}
		fmt.Fprintf(w, `{"path":%q}`, r.URL.Path)
	}))
	defer ts.Close()

	c := build(t, ts.URL)

	calls := make(map[string]*client.Call)
	for _, p := range []string{"/songs/1", "/songs/2", "/songs/404"} {
		calls[p] = c.Go(t.Context(), client.Descriptor{Path: p})
	}

	for p, call := range calls {
		select {
		case <-call.Done():
		case <-time.After(5 * time.Second):
			t.Fatalf("call %s did not complete", p)
		}

		body, err := call.Wait()
		if p == "/songs/404" {
			if !errors.Is(err, client.ErrAPI) || body != nil {
				t.Errorf("expected api error only for %s, got body=%q err=%v", p, body, err)
			}
			continue
		}
		if err != nil || call.Err() != nil {
			t.Errorf("expected no error for %s, got: %v", p, err)
		}
		if want := fmt.Sprintf(`{"path":%q}`, p); string(body) != want {
			t.Errorf("exp body %s, got %s", want, body)
		}
	}
}
