// Package genius is a client for the Genius API (https://docs.genius.com).
//
// Every endpoint method builds a [client.Descriptor] and hands it to the
// shared dispatcher, which attaches the bearer token and classifies the
// response by status code alone. Results are the raw JSON response bodies;
// use [Decode] to unwrap the "response" envelope into a type of your own.
//
//	c, err := genius.New(os.Getenv("GENIUS_ACCESS_TOKEN"))
//	body, err := c.GetArtist(ctx, "16775", genius.WithTextFormat(genius.TextFormatPlain))
package genius

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/adamwoolhether/genius/client"
)

var (
	// ErrEmptyID is returned when an endpoint is called with a blank identifier.
	ErrEmptyID = errors.New("id must not be empty")
	// ErrInvalidID is returned for identifiers that would resolve to another
	// path, such as "." or "..".
	ErrInvalidID = errors.New("invalid id")
)

// Client exposes the Genius API endpoints.
type Client struct {
	*client.Client
}

// New instantiates a new *Client authenticating with token.
// It fails with [client.ErrMissingToken] when token is empty.
func New(token string, opts ...client.Option) (*Client, error) {
	c, err := client.Build(token, opts...)
	if err != nil {
		return nil, err
	}

	return &Client{Client: c}, nil
}

// get dispatches a GET for path with the given query options applied.
func (c *Client) get(ctx context.Context, path string, opts []QueryOption) ([]byte, error) {
	return c.Do(ctx, client.Descriptor{
		Path:  path,
		Query: buildQuery(opts),
	})
}

// resource joins the escaped id into a path template such as "/songs/%s".
func resource(tmpl, id string) (string, error) {
	switch strings.TrimSpace(id) {
	case "":
		return "", ErrEmptyID
	case ".", "..":
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	return fmt.Sprintf(tmpl, url.PathEscape(id)), nil
}
