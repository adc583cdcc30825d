// Package client implements the request dispatcher shared by every Genius
// API endpoint.
//
// # Building a Client
//
// Use [Build] with the bearer token and any functional options:
//
//	c, err := client.Build(token,
//		client.WithTimeout(10 * time.Second),
//		client.WithUserAgent("myapp/1.0"),
//	)
//
// An empty token fails with [ErrMissingToken] before any network call.
//
// # Dispatching
//
// Describe the call with a [Descriptor] and execute it with [Client.Do]:
//
//	body, err := c.Do(ctx, client.Descriptor{
//		Path:  "/artists/16775",
//		Query: client.Params{"text_format": "plain"},
//	})
//
// Any status code of 400 or above yields a [*StatusError] carrying the raw
// response body. Everything below 400 is a success carrying the raw body.
// The body content never changes that classification.
//
// # Async Calls
//
// [Client.Go] starts the same call in its own goroutine and returns a
// single-shot [Call]:
//
//	call := c.Go(ctx, client.Descriptor{Path: "/account"})
//	// ... do other work ...
//	body, err := call.Wait()
package client
