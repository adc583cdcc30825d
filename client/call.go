package client

import (
	"context"
)

// Call is a single in-flight or completed dispatch started by [Client.Go].
// Exactly one of its body and error is set once Done is closed.
type Call struct {
	done chan struct{}
	body []byte
	err  error
}

// Go starts the call described by d in its own goroutine.
// Calls are independent; their completion order follows the network.
func (c *Client) Go(ctx context.Context, d Descriptor) *Call {
	call := &Call{done: make(chan struct{})}

	go func() {
		defer close(call.done)
		call.body, call.err = c.Do(ctx, d)
	}()

	return call
}

// Done returns a channel that is closed when the call completes.
func (c *Call) Done() <-chan struct{} { return c.done }

// Wait blocks until the call completes and returns its outcome.
func (c *Call) Wait() ([]byte, error) {
	<-c.done
	return c.body, c.err
}

// Err blocks until the call completes and returns its error.
func (c *Call) Err() error {
	<-c.done
	return c.err
}
