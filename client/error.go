package client

import (
	"fmt"
)

// StatusError is returned when the API answers with a status code of 400 or
// above. Body is the raw response body; interpreting it is up to the caller.
type StatusError struct {
	StatusCode int
	Body       []byte
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: %d, body: %s", e.Err, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}
