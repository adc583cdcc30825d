package client

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultBaseURL is the origin path-only descriptors are resolved against.
const DefaultBaseURL = "https://api.genius.com"

var (
	// ErrMissingToken is returned by [Build] when the bearer token is empty.
	ErrMissingToken = errors.New("access token must not be empty")
	// ErrAPI is the sentinel error wrapped by [StatusError].
	ErrAPI = errors.New("api error")
	// ErrAuthFailure is joined with [ErrAPI] when the server
	// responds with 401 Unauthorized or 403 Forbidden.
	ErrAuthFailure = errors.New("auth failure")
	// ErrUnsupportedParam is returned when a query value is not a string, number or bool.
	ErrUnsupportedParam = errors.New("unsupported query parameter type")
)

// Descriptor holds everything needed to perform one API call.
type Descriptor struct {
	// Path is either a path resolved against the base URL,
	// or an absolute URL used as-is.
	Path string
	// Method defaults to GET.
	Method string
	// Query is merged verbatim into the query string.
	Query Params
	// Body, when non-nil, is JSON encoded as the request payload.
	Body any
	// Header holds extra request headers. It can never replace Authorization.
	Header http.Header
}

func (d Descriptor) method() string {
	if d.Method == "" {
		return http.MethodGet
	}

	return d.Method
}

// Params maps query keys to string, number or boolean values.
type Params map[string]any

// Values converts p into [url.Values].
func (p Params) Values() (url.Values, error) {
	vals := make(url.Values, len(p))
	for k, v := range p {
		s, err := formatParam(v)
		if err != nil {
			return nil, fmt.Errorf("param[%s]: %w", k, err)
		}
		vals.Set(k, s)
	}

	return vals, nil
}

// Encode returns the query string form of p, sorted by key.
// A nil or empty Params encodes to "".
func (p Params) Encode() (string, error) {
	vals, err := p.Values()
	if err != nil {
		return "", err
	}

	return vals.Encode(), nil
}

func formatParam(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int8:
		return strconv.FormatInt(int64(val), 10), nil
	case int16:
		return strconv.FormatInt(int64(val), 10), nil
	case int32:
		return strconv.FormatInt(int64(val), 10), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case fmt.Stringer:
		return val.String(), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedParam, v)
	}
}
