package genius

import (
	"maps"
	"strings"

	"github.com/adamwoolhether/genius/client"
)

// TextFormat selects how text bodies are rendered in responses.
type TextFormat string

const (
	TextFormatDOM   TextFormat = "dom"
	TextFormatPlain TextFormat = "plain"
	TextFormatHTML  TextFormat = "html"
)

// QueryOption adds query string parameters to a read endpoint.
// Calling an endpoint without any QueryOption sends an empty query.
type QueryOption func(client.Params)

// WithTextFormat sets text_format. No format is sent unless requested.
// Several formats may be combined, e.g. WithTextFormat(TextFormatPlain, TextFormatHTML).
// Calling it without formats sets nothing.
func WithTextFormat(formats ...TextFormat) QueryOption {
	return func(p client.Params) {
		if len(formats) == 0 {
			return
		}
		vals := make([]string, len(formats))
		for i, f := range formats {
			vals[i] = string(f)
		}
		p["text_format"] = strings.Join(vals, ",")
	}
}

// WithPage sets the 1-based page number.
func WithPage(page int) QueryOption {
	return WithParam("page", page)
}

// WithPerPage sets the page size.
func WithPerPage(n int) QueryOption {
	return WithParam("per_page", n)
}

// WithSort sets the sort order, e.g. "title" or "popularity" for artist songs.
func WithSort(sort string) QueryOption {
	return WithParam("sort", sort)
}

// WithParam sets a single query parameter verbatim. The value must be a
// string, number or bool.
func WithParam(key string, value any) QueryOption {
	return func(p client.Params) {
		p[key] = value
	}
}

// WithParams merges every entry of params verbatim into the query.
func WithParams(params map[string]any) QueryOption {
	return func(p client.Params) {
		maps.Copy(p, params)
	}
}

func buildQuery(opts []QueryOption) client.Params {
	p := make(client.Params, len(opts))
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	return p
}
