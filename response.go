package genius

import (
	"encoding/json"
	"fmt"
)

// Meta is the status block present on every API response.
type Meta struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
}

// Envelope is the outer shape of API responses.
type Envelope[T any] struct {
	Meta     Meta `json:"meta"`
	Response T    `json:"response"`
}

// Decode unmarshals a raw response body into an Envelope of T.
// It performs no validation of the payload.
func Decode[T any](body []byte) (Envelope[T], error) {
	var env Envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return env, fmt.Errorf("decoding body: %w", err)
	}

	return env, nil
}

// AnnotationPayload is the body accepted by CreateAnnotation and UpdateAnnotation.
type AnnotationPayload struct {
	Annotation AnnotationBody `json:"annotation"`
	Referent   *Referent      `json:"referent,omitempty"`
	WebPage    *WebPage       `json:"web_page,omitempty"`
}

// AnnotationBody holds the markdown text of an annotation.
type AnnotationBody struct {
	Body struct {
		Markdown string `json:"markdown"`
	} `json:"body"`
}

// Referent locates the annotated fragment on a web page.
type Referent struct {
	RawAnnotatableURL string             `json:"raw_annotatable_url,omitempty"`
	Fragment          string             `json:"fragment,omitempty"`
	ContextForDisplay *ContextForDisplay `json:"context_for_display,omitempty"`
}

// ContextForDisplay is the HTML surrounding a referent's fragment.
type ContextForDisplay struct {
	BeforeHTML string `json:"before_html,omitempty"`
	AfterHTML  string `json:"after_html,omitempty"`
}

// WebPage identifies the page an annotation is attached to.
type WebPage struct {
	CanonicalURL string `json:"canonical_url,omitempty"`
	OgURL        string `json:"og_url,omitempty"`
	Title        string `json:"title,omitempty"`
}

// Song is the subset of song fields used to locate its lyrics page.
type Song struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	ArtistNames string `json:"artist_names"`
	URL         string `json:"url"`
	Path        string `json:"path"`
}
