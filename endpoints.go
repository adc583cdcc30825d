package genius

import (
	"context"
	"net/http"

	"github.com/adamwoolhether/genius/client"
)

// Search searches genius.com for q.
func (c *Client) Search(ctx context.Context, q string, opts ...QueryOption) ([]byte, error) {
	return c.get(ctx, "/search", append([]QueryOption{WithParam("q", q)}, opts...))
}

// GetArtist looks up an artist.
func (c *Client) GetArtist(ctx context.Context, artistID string, opts ...QueryOption) ([]byte, error) {
	path, err := resource("/artists/%s", artistID)
	if err != nil {
		return nil, err
	}

	return c.get(ctx, path, opts)
}

// GetArtistSongs lists songs by an artist. See [WithSort], [WithPage] and [WithPerPage].
func (c *Client) GetArtistSongs(ctx context.Context, artistID string, opts ...QueryOption) ([]byte, error) {
	path, err := resource("/artists/%s/songs", artistID)
	if err != nil {
		return nil, err
	}

	return c.get(ctx, path, opts)
}

// GetSong looks up a song.
func (c *Client) GetSong(ctx context.Context, songID string, opts ...QueryOption) ([]byte, error) {
	path, err := resource("/songs/%s", songID)
	if err != nil {
		return nil, err
	}

	return c.get(ctx, path, opts)
}

// GetAlbum looks up an album.
func (c *Client) GetAlbum(ctx context.Context, albumID string, opts ...QueryOption) ([]byte, error) {
	path, err := resource("/albums/%s", albumID)
	if err != nil {
		return nil, err
	}

	return c.get(ctx, path, opts)
}

// GetAnnotation looks up an annotation.
func (c *Client) GetAnnotation(ctx context.Context, annotationID string, opts ...QueryOption) ([]byte, error) {
	path, err := resource("/annotations/%s", annotationID)
	if err != nil {
		return nil, err
	}

	return c.get(ctx, path, opts)
}

// CreateAnnotation posts annotation as the JSON body, unchanged.
// [AnnotationPayload] matches the shape the API expects.
func (c *Client) CreateAnnotation(ctx context.Context, annotation any) ([]byte, error) {
	return c.Do(ctx, client.Descriptor{
		Path:   "/annotations",
		Method: http.MethodPost,
		Body:   annotation,
	})
}

// UpdateAnnotation replaces an annotation with the JSON encoding of annotation.
func (c *Client) UpdateAnnotation(ctx context.Context, annotationID string, annotation any) ([]byte, error) {
	path, err := resource("/annotations/%s", annotationID)
	if err != nil {
		return nil, err
	}

	return c.Do(ctx, client.Descriptor{
		Path:   path,
		Method: http.MethodPut,
		Body:   annotation,
	})
}

// DeleteAnnotation deletes an annotation.
func (c *Client) DeleteAnnotation(ctx context.Context, annotationID string) ([]byte, error) {
	return c.annotationAction(ctx, http.MethodDelete, "/annotations/%s", annotationID)
}

// UpvoteAnnotation votes positively for an annotation.
func (c *Client) UpvoteAnnotation(ctx context.Context, annotationID string) ([]byte, error) {
	return c.annotationAction(ctx, http.MethodPut, "/annotations/%s/upvote", annotationID)
}

// UnvoteAnnotation removes the current user's vote.
func (c *Client) UnvoteAnnotation(ctx context.Context, annotationID string) ([]byte, error) {
	return c.annotationAction(ctx, http.MethodPut, "/annotations/%s/unvote", annotationID)
}

// DownvoteAnnotation votes negatively for an annotation.
func (c *Client) DownvoteAnnotation(ctx context.Context, annotationID string) ([]byte, error) {
	return c.annotationAction(ctx, http.MethodPut, "/annotations/%s/downvote", annotationID)
}

// GetReferents lists referents. Filter with WithParam("song_id", ...),
// "web_page_id" or "created_by_id".
func (c *Client) GetReferents(ctx context.Context, opts ...QueryOption) ([]byte, error) {
	return c.get(ctx, "/referents", opts)
}

// LookupWebPage finds a web page by "raw_annotatable_url", "canonical_url" or "og_url".
func (c *Client) LookupWebPage(ctx context.Context, opts ...QueryOption) ([]byte, error) {
	return c.get(ctx, "/web_pages/lookup", opts)
}

// GetAccount returns the account of the token's owner.
func (c *Client) GetAccount(ctx context.Context, opts ...QueryOption) ([]byte, error) {
	return c.get(ctx, "/account", opts)
}

func (c *Client) annotationAction(ctx context.Context, method, tmpl, annotationID string) ([]byte, error) {
	path, err := resource(tmpl, annotationID)
	if err != nil {
		return nil, err
	}

	return c.Do(ctx, client.Descriptor{Path: path, Method: method})
}
