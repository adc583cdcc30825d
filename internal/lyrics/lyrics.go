// Package lyrics reads the lyric text off a genius.com song page.
package lyrics

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const (
	maxPageBytes = 4 << 20 // 4 MiB

	containerSelector = `[data-lyrics-container="true"]`
	excludeSelector   = `[data-exclude-from-selection="true"]`
)

// ErrNoLyrics is returned when a page holds no lyrics container.
var ErrNoLyrics = errors.New("no lyrics found on page")

// Scraper fetches song pages.
type Scraper struct {
	client *resty.Client
}

// NewScraper returns a Scraper whose requests time out after timeout and
// carry userAgent when it is not empty.
func NewScraper(timeout time.Duration, userAgent string) *Scraper {
	c := resty.New().
		SetTimeout(timeout).
		SetResponseBodyLimit(maxPageBytes)
	if userAgent != "" {
		c.SetHeader("User-Agent", userAgent)
	}

	return &Scraper{client: c}
}

// Fetch downloads pageURL (a song's "url" field) and returns its lyrics.
func (s *Scraper) Fetch(ctx context.Context, pageURL string) (string, error) {
	resp, err := s.client.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return "", fmt.Errorf("http fetch: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode())
	}

	return Extract(resp.Body())
}

// Extract returns the text of every lyrics container in page, in document
// order, with line breaks kept.
func Extract(page []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var blocks []string
	doc.Find(containerSelector).Each(func(_ int, sel *goquery.Selection) {
		sel.Find(excludeSelector).Remove()
		sel.Find("br").ReplaceWithHtml("\n")

		if text := strings.TrimSpace(sel.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})

	if len(blocks) == 0 {
		return "", ErrNoLyrics
	}

	return strings.Join(blocks, "\n"), nil
}
