// Package openlibrary resolves ISBNs to book metadata via the Open Library API.
//
// The client is a fallible boundary: Resolve reports "unavailable" on any
// failure and never lets a transport error escape into business logic.
package openlibrary

import (
	"context"
	"github.com/go-json-experiment/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/homeshelf/homeshelf-server/internal/ratelimit"
)

// limiterKey is the single outbound key; all lookups hit the same host.
const limiterKey = "openlibrary"

// Client provides bounded-time metadata lookups against Open Library.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.KeyedRateLimiter
	logger     *slog.Logger
}

// NewClient creates an Open Library client. The timeout bounds every lookup;
// the limiter keeps us at 1 request per second per Open Library's guidance.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: ratelimit.New(1, 1),
		logger:  logger,
	}
}

// Resolve fetches metadata for the given ISBN. The second return value is
// false whenever the lookup failed for any reason: timeout, non-200 status,
// malformed body, or no network at all. Exactly one attempt is made.
func (c *Client) Resolve(ctx context.Context, isbn string) (*Result, bool) {
	if err := c.limiter.Wait(ctx, limiterKey); err != nil {
		c.logger.Debug("metadata lookup aborted before request", "isbn", isbn, "error", err)
		return nil, false
	}

	lookupURL := c.baseURL + "/isbn/" + url.PathEscape(isbn) + ".json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		c.logger.Debug("metadata lookup request invalid", "isbn", isbn, "error", err)
		return nil, false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("metadata lookup failed", "isbn", isbn, "error", err)
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("metadata lookup non-success", "isbn", isbn, "status", resp.StatusCode)
		return nil, false
	}

	var edition editionResponse
	if err := json.UnmarshalRead(resp.Body, &edition); err != nil {
		c.logger.Debug("metadata response malformed", "isbn", isbn, "error", err)
		return nil, false
	}

	// Subjects become tags; without subjects, tags stay empty for manual assignment.
	tags := make([]string, 0, len(edition.Subjects))
	for _, s := range edition.Subjects {
		if s.Name != "" {
			tags = append(tags, s.Name)
		}
	}

	c.logger.Debug("metadata resolved", "isbn", isbn, "title", edition.Title, "tags", len(tags))

	return &Result{
		Title:   edition.Title,
		Authors: edition.ByStatement,
		Tags:    tags,
	}, true
}
