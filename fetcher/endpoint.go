package fetcher

import (
	"cine-grid/grid"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"time"

	"github.com/gocolly/colly"
)

// EndpointSource reads reviews from a spreadsheet-backed JSON endpoint that
// takes username and year query parameters.
type EndpointSource struct {
	endpoint  string
	userAgent string
	timeout   time.Duration
}

func NewEndpointSource(endpoint, userAgent string, timeout time.Duration) *EndpointSource {
	return &EndpointSource{
		endpoint:  endpoint,
		userAgent: userAgent,
		timeout:   timeout,
	}
}

// Fetch issues a single GET and decodes the JSON array body
func (s *EndpointSource) Fetch(ctx context.Context, username string, year int) ([]grid.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target, err := s.requestURL(username, year)
	if err != nil {
		return nil, err
	}

	var reviews []grid.Review
	var decodeErr error

	c := newCollector(ctx, s.userAgent, s.timeout)
	c.OnResponse(func(r *colly.Response) {
		if err := json.Unmarshal(r.Body, &reviews); err != nil {
			decodeErr = fmt.Errorf("failed to decode reviews: %w", err)
		}
	})

	log.Printf("Fetching reviews for %s (%d)", username, year)
	if err := c.Visit(target); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to fetch reviews from %s: %w", s.endpoint, err)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}

	log.Printf("Fetched %d reviews for %s (%d)", len(reviews), username, year)
	return reviews, nil
}

func (s *EndpointSource) requestURL(username string, year int) (string, error) {
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", s.endpoint, err)
	}
	q := u.Query()
	q.Set("username", username)
	q.Set("year", strconv.Itoa(year))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
