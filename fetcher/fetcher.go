package fetcher

import (
	"cine-grid/config"
	"cine-grid/grid"
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gocolly/colly"
)

// Source produces the diary reviews for one user and year
type Source interface {
	Fetch(ctx context.Context, username string, year int) ([]grid.Review, error)
}

// New returns the source selected by cfg.Source
func New(cfg *config.Config) (Source, error) {
	switch cfg.Source {
	case config.SourceEndpoint:
		return NewEndpointSource(cfg.Endpoint, cfg.UserAgent, cfg.FetchTimeout()), nil
	case config.SourceDiary:
		return NewDiarySource(cfg.LetterboxdURL, cfg.UserAgent, cfg.FetchTimeout(), cfg.MaxDiaryPages), nil
	}
	return nil, fmt.Errorf("unsupported source: %s", cfg.Source)
}

// newCollector builds a fresh collector per fetch; colly refuses to revisit
// a URL within one collector.
func newCollector(ctx context.Context, userAgent string, timeout time.Duration, options ...func(*colly.Collector)) *colly.Collector {
	options = append(options, colly.UserAgent(userAgent))
	c := colly.NewCollector(options...)
	c.WithTransport(&contextTransport{ctx: ctx, base: http.DefaultTransport})
	if timeout > 0 {
		c.SetRequestTimeout(timeout)
	}

	c.OnRequest(func(r *colly.Request) {
		log.Println("Visiting:", r.URL)
	})

	c.OnResponse(func(r *colly.Response) {
		log.Println("Response received:", r.StatusCode)
	})

	return c
}

// contextTransport ties every request a collector makes to ctx
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t *contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}
