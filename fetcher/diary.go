package fetcher

import (
	"cine-grid/grid"
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/gocolly/colly"
)

var (
	diaryDatePattern   = regexp.MustCompile(`/for/(\d{4})/(\d{2})/(\d{2})/?`)
	diaryRatingPattern = regexp.MustCompile(`\brated-(\d+)\b`)
)

// DiarySource scrapes a user's Letterboxd diary pages for one year
type DiarySource struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	maxPages  int
}

func NewDiarySource(baseURL, userAgent string, timeout time.Duration, maxPages int) *DiarySource {
	return &DiarySource{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		timeout:   timeout,
		maxPages:  maxPages,
	}
}

// Fetch walks the diary pages and returns the entries oldest first, the
// order the spreadsheet endpoint uses.
func (s *DiarySource) Fetch(ctx context.Context, username string, year int) ([]grid.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var reviews []grid.Review
	var pageErr error

	c := newCollector(ctx, s.userAgent, s.timeout, colly.MaxDepth(s.maxPages))

	c.OnHTML("tr.diary-entry-row", func(e *colly.HTMLElement) {
		if review, ok := parseDiaryRow(e); ok {
			reviews = append(reviews, review)
		}
	})

	c.OnHTML("a.next", func(e *colly.HTMLElement) {
		href := e.Attr("href")
		if href == "" {
			return
		}
		err := e.Request.Visit(href)
		switch err {
		case nil, colly.ErrMaxDepth, colly.ErrAlreadyVisited:
		default:
			if pageErr == nil {
				pageErr = err
			}
		}
	})

	target := fmt.Sprintf("%s/%s/films/diary/for/%d/", s.baseURL, username, year)
	log.Printf("Scraping diary for %s (%d)", username, year)
	if err := c.Visit(target); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to scrape diary %s: %w", target, err)
	}
	if pageErr != nil {
		return nil, fmt.Errorf("failed to scrape diary page: %w", pageErr)
	}

	// Diary pages list the newest entry first
	for i, j := 0, len(reviews)-1; i < j; i, j = i+1, j-1 {
		reviews[i], reviews[j] = reviews[j], reviews[i]
	}

	log.Printf("Scraped %d diary entries for %s (%d)", len(reviews), username, year)
	return reviews, nil
}

func parseDiaryRow(e *colly.HTMLElement) (grid.Review, bool) {
	title := strings.TrimSpace(e.ChildText("td.td-film-details h3 a"))
	if title == "" {
		return grid.Review{}, false
	}

	review := grid.Review{
		Title: title,
		Link:  e.ChildAttr("td.td-film-details h3 a", "href"),
	}

	if m := diaryDatePattern.FindStringSubmatch(e.ChildAttr("td.td-day a", "href")); m != nil {
		review.Date = fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3])
	}

	if m := diaryRatingPattern.FindStringSubmatch(e.ChildAttr("td.td-rating .rating", "class")); m != nil {
		review.Rating = m[1]
	}

	rewatch := e.DOM.Find("td.td-rewatch")
	review.Rewatch = rewatch.Length() > 0 && !rewatch.HasClass("icon-status-off")

	review.Thumbnail = e.ChildAttr("div.film-poster img", "src")
	if review.Thumbnail == "" {
		review.Thumbnail = e.ChildAttr("div.film-poster img", "data-src")
	}

	return review, true
}
