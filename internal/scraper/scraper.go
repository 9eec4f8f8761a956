package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"rgccr-notice-check/internal/notice"
)

// ParseError is a structural failure of the notice page: unparsable HTML or
// a missing notice table. Same abort semantics as a fetch failure.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse notice page: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parse notice page: %s", e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type Scraper struct {
	selectors *Selectors
	limit     int
}

func NewScraper(selectors *Selectors, limit int) *Scraper {
	return &Scraper{
		selectors: selectors,
		limit:     limit,
	}
}

// ParseNotices extracts up to limit notices from the board page, preserving
// document order. The board renders newest first, so the result is a valid
// FetchedList. Rows with fewer than three cells or without a usable title
// and link are skipped; a page without the notice table at all is an error.
func (s *Scraper) ParseNotices(html string) (notice.FetchedList, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return notice.FetchedList{}, &ParseError{Reason: "invalid HTML", Err: err}
	}

	table := doc.Find(s.selectors.Table).First()
	if table.Length() == 0 {
		return notice.FetchedList{}, &ParseError{Reason: fmt.Sprintf("notice table not found (selector %q)", s.selectors.Table)}
	}

	var notices []notice.Notice
	table.Find(s.selectors.Rows).EachWithBreak(func(i int, row *goquery.Selection) bool {
		if len(notices) >= s.limit {
			return false
		}

		if row.Find("td").Length() < 3 {
			return true // skip malformed row
		}

		title := trySelectorsText(row, s.selectors.Title)
		if title == "" {
			return true
		}

		rawURL := trySelectorsHref(row, s.selectors.Link)
		if rawURL == "" {
			return true
		}

		notices = append(notices, notice.Notice{
			Date:  trySelectorsText(row, s.selectors.Date),
			Title: title,
			URL:   normalizeURL(rawURL),
		})
		return true
	})

	return notice.NewFetchedList(notices), nil
}

func trySelectorsText(row *goquery.Selection, selectors []string) string {
	for _, selector := range selectors {
		text := strings.TrimSpace(row.Find(selector).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

func trySelectorsHref(row *goquery.Selection, selectors []string) string {
	for _, selector := range selectors {
		href, exists := row.Find(selector).First().Attr("href")
		if exists && strings.TrimSpace(href) != "" {
			return strings.TrimSpace(href)
		}
	}
	return ""
}

func normalizeURL(urlStr string) string {
	urlStr = strings.TrimSpace(urlStr)
	// Drop fragments so the same notice always derives the same key.
	if idx := strings.Index(urlStr, "#"); idx > -1 {
		urlStr = urlStr[:idx]
	}
	return urlStr
}
