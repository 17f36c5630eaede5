// Package pricing talks to the price-estimation web app: it turns a completed
// filter into a GET request and scrapes the estimate out of the returned page.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/google/uuid"

	"roofbot/internal/models"
	"roofbot/internal/utils"
)

// resultSelector matches the block holding the estimate. "reuslt" is the
// service's own spelling.
const resultSelector = "div.reuslt-section"

var (
	ErrIncompleteFilter = errors.New("filter is incomplete")
	ErrNoResult         = errors.New("result section not found")
)

// LookupError is returned for every failed lookup: unreachable service,
// timeout, bad status or a page without a result.
type LookupError struct {
	Op  string
	Err error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("price lookup %s: %v", e.Op, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client performs one GET per lookup. Safe for concurrent use.
type Client struct {
	baseURL   string
	collector *colly.Collector
	log       *slog.Logger
}

func NewClient(opts Options, logger *slog.Logger) *Client {
	collectorOpts := []colly.CollectorOption{colly.AllowURLRevisit()}
	if opts.UserAgent != "" {
		collectorOpts = append(collectorOpts, colly.UserAgent(opts.UserAgent))
	}
	c := colly.NewCollector(collectorOpts...)
	if opts.Timeout > 0 {
		c.SetRequestTimeout(opts.Timeout)
	}
	return &Client{
		baseURL:   opts.BaseURL,
		collector: c,
		log:       logger.With("component", "pricing"),
	}
}

// URL is the request the client would send for f.
func (c *Client) URL(f models.Filter) string {
	return c.baseURL + "?" + BuildQuery(f).Encode()
}

// Lookup fetches the estimate for f. The request stops counting against the
// caller once ctx is done; the collector's own timeout bounds the rest.
func (c *Client) Lookup(ctx context.Context, f models.Filter) (string, error) {
	if !f.Complete() {
		return "", &LookupError{Op: "build", Err: ErrIncompleteFilter}
	}

	target := c.URL(f)
	logger := c.log.With("lookup_id", uuid.NewString())
	logger.Debug("price lookup", "url", target)
	started := time.Now()

	collector := c.collector.Clone()
	var result string
	var found bool
	collector.OnHTML(resultSelector, func(e *colly.HTMLElement) {
		if found {
			return
		}
		found = true
		result = extractResult(e.DOM)
	})

	done := make(chan error, 1)
	go func() { done <- collector.Visit(target) }()

	select {
	case <-ctx.Done():
		logger.Debug("price lookup abandoned", "error", ctx.Err())
		return "", &LookupError{Op: "fetch", Err: ctx.Err()}
	case err := <-done:
		if err != nil {
			return "", &LookupError{Op: "fetch", Err: err}
		}
	}

	if !found || result == "" {
		return "", &LookupError{Op: "parse", Err: ErrNoResult}
	}
	logger.Debug("price lookup done", "took", time.Since(started).Round(time.Millisecond))
	return result, nil
}

// extractResult flattens the result block to MarkdownV2. Text is escaped,
// bold runs are wrapped in '*' and text nodes are joined by single spaces.
func extractResult(sel *goquery.Selection) string {
	var parts []string
	collectText(sel, &parts)
	return strings.Join(parts, " ")
}

func collectText(sel *goquery.Selection, parts *[]string) {
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "#text":
			if t := strings.Join(strings.Fields(s.Text()), " "); t != "" {
				*parts = append(*parts, utils.EscapeMarkdownV2(t))
			}
		case "b", "strong":
			if t := strings.Join(strings.Fields(s.Text()), " "); t != "" {
				*parts = append(*parts, "*"+utils.EscapeMarkdownV2(t)+"*")
			}
		case "script", "style", "#comment":
		default:
			collectText(s, parts)
		}
	})
}
