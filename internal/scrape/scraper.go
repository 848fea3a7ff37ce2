// Package scrape fetches candidate pages and pulls pricing context out of them.
package scrape

import (
	"context"
	"time"

	"github.com/yasinhessnawi1/strack/internal/model"
)

// Scraper fetches a single URL. A failed fetch is reported through the
// attempt and a nil content, never as a panic or error return.
type Scraper interface {
	Scrape(ctx context.Context, url string, timeout time.Duration) (*model.ScrapedContent, model.Attempt)
}

// DefaultUserAgent is a desktop Chrome string; many pricing pages serve
// stripped markup to unknown agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Content size caps applied while parsing.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 500
	MaxMetaLength        = 500
	MaxLinkTextLength    = 200
	MaxBodyTextLength    = 10000
	DefaultMaxBodyBytes  = 2 << 20
)

// Options configures an HTTPScraper.
type Options struct {
	UserAgent    string
	MaxBodyBytes int64
}

func (o Options) withDefaults() Options {
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return o
}
