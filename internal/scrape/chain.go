package scrape

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yasinhessnawi1/strack/internal/model"
)

// Chain tries candidate URLs in priority order and keeps the first page
// that fetches. With Parallel set, candidates are fetched concurrently but
// the winner is still the lowest-index success.
type Chain struct {
	Scraper       Scraper
	MaxCandidates int
	Parallel      bool
}

// ChainResult is the outcome of a Chain run.
type ChainResult struct {
	Content  *model.ScrapedContent
	URL      string
	Attempts []model.Attempt
}

// NewChain creates a Chain over s trying at most maxCandidates URLs.
func NewChain(s Scraper, maxCandidates int, parallel bool) *Chain {
	if maxCandidates <= 0 {
		maxCandidates = 3
	}
	return &Chain{Scraper: s, MaxCandidates: maxCandidates, Parallel: parallel}
}

// ScrapeBest tries the pricing-page candidates for baseURL. Attempts are
// reported in candidate order up to and including the winner.
func (c *Chain) ScrapeBest(ctx context.Context, baseURL string, timeout time.Duration) ChainResult {
	urls := PricingPageURLs(baseURL)
	if len(urls) > c.MaxCandidates {
		urls = urls[:c.MaxCandidates]
	}
	if c.Parallel && len(urls) > 1 {
		return c.race(ctx, urls, timeout)
	}
	return c.sequential(ctx, urls, timeout)
}

func (c *Chain) sequential(ctx context.Context, urls []string, timeout time.Duration) ChainResult {
	var res ChainResult
	for _, u := range urls {
		content, attempt := c.Scraper.Scrape(ctx, u, timeout)
		res.Attempts = append(res.Attempts, attempt)
		if content != nil {
			res.Content = content
			res.URL = u
			return res
		}
		zap.L().Debug("scrape: candidate failed, trying next",
			zap.String("url", u),
			zap.String("error", attempt.Error),
		)
		if ctx.Err() != nil {
			break
		}
	}
	return res
}

type slot struct {
	done    bool
	content *model.ScrapedContent
	attempt model.Attempt
}

// race fetches all candidates at once and cancels the rest as soon as every
// earlier candidate has finished and one has succeeded.
func (c *Chain) race(ctx context.Context, urls []string, timeout time.Duration) ChainResult {
	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var mu sync.Mutex
	slots := make([]slot, len(urls))

	settled := func() bool {
		for i := range slots {
			if !slots[i].done {
				return false
			}
			if slots[i].content != nil {
				return true
			}
		}
		return true
	}

	g, gCtx := errgroup.WithContext(raceCtx)
	g.SetLimit(len(urls))
	for i, u := range urls {
		g.Go(func() error {
			content, attempt := c.Scraper.Scrape(gCtx, u, timeout)
			mu.Lock()
			defer mu.Unlock()
			slots[i] = slot{done: true, content: content, attempt: attempt}
			if settled() {
				cancel()
			}
			return nil
		})
	}
	_ = g.Wait()

	var res ChainResult
	for i, s := range slots {
		res.Attempts = append(res.Attempts, s.attempt)
		if s.content != nil {
			res.Content = s.content
			res.URL = urls[i]
			break
		}
	}
	return res
}
