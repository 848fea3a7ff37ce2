package pipeline

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/yasinhessnawi1/strack/internal/model"
	"github.com/yasinhessnawi1/strack/internal/scrape"
)

// --- Scraper Mock ---

type mockScraper struct {
	mock.Mock
}

func (m *mockScraper) ScrapeBest(ctx context.Context, baseURL string, timeout time.Duration) scrape.ChainResult {
	args := m.Called(ctx, baseURL, timeout)
	return args.Get(0).(scrape.ChainResult)
}

// --- AI Extractor Mock ---

type mockAI struct {
	mock.Mock
}

func (m *mockAI) Available() bool {
	return m.Called().Bool(0)
}

func (m *mockAI) Extract(ctx context.Context, in model.ResolvedInput, scraped *model.ScrapedContent, timeout time.Duration, maxRetries int) (*model.AIExtraction, model.Attempt) {
	args := m.Called(ctx, in, scraped, timeout, maxRetries)
	attempt := args.Get(1).(model.Attempt)
	if args.Get(0) == nil {
		return nil, attempt
	}
	return args.Get(0).(*model.AIExtraction), attempt
}
