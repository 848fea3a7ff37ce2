package main

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/yasinhessnawi1/strack/internal/aiextract"
	"github.com/yasinhessnawi1/strack/internal/catalog"
	"github.com/yasinhessnawi1/strack/internal/config"
	"github.com/yasinhessnawi1/strack/internal/pipeline"
	"github.com/yasinhessnawi1/strack/internal/resolve"
	"github.com/yasinhessnawi1/strack/internal/scrape"
	"github.com/yasinhessnawi1/strack/pkg/anthropic"
)

// pipelineEnv holds the catalog and the pipeline built from it, shared by
// the extract and serve commands.
type pipelineEnv struct {
	Catalog  *catalog.Catalog
	Pipeline *pipeline.Pipeline
}

// initPipeline loads the catalog and wires the scraper and AI extractor
// into a Pipeline for the given command mode.
func initPipeline(c *config.Config, mode string) (*pipelineEnv, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	cat, err := catalog.Default()
	if err != nil {
		return nil, eris.Wrap(err, "load catalog")
	}

	chain := scrape.NewChain(
		scrape.NewHTTPScraper(scrape.Options{
			UserAgent:    c.Scrape.UserAgent,
			MaxBodyBytes: c.Scrape.MaxBodyBytes,
		}),
		c.Scrape.MaxCandidates,
		c.Scrape.ParallelCandidates,
	)

	handle := anthropic.NewHandle(c.Anthropic.Key, anthropic.WithRequestsPerSecond(c.Anthropic.RequestsPerSecond))
	ai := aiextract.New(handle, aiextract.Config{
		Model:       c.Anthropic.Model,
		MaxTokens:   c.Anthropic.MaxTokens,
		Temperature: c.Anthropic.Temperature,
	})
	if !ai.Available() {
		zap.L().Info("anthropic key not configured, AI extraction disabled")
	}

	zap.L().Debug("pipeline initialized",
		zap.Int("known_services", cat.Len()),
		zap.Bool("ai_available", ai.Available()),
		zap.Int("max_candidates", chain.MaxCandidates),
	)

	return &pipelineEnv{
		Catalog:  cat,
		Pipeline: pipeline.New(resolve.New(cat), chain, ai, c.Extraction),
	}, nil
}
