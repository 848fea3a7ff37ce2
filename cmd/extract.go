package main

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/yasinhessnawi1/strack/internal/pipeline"
)

var extractFlags struct {
	compat         bool
	noAI           bool
	noScraper      bool
	threshold      float64
	aiTimeout      time.Duration
	scraperTimeout time.Duration
	maxRetries     int
}

var extractCmd = &cobra.Command{
	Use:   "extract <input...>",
	Short: "Extract subscription data from a URL, service name, or description",
	Example: `  strack extract netflix
  strack extract https://www.spotify.com/premium
  strack extract "private training for $10 a month" --compat`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cfg, "extract")
		if err != nil {
			return err
		}

		input := strings.Join(args, " ")
		result := env.Pipeline.Extract(cmd.Context(), input, extractOptions(cmd)...)

		var out any = result
		if extractFlags.compat {
			out = pipeline.ToParserSubscriptionData(result)
		}
		return writeJSON(cmd.OutOrStdout(), out)
	},
}

// extractOptions turns explicitly set flags into per-call overrides.
func extractOptions(cmd *cobra.Command) []pipeline.Option {
	var opts []pipeline.Option
	flags := cmd.Flags()
	if extractFlags.noAI {
		opts = append(opts, pipeline.WithAIEnabled(false))
	}
	if extractFlags.noScraper {
		opts = append(opts, pipeline.WithScraperEnabled(false))
	}
	if flags.Changed("threshold") {
		opts = append(opts, pipeline.WithThreshold(extractFlags.threshold))
	}
	if flags.Changed("ai-timeout") {
		opts = append(opts, pipeline.WithAITimeout(extractFlags.aiTimeout))
	}
	if flags.Changed("scraper-timeout") {
		opts = append(opts, pipeline.WithScraperTimeout(extractFlags.scraperTimeout))
	}
	if flags.Changed("max-retries") {
		opts = append(opts, pipeline.WithMaxRetries(extractFlags.maxRetries))
	}
	return opts
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "encode result")
	}
	return nil
}

func init() {
	f := extractCmd.Flags()
	f.BoolVar(&extractFlags.compat, "compat", false, "print the legacy parse API shape")
	f.BoolVar(&extractFlags.noAI, "no-ai", false, "skip AI extraction")
	f.BoolVar(&extractFlags.noScraper, "no-scraper", false, "skip every page fetch")
	f.Float64Var(&extractFlags.threshold, "threshold", 0.7, "minimum AI confidence accepted without merging")
	f.DurationVar(&extractFlags.aiTimeout, "ai-timeout", 15*time.Second, "AI call timeout, retries included")
	f.DurationVar(&extractFlags.scraperTimeout, "scraper-timeout", 10*time.Second, "timeout per page fetch")
	f.IntVar(&extractFlags.maxRetries, "max-retries", 2, "AI retries after the first attempt")
	rootCmd.AddCommand(extractCmd)
}
