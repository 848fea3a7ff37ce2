package scrape

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/yasinhessnawi1/strack/internal/model"
	"github.com/yasinhessnawi1/strack/internal/resilience"
	"github.com/yasinhessnawi1/strack/internal/validate"
)

// HTTPScraper fetches pages with net/http and parses them with goquery.
// Connections are not pooled across calls.
type HTTPScraper struct {
	client *http.Client
	opts   Options
}

// NewHTTPScraper creates an HTTPScraper. Per-call timeouts come from the
// caller; the transport only bounds dialing and TLS.
func NewHTTPScraper(opts Options) *HTTPScraper {
	return &HTTPScraper{
		client: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
				DisableKeepAlives:   true,
			},
		},
		opts: opts.withDefaults(),
	}
}

// Scrape fetches targetURL within timeout and parses it.
func (s *HTTPScraper) Scrape(ctx context.Context, targetURL string, timeout time.Duration) (*model.ScrapedContent, model.Attempt) {
	start := time.Now()
	attempt := model.Attempt{Method: model.SourceScraper}

	content, err := s.fetch(ctx, targetURL, timeout)
	attempt.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		attempt.Error = err.Error()
		zap.L().Debug("scrape: fetch failed",
			zap.String("url", targetURL),
			zap.Bool("transient", resilience.IsTransient(err)),
			zap.Error(err),
		)
		return nil, attempt
	}

	attempt.Success = true
	return content, attempt
}

func (s *HTTPScraper) fetch(ctx context.Context, targetURL string, timeout time.Duration) (*model.ScrapedContent, error) {
	v := validate.URL(targetURL)
	if !v.Valid {
		return nil, eris.Errorf("scrape: invalid url: %s", v.Err())
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.Sanitized, nil)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: create request")
	}
	req.Header.Set("User-Agent", s.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, resilience.NewTransientError(eris.Wrapf(err, "scrape: timed out after %s", timeout), 0)
		}
		return nil, eris.Wrap(err, "scrape: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.opts.MaxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "scrape: read body")
	}

	if blocked, kind := DetectBlock(resp, body); blocked {
		return nil, eris.Errorf("scrape: blocked (%s)", kind)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := eris.Errorf("scrape: status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	pageURL := v.Sanitized
	if resp.Request != nil && resp.Request.URL != nil {
		pageURL = resp.Request.URL.String()
	}

	content, err := Parse(body, resp.Header.Get("Content-Type"), pageURL)
	if err != nil {
		return nil, err
	}
	content.StatusCode = resp.StatusCode
	return content, nil
}
