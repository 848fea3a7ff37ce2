package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/strack/internal/model"
)

const pricingPage = `<!doctype html>
<html><head>
<title>Acme Cloud | Pricing</title>
<meta property="og:site_name" content="Acme Cloud">
<meta property="og:image" content="https://cdn.acme.test/logo.png">
<meta name="description" content="Simple pricing for teams">
<meta name="twitter:card" content="summary">
<script type="application/ld+json">{"@type":"Product","name":"Acme Cloud"}</script>
<script type="application/ld+json">{not json</script>
</head><body>
<nav><a href="/account">My account</a> <a href="/help/cancel">Cancel subscription</a></nav>
<div class="pricing-table">
  <div class="plan-card">Basic <span class="price">$9.99</span>/month</div>
  <div class="plan-card">Pro <span class="price">$19.99</span>/month</div>
</div>
<script>var tracking = "$0.01";</script>
</body></html>`

func TestHTTPScraper_PricingPage(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(pricingPage))
	}))
	defer srv.Close()

	s := NewHTTPScraper(Options{})
	content, attempt := s.Scrape(context.Background(), srv.URL+"/pricing", time.Second)
	require.NotNil(t, content, attempt.Error)

	assert.True(t, attempt.Success)
	assert.Equal(t, model.SourceScraper, attempt.Method)
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, "en-US,en;q=0.5", gotLang)

	assert.Equal(t, "Acme Cloud", content.Title)
	assert.Equal(t, "Simple pricing for teams", content.Description)
	assert.Equal(t, "summary", content.MetaTags["twitter:card"])
	assert.Len(t, content.JSONLD, 1)
	assert.Equal(t, 200, content.StatusCode)
	assert.Contains(t, content.BodyText, "$9.99")
	assert.Contains(t, content.BodyText, "$19.99")
	assert.NotContains(t, content.BodyText, "tracking")
	assert.NotContains(t, content.BodyText, "My account")
	assert.Equal(t, 1, strings.Count(content.BodyText, "$9.99"), "nested pricing containers must not repeat text")

	require.Len(t, content.Links, 2)
	assert.Equal(t, srv.URL+"/account", content.Links[0].Href)
}

func TestHTTPScraper_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(strings.Repeat("<p>not here</p>", 10)))
	}))
	defer srv.Close()

	content, attempt := NewHTTPScraper(Options{}).Scrape(context.Background(), srv.URL, time.Second)
	assert.Nil(t, content)
	assert.False(t, attempt.Success)
	assert.Contains(t, attempt.Error, "scrape: status 404")
}

func TestHTTPScraper_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	content, attempt := NewHTTPScraper(Options{}).Scrape(context.Background(), srv.URL, 50*time.Millisecond)
	assert.Nil(t, content)
	assert.Contains(t, attempt.Error, "timed out")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestHTTPScraper_Blocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Cf-Ray", "abc123")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`<html><body>Access denied</body></html>`))
	}))
	defer srv.Close()

	content, attempt := NewHTTPScraper(Options{}).Scrape(context.Background(), srv.URL, time.Second)
	assert.Nil(t, content)
	assert.Contains(t, attempt.Error, "blocked (cloudflare)")
}

func TestHTTPScraper_InvalidURL(t *testing.T) {
	content, attempt := NewHTTPScraper(Options{}).Scrape(context.Background(), "javascript:alert(1)", time.Second)
	assert.Nil(t, content)
	assert.Contains(t, attempt.Error, "scrape: invalid url")
}

func TestHTTPScraper_BodyCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><p>head</p>" + strings.Repeat("<p>tail tail tail</p>", 5000) + "<p>$4.99 END</p></body></html>"))
	}))
	defer srv.Close()

	content, _ := NewHTTPScraper(Options{MaxBodyBytes: 1024}).Scrape(context.Background(), srv.URL, time.Second)
	require.NotNil(t, content)
	assert.Contains(t, content.BodyText, "head")
	assert.NotContains(t, content.BodyText, "END")
}

func TestHTTPScraper_Latin1(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// "Tjänst 99 kr" with ä as 0xE4.
		_, _ = w.Write([]byte("<html><head><title>Tj\xe4nst</title></head><body><p>99 kr/m\xe5n</p></body></html>"))
	}))
	defer srv.Close()

	content, _ := NewHTTPScraper(Options{}).Scrape(context.Background(), srv.URL, time.Second)
	require.NotNil(t, content)
	assert.Equal(t, "Tjänst", content.Title)
	assert.Contains(t, content.BodyText, "99 kr/mån")
}
