package catalog

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/strack/internal/model"
)

func TestDefault_Loads(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	assert.Greater(t, c.Len(), 50)

	again, err := Default()
	require.NoError(t, err)
	assert.Same(t, c, again)
}

func TestDefault_ConcurrentReads(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := MustDefault()
			assert.NotNil(t, c.FindByAliasOrName("netflix"))
			assert.NotNil(t, c.FindByURL("https://www.spotify.com/premium"))
		}()
	}
	wg.Wait()
}

func TestDefault_EveryEntryIsUsable(t *testing.T) {
	c := MustDefault()
	for _, svc := range c.All() {
		assert.NotEmpty(t, svc.Name, svc.Domain)
		assert.Same(t, svc, c.Get(svc.Domain), svc.Domain)
		for _, tier := range svc.TypicalPrices {
			assert.Greater(t, tier.Cost, 0.0, svc.Domain)
		}
	}
}

func TestFindByAliasOrName(t *testing.T) {
	c := MustDefault()

	tests := []struct {
		in     string
		domain string
	}{
		{"netflix", "netflix.com"},
		{"  NETFLIX ", "netflix.com"},
		{"netflix.com", "netflix.com"},
		{"hbomax.com", "max.com"},
		{"Disney Plus", "disneyplus.com"},
		{"spotify monthly", "spotify.com"},
		{"Apple Music", "music.apple.com"},
		{"Amazon Prime Video", "primevideo.com"},
		{"ChatGPT Plus", "openai.com"},
		{"Max (HBO)", "max.com"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			svc := c.FindByAliasOrName(tt.in)
			require.NotNil(t, svc)
			assert.Equal(t, tt.domain, svc.Domain)
		})
	}
}

func TestFindByAliasOrName_NoMatch(t *testing.T) {
	c := MustDefault()
	assert.Nil(t, c.FindByAliasOrName(""))
	assert.Nil(t, c.FindByAliasOrName("   "))
	assert.Nil(t, c.FindByAliasOrName("private training"))
	assert.Nil(t, c.FindByAliasOrName("x"))
	assert.Equal(t, "midjourney.com", c.FindByAliasOrName("mj").Domain)
}

func TestFindByAliasOrName_ExactNameOfEveryService(t *testing.T) {
	c := MustDefault()
	for _, svc := range c.All() {
		got := c.FindByAliasOrName(svc.Name)
		require.NotNil(t, got, svc.Name)
		assert.Equal(t, svc.Name, got.Name)
	}
}

func TestFindByURL(t *testing.T) {
	c := MustDefault()

	tests := []struct {
		in     string
		domain string
	}{
		{"https://netflix.com", "netflix.com"},
		{"https://www.netflix.com/browse", "netflix.com"},
		{"spotify.com", "spotify.com"},
		{"https://open.spotify.com/track/1", "spotify.com"},
		{"https://www.hbomax.com", "max.com"},
		{"https://drive.google.com/drive", "one.google.com"},
		{"http://NOTION.SO/pricing", "notion.so"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			svc := c.FindByURL(tt.in)
			require.NotNil(t, svc)
			assert.Equal(t, tt.domain, svc.Domain)
		})
	}

	assert.Nil(t, c.FindByURL(""))
	assert.Nil(t, c.FindByURL("https://unknown-service-xyz.io"))
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("services: [::"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog: decode yaml")

	_, err = Parse([]byte(`
services:
  - domain: example.com
    name: Example
    aliases: [example]
    currency: JPY
    billing_cycle: monthly
    category: other
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog: validate")
}

func TestNew_DuplicateDomain(t *testing.T) {
	svc := model.KnownService{Domain: "a.com", Name: "A"}
	_, err := New([]model.KnownService{svc, svc})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate domain")
}

func TestHostname(t *testing.T) {
	assert.Equal(t, "netflix.com", Hostname("https://www.Netflix.com/x"))
	assert.Equal(t, "netflix.com", Hostname("netflix.com"))
	assert.Equal(t, "localhost", Hostname("http://localhost:8080"))
	assert.Empty(t, Hostname(""))
	assert.Empty(t, Hostname("http://[::1"))
}

func TestParse_RejectsUnpricedTier(t *testing.T) {
	data := []byte(`services:
  - domain: example.com
    name: Example
    aliases: [example]
    currency: USD
    billing_cycle: monthly
    category: cloud
    prices:
      - {plan: Pro, cost: 20, billing_cycle: monthly}
      - {plan: Enterprise, cost: 0, billing_cycle: monthly}
`)
	_, err := Parse(data)
	assert.Error(t, err)
}

func TestDefault_VercelTiers(t *testing.T) {
	svc := MustDefault().Get("vercel.com")
	require.NotNil(t, svc)
	require.Len(t, svc.TypicalPrices, 1)
	assert.Equal(t, "Pro", svc.TypicalPrices[0].Plan)
}
