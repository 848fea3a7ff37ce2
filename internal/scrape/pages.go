package scrape

import (
	"net/url"
	"strings"
)

// candidatePaths follow the page itself when guessing where prices live.
var candidatePaths = []string{"/pricing", "/plans", "/subscribe", "/subscription", "/pro", "/premium"}

var pricingKeywords = []string{
	"pricing", "plans", "subscribe", "subscription", "buy", "purchase", "checkout", "signup",
}

// PricingPageURLs lists candidate pages for baseURL: baseURL itself, then
// common pricing paths on the same origin. An unparsable URL yields only
// itself.
func PricingPageURLs(baseURL string) []string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return []string{baseURL}
	}
	origin := u.Scheme + "://" + u.Host

	out := make([]string, 0, 1+len(candidatePaths))
	out = append(out, baseURL)
	for _, p := range candidatePaths {
		if c := origin + p; c != baseURL {
			out = append(out, c)
		}
	}
	return out
}

// IsPricingPage reports whether rawURL's path looks like a pricing or
// checkout page.
func IsPricingPage(rawURL string) bool {
	target := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		target = u.Path
	}
	target = strings.ToLower(target)
	for _, k := range pricingKeywords {
		if strings.Contains(target, k) {
			return true
		}
	}
	return false
}
