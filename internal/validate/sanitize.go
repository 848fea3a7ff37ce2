// Package validate holds the input sanitizer and the validators that coerce
// untrusted values (user text, scraped HTML, model output) into safe types.
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Length limits.
const (
	MaxInputLength       = 2000
	MaxURLLength         = 2048
	MaxNameLength        = 200
	MaxDescriptionLength = 1000
)

var (
	tagRe          = regexp.MustCompile(`<[^>]*>`)
	jsProtocolRe   = regexp.MustCompile(`(?i)javascript:`)
	eventHandlerRe = regexp.MustCompile(`(?i)on\w+=`)
	whitespaceRe   = regexp.MustCompile(`[\s\p{Z}]+`)
	schemeRe       = regexp.MustCompile(`^(?i)([a-z][a-z0-9+.-]*):(\D|$)`)
)

var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)data:`),
	regexp.MustCompile(`(?i)vbscript:`),
	regexp.MustCompile(`(?i)<script`),
	regexp.MustCompile(`(?i)onclick`),
	regexp.MustCompile(`(?i)onerror`),
	regexp.MustCompile(`(?i)onload`),
	regexp.MustCompile(`(?i)eval\s*\(`),
	regexp.MustCompile(`(?i)document\.`),
	regexp.MustCompile(`(?i)window\.`),
}

// Sanitize trims s, removes null bytes, HTML tags, javascript: and inline
// event handler fragments, collapses whitespace, and truncates to maxLen
// runes. A non-positive maxLen means MaxInputLength.
//
// Removal repeats until nothing changes, so Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = MaxInputLength
	}

	out := strings.TrimSpace(s)
	for {
		next := strings.ReplaceAll(out, "\x00", "")
		next = tagRe.ReplaceAllString(next, "")
		next = jsProtocolRe.ReplaceAllString(next, "")
		next = eventHandlerRe.ReplaceAllString(next, "")
		next = whitespaceRe.ReplaceAllString(next, " ")
		if next == out {
			break
		}
		out = next
	}

	if r := []rune(out); len(r) > maxLen {
		out = string(r[:maxLen])
	}
	return strings.TrimSpace(out)
}

// ContainsSuspicious reports whether s contains a script-injection marker.
func ContainsSuspicious(s string) bool {
	for _, re := range suspiciousPatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// Result is the outcome of validating a user-supplied string.
type Result struct {
	Valid     bool     `json:"valid"`
	Sanitized string   `json:"sanitized"`
	Errors    []string `json:"errors,omitempty"`
}

// Err returns the joined error reasons, or "" when valid.
func (r Result) Err() string {
	return strings.Join(r.Errors, "; ")
}

// UserInput validates raw text before it reaches the resolver.
func UserInput(raw string) Result {
	if strings.TrimSpace(raw) == "" {
		return Result{Errors: []string{"Input cannot be empty"}}
	}

	var errs []string
	if len([]rune(raw)) > MaxInputLength {
		errs = append(errs, fmt.Sprintf("Input exceeds maximum length of %d characters", MaxInputLength))
	}

	sanitized := Sanitize(raw, MaxInputLength)
	if ContainsSuspicious(sanitized) {
		errs = append(errs, "Input contains suspicious patterns")
	}

	return Result{Valid: len(errs) == 0, Sanitized: sanitized, Errors: errs}
}

// URL validates a URL string. A missing scheme is treated as https.
func URL(raw string) Result {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Result{Errors: []string{"URL cannot be empty"}}
	}

	var errs []string
	if len(trimmed) > MaxURLLength {
		errs = append(errs, fmt.Sprintf("URL exceeds maximum length of %d characters", MaxURLLength))
	}

	candidate := trimmed
	lower := strings.ToLower(candidate)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		if schemeRe.MatchString(candidate) {
			return Result{Sanitized: trimmed, Errors: []string{"Only HTTP and HTTPS protocols are allowed"}}
		}
		candidate = "https://" + candidate
	}

	parsed, err := url.Parse(candidate)
	if err != nil || parsed.Host == "" {
		return Result{Sanitized: trimmed, Errors: []string{"Invalid URL format"}}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		errs = append(errs, "Only HTTP and HTTPS protocols are allowed")
	}
	if ContainsSuspicious(candidate) {
		errs = append(errs, "URL contains suspicious patterns")
	}

	return Result{Valid: len(errs) == 0, Sanitized: candidate, Errors: errs}
}

// URLField validates a URL taken from untrusted output. It returns the
// normalized URL, or "" if v is not a string or fails URL.
func URLField(v any) string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return ""
	}
	r := URL(s)
	if !r.Valid {
		return ""
	}
	return r.Sanitized
}
