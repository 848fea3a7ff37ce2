package scrape

import (
	"bytes"
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/yasinhessnawi1/strack/internal/model"
	"github.com/yasinhessnawi1/strack/internal/validate"
)

// pricingSelector matches containers that usually hold plan prices.
var pricingSelector = strings.Join([]string{
	".pricing",
	".price",
	`[class*="pricing"]`,
	`[class*="price"]`,
	`[class*="plan"]`,
	`[class*="tier"]`,
	`[class*="subscription"]`,
	"[data-price]",
	"[data-amount]",
}, ", ")

var whitespaceRe = regexp.MustCompile(`\s+`)

// Parse decodes body using the declared or sniffed charset and extracts
// page content. pageURL is the base for resolving relative links.
func Parse(body []byte, contentType, pageURL string) (*model.ScrapedContent, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(toUTF8(body, contentType)))
	if err != nil {
		return nil, eris.Wrap(err, "scrape: parse html")
	}

	base, _ := url.Parse(pageURL)

	content := &model.ScrapedContent{
		URL:      pageURL,
		MetaTags: metaTags(doc),
		JSONLD:   jsonLD(doc),
		Links:    links(doc, base),
	}
	content.Title = validate.Sanitize(title(doc), MaxTitleLength)
	content.Description = validate.Sanitize(description(doc), MaxDescriptionLength)

	doc.Find("script, noscript, style, template").Remove()
	content.BodyText = truncateRunes(pricingText(doc), MaxBodyTextLength)

	return content, nil
}

func toUTF8(body []byte, contentType string) []byte {
	enc, _, _ := charset.DetermineEncoding(body, contentType)
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil || !utf8.Valid(decoded) {
		return body
	}
	return decoded
}

func attr(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().AttrOr("content", ""))
}

func title(doc *goquery.Document) string {
	if t := attr(doc, `meta[property="og:site_name"]`); t != "" {
		return t
	}
	if t := attr(doc, `meta[property="og:title"]`); t != "" {
		return t
	}
	t := doc.Find("title").First().Text()
	t, _, _ = strings.Cut(t, "|")
	t, _, _ = strings.Cut(t, "-")
	return strings.TrimSpace(t)
}

func description(doc *goquery.Document) string {
	if d := attr(doc, `meta[property="og:description"]`); d != "" {
		return d
	}
	return attr(doc, `meta[name="description"]`)
}

func metaTags(doc *goquery.Document) map[string]string {
	tags := map[string]string{}
	put := func(key, val string) {
		key = strings.TrimSpace(key)
		if key == "" || strings.TrimSpace(val) == "" {
			return
		}
		tags[key] = validate.Sanitize(val, MaxMetaLength)
	}

	doc.Find(`meta[property^="og:"]`).Each(func(_ int, s *goquery.Selection) {
		put(s.AttrOr("property", ""), s.AttrOr("content", ""))
	})
	doc.Find(`meta[name^="twitter:"], meta[property^="twitter:"]`).Each(func(_ int, s *goquery.Selection) {
		key := s.AttrOr("name", "")
		if key == "" {
			key = s.AttrOr("property", "")
		}
		put(key, s.AttrOr("content", ""))
	})
	put("description", attr(doc, `meta[name="description"]`))
	return tags
}

// jsonLD decodes every ld+json block, skipping malformed ones.
func jsonLD(doc *goquery.Document) []any {
	var out []any
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return
		}
		out = append(out, v)
	})
	return out
}

func links(doc *goquery.Document, base *url.URL) []model.Link {
	var out []model.Link
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(whitespaceRe.ReplaceAllString(s.Text(), " "))
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if text == "" || href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		if base != nil {
			ref = base.ResolveReference(ref)
		}
		if ref.Scheme != "http" && ref.Scheme != "https" {
			return
		}
		out = append(out, model.Link{
			Href: ref.String(),
			Text: validate.Sanitize(text, MaxLinkTextLength),
		})
	})
	return out
}

// pricingText joins the text of pricing containers, skipping any container
// nested inside one already taken. Falls back to the whole body.
func pricingText(doc *goquery.Document) string {
	kept := map[*html.Node]bool{}
	var parts []string
	doc.Find(pricingSelector).Each(func(_ int, s *goquery.Selection) {
		n := s.Get(0)
		for p := n.Parent; p != nil; p = p.Parent {
			if kept[p] {
				return
			}
		}
		text := collapse(s.Text())
		if text == "" {
			return
		}
		kept[n] = true
		parts = append(parts, text)
	})

	if len(parts) == 0 {
		return collapse(doc.Find("body").Text())
	}
	return strings.Join(parts, " ")
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
