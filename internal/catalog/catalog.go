// Package catalog is the static table of known subscription services.
package catalog

import (
	_ "embed"
	"net/url"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/yasinhessnawi1/strack/internal/model"
)

const minContainLen = 3

//go:embed services.yaml
var servicesYAML []byte

// Catalog is an ordered, read-only set of known services. It is safe for
// concurrent use. Returned services must not be modified.
type Catalog struct {
	services []*model.KnownService
	byDomain map[string]*model.KnownService
}

type file struct {
	Services []model.KnownService `yaml:"services" validate:"dive"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalog, decoding it on first use.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(servicesYAML)
	})
	return defaultCatalog, defaultErr
}

// MustDefault is Default for callers that treat a broken embedded table as a
// programming error.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse decodes and validates a YAML service table.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "catalog: decode yaml")
	}
	if err := validator.New().Struct(f); err != nil {
		return nil, eris.Wrap(err, "catalog: validate")
	}
	return New(f.Services)
}

// New builds a catalog from services, preserving their order. Domains must
// be unique.
func New(services []model.KnownService) (*Catalog, error) {
	c := &Catalog{
		services: make([]*model.KnownService, 0, len(services)),
		byDomain: make(map[string]*model.KnownService, len(services)),
	}
	for i := range services {
		svc := services[i]
		for _, d := range svc.Domains() {
			d = strings.ToLower(d)
			if _, dup := c.byDomain[d]; dup {
				return nil, eris.Errorf("catalog: duplicate domain %q", d)
			}
			c.byDomain[d] = &svc
		}
		c.services = append(c.services, &svc)
	}
	return c, nil
}

// Len reports the number of services.
func (c *Catalog) Len() int { return len(c.services) }

// All returns the services in catalog order.
func (c *Catalog) All() []*model.KnownService {
	out := make([]*model.KnownService, len(c.services))
	copy(out, c.services)
	return out
}

// Get returns the service keyed by domain.
func (c *Catalog) Get(domain string) *model.KnownService {
	if domain == "" {
		return nil
	}
	return c.byDomain[strings.ToLower(domain)]
}

// FindByAliasOrName looks text up by domain, then canonical name, then
// alias, all exact and case-insensitive, and finally by alias containment
// in either direction. Queries shorter than three characters only match
// exactly.
func (c *Catalog) FindByAliasOrName(text string) *model.KnownService {
	norm := strings.ToLower(strings.TrimSpace(text))
	if norm == "" {
		return nil
	}

	if svc := c.byDomain[norm]; svc != nil {
		return svc
	}
	for _, svc := range c.services {
		if strings.ToLower(svc.Name) == norm {
			return svc
		}
	}
	for _, svc := range c.services {
		for _, alias := range svc.Aliases {
			if strings.ToLower(alias) == norm {
				return svc
			}
		}
	}
	for _, svc := range c.services {
		for _, alias := range svc.Aliases {
			a := strings.ToLower(alias)
			if strings.Contains(norm, a) || (len(norm) >= minContainLen && strings.Contains(a, norm)) {
				return svc
			}
		}
	}
	return nil
}

// FindByURL matches the hostname of rawURL against cataloged domains: exact
// first, then containment in either direction.
func (c *Catalog) FindByURL(rawURL string) *model.KnownService {
	host := Hostname(rawURL)
	if host == "" {
		return nil
	}

	if svc := c.byDomain[host]; svc != nil {
		return svc
	}
	for _, svc := range c.services {
		for _, d := range svc.Domains() {
			d = strings.ToLower(d)
			if strings.Contains(host, d) || strings.Contains(d, host) {
				return svc
			}
		}
	}
	return nil
}

// Hostname returns the lowercased host of rawURL without a leading "www.".
// A missing scheme is treated as https. It returns "" for unparsable input.
func Hostname(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
