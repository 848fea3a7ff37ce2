package anthropic

import (
	"sync"

	"github.com/rotisserie/eris"
)

// ErrNoAPIKey is returned by Handle.Client when no key is configured.
var ErrNoAPIKey = eris.New("anthropic: api key not configured")

// Handle lazily builds one Client and shares it between callers. The first
// successful Client call constructs it; later calls reuse it.
type Handle struct {
	apiKey string
	opts   []ClientOption
	build  func(apiKey string, opts ...ClientOption) Client

	once   sync.Once
	client Client
}

// NewHandle returns a Handle for apiKey. Nothing is constructed until
// Client is called.
func NewHandle(apiKey string, opts ...ClientOption) *Handle {
	return &Handle{apiKey: apiKey, opts: opts, build: NewClient}
}

// NewStaticHandle wraps an existing client, typically a test double.
func NewStaticHandle(c Client) *Handle {
	h := &Handle{apiKey: "static"}
	h.once.Do(func() { h.client = c })
	return h
}

// Available reports whether a credential is configured.
func (h *Handle) Available() bool {
	return h != nil && h.apiKey != ""
}

// Client returns the shared client, constructing it on first use.
func (h *Handle) Client() (Client, error) {
	if !h.Available() {
		return nil, ErrNoAPIKey
	}
	h.once.Do(func() {
		h.client = h.build(h.apiKey, h.opts...)
	})
	return h.client, nil
}
