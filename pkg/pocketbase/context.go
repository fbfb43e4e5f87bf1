package pocketbase

import (
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
)

// ClientContext holds the base URL, the locale and the active credential.
// It is shared by every service of a client. The credential is replaced as a
// whole with a single atomic store, so concurrent readers observe either the
// previous or the next credential.
type ClientContext struct {
	baseURL    *url.URL
	locale     string
	maxPerPage int
	storage    Storage
	logger     Logger

	credential atomic.Pointer[Credential]
}

// ContextOption configures a ClientContext.
type ContextOption func(*ClientContext)

// WithContextStorage persists credential changes to storage and restores a
// stored credential on construction.
func WithContextStorage(storage Storage) ContextOption {
	return func(c *ClientContext) {
		c.storage = storage
	}
}

// WithContextLogger sets the logger used for storage warnings.
func WithContextLogger(logger Logger) ContextOption {
	return func(c *ClientContext) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithContextMaxPerPage sets the perPage ceiling. Zero disables the ceiling.
func WithContextMaxPerPage(maxPerPage int) ContextOption {
	return func(c *ClientContext) {
		c.maxPerPage = maxPerPage
	}
}

// NewClientContext creates a context for baseURL, which must be an absolute
// http or https URL.
func NewClientContext(baseURL, locale string, opts ...ContextOption) (*ClientContext, error) {
	parsed, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	cctx := &ClientContext{
		baseURL:    parsed,
		locale:     strings.TrimSpace(locale),
		maxPerPage: constants.DefaultMaxPerPage,
		logger:     NoopLogger{},
	}

	for _, opt := range opts {
		opt(cctx)
	}

	if cctx.maxPerPage < 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, constants.ErrPerPageOutOfRange)
	}

	cctx.restore()

	return cctx, nil
}

func normalizeBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, constants.ErrBaseURLRequired)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: base URL %q: %w", ErrInvalidConfig, raw, err)
	}

	switch {
	case parsed.Scheme != "http" && parsed.Scheme != "https":
		return nil, fmt.Errorf("%w: %w: %q", ErrInvalidConfig, constants.ErrUnsupportedScheme, raw)
	case parsed.Host == "":
		return nil, fmt.Errorf("%w: %w: %q", ErrInvalidConfig, constants.ErrMissingHost, raw)
	case parsed.RawQuery != "" || parsed.Fragment != "":
		return nil, fmt.Errorf("%w: %w: %q", ErrInvalidConfig, constants.ErrBaseURLHasQuery, raw)
	}

	parsed.Path = strings.TrimRight(parsed.Path, "/")
	parsed.RawPath = ""

	return parsed, nil
}

func (c *ClientContext) restore() {
	if c.storage == nil {
		return
	}

	cred, err := c.storage.Load()
	if err != nil {
		c.logger.Warn("failed to load stored credential", map[string]interface{}{
			"error": err.Error(),
		})

		return
	}

	if cred != nil && cred.Token != "" {
		c.credential.Store(cred)
	}
}

// BaseURL returns a copy of the normalised base URL.
func (c *ClientContext) BaseURL() *url.URL {
	u := *c.baseURL

	return &u
}

// Locale returns the locale sent as Accept-Language.
func (c *ClientContext) Locale() string {
	return c.locale
}

// MaxPerPage returns the perPage ceiling, or zero when none applies.
func (c *ClientContext) MaxPerPage() int {
	return c.maxPerPage
}

// ResolveURL joins a relative path onto the base URL.
func (c *ClientContext) ResolveURL(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("%w: path %q: %w", ErrInvalidConfig, path, err)
	}

	if ref.IsAbs() || ref.Host != "" {
		return "", fmt.Errorf("%w: %w: %q", ErrInvalidConfig, constants.ErrAbsolutePath, path)
	}

	if ref.RawQuery != "" || ref.Fragment != "" || strings.ContainsAny(path, "?#") {
		return "", fmt.Errorf("%w: %w: %q", ErrInvalidConfig, constants.ErrPathHasQuery, path)
	}

	joined := c.baseURL.String() + "/" + strings.TrimLeft(path, "/")

	resolved, err := url.Parse(joined)
	if err != nil {
		return "", fmt.Errorf("%w: resolved URL %q: %w", ErrInvalidConfig, joined, err)
	}

	return resolved.String(), nil
}

// SetCredential replaces the active credential and persists it when a
// storage is configured. Persistence failures are logged, not returned.
func (c *ClientContext) SetCredential(cred Credential) {
	stored := cred
	stored.Model = append([]byte(nil), cred.Model...)
	c.credential.Store(&stored)

	if c.storage == nil {
		return
	}

	err := c.storage.Save(stored)
	if err != nil {
		c.logger.Warn("failed to persist credential", map[string]interface{}{
			"kind":  stored.Kind.String(),
			"error": err.Error(),
		})
	}
}

// ClearCredential removes the active credential.
func (c *ClientContext) ClearCredential() {
	c.credential.Store(nil)

	if c.storage == nil {
		return
	}

	err := c.storage.Clear()
	if err != nil {
		c.logger.Warn("failed to clear stored credential", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// Credential returns the active credential, if any.
func (c *ClientContext) Credential() (Credential, bool) {
	cred := c.credential.Load()
	if cred == nil {
		return Credential{}, false
	}

	return *cred, true
}

// IsAuthenticated reports whether a credential is set.
func (c *ClientContext) IsAuthenticated() bool {
	return c.credential.Load() != nil
}
