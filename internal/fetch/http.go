package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// maxBodySize caps an icon body. Larger bodies fail the fetch.
const maxBodySize = 1 << 20

// DefaultUserAgent is sent with every HTTP fetch.
const DefaultUserAgent = "glyph"

// HTTPFetcher fetches icon bodies over HTTP. Relative locators are resolved
// against BaseURL. Successful bodies may be kept for a TTL; failures are
// never cached.
type HTTPFetcher struct {
	client    *http.Client
	baseURL   *url.URL
	userAgent string
	bodies    *gocache.Cache
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(f *HTTPFetcher) { f.client = client }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithBodyCache keeps successful bodies for ttl. A zero ttl disables it.
func WithBodyCache(ttl time.Duration) HTTPOption {
	return func(f *HTTPFetcher) {
		if ttl > 0 {
			f.bodies = gocache.New(ttl, 2*ttl)
		} else {
			f.bodies = nil
		}
	}
}

// NewHTTPFetcher creates an HTTP fetcher. baseURL may be empty when every
// locator is absolute.
func NewHTTPFetcher(baseURL string, opts ...HTTPOption) (*HTTPFetcher, error) {
	f := &HTTPFetcher{
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: DefaultUserAgent,
	}

	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
		}
		f.baseURL = u
	}

	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Fetch retrieves the body at locator. Any non-2xx status is an error.
func (f *HTTPFetcher) Fetch(ctx context.Context, locator string) (string, error) {
	target, err := f.resolve(locator)
	if err != nil {
		return "", err
	}

	if f.bodies != nil {
		if body, ok := f.bodies.Get(target); ok {
			if s, ok := body.(string); ok {
				return s, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", target, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "image/svg+xml, text/plain;q=0.9, */*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetching %s: unexpected status %s", target, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", target, err)
	}
	if len(data) > maxBodySize {
		return "", fmt.Errorf("reading %s: body exceeds %d bytes", target, maxBodySize)
	}

	body := string(data)
	if f.bodies != nil {
		f.bodies.SetDefault(target, body)
	}
	return body, nil
}

// resolve turns a locator into an absolute URL.
func (f *HTTPFetcher) resolve(locator string) (string, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return "", fmt.Errorf("invalid locator %q: %w", locator, err)
	}
	if u.IsAbs() {
		return u.String(), nil
	}
	if f.baseURL == nil {
		return "", fmt.Errorf("relative locator %q needs a base URL", locator)
	}
	return f.baseURL.ResolveReference(u).String(), nil
}
