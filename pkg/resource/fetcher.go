package resource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const userAgent = "stickyfill/1.0 (compatible; Go)"

// Fetcher retrieves resources by URI.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (body []byte, contentType string, err error)
}

// DefaultFetcher reads local files and fetches http(s) URLs, resolving
// relative URIs against a base.
type DefaultFetcher struct {
	baseURL string
	client  *http.Client
}

// NewFetcher creates a DefaultFetcher. Relative URIs passed to Fetch are
// resolved against baseURL, which may be a URL or a directory.
func NewFetcher(baseURL string) *DefaultFetcher {
	return &DefaultFetcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch retrieves the resource at uri.
func (f *DefaultFetcher) Fetch(ctx context.Context, uri string) ([]byte, string, error) {
	resolved := f.resolve(uri)
	if IsNetworkURL(resolved) {
		return f.fetchURL(ctx, resolved)
	}
	body, err := os.ReadFile(strings.TrimPrefix(resolved, "file://"))
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", resolved, err)
	}
	return body, "", nil
}

func (f *DefaultFetcher) resolve(uri string) string {
	if f.baseURL == "" || IsNetworkURL(uri) || filepath.IsAbs(uri) {
		return uri
	}
	if IsNetworkURL(f.baseURL) {
		return ResolveURL(f.baseURL, uri)
	}
	return filepath.Join(f.baseURL, uri)
}

func (f *DefaultFetcher) fetchURL(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading response body: %w", err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// ResolveURL resolves a possibly-relative URI against a base URL.
// If ref is already absolute, it is returned as-is.
func ResolveURL(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

// IsNetworkURL returns true if the string looks like an HTTP or HTTPS URL.
func IsNetworkURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// checkHTML rejects content types that cannot be a document.
func checkHTML(contentType string) error {
	ct := strings.ToLower(contentType)
	if ct != "" && !strings.HasPrefix(ct, "text/") && !strings.Contains(ct, "html") {
		return fmt.Errorf("unexpected content type for HTML: %s", contentType)
	}
	return nil
}
