package net

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tdewolff/parse/v2"
)

const (
	DefaultUserAgent = "pagecore/1.0 (compatible; Go)"
	DefaultTimeout   = 30 * time.Second
)

// Client fetches http(s), file and data locators.
type Client struct {
	http      *http.Client
	transport *http.Transport
	userAgent string
}

func NewClient(timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &Client{
		http:      &http.Client{Timeout: timeout, Transport: transport},
		transport: transport,
		userAgent: userAgent,
	}
}

// DefaultClient is shared by the package-level Fetch.
var DefaultClient = NewClient(DefaultTimeout, DefaultUserAgent)

// Fetch retrieves the content at the given URL.
// Returns the response body, content type, and any error.
func (c *Client) Fetch(ctx context.Context, rawURL string) (body []byte, contentType string, err error) {
	switch {
	case IsNetworkURL(rawURL):
		return c.fetchHTTP(ctx, rawURL)
	case strings.HasPrefix(rawURL, "file://"):
		return fetchFile(rawURL)
	case strings.HasPrefix(rawURL, "data:"):
		return fetchData(rawURL)
	}
	return nil, "", fmt.Errorf("unsupported scheme in %q", rawURL)
}

// CloseIdleConnections releases pooled keep-alive connections.
func (c *Client) CloseIdleConnections() {
	c.transport.CloseIdleConnections()
}

func (c *Client) fetchHTTP(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
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

func fetchFile(rawURL string) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("parsing %s: %w", rawURL, err)
	}
	body, err := os.ReadFile(filepath.FromSlash(u.Path))
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", u.Path, err)
	}
	return body, mime.TypeByExtension(filepath.Ext(u.Path)), nil
}

func fetchData(rawURL string) ([]byte, string, error) {
	mediatype, data, err := parse.DataURI([]byte(rawURL))
	if err != nil {
		return nil, "", fmt.Errorf("decoding data URI: %w", err)
	}
	return data, string(mediatype), nil
}

// Fetch retrieves rawURL with DefaultClient.
func Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	return DefaultClient.Fetch(ctx, rawURL)
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
