package resource

import (
	"context"
	"fmt"
	"strings"
	"time"

	stdnet "pagecore/std/net"
)

// Fetcher retrieves documents and style sheets by locator.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) (string, error)
	// Resolve turns ref into an absolute locator relative to base. It
	// returns false for references that do not name a fetchable
	// resource (fragments and javascript: links).
	Resolve(base, ref string) (string, bool)
}

// FetchError reports a failed fetch.
type FetchError struct {
	Locator string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Locator, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DefaultFetcher fetches http(s), file and data locators.
type DefaultFetcher struct {
	client *stdnet.Client
}

func NewFetcher(timeout time.Duration, userAgent string) *DefaultFetcher {
	return &DefaultFetcher{client: stdnet.NewClient(timeout, userAgent)}
}

func (f *DefaultFetcher) Fetch(ctx context.Context, locator string) (string, error) {
	body, _, err := f.client.Fetch(ctx, locator)
	if err != nil {
		return "", &FetchError{Locator: locator, Err: err}
	}
	return string(body), nil
}

func (f *DefaultFetcher) Resolve(base, ref string) (string, bool) {
	return Resolve(base, ref)
}

// Close drops idle connections held by the fetcher.
func (f *DefaultFetcher) Close() {
	f.client.CloseIdleConnections()
}

// Resolve implements Fetcher.Resolve with standard base URL resolution.
func Resolve(base, ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "#") || strings.HasPrefix(strings.ToLower(ref), "javascript:") {
		return "", false
	}
	return stdnet.ResolveURL(base, ref), true
}
