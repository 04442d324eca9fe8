package colorize

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/heightchart/pkg/cache"
	"github.com/matzehuels/heightchart/pkg/errors"
	"github.com/matzehuels/heightchart/pkg/observability"
)

const (
	httpTimeout = 10 * time.Second

	// MaxAssetBytes caps the size of a fetched asset.
	MaxAssetBytes = 2 << 20
)

// Fetcher loads the raw bytes of an asset.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) ([]byte, error)
}

// FetcherFunc adapts a function to [Fetcher].
type FetcherFunc func(ctx context.Context, locator string) ([]byte, error)

// Fetch implements [Fetcher].
func (f FetcherFunc) Fetch(ctx context.Context, locator string) ([]byte, error) {
	return f(ctx, locator)
}

// =============================================================================
// HTTP
// =============================================================================

// HTTPFetcher fetches assets over HTTP. Network failures and 5xx responses
// are retried with exponential backoff.
type HTTPFetcher struct {
	client  *http.Client
	backoff cache.Backoff
	headers map[string]string
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithBackoff replaces [cache.DefaultBackoff].
func WithBackoff(b cache.Backoff) HTTPOption {
	return func(f *HTTPFetcher) { f.backoff = b }
}

// WithHeader adds a request header.
func WithHeader(key, value string) HTTPOption {
	return func(f *HTTPFetcher) { f.headers[key] = value }
}

// NewHTTPFetcher creates an HTTP fetcher.
func NewHTTPFetcher(opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:  &http.Client{Timeout: httpTimeout},
		backoff: cache.DefaultBackoff,
		headers: map[string]string{"Accept": "image/svg+xml, */*;q=0.8"},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch implements [Fetcher].
func (f *HTTPFetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	u, err := url.Parse(locator)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, errors.New(errors.ErrCodeInvalidInput, "not an http(s) url: %q", locator)
	}

	var body []byte
	err = cache.Retry(ctx, f.backoff, func() error {
		body, err = f.do(ctx, u)
		return err
	})
	if err != nil {
		return nil, classify(err, locator)
	}
	return body, nil
}

func (f *HTTPFetcher) do(ctx context.Context, u *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, u.Host, u.Path)
	start := time.Now()

	resp, err := f.client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, u.Host, u.Path, err)
		return nil, cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, u.Host, u.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	return readLimited(resp.Body)
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return cache.ErrNotFound
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", cache.ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", cache.ErrNetwork, code)
	}
}

// classify maps fetch failures onto error codes.
func classify(err error, locator string) error {
	switch {
	case errors.Is(err, errors.ErrCodeInvalidFormat):
		return err
	case stderrors.Is(err, cache.ErrNotFound):
		return errors.Wrap(errors.ErrCodeNotFound, err, "asset %s not found", locator)
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(errors.ErrCodeTimeout, err, "fetch %s timed out", locator)
	default:
		return errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", locator)
	}
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxAssetBytes+1))
	if err != nil {
		return nil, cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	if len(data) > MaxAssetBytes {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "asset exceeds %d bytes", MaxAssetBytes)
	}
	return data, nil
}

// =============================================================================
// Files
// =============================================================================

// FileFetcher reads assets from disk. Locators are relative paths resolved
// against Root; absolute paths and traversal are rejected.
type FileFetcher struct {
	Root string
}

// Fetch implements [Fetcher].
func (f FileFetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := errors.ValidatePath(locator); err != nil {
		return nil, err
	}
	path := filepath.Join(f.Root, filepath.FromSlash(locator))
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "asset %s not found", locator)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open %s", locator)
	}
	defer file.Close()
	return readLimited(file)
}

// =============================================================================
// Routing
// =============================================================================

// Router sends http(s) locators to HTTP and everything else to File.
type Router struct {
	HTTP Fetcher
	File Fetcher
}

// NewRouter returns a router over a default HTTP fetcher and a file fetcher
// rooted at root.
func NewRouter(root string, opts ...HTTPOption) *Router {
	return &Router{HTTP: NewHTTPFetcher(opts...), File: FileFetcher{Root: root}}
}

// Fetch implements [Fetcher].
func (r *Router) Fetch(ctx context.Context, locator string) ([]byte, error) {
	if IsRemote(locator) {
		if r.HTTP == nil {
			return nil, errors.New(errors.ErrCodeUnsupported, "remote assets disabled: %s", locator)
		}
		return r.HTTP.Fetch(ctx, locator)
	}
	if r.File == nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "local assets disabled: %s", locator)
	}
	return r.File.Fetch(ctx, locator)
}

// IsRemote reports whether locator is an http(s) URL.
func IsRemote(locator string) bool {
	l := strings.ToLower(locator)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}
