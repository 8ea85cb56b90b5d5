package fetchguard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/hostling/guestgate/internal/secerr"
)

// Config bounds a guarded fetch. All values are fixed policy.
type Config struct {
	Timeout      time.Duration `yaml:"timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	MaxRedirects int           `yaml:"max_redirects"`
}

// DefaultConfig returns the fetch policy.
func DefaultConfig() Config {
	return Config{
		Timeout:      30 * time.Second,
		MaxBodyBytes: 5 * 1024 * 1024,
		MaxRedirects: 3,
	}
}

// Response is the outcome of a successful guarded fetch.
type Response struct {
	Status   int
	Header   http.Header
	Body     []byte
	FinalURL string
}

// Fetcher performs SSRF-guarded HTTP fetches. Redirects are disabled at
// the transport level and followed manually, each hop re-validated.
type Fetcher struct {
	mu       sync.RWMutex
	cfg      Config
	client   *http.Client
	resolver Resolver
}

// Option adjusts a Fetcher, mainly for tests.
type Option func(*Fetcher)

// WithResolver swaps the DNS resolver.
func WithResolver(r Resolver) Option {
	return func(f *Fetcher) { f.resolver = r }
}

// WithTransport swaps the HTTP round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *Fetcher) { f.client.Transport = rt }
}

// New creates a Fetcher with the given policy.
func New(cfg Config, opts ...Option) *Fetcher {
	f := &Fetcher{
		cfg: cfg,
		client: &http.Client{
			// Redirects are handled in Fetch, never by the client.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		resolver: net.DefaultResolver,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Reload atomically swaps the fetch policy. An in-flight fetch keeps
// the bounds it started with.
func (f *Fetcher) Reload(cfg Config) {
	f.mu.Lock()
	f.cfg = cfg
	f.mu.Unlock()
}

func (f *Fetcher) config() Config {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.cfg
}

// Validate runs the static and DNS checks for a URL without issuing a
// request, for vetting owner-supplied URLs up front.
func (f *Fetcher) Validate(ctx context.Context, rawURL string) error {
	u, err := validateURL(rawURL)
	if err != nil {
		return err
	}
	return resolveAndValidate(ctx, f.resolver, u)
}

// redirectStatuses are the statuses whose Location header is followed.
var redirectStatuses = map[int]bool{
	http.StatusMovedPermanently:  true,
	http.StatusFound:             true,
	http.StatusSeeOther:          true,
	http.StatusTemporaryRedirect: true,
	http.StatusPermanentRedirect: true,
}

// Fetch retrieves rawURL under the configured bounds. The whole fetch,
// redirects included, shares one wall-clock budget and honors caller
// cancellation through ctx.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, headers map[string]string) (*Response, error) {
	cfg := f.config()
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	current := rawURL
	for hop := 0; hop <= cfg.MaxRedirects; hop++ {
		u, err := validateURL(current)
		if err != nil {
			return nil, err
		}
		if err := resolveAndValidate(ctx, f.resolver, u); err != nil {
			return nil, err
		}

		resp, err := f.request(ctx, u, headers)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("fetching %q: %w", u.Host, ErrTimeout)
			}
			return nil, secerr.Wrap(secerr.InfrastructureFailure, "fetch_failed", err)
		}

		if redirectStatuses[resp.StatusCode] {
			next, err := redirectTarget(u, resp)
			drain(resp)
			if err != nil {
				return nil, err
			}
			current = next
			continue
		}

		return read(cfg, u, resp)
	}

	return nil, fmt.Errorf("more than %d redirects: %w", cfg.MaxRedirects, ErrTooManyRedirects)
}

func (f *Fetcher) request(ctx context.Context, u *url.URL, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return f.client.Do(req)
}

// redirectTarget extracts and resolves the Location header relative to
// the current URL. A redirect without Location is an error, not a
// silent stop.
func redirectTarget(current *url.URL, resp *http.Response) (string, error) {
	loc := resp.Header.Get("Location")
	if loc == "" {
		return "", secerr.New(secerr.SecurityBlocked, "redirect_without_location")
	}
	target, err := url.Parse(loc)
	if err != nil {
		return "", secerr.Wrap(secerr.ValidationRejected, "invalid_url", err)
	}
	return current.ResolveReference(target).String(), nil
}

// read enforces the size ceiling twice: eagerly on Content-Length, then
// on the bytes actually consumed, in case the server lies about or
// omits the header.
func read(cfg Config, u *url.URL, resp *http.Response) (*Response, error) {
	defer resp.Body.Close()

	if resp.ContentLength > cfg.MaxBodyBytes {
		return nil, fmt.Errorf("declared %d bytes: %w", resp.ContentLength, ErrSizeExceeded)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, cfg.MaxBodyBytes+1))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("reading %q: %w", u.Host, ErrTimeout)
		}
		return nil, secerr.Wrap(secerr.InfrastructureFailure, "fetch_failed", err)
	}
	if int64(len(body)) > cfg.MaxBodyBytes {
		return nil, fmt.Errorf("body over %d bytes: %w", cfg.MaxBodyBytes, ErrSizeExceeded)
	}

	return &Response{
		Status:   resp.StatusCode,
		Header:   resp.Header,
		Body:     body,
		FinalURL: u.String(),
	}, nil
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
