// Package fetch is a shared rate-limited HTTP fetcher for third-party
// pages. It tolerates blocking, malformed content, and non-HTML
// responses; callers decide what a non-2xx page means for them.
package fetch

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; PlaceImportBot/1.0)"

// Page is one fetched document. A Page is returned even for non-2xx
// statuses so callers can degrade instead of failing.
type Page struct {
	URL         string // final URL after redirects
	StatusCode  int
	ContentType string
	Body        []byte
}

// OK reports a 2xx status.
func (p *Page) OK() bool { return p.StatusCode >= 200 && p.StatusCode < 300 }

// IsHTML reports whether the response looks like an HTML document.
func (p *Page) IsHTML() bool {
	if strings.Contains(p.ContentType, "text/html") || strings.Contains(p.ContentType, "application/xhtml") {
		return true
	}
	head := strings.ToLower(string(p.Body[:min(len(p.Body), 256)]))
	return strings.Contains(head, "<!doctype html") || strings.Contains(head, "<html")
}

// Blocked reports whether the origin refused the request: bot walls,
// rate limits, or captcha interstitials.
func (p *Page) Blocked() bool {
	if p.StatusCode == http.StatusForbidden || p.StatusCode == http.StatusTooManyRequests {
		return true
	}
	body := strings.ToLower(string(p.Body[:min(len(p.Body), 4096)]))
	for _, marker := range []string{"captcha", "are you a robot", "access denied", "unusual traffic"} {
		if strings.Contains(body, marker) {
			return true
		}
	}
	return false
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.client.Timeout = d }
}

// WithMaxBody caps how many bytes of a response body are read.
func WithMaxBody(n int64) Option {
	return func(f *Fetcher) { f.maxBody = n }
}

// WithRateLimit bounds outbound requests per second.
func WithRateLimit(perSec float64) Option {
	return func(f *Fetcher) { f.limiter = rate.NewLimiter(rate.Limit(perSec), 1) }
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// Fetcher performs bounded HTTP fetches of arbitrary third-party URLs.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	maxBody   int64
	userAgent string
}

// New creates a Fetcher with a 10s timeout, 512 KiB body cap, and no
// rate limit unless configured.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		maxBody:   512 * 1024,
		userAgent: defaultUserAgent,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Get fetches a URL and returns the page, following redirects. Only
// transport-level failures return an error; HTTP error statuses come
// back as a Page.
func (f *Fetcher) Get(ctx context.Context, url string) (*Page, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: create request")
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: get")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return nil, eris.Wrap(err, "fetch: read body")
	}

	return &Page{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// Resolve follows redirects to the final URL without downloading the
// document: HEAD first, falling back to GET when the server rejects
// HEAD. The body of the fallback GET is discarded.
func (f *Fetcher) Resolve(ctx context.Context, url string) (string, error) {
	if err := f.wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return "", eris.Wrap(err, "fetch: create head request")
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err == nil {
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed && resp.StatusCode != http.StatusNotImplemented {
			return resp.Request.URL.String(), nil
		}
	}

	// Server refused HEAD; one GET to learn the final URL.
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", eris.Wrap(err, "fetch: create get request")
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err = f.client.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "fetch: resolve")
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, f.maxBody))
	_ = resp.Body.Close()

	return resp.Request.URL.String(), nil
}

func (f *Fetcher) wait(ctx context.Context) error {
	if f.limiter == nil {
		return nil
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "fetch: rate limit wait")
	}
	return nil
}
