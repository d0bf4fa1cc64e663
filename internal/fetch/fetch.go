package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/jobdigest/internal/cache"
)

// DefaultUserAgent identifies the tool to job boards.
const DefaultUserAgent = "jobdigest/1.0 (+https://github.com/hyperifyio/jobdigest)"

// maxBodyBytes bounds a single job page.
const maxBodyBytes = 8 << 20

// ErrServer marks a 5xx response; those are retried.
var ErrServer = errors.New("server error")

// Client wraps http.Client with timeouts, limited retry on transient errors
// and an optional on-disk cache.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// AcceptLanguage is sent when non-empty.
	AcceptLanguage string
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// PerRequestTimeout bounds each attempt.
	PerRequestTimeout time.Duration
	// Cache stores bodies with ETag/Last-Modified for conditional requests.
	Cache *cache.HTTPCache
	// BypassCache skips conditional headers but still saves fresh responses.
	BypassCache bool
	// RedirectMaxHops caps redirect following. Zero means 5.
	RedirectMaxHops int
	// MaxConcurrent limits in-flight requests across callers sharing the
	// client, e.g. concurrent web form submissions. Zero means unlimited.
	MaxConcurrent int

	limiter     chan struct{}
	limiterOnce sync.Once
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{Timeout: c.PerRequestTimeout, CheckRedirect: c.checkRedirectFunc()}
}

// Get issues a GET and returns the raw body and its Content-Type.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, string, error) {
	var etag, lastMod string
	if c.Cache != nil && !c.BypassCache {
		if meta, err := c.Cache.LoadMeta(ctx, rawURL); err == nil && meta != nil {
			etag = meta.ETag
			lastMod = meta.LastModified
		}
	}
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		res, err := c.tryOnce(ctx, rawURL, etag, lastMod)
		if err == nil {
			if res.status == http.StatusNotModified && c.Cache != nil {
				cached, cerr := c.Cache.LoadBody(ctx, rawURL)
				if cerr != nil {
					return nil, "", fmt.Errorf("load cached body: %w", cerr)
				}
				log.Debug().Str("url", rawURL).Msg("served from cache after 304")
				return cached, res.contentType, nil
			}
			if c.Cache != nil {
				if serr := c.Cache.Save(ctx, rawURL, res.contentType, res.etag, res.lastModified, res.body); serr != nil {
					log.Warn().Err(serr).Str("url", rawURL).Msg("cache save failed")
				}
			}
			return res.body, res.contentType, nil
		}
		lastErr = err
		if !isTransient(err) || i == attempts-1 {
			break
		}
		log.Debug().Err(err).Str("url", rawURL).Int("attempt", i+1).Msg("transient fetch error; retrying")
		select {
		case <-ctx.Done():
			return nil, "", ctx.Err()
		case <-time.After(time.Duration(i+1) * 200 * time.Millisecond):
		}
	}
	return nil, "", lastErr
}

// Page fetches rawURL and returns its body decoded to UTF-8.
func (c *Client) Page(ctx context.Context, rawURL string) (string, error) {
	body, ct, err := c.Get(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return Decode(body, ct)
}

type response struct {
	body         []byte
	contentType  string
	etag         string
	lastModified string
	status       int
}

func (c *Client) tryOnce(ctx context.Context, rawURL, etag, lastMod string) (response, error) {
	c.acquire()
	defer c.release()

	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PerRequestTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return response{}, fmt.Errorf("new request: %w", err)
	}
	if !isHTTPScheme(req.URL) {
		return response{}, fmt.Errorf("unsupported URL scheme: %q", rawURL)
	}
	ua := c.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	if c.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", c.AcceptLanguage)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return response{status: resp.StatusCode}, fmt.Errorf("%w: %d", ErrServer, resp.StatusCode)
	case resp.StatusCode == http.StatusNotModified:
		return response{status: resp.StatusCode, contentType: resp.Header.Get("Content-Type")}, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return response{status: resp.StatusCode}, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if !isAllowedHTMLContentType(ct) {
		return response{status: resp.StatusCode}, fmt.Errorf("unsupported content type: %s", ct)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return response{status: resp.StatusCode}, fmt.Errorf("read body: %w", err)
	}
	return response{
		body:         b,
		contentType:  ct,
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
		status:       resp.StatusCode,
	}, nil
}

func isTransient(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrServer)
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		if !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// isAllowedHTMLContentType accepts HTML and XHTML. A missing header is
// allowed; some job boards omit it and content sniffing happens in Decode.
func isAllowedHTMLContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return ct == "" || strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}

func (c *Client) acquire() {
	if c.MaxConcurrent <= 0 {
		return
	}
	c.limiterOnce.Do(func() {
		c.limiter = make(chan struct{}, c.MaxConcurrent)
	})
	c.limiter <- struct{}{}
}

func (c *Client) release() {
	if c.MaxConcurrent <= 0 || c.limiter == nil {
		return
	}
	select {
	case <-c.limiter:
	default:
	}
}
