package robots

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
	"github.com/temoto/robotstxt"
)

// ErrDisallowed is returned by Check when robots.txt forbids the page.
var ErrDisallowed = errors.New("disallowed by robots.txt")

// ErrUnavailable means robots.txt could not be read (5xx, timeout, network
// error). Pages on that host are treated as disallowed for this run.
var ErrUnavailable = errors.New("robots.txt unavailable")

// Checker fetches robots.txt once per host and answers whether a page may be
// fetched. It is safe for concurrent use.
type Checker struct {
	HTTPClient *http.Client
	UserAgent  string
	// Expiry bounds how long parsed rules are reused. Zero means 30 minutes.
	Expiry time.Duration

	mu  sync.Mutex
	mem map[string]entry
	now func() time.Time
}

type entry struct {
	data    *robotstxt.RobotsData
	err     error
	expires time.Time
}

// Check returns nil when pageURL may be fetched, ErrDisallowed when a rule
// forbids it, or an error wrapping ErrUnavailable when robots.txt could not
// be read.
func (c *Checker) Check(ctx context.Context, pageURL string) error {
	u, err := url.Parse(pageURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported url scheme: %q", pageURL)
	}
	data, err := c.rulesFor(ctx, u)
	if err != nil {
		return err
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	if !allowed(data, c.UserAgent, path) {
		return fmt.Errorf("%w: %s", ErrDisallowed, path)
	}
	return nil
}

// allowed matches robots groups against the product token of userAgent only,
// so the comment and URL parts of the header never select a group.
func allowed(data *robotstxt.RobotsData, userAgent, path string) bool {
	return data.TestAgent(path, ProductToken(userAgent))
}

// ProductToken returns the lowercased product name of a User-Agent header:
// "jobdigest/1.0 (+https://...)" yields "jobdigest".
func ProductToken(userAgent string) string {
	ua := strings.TrimSpace(userAgent)
	if i := strings.IndexAny(ua, "/ ("); i >= 0 {
		ua = ua[:i]
	}
	return strings.ToLower(ua)
}

func (c *Checker) rulesFor(ctx context.Context, page *url.URL) (*robotstxt.RobotsData, error) {
	robotsURL := page.Scheme + "://" + page.Host + "/robots.txt"
	c.mu.Lock()
	if c.mem == nil {
		c.mem = make(map[string]entry)
	}
	if c.now == nil {
		c.now = time.Now
	}
	if e, ok := c.mem[robotsURL]; ok && c.now().Before(e.expires) {
		c.mu.Unlock()
		return e.data, e.err
	}
	c.mu.Unlock()

	data, err := c.fetch(ctx, robotsURL)
	if err != nil {
		log.Warn().Err(err).Str("robots", robotsURL).Msg("robots.txt unavailable; treating host as disallowed")
	}
	exp := c.Expiry
	if exp <= 0 {
		exp = 30 * time.Minute
	}
	c.mu.Lock()
	c.mem[robotsURL] = entry{data: data, err: err, expires: c.now().Add(exp)}
	c.mu.Unlock()
	return data, err
}

func (c *Checker) fetch(ctx context.Context, robotsURL string) (*robotstxt.RobotsData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	// 4xx means no robots.txt and allows everything; 5xx and anything
	// outside 2xx/4xx deny the host.
	if resp.StatusCode >= 500 || resp.StatusCode < 200 || (resp.StatusCode > 299 && resp.StatusCode < 400) {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 512<<10))
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", ErrUnavailable, err)
	}
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse: %v", ErrUnavailable, err)
	}
	return data, nil
}
