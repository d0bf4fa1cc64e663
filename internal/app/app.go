package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/jobdigest/internal/cache"
	"github.com/hyperifyio/jobdigest/internal/digest"
	"github.com/hyperifyio/jobdigest/internal/extract"
	"github.com/hyperifyio/jobdigest/internal/fetch"
	"github.com/hyperifyio/jobdigest/internal/llm"
	"github.com/hyperifyio/jobdigest/internal/posting"
	"github.com/hyperifyio/jobdigest/internal/report"
	"github.com/hyperifyio/jobdigest/internal/robots"
	"github.com/hyperifyio/jobdigest/internal/salary"
)

// ErrNoUsablePostings is returned by Run when every URL failed. The report
// is still written.
var ErrNoUsablePostings = errors.New("no usable postings")

// ErrNoURLs is returned by Run when the input holds no URLs.
var ErrNoURLs = errors.New("no urls given")

// Result is the outcome for one input URL. Exactly one of Posting and Err is
// set.
type Result struct {
	Index   int
	URL     string
	Posting *posting.JobPosting
	Err     error
}

// ItemError reports why the URL at Index (zero-based) produced no posting.
type ItemError struct {
	Index int
	URL   string
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d (%s): %v", e.Index+1, e.URL, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// pageFetcher returns decoded page HTML.
type pageFetcher interface {
	Page(ctx context.Context, url string) (string, error)
}

// robotsChecker returns nil when a URL may be fetched.
type robotsChecker interface {
	Check(ctx context.Context, url string) error
}

type App struct {
	cfg       Config
	fetcher   pageFetcher
	robots    robotsChecker
	extractor extract.Extractor
	generator *digest.Generator
	polisher  *llm.Polisher
	httpCache *cache.HTTPCache
	llmCache  *cache.LLMCache
}

func New(ctx context.Context, cfg Config) (*App, error) {
	ApplyDefaults(&cfg)
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	rules := digest.DefaultRules()
	if cfg.RulesPath != "" {
		r, err := digest.LoadRules(cfg.RulesPath)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
		rules = r
	}
	var rnd *rand.Rand
	if cfg.Seed != 0 {
		rnd = rand.New(rand.NewSource(cfg.Seed))
	}
	gen, err := digest.New(rules, rnd)
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	rules = gen.Rules()

	a := &App{
		cfg:       cfg,
		extractor: extract.Extractor{Labels: rules.Labels, Selectors: rules.Selectors},
		generator: gen,
	}

	if !cfg.NoCache && cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		httpDir := filepath.Join(cfg.CacheDir, "http")
		llmDir := filepath.Join(cfg.CacheDir, "llm")
		if cfg.CacheMaxAge > 0 {
			n1, _ := cache.PurgeHTTPCacheByAge(httpDir, cfg.CacheMaxAge)
			n2, _ := cache.PurgeLLMCacheByAge(llmDir, cfg.CacheMaxAge)
			log.Debug().Int("http", n1).Int("llm", n2).Msg("purged stale cache entries")
		}
		a.httpCache = &cache.HTTPCache{Dir: httpDir, StrictPerms: cfg.CacheStrictPerms}
		a.llmCache = &cache.LLMCache{Dir: llmDir, StrictPerms: cfg.CacheStrictPerms}
	}

	httpClient := newHTTPClient()
	a.fetcher = &fetch.Client{
		HTTPClient:        httpClient,
		UserAgent:         cfg.UserAgent,
		AcceptLanguage:    "ja,en;q=0.5",
		MaxAttempts:       cfg.FetchAttempts,
		PerRequestTimeout: cfg.FetchTimeout,
		Cache:             a.httpCache,
		RedirectMaxHops:   5,
		MaxConcurrent:     4,
	}
	if !cfg.IgnoreRobots {
		a.robots = &robots.Checker{HTTPClient: httpClient, UserAgent: cfg.UserAgent}
	}
	if cfg.LLMModel != "" {
		a.polisher = &llm.Polisher{
			Client:       llm.NewOpenAIProvider(cfg.LLMBaseURL, cfg.LLMAPIKey, httpClient),
			Model:        cfg.LLMModel,
			Cache:        a.llmCache,
			SystemPrompt: cfg.SystemPrompt,
		}
		log.Info().Str("model", cfg.LLMModel).Msg("summary polishing enabled")
	}
	return a, nil
}

// ParseURLList splits a newline-separated URL block. Lines are trimmed;
// blank lines and lines starting with '#' are dropped.
func ParseURLList(text string) []string {
	var out []string
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// Process handles each URL independently and returns one result per URL in
// input order. A failing URL never stops later URLs; once ctx is cancelled
// the remaining URLs fail with the context error.
func (a *App) Process(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))
	for i, u := range urls {
		results[i] = Result{Index: i, URL: u}
		if err := ctx.Err(); err != nil {
			results[i].Err = &ItemError{Index: i, URL: u, Err: err}
			continue
		}
		p, err := a.processOne(ctx, u)
		if err != nil {
			log.Warn().Err(err).Int("index", i+1).Str("url", u).Msg("posting failed")
			results[i].Err = &ItemError{Index: i, URL: u, Err: err}
			continue
		}
		log.Info().Int("index", i+1).Str("url", u).Str("title", p.Title).Strs("highlights", p.Highlights).Msg("posting processed")
		results[i].Posting = p
	}
	return results
}

func (a *App) processOne(ctx context.Context, url string) (*posting.JobPosting, error) {
	if a.robots != nil {
		if err := a.robots.Check(ctx, url); err != nil {
			return nil, fmt.Errorf("robots: %w", err)
		}
	}
	page, err := a.fetcher.Page(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	doc, err := extract.ParseString(page)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	p := a.extractor.Extract(doc, url)
	p.SalaryMin, p.SalaryMax = salary.ParseBounds(p.SalaryText)
	a.generator.Apply(&p)

	// The fallback notice carries no facts for the model to work from.
	if a.polisher != nil && p.Summary != a.generator.Rules().Fallback {
		polished, err := a.polisher.Polish(ctx, p)
		if err != nil {
			log.Warn().Err(err).Str("url", url).Msg("summary polishing failed; keeping heuristic summary")
		} else {
			p.Summary = polished
		}
	}
	return &p, nil
}

// Report wraps results for rendering.
func (a *App) Report(results []Result) report.Batch {
	items := make([]report.Item, len(results))
	for i, r := range results {
		items[i] = report.Item(r)
	}
	return report.Batch{
		RunID:          report.NewRunID(),
		GeneratedAt:    time.Now(),
		Items:          items,
		Model:          a.cfg.LLMModel,
		HTTPCacheUsed:  a.httpCache != nil,
		LLMCacheUsed:   a.polisher != nil && a.llmCache != nil,
		RobotsEnforced: a.robots != nil,
	}
}

// Run reads the URL list, processes it and writes the Markdown report (and
// the PDF copy when configured).
func (a *App) Run(ctx context.Context) error {
	urls, err := a.readURLs()
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return ErrNoURLs
	}
	log.Info().Int("urls", len(urls)).Msg("processing postings")

	results := a.Process(ctx, urls)
	md := report.Markdown(a.Report(results))
	if err := os.WriteFile(a.cfg.OutputPath, []byte(md), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Info().Str("out", a.cfg.OutputPath).Msg("wrote output")

	if a.cfg.PDFPath != "" {
		if err := report.WritePDF(md, a.cfg.PDFPath, a.cfg.PDFFont); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		log.Info().Str("out", a.cfg.PDFPath).Msg("wrote pdf")
	}

	for _, r := range results {
		if r.Err == nil {
			return nil
		}
	}
	return ErrNoUsablePostings
}

func (a *App) readURLs() ([]string, error) {
	urls := append([]string(nil), a.cfg.URLs...)
	if a.cfg.InputPath == "" {
		return urls, nil
	}
	var r io.Reader
	if a.cfg.InputPath == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(a.cfg.InputPath)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		defer f.Close()
		r = f
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return append(urls, ParseURLList(string(b))...), nil
}
