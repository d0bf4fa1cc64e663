package app

import (
	"time"

	"github.com/hyperifyio/jobdigest/internal/fetch"
)

// Config holds runtime configuration for the application.
type Config struct {
	// InputPath is a newline-separated URL list; "-" reads stdin.
	InputPath string
	// URLs are processed before those read from InputPath.
	URLs       []string
	OutputPath string
	PDFPath    string
	PDFFont    string
	RulesPath  string

	// Fetch
	UserAgent     string
	FetchTimeout  time.Duration
	FetchAttempts int
	IgnoreRobots  bool

	// LLM polishing; disabled when LLMModel is empty.
	LLMBaseURL   string
	LLMModel     string
	LLMAPIKey    string
	SystemPrompt string

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool
	NoCache          bool

	// Seed drives filler selection; zero seeds from the clock.
	Seed int64

	// ServeAddr switches to the web form; ServeMaxURLs bounds one
	// submission, zero meaning the server default.
	ServeAddr    string
	ServeMaxURLs int
	Verbose      bool
}

const (
	defaultOutputPath    = "digest.md"
	defaultCacheDir      = ".jobdigest-cache"
	defaultFetchTimeout  = 15 * time.Second
	defaultFetchAttempts = 2
)

// ApplyDefaults fills fields still unset after flags, environment and config
// file have been applied.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = defaultOutputPath
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = defaultCacheDir
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = fetch.DefaultUserAgent
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	if cfg.FetchAttempts == 0 {
		cfg.FetchAttempts = defaultFetchAttempts
	}
}
