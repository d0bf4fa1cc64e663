package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/jobdigest/internal/app"
	"github.com/hyperifyio/jobdigest/internal/web"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		configPath       string
		envFiles         string
		inputPath        string
		outputPath       string
		pdfPath          string
		pdfFont          string
		rulesPath        string
		userAgent        string
		fetchTimeout     time.Duration
		fetchAttempts    int
		ignoreRobots     bool
		llmBaseURL       string
		llmModel         string
		llmKey           string
		systemPrompt     string
		systemPromptFile string
		cacheDir         string
		cacheMaxAge      time.Duration
		cacheClear       bool
		cacheStrict      bool
		noCache          bool
		seed             int64
		serveAddr        string
		serveMaxURLs     int
		verbose          bool
		showVersion      bool
	)

	flag.StringVar(&configPath, "config", "", "Path to a YAML or JSON config file")
	flag.StringVar(&envFiles, "env", ".env", "Comma-separated dotenv files; missing files are ignored")
	flag.StringVar(&inputPath, "input", "", "File with one job URL per line ('-' for stdin)")
	flag.StringVar(&outputPath, "output", "", "Path to write the Markdown digest (default digest.md)")
	flag.StringVar(&pdfPath, "pdf", "", "Also write the digest as PDF to this path")
	flag.StringVar(&pdfFont, "pdf.font", "", "TrueType font with Japanese glyphs for PDF output")
	flag.StringVar(&rulesPath, "rules", "", "YAML or JSON file overriding labels, keyword groups and fillers")
	flag.StringVar(&userAgent, "user-agent", "", "User-Agent for page and robots.txt requests")
	flag.DurationVar(&fetchTimeout, "fetch.timeout", 0, "Per-request timeout (default 15s)")
	flag.IntVar(&fetchAttempts, "fetch.attempts", 0, "Attempts per page including retries (default 2)")
	flag.BoolVar(&ignoreRobots, "robots.ignore", false, "Do not consult robots.txt")
	flag.StringVar(&llmBaseURL, "llm.base", "", "OpenAI-compatible base URL for summary polishing")
	flag.StringVar(&llmModel, "llm.model", "", "Model name; polishing is off when empty")
	flag.StringVar(&llmKey, "llm.key", "", "API key for the model endpoint")
	flag.StringVar(&systemPrompt, "llm.systemPrompt", "", "Override the polishing system prompt (inline string)")
	flag.StringVar(&systemPromptFile, "llm.systemPromptFile", "", "Path to file containing the polishing system prompt")
	flag.StringVar(&cacheDir, "cache.dir", "", "Cache directory path (default .jobdigest-cache)")
	flag.DurationVar(&cacheMaxAge, "cache.maxAge", 0, "Max age for cache entries before purge (e.g. 24h); 0 disables")
	flag.BoolVar(&cacheClear, "cache.clear", false, "Clear cache directory before run")
	flag.BoolVar(&cacheStrict, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	flag.BoolVar(&noCache, "no-cache", false, "Disable the page and model caches")
	flag.Int64Var(&seed, "seed", 0, "Seed for filler highlight selection; 0 uses the clock")
	flag.StringVar(&serveAddr, "serve", "", "Serve the web form on this address instead of writing a file, e.g. :8080")
	flag.IntVar(&serveMaxURLs, "serve.maxURLs", 0, "Maximum URLs per web submission (default 20)")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [url ...]\n\nURLs come from arguments, -input, or stdin.\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Println(app.VersionString())
		return
	}
	if strings.TrimSpace(systemPromptFile) != "" {
		if b, err := os.ReadFile(systemPromptFile); err == nil {
			systemPrompt = string(b)
		} else {
			log.Warn().Err(err).Str("file", systemPromptFile).Msg("system prompt file unreadable; using default")
		}
	}

	if err := app.LoadEnvFiles(splitList(envFiles)...); err != nil {
		log.Error().Err(err).Msg("load env files")
		os.Exit(1)
	}

	cfg := app.Config{
		InputPath:        inputPath,
		URLs:             flag.Args(),
		OutputPath:       outputPath,
		PDFPath:          pdfPath,
		PDFFont:          pdfFont,
		RulesPath:        rulesPath,
		UserAgent:        userAgent,
		FetchTimeout:     fetchTimeout,
		FetchAttempts:    fetchAttempts,
		IgnoreRobots:     ignoreRobots,
		LLMBaseURL:       llmBaseURL,
		LLMModel:         llmModel,
		LLMAPIKey:        llmKey,
		SystemPrompt:     systemPrompt,
		CacheDir:         cacheDir,
		CacheMaxAge:      cacheMaxAge,
		CacheClear:       cacheClear,
		CacheStrictPerms: cacheStrict,
		NoCache:          noCache,
		Seed:             seed,
		ServeAddr:        serveAddr,
		ServeMaxURLs:     serveMaxURLs,
		Verbose:          verbose,
	}
	// Precedence: flags > environment > config file > defaults.
	app.ApplyEnvToConfig(&cfg)
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Error().Err(err).Str("config", configPath).Msg("load config file")
			os.Exit(1)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	if cfg.ServeAddr == "" && cfg.InputPath == "" && len(cfg.URLs) == 0 {
		cfg.InputPath = "-"
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		gin.SetMode(gin.DebugMode)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, cfg)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("run failed")
	}
	os.Exit(exitCode(err))
}

func run(ctx context.Context, cfg app.Config) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	if cfg.ServeAddr != "" {
		return web.New(a, cfg.ServeMaxURLs).ListenAndServe(ctx, cfg.ServeAddr)
	}
	return a.Run(ctx)
}

// exitCode maps run errors: 2 when every URL failed, 1 for configuration,
// input or output errors.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, app.ErrNoUsablePostings):
		return 2
	default:
		return 1
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
