package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}

	setString := func(dst *string, keys ...string) {
		if *dst != "" {
			return
		}
		for _, k := range keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}
	setString(&cfg.InputPath, "JOBDIGEST_INPUT")
	setString(&cfg.OutputPath, "JOBDIGEST_OUTPUT")
	setString(&cfg.PDFPath, "JOBDIGEST_PDF")
	setString(&cfg.PDFFont, "JOBDIGEST_PDF_FONT")
	setString(&cfg.RulesPath, "JOBDIGEST_RULES")
	setString(&cfg.UserAgent, "JOBDIGEST_USER_AGENT")
	setString(&cfg.CacheDir, "JOBDIGEST_CACHE_DIR", "CACHE_DIR")
	setString(&cfg.ServeAddr, "JOBDIGEST_ADDR")
	setString(&cfg.LLMBaseURL, "LLM_BASE_URL")
	setString(&cfg.LLMModel, "LLM_MODEL")
	setString(&cfg.LLMAPIKey, "LLM_API_KEY")
	setString(&cfg.SystemPrompt, "LLM_SYSTEM_PROMPT")

	setDuration := func(dst *time.Duration, key string) {
		if *dst != 0 {
			return
		}
		if s := strings.TrimSpace(os.Getenv(key)); s != "" {
			if d, err := time.ParseDuration(s); err == nil {
				*dst = d
			}
		}
	}
	setDuration(&cfg.FetchTimeout, "JOBDIGEST_FETCH_TIMEOUT")
	setDuration(&cfg.CacheMaxAge, "JOBDIGEST_CACHE_MAX_AGE")

	if cfg.FetchAttempts == 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("JOBDIGEST_FETCH_ATTEMPTS"))); err == nil && n > 0 {
			cfg.FetchAttempts = n
		}
	}
	if cfg.Seed == 0 {
		if n, err := strconv.ParseInt(strings.TrimSpace(os.Getenv("JOBDIGEST_SEED")), 10, 64); err == nil {
			cfg.Seed = n
		}
	}

	setBool := func(dst *bool, key string) {
		if *dst {
			return
		}
		switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
		case "1", "true", "yes", "on":
			*dst = true
		}
	}
	setBool(&cfg.IgnoreRobots, "JOBDIGEST_IGNORE_ROBOTS")
	setBool(&cfg.CacheClear, "JOBDIGEST_CACHE_CLEAR")
	setBool(&cfg.CacheStrictPerms, "JOBDIGEST_CACHE_STRICT_PERMS")
	setBool(&cfg.NoCache, "JOBDIGEST_NO_CACHE")
	setBool(&cfg.Verbose, "JOBDIGEST_VERBOSE")
}
