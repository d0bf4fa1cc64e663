package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the single-file configuration schema. Sections mirror the
// flag prefixes.
type FileConfig struct {
	Input  string `yaml:"input" json:"input"`
	Output string `yaml:"output" json:"output"`
	Rules  string `yaml:"rules" json:"rules"`

	PDF struct {
		Path string `yaml:"path" json:"path"`
		Font string `yaml:"font" json:"font"`
	} `yaml:"pdf" json:"pdf"`

	Fetch struct {
		UserAgent    string        `yaml:"userAgent" json:"userAgent"`
		Timeout      time.Duration `yaml:"timeout" json:"timeout"`
		Attempts     int           `yaml:"attempts" json:"attempts"`
		IgnoreRobots bool          `yaml:"ignoreRobots" json:"ignoreRobots"`
	} `yaml:"fetch" json:"fetch"`

	LLM struct {
		BaseURL      string `yaml:"base" json:"base"`
		Model        string `yaml:"model" json:"model"`
		APIKey       string `yaml:"key" json:"key"`
		SystemPrompt string `yaml:"systemPrompt" json:"systemPrompt"`
	} `yaml:"llm" json:"llm"`

	Cache struct {
		Dir         string        `yaml:"dir" json:"dir"`
		MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
		Clear       bool          `yaml:"clear" json:"clear"`
		StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
		Disable     bool          `yaml:"disable" json:"disable"`
	} `yaml:"cache" json:"cache"`

	Serve struct {
		Addr string `yaml:"addr" json:"addr"`
	} `yaml:"serve" json:"serve"`

	Seed    int64 `yaml:"seed" json:"seed"`
	Verbose bool  `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from fc into cfg for any fields that are
// still unset. Flags and environment should already have been applied.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	setString := func(dst *string, v string) {
		if *dst == "" && v != "" {
			*dst = v
		}
	}
	setString(&cfg.InputPath, fc.Input)
	setString(&cfg.OutputPath, fc.Output)
	setString(&cfg.RulesPath, fc.Rules)
	setString(&cfg.PDFPath, fc.PDF.Path)
	setString(&cfg.PDFFont, fc.PDF.Font)
	setString(&cfg.UserAgent, fc.Fetch.UserAgent)
	setString(&cfg.LLMBaseURL, fc.LLM.BaseURL)
	setString(&cfg.LLMModel, fc.LLM.Model)
	setString(&cfg.LLMAPIKey, fc.LLM.APIKey)
	setString(&cfg.SystemPrompt, fc.LLM.SystemPrompt)
	setString(&cfg.CacheDir, fc.Cache.Dir)
	setString(&cfg.ServeAddr, fc.Serve.Addr)

	if cfg.FetchTimeout == 0 && fc.Fetch.Timeout > 0 {
		cfg.FetchTimeout = fc.Fetch.Timeout
	}
	if cfg.FetchAttempts == 0 && fc.Fetch.Attempts > 0 {
		cfg.FetchAttempts = fc.Fetch.Attempts
	}
	if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	if cfg.Seed == 0 && fc.Seed != 0 {
		cfg.Seed = fc.Seed
	}
	cfg.IgnoreRobots = cfg.IgnoreRobots || fc.Fetch.IgnoreRobots
	cfg.CacheClear = cfg.CacheClear || fc.Cache.Clear
	cfg.CacheStrictPerms = cfg.CacheStrictPerms || fc.Cache.StrictPerms
	cfg.NoCache = cfg.NoCache || fc.Cache.Disable
	cfg.Verbose = cfg.Verbose || fc.Verbose
}

// ValidateConfig performs minimal validation of the merged configuration.
func ValidateConfig(cfg Config) error {
	if cfg.ServeAddr == "" && strings.TrimSpace(cfg.OutputPath) == "" {
		return errors.New("config: output path is required")
	}
	if cfg.PDFPath != "" && strings.TrimSpace(cfg.PDFFont) == "" {
		return errors.New("config: pdf output needs pdf.font (or JOBDIGEST_PDF_FONT)")
	}
	if cfg.FetchAttempts < 0 || cfg.FetchTimeout < 0 || cfg.CacheMaxAge < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	if cfg.LLMModel != "" && strings.TrimSpace(cfg.LLMBaseURL) == "" && strings.TrimSpace(cfg.LLMAPIKey) == "" {
		return errors.New("config: llm.model needs llm.base or llm.key (or LLM_BASE_URL / LLM_API_KEY)")
	}
	return nil
}
