package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// unsetEnv clears key for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

func TestLoadEnvFiles_LoadsKeyValues(t *testing.T) {
	unsetEnv(t, "JOBDIGEST_TEST_FOO", "JOBDIGEST_TEST_BAR")

	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env.test")
	content := "\n# sample dotenv file\nJOBDIGEST_TEST_FOO=alpha\nJOBDIGEST_TEST_BAR=\"beta gamma\"\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	if err := LoadEnvFiles(envPath); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}
	if got := os.Getenv("JOBDIGEST_TEST_FOO"); got != "alpha" {
		t.Fatalf("FOO=%q, want alpha", got)
	}
	if got := os.Getenv("JOBDIGEST_TEST_BAR"); got != "beta gamma" {
		t.Fatalf("BAR=%q, want beta gamma", got)
	}
}

// Later files override earlier ones; the process environment wins over both.
func TestLoadEnvFiles_OverrideOrder(t *testing.T) {
	unsetEnv(t, "JOBDIGEST_TEST_K")
	t.Setenv("JOBDIGEST_TEST_SET", "from-env")

	dir := t.TempDir()
	a := filepath.Join(dir, ".env.a")
	b := filepath.Join(dir, ".env.b")
	if err := os.WriteFile(a, []byte("JOBDIGEST_TEST_K=first\nJOBDIGEST_TEST_SET=from-a\n"), 0o600); err != nil {
		t.Fatalf("write a: %v", err)
	}
	if err := os.WriteFile(b, []byte("JOBDIGEST_TEST_K=second\n"), 0o600); err != nil {
		t.Fatalf("write b: %v", err)
	}

	if err := LoadEnvFiles(a, filepath.Join(dir, "missing.env"), b); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}
	if got := os.Getenv("JOBDIGEST_TEST_K"); got != "second" {
		t.Fatalf("override order failed: got %q, want second", got)
	}
	if got := os.Getenv("JOBDIGEST_TEST_SET"); got != "from-env" {
		t.Fatalf("process env should win, got %q", got)
	}
}

func TestApplyEnvToConfig_FromEnv(t *testing.T) {
	t.Setenv("JOBDIGEST_OUTPUT", "out.md")
	t.Setenv("JOBDIGEST_CACHE_DIR", "")
	t.Setenv("CACHE_DIR", "/tmp/jobdigest-cache")
	t.Setenv("JOBDIGEST_CACHE_MAX_AGE", "48h")
	t.Setenv("JOBDIGEST_FETCH_ATTEMPTS", "4")
	t.Setenv("JOBDIGEST_SEED", "42")
	t.Setenv("JOBDIGEST_IGNORE_ROBOTS", "yes")
	t.Setenv("LLM_MODEL", "env-model")

	cfg := Config{LLMModel: "flag-model"}
	ApplyEnvToConfig(&cfg)
	if cfg.OutputPath != "out.md" {
		t.Fatalf("OutputPath=%q", cfg.OutputPath)
	}
	if cfg.CacheDir != "/tmp/jobdigest-cache" {
		t.Fatalf("CacheDir=%q, want fallback from CACHE_DIR", cfg.CacheDir)
	}
	if cfg.CacheMaxAge != 48*time.Hour || cfg.FetchAttempts != 4 || cfg.Seed != 42 {
		t.Fatalf("unexpected parsed values: %+v", cfg)
	}
	if !cfg.IgnoreRobots {
		t.Fatalf("IgnoreRobots should be set")
	}
	if cfg.LLMModel != "flag-model" {
		t.Fatalf("explicit value must win over env, got %q", cfg.LLMModel)
	}
}

func TestApplyFileConfig_FillsOnlyUnsetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobdigest.yaml")
	yml := `
output: from-file.md
rules: rules.yaml
pdf:
  path: digest.pdf
  font: /fonts/NotoSansJP-Regular.ttf
fetch:
  timeout: 30s
  attempts: 3
llm:
  model: file-model
  base: http://localhost:11434/v1
cache:
  maxAge: 24h
  strictPerms: true
seed: 9
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	cfg := Config{OutputPath: "flag.md", FetchAttempts: 5}
	ApplyFileConfig(&cfg, fc)
	if cfg.OutputPath != "flag.md" || cfg.FetchAttempts != 5 {
		t.Fatalf("explicit values overwritten: %+v", cfg)
	}
	if cfg.RulesPath != "rules.yaml" || cfg.PDFPath != "digest.pdf" || cfg.PDFFont != "/fonts/NotoSansJP-Regular.ttf" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.FetchTimeout != 30*time.Second || cfg.CacheMaxAge != 24*time.Hour || !cfg.CacheStrictPerms || cfg.Seed != 9 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.LLMModel != "file-model" || cfg.LLMBaseURL != "http://localhost:11434/v1" {
		t.Fatalf("llm values not applied: %+v", cfg)
	}
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadConfigFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobdigest.json")
	if err := os.WriteFile(path, []byte(`{"output":"x.md","serve":{"addr":":9000"}}`), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if fc.Output != "x.md" || fc.Serve.Addr != ":9000" {
		t.Fatalf("unexpected file config: %+v", fc)
	}
}

func TestValidateConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"defaults", Config{OutputPath: "digest.md"}, true},
		{"serve without output", Config{ServeAddr: ":8080"}, true},
		{"missing output", Config{}, false},
		{"pdf without font", Config{OutputPath: "d.md", PDFPath: "d.pdf"}, false},
		{"negative attempts", Config{OutputPath: "d.md", FetchAttempts: -1}, false},
		{"model without endpoint", Config{OutputPath: "d.md", LLMModel: "m"}, false},
		{"model with key", Config{OutputPath: "d.md", LLMModel: "m", LLMAPIKey: "k"}, true},
	}
	for _, tc := range cases {
		err := ValidateConfig(tc.cfg)
		if (err == nil) != tc.ok {
			t.Fatalf("%s: err=%v, want ok=%v", tc.name, err, tc.ok)
		}
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)
	if cfg.OutputPath != defaultOutputPath || cfg.CacheDir != defaultCacheDir || cfg.UserAgent == "" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.FetchTimeout != defaultFetchTimeout || cfg.FetchAttempts != defaultFetchAttempts {
		t.Fatalf("fetch defaults not applied: %+v", cfg)
	}
}
