package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestHTTPCache_SaveLoad(t *testing.T) {
	t.Parallel()
	c := &HTTPCache{Dir: t.TempDir()}
	ctx := context.Background()
	u := "https://www.hellowork.mhlw.go.jp/kensaku/GECA110010.do?kJNo=1"
	if err := c.Save(ctx, u, "text/html", `"e1"`, "Mon, 01 Jan 2024 00:00:00 GMT", []byte("<html></html>")); err != nil {
		t.Fatalf("save: %v", err)
	}
	meta, err := c.LoadMeta(ctx, u)
	if err != nil {
		t.Fatalf("load meta: %v", err)
	}
	if meta.URL != u || meta.ETag != `"e1"` || meta.SavedAt.IsZero() {
		t.Fatalf("unexpected meta: %+v", meta)
	}
	body, err := c.LoadBody(ctx, u)
	if err != nil || string(body) != "<html></html>" {
		t.Fatalf("unexpected body %q err=%v", string(body), err)
	}
	if _, err := c.LoadBody(ctx, "https://other.example/"); err == nil {
		t.Fatalf("expected miss for unknown url")
	}
}

func TestHTTPCache_UnconfiguredDir(t *testing.T) {
	t.Parallel()
	var c *HTTPCache
	if _, err := c.LoadMeta(context.Background(), "u"); err == nil {
		t.Fatalf("expected error for nil cache")
	}
}

func TestStrictPerms(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	dir := filepath.Join(base, "llm")
	c := &LLMCache{Dir: dir, StrictPerms: true}
	key := KeyFrom("model", "prompt")
	if err := c.Save(context.Background(), key, []byte(`{"summary":"x"}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat dir: %v", err)
	}
	if got := info.Mode() & 0o777; got != 0o700 {
		t.Fatalf("dir mode = %o, want 0700", got)
	}
	finfo, err := os.Stat(filepath.Join(dir, key+".json"))
	if err != nil {
		t.Fatalf("stat file: %v", err)
	}
	if got := finfo.Mode() & 0o777; got != 0o600 {
		t.Fatalf("file mode = %o, want 0600", got)
	}
}

func TestLLMCache_SaveGet(t *testing.T) {
	t.Parallel()
	c := &LLMCache{Dir: t.TempDir()}
	key := KeyFrom("model", "prompt")
	data := []byte(`{"summary":"要約"}`)
	if err := c.Save(context.Background(), key, data); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := c.Get(context.Background(), key)
	if err != nil || !ok || string(got) != string(data) {
		t.Fatalf("get: %q ok=%v err=%v", string(got), ok, err)
	}
	if _, ok, _ := c.Get(context.Background(), KeyFrom("model", "other")); ok {
		t.Fatalf("expected miss")
	}
}

func TestPurgeHTTPCacheByAge(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	c := &HTTPCache{Dir: dir}
	ctx := context.Background()
	if err := c.Save(ctx, "https://a.example/old", "text/html", "", "", []byte("old")); err != nil {
		t.Fatalf("save old: %v", err)
	}
	if err := c.Save(ctx, "https://a.example/new", "text/html", "", "", []byte("new")); err != nil {
		t.Fatalf("save new: %v", err)
	}
	// Backdate the first entry.
	metaPath := c.metaPath(c.key("https://a.example/old"))
	old := HTTPEntry{URL: "https://a.example/old", SavedAt: time.Now().Add(-48 * time.Hour)}
	b, _ := json.Marshal(old)
	if err := os.WriteFile(metaPath, b, 0o644); err != nil {
		t.Fatalf("backdate: %v", err)
	}

	removed, err := PurgeHTTPCacheByAge(dir, 24*time.Hour)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if _, err := c.LoadBody(ctx, "https://a.example/old"); err == nil {
		t.Fatalf("expected old body removed")
	}
	if _, err := c.LoadBody(ctx, "https://a.example/new"); err != nil {
		t.Fatalf("new entry should survive: %v", err)
	}
}

func TestPurgeLLMCacheByAge(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	c := &LLMCache{Dir: dir}
	ctx := context.Background()
	oldKey, newKey := KeyFrom("m", "old"), KeyFrom("m", "new")
	_ = c.Save(ctx, oldKey, []byte("1"))
	_ = c.Save(ctx, newKey, []byte("2"))
	past := time.Now().Add(-72 * time.Hour)
	if err := os.Chtimes(c.pathFor(oldKey), past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	removed, err := PurgeLLMCacheByAge(dir, 24*time.Hour)
	if err != nil || removed != 1 {
		t.Fatalf("purge: removed=%d err=%v", removed, err)
	}
	if _, ok, _ := c.Get(ctx, newKey); !ok {
		t.Fatalf("new entry should survive")
	}
}

func TestPurge_MissingDirIsEmpty(t *testing.T) {
	t.Parallel()
	missing := filepath.Join(t.TempDir(), "nope")
	if n, err := PurgeHTTPCacheByAge(missing, time.Hour); err != nil || n != 0 {
		t.Fatalf("unexpected result n=%d err=%v", n, err)
	}
}

func TestClearDir(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "c")
	c := &HTTPCache{Dir: dir}
	_ = c.Save(context.Background(), "https://x.example", "text/html", "", "", []byte("x"))
	if err := ClearDir(dir); err != nil {
		t.Fatalf("clear: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty dir, got %d entries err=%v", len(entries), err)
	}
	if err := ClearDir("  "); err == nil {
		t.Fatalf("expected error for blank dir")
	}
}
