package news

import (
	"os"
	"path/filepath"
	"testing"
)

func writeQueryFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write query file: %v", err)
	}
}

func TestConfigCacheLoadsQueryFiles(t *testing.T) {
	dir := t.TempDir()
	writeQueryFile(t, dir, "kr_actions.yml", `
region: korea
q: '국민연금 출자사업'
locale:
  hl: ko
  gl: KR
  ceid: KR:ko
enabled: true
`)
	writeQueryFile(t, dir, "disabled.yml", `
q: 'something'
enabled: false
`)

	cc := NewConfigCache(dir)
	if err := cc.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if cc.GetQueryCount() != 2 {
		t.Errorf("Expected 2 loaded queries, got %d", cc.GetQueryCount())
	}

	enabled := cc.GetEnabledQueries()
	if len(enabled) != 1 {
		t.Fatalf("Expected 1 enabled query, got %d", len(enabled))
	}

	q := enabled[0]
	if q.Name != "kr_actions" {
		t.Errorf("Expected name from filename, got %q", q.Name)
	}
	if q.Region != "korea" || q.Locale.HL != "ko" || q.Locale.GL != "KR" || q.Locale.CEID != "KR:ko" {
		t.Errorf("Unexpected query fields: %+v", q)
	}
}

func TestConfigCacheDefaultsApplied(t *testing.T) {
	dir := t.TempDir()
	writeQueryFile(t, dir, "minimal.yml", `
q: 'pension fund'
enabled: true
`)

	cc := NewConfigCache(dir)
	if err := cc.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	q := cc.GetEnabledQueries()[0]
	if q.Region != "all" {
		t.Errorf("Expected default region all, got %q", q.Region)
	}
	if q.Locale.HL != "en" || q.Locale.GL != "US" || q.Locale.CEID != "US:en" {
		t.Errorf("Expected en/US/US:en locale defaults, got %+v", q.Locale)
	}
}

func TestConfigCacheValidation(t *testing.T) {
	dir := t.TempDir()
	writeQueryFile(t, dir, "bad_region.yml", `
q: 'pension'
region: mars
enabled: true
`)

	cc := NewConfigCache(dir)
	if err := cc.Run(); err == nil {
		t.Error("Expected error for invalid region")
	}

	dir2 := t.TempDir()
	writeQueryFile(t, dir2, "empty_q.yml", `
region: global
enabled: true
`)

	cc2 := NewConfigCache(dir2)
	if err := cc2.Run(); err == nil {
		t.Error("Expected error for empty query string")
	}
}

func TestConfigCacheEmbeddedDefaults(t *testing.T) {
	// No files on disk: the embedded default set loads instead.
	cc := NewConfigCache(t.TempDir())
	if err := cc.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if cc.GetQueryCount() != 7 {
		t.Errorf("Expected 7 embedded default queries, got %d", cc.GetQueryCount())
	}

	enabled := cc.GetEnabledQueries()
	if len(enabled) != 7 {
		t.Fatalf("Expected all embedded defaults enabled, got %d", len(enabled))
	}

	// Stable name order.
	for i := 1; i < len(enabled); i++ {
		if enabled[i-1].Name >= enabled[i].Name {
			t.Errorf("Expected queries sorted by name, got %q before %q", enabled[i-1].Name, enabled[i].Name)
		}
	}

	for _, q := range enabled {
		if q.Q == "" {
			t.Errorf("Embedded query %s has empty query string", q.Name)
		}
	}
}

func TestGoogleNewsURL(t *testing.T) {
	got := GoogleNewsURL("https://news.google.com/rss/search", "pension fund", "ko", "KR", "KR:ko")
	want := "https://news.google.com/rss/search?q=pension+fund&hl=ko&gl=KR&ceid=KR%3Ako"

	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
