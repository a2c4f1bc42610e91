package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/globaltide/tidenews/app/cache"
)

const aggregateFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Google News</title>
<item>
<title>National Pension Fund commits $2B to private credit</title>
<link>https://news.example.com/a?utm_source=x</link>
<pubDate>Mon, 01 Jan 2024 09:00:00 GMT</pubDate>
<description>Allocation details</description>
</item>
<item>
<title>National Pension Fund commits $2 billion to private credit</title>
<link>https://news.example.com/a</link>
<pubDate>Mon, 01 Jan 2024 09:05:00 GMT</pubDate>
<description>Allocation details follow-up</description>
</item>
</channel>
</rss>`

// newAggregatorTestServer serves the sample feed for every query except
// q=bad, which fails with 500. Fetches are counted.
func newAggregatorTestServer(t *testing.T, fetchCount *atomic.Int64) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetchCount.Add(1)
		if r.URL.Query().Get("q") == "bad" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(aggregateFeedXML))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestAggregator(t *testing.T, srv *httptest.Server, queryFiles map[string]string) *Aggregator {
	t.Helper()
	setupTestConfig()

	dir := t.TempDir()
	for name, content := range queryFiles {
		writeQueryFile(t, dir, name, content)
	}

	cc := NewConfigCache(dir)
	if err := cc.Run(); err != nil {
		t.Fatalf("Failed to load queries: %v", err)
	}

	fetcher := &Fetcher{client: srv.Client(), userAgent: "test-agent", tiers: []fetchTier{directTier()}}

	a := NewAggregator(fetcher, NewExtractor(), NewClassifier(), NewDeduper(), cc, cache.New())
	a.newsBase = srv.URL
	return a
}

func TestAggregatorEndToEnd(t *testing.T) {
	var fetchCount atomic.Int64
	srv := newAggregatorTestServer(t, &fetchCount)
	a := newTestAggregator(t, srv, map[string]string{
		"kr_actions.yml": "region: korea\nq: 'pension'\nenabled: true\n",
	})

	payload := a.Run(context.Background())

	if payload.Error != "" {
		t.Fatalf("Unexpected error: %s", payload.Error)
	}
	if payload.UpdatedAt == "" {
		t.Error("Expected UpdatedAt to be set")
	}
	if len(payload.Items) != 1 {
		t.Fatalf("Expected the two variants to collapse to 1 item, got %d", len(payload.Items))
	}

	item := payload.Items[0]
	if item.Title != "National Pension Fund commits $2B to private credit" {
		t.Errorf("Unexpected title: %q", item.Title)
	}
	if item.URL != "https://news.example.com/a" {
		t.Errorf("Expected canonical URL, got %q", item.URL)
	}
	if item.Date != "2024-01-01" {
		t.Errorf("Unexpected date: %q", item.Date)
	}
	if item.Region != "korea" || item.Type != "deploy" || item.Institution != "pension" || item.AssetClass != "pd" {
		t.Errorf("Unexpected classification: %+v", item)
	}
	if item.IsRFP {
		t.Error("Expected IsRFP=false")
	}
}

func TestAggregatorServesCachedPayload(t *testing.T) {
	var fetchCount atomic.Int64
	srv := newAggregatorTestServer(t, &fetchCount)
	a := newTestAggregator(t, srv, map[string]string{
		"q.yml": "q: 'pension'\nenabled: true\n",
	})

	first := a.Run(context.Background())
	second := a.Run(context.Background())

	if fetchCount.Load() != 1 {
		t.Errorf("Expected 1 upstream fetch, got %d", fetchCount.Load())
	}
	if first.UpdatedAt != second.UpdatedAt {
		t.Error("Expected the cached payload to be returned unchanged")
	}
}

func TestAggregatorCacheExpiry(t *testing.T) {
	var fetchCount atomic.Int64
	srv := newAggregatorTestServer(t, &fetchCount)
	a := newTestAggregator(t, srv, map[string]string{
		"q.yml": "q: 'pension'\nenabled: true\n",
	})
	a.cacheTTL = 20 * time.Millisecond

	a.Run(context.Background())
	time.Sleep(50 * time.Millisecond)
	a.Run(context.Background())

	if fetchCount.Load() != 2 {
		t.Errorf("Expected a fresh fetch after TTL expiry, got %d fetches", fetchCount.Load())
	}
}

func TestAggregatorRefreshBypassesCache(t *testing.T) {
	var fetchCount atomic.Int64
	srv := newAggregatorTestServer(t, &fetchCount)
	a := newTestAggregator(t, srv, map[string]string{
		"q.yml": "q: 'pension'\nenabled: true\n",
	})

	a.Run(context.Background())
	payload := a.Refresh(context.Background())

	if fetchCount.Load() != 2 {
		t.Errorf("Expected refresh to fetch again, got %d fetches", fetchCount.Load())
	}
	if payload.Error != "" {
		t.Errorf("Unexpected error: %s", payload.Error)
	}
}

func TestAggregatorPartialFailure(t *testing.T) {
	var fetchCount atomic.Int64
	srv := newAggregatorTestServer(t, &fetchCount)
	a := newTestAggregator(t, srv, map[string]string{
		"good.yml": "q: 'pension'\nenabled: true\n",
		"bad.yml":  "q: 'bad'\nenabled: true\n",
	})

	payload := a.Run(context.Background())

	if payload.Error != "" {
		t.Errorf("Expected partial failure to be absorbed, got error %q", payload.Error)
	}
	if len(payload.Items) == 0 {
		t.Error("Expected items from the surviving feed")
	}
}

func TestAggregatorTotalFailure(t *testing.T) {
	var fetchCount atomic.Int64
	srv := newAggregatorTestServer(t, &fetchCount)
	a := newTestAggregator(t, srv, map[string]string{
		"bad.yml": "q: 'bad'\nenabled: true\n",
	})

	payload := a.Run(context.Background())

	if payload.Error == "" {
		t.Fatal("Expected error when every feed fails")
	}
	if payload.Items == nil || len(payload.Items) != 0 {
		t.Errorf("Expected empty items slice, got %v", payload.Items)
	}

	// A failed pass is not cached.
	a.Run(context.Background())
	if fetchCount.Load() != 2 {
		t.Errorf("Expected failed pass to retry on next run, got %d fetches", fetchCount.Load())
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	var fetchCount atomic.Int64
	srv := newAggregatorTestServer(t, &fetchCount)
	a := newTestAggregator(t, srv, nil)

	result, err := a.Search(context.Background(), SearchParams{Q: "   "})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Items) != 0 {
		t.Errorf("Expected empty result, got %d items", len(result.Items))
	}
	if fetchCount.Load() != 0 {
		t.Error("Expected no upstream fetch for an empty query")
	}
}

func TestSearchEndToEnd(t *testing.T) {
	var fetchCount atomic.Int64
	srv := newAggregatorTestServer(t, &fetchCount)
	a := newTestAggregator(t, srv, nil)

	result, err := a.Search(context.Background(), SearchParams{Q: "pension"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Search applies no dedup: both near-duplicate variants come back.
	if len(result.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(result.Items))
	}
	if result.Cached {
		t.Error("Expected first call to be uncached")
	}
	if result.Items[0].Region != "all" {
		t.Errorf("Expected region all for search items, got %q", result.Items[0].Region)
	}
	if result.Items[0].Type != "deploy" {
		t.Errorf("Expected classification to run, got type %q", result.Items[0].Type)
	}

	second, err := a.Search(context.Background(), SearchParams{Q: "Pension"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !second.Cached {
		t.Error("Expected case-insensitive cache hit")
	}
	if fetchCount.Load() != 1 {
		t.Errorf("Expected 1 upstream fetch, got %d", fetchCount.Load())
	}
}

func TestSearchLimit(t *testing.T) {
	var fetchCount atomic.Int64
	srv := newAggregatorTestServer(t, &fetchCount)
	a := newTestAggregator(t, srv, nil)

	result, err := a.Search(context.Background(), SearchParams{Q: "pension", Limit: 1})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Items) != 1 {
		t.Errorf("Expected limit to cap extraction, got %d items", len(result.Items))
	}
}

func TestSearchHardFailure(t *testing.T) {
	var fetchCount atomic.Int64
	srv := newAggregatorTestServer(t, &fetchCount)
	a := newTestAggregator(t, srv, nil)

	if _, err := a.Search(context.Background(), SearchParams{Q: "bad"}); err == nil {
		t.Fatal("Expected error when the fetch fails outright")
	}
}

func TestFilterByDateRange(t *testing.T) {
	items := []Item{
		{Title: "first", Date: "2024-01-01"},
		{Title: "second", Date: "2024-01-02"},
		{Title: "third", Date: "2024-01-03"},
		{Title: "undated", Date: ""},
	}

	out := filterByDateRange(items, "2024-01-02", "2024-01-02")
	if len(out) != 2 {
		t.Fatalf("Expected in-range item plus the undated one, got %d", len(out))
	}
	if out[0].Title != "second" || out[1].Title != "undated" {
		t.Errorf("Unexpected survivors: %+v", out)
	}

	// Open-ended bounds.
	if out := filterByDateRange(items, "2024-01-02", ""); len(out) != 3 {
		t.Errorf("Expected 3 items with open end, got %d", len(out))
	}
	if out := filterByDateRange(items, "", "2024-01-02"); len(out) != 3 {
		t.Errorf("Expected 3 items with open start, got %d", len(out))
	}

	// Malformed bounds are ignored rather than rejected.
	if out := filterByDateRange(items, "junk", "also-junk"); len(out) != 4 {
		t.Errorf("Expected malformed bounds to pass everything, got %d", len(out))
	}
}
