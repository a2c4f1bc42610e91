package news

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/globaltide/tidenews/app/cache"
	"github.com/globaltide/tidenews/app/cfg"
)

const (
	aggregateCacheKey  = "investor-news"
	defaultGoogleNews  = "https://news.google.com/rss/search"
	defaultSearchLimit = 30
	maxSearchLimit     = 50
)

// Aggregator runs the full pipeline across the configured feed queries
// and serves the result from a single-slot TTL cache between passes.
// Feeds are fetched in parallel; a failing feed is skipped, and only a
// pass in which every feed fails is reported as an error - inside a
// valid envelope, never as a transport failure.
type Aggregator struct {
	fetcher      *Fetcher
	extractor    *Extractor
	classifier   *Classifier
	deduper      *Deduper
	configCache  *ConfigCache
	payloadCache *cache.Cache

	newsBase  string
	resultCap int
	cacheTTL  time.Duration
	searchTTL time.Duration
}

func NewAggregator(fetcher *Fetcher, extractor *Extractor, classifier *Classifier,
	deduper *Deduper, configCache *ConfigCache, payloadCache *cache.Cache) *Aggregator {
	c := cfg.Get()

	return &Aggregator{
		fetcher:      fetcher,
		extractor:    extractor,
		classifier:   classifier,
		deduper:      deduper,
		configCache:  configCache,
		payloadCache: payloadCache,
		newsBase:     defaultGoogleNews,
		resultCap:    c.ResultCap,
		cacheTTL:     time.Duration(c.CacheTTL) * time.Second,
		searchTTL:    time.Duration(c.SearchCacheTTL) * time.Second,
	}
}

// Run returns the aggregate payload, serving the cached copy when it
// is still within the TTL window.
func (a *Aggregator) Run(ctx context.Context) Payload {
	if v, ok := a.payloadCache.Get(aggregateCacheKey); ok {
		if payload, ok := v.(Payload); ok {
			return payload
		}
	}

	payload := a.aggregate(ctx)
	if payload.Error == "" {
		a.payloadCache.Set(aggregateCacheKey, payload, a.cacheTTL)
	}
	return payload
}

// Refresh drops the cached aggregate and runs a fresh pass.
func (a *Aggregator) Refresh(ctx context.Context) Payload {
	a.payloadCache.Delete(aggregateCacheKey)
	return a.Run(ctx)
}

func (a *Aggregator) aggregate(ctx context.Context) Payload {
	started := time.Now()
	queries := a.configCache.GetEnabledQueries()

	collected := make([][]Item, len(queries))
	errs := make([]error, len(queries))

	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q *Query) {
			defer wg.Done()
			collected[i], errs[i] = a.collect(ctx, q)
		}(i, q)
	}
	wg.Wait()

	var all []Item
	var failures []string
	for i, q := range queries {
		if errs[i] != nil {
			slog.Warn("Feed query failed, skipping", "query", q.Name, "error", errs[i])
			failures = append(failures, fmt.Sprintf("%s: %v", q.Name, errs[i]))
			continue
		}
		all = append(all, collected[i]...)
	}

	payload := Payload{UpdatedAt: time.Now().UTC().Format(time.RFC3339), Items: []Item{}}

	if len(queries) > 0 && len(failures) == len(queries) {
		payload.Error = "all feeds failed: " + strings.Join(failures, "; ")
		slog.Error("Aggregation pass failed", "queries", len(queries), "duration", time.Since(started))
		return payload
	}

	items := a.deduper.Run(all)
	sortByTimestampDesc(items)
	if len(items) > a.resultCap {
		items = items[:a.resultCap]
	}
	payload.Items = items

	slog.Info("Aggregation pass completed",
		"queries", len(queries),
		"failed", len(failures),
		"collected", len(all),
		"items", len(items),
		"duration", time.Since(started))

	return payload
}

// collect runs the per-feed stages: fetch, extract, normalize,
// classify, negative-filter.
func (a *Aggregator) collect(ctx context.Context, q *Query) ([]Item, error) {
	feedURL := GoogleNewsURL(a.newsBase, q.Q, q.Locale.HL, q.Locale.GL, q.Locale.CEID)

	xmlText, err := a.fetcher.Run(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	channelTitle, rawItems := a.extractor.Run(xmlText, 0)
	fallbackSource := channelTitle
	if fallbackSource == "" {
		fallbackSource = "Google News"
	}

	items := make([]Item, 0, len(rawItems))
	dropped := 0
	for _, raw := range rawItems {
		item := a.classifier.Run(NormalizeItem(raw, fallbackSource), q.Region)
		if a.classifier.Exclude(item) {
			dropped++
			continue
		}
		items = append(items, item)
	}

	slog.Debug("Feed query collected", "query", q.Name, "items", len(items), "dropped", dropped)
	return items, nil
}

// Search runs the single-query variant: one fetch, normalization and
// classification, no dedup, with its own per-query cache. A hard fetch
// failure is returned as an error for the handler to surface.
func (a *Aggregator) Search(ctx context.Context, p SearchParams) (SearchResult, error) {
	q := strings.TrimSpace(p.Q)
	if q == "" {
		return SearchResult{Items: []Item{}}, nil
	}

	hl := defaultString(p.HL, "en")
	gl := defaultString(p.GL, "US")
	ceid := defaultString(p.CEID, "US:en")

	limit := p.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	key := fmt.Sprintf("search:%s::%s:%s:%s::%d", strings.ToLower(q), hl, gl, ceid, limit)
	if v, ok := a.payloadCache.Get(key); ok {
		if items, ok := v.([]Item); ok {
			return SearchResult{Items: filterByDateRange(items, p.Start, p.End), Cached: true}, nil
		}
	}

	feedURL := GoogleNewsURL(a.newsBase, q, hl, gl, ceid)
	xmlText, err := a.fetcher.Run(ctx, feedURL)
	if err != nil {
		return SearchResult{}, err
	}

	channelTitle, rawItems := a.extractor.Run(xmlText, limit)
	fallbackSource := channelTitle
	if fallbackSource == "" {
		fallbackSource = "Google News"
	}

	items := make([]Item, 0, len(rawItems))
	for _, raw := range rawItems {
		items = append(items, a.classifier.Run(NormalizeItem(raw, fallbackSource), "all"))
	}

	a.payloadCache.Set(key, items, a.searchTTL)

	return SearchResult{Items: filterByDateRange(items, p.Start, p.End)}, nil
}

var reISODay = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// filterByDateRange keeps items whose date falls inside the inclusive
// [start, end] range. Items with an unparsable date pass regardless of
// the bounds, and malformed bounds are ignored: the filter fails open
// to avoid zero-result surprises.
func filterByDateRange(items []Item, start, end string) []Item {
	if !reISODay.MatchString(start) {
		start = ""
	}
	if !reISODay.MatchString(end) {
		end = ""
	}
	if start == "" && end == "" {
		return items
	}

	out := make([]Item, 0, len(items))
	for _, item := range items {
		if item.Date == "" {
			out = append(out, item)
			continue
		}
		if start != "" && item.Date < start {
			continue
		}
		if end != "" && item.Date > end {
			continue
		}
		out = append(out, item)
	}
	return out
}

func sortByTimestampDesc(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].TimestampMs > items[j].TimestampMs
	})
}

func defaultString(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}
