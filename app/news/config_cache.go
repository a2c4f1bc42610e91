package news

import (
	"embed"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/*.yml
var defaultQueriesFS embed.FS

// ConfigCache loads and holds the feed query configurations. Each
// query lives in its own .yml file, named after the file. When the
// feeds directory is absent or empty the embedded default query set is
// used, so the binary runs with no external files.
type ConfigCache struct {
	feedsDir string
	cache    map[string]*Query
	mu       sync.RWMutex
}

func NewConfigCache(feedsDir string) *ConfigCache {
	return &ConfigCache{
		feedsDir: feedsDir,
		cache:    make(map[string]*Query),
	}
}

func (cc *ConfigCache) Run() error {
	files, _ := filepath.Glob(filepath.Join(cc.feedsDir, "*.yml"))

	if len(files) == 0 {
		return cc.loadDefaults()
	}

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".yml")

		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		if err := cc.loadQuery(name, data); err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}
	}

	return nil
}

func (cc *ConfigCache) loadDefaults() error {
	entries, err := defaultQueriesFS.ReadDir("defaults")
	if err != nil {
		return fmt.Errorf("failed to read embedded queries: %w", err)
	}

	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".yml")

		data, err := defaultQueriesFS.ReadFile("defaults/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read embedded query %s: %w", entry.Name(), err)
		}
		if err := cc.loadQuery(name, data); err != nil {
			return fmt.Errorf("error loading embedded query %s: %w", entry.Name(), err)
		}
	}

	slog.Debug("Loaded embedded default feed queries", "count", len(entries))
	return nil
}

func (cc *ConfigCache) loadQuery(name string, data []byte) error {
	var query Query
	if err := yaml.Unmarshal(data, &query); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	query.Name = name

	if query.Region == "" {
		query.Region = "all"
	}
	if query.Locale.HL == "" {
		query.Locale.HL = "en"
	}
	if query.Locale.GL == "" {
		query.Locale.GL = "US"
	}
	if query.Locale.CEID == "" {
		query.Locale.CEID = "US:en"
	}

	if err := validateQuery(&query); err != nil {
		return fmt.Errorf("invalid query %s: %w", name, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[name] = &query

	slog.Debug("Feed query loaded", "query", name, "region", query.Region, "enabled", query.Enabled)
	return nil
}

func validateQuery(query *Query) error {
	if strings.TrimSpace(query.Q) == "" {
		return fmt.Errorf("query string is required")
	}

	switch query.Region {
	case "korea", "global", "all":
	default:
		return fmt.Errorf("invalid region: %s", query.Region)
	}

	return nil
}

// GetEnabledQueries returns enabled queries in stable name order so
// aggregation passes are deterministic.
func (cc *ConfigCache) GetEnabledQueries() []*Query {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	queries := make([]*Query, 0, len(cc.cache))
	for _, q := range cc.cache {
		if q.Enabled {
			queries = append(queries, q)
		}
	}
	sort.Slice(queries, func(i, j int) bool { return queries[i].Name < queries[j].Name })
	return queries
}

func (cc *ConfigCache) GetQueryCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

// GoogleNewsURL builds the Google News RSS search URL for a query
// string and locale against the given base endpoint.
func GoogleNewsURL(base, q, hl, gl, ceid string) string {
	return fmt.Sprintf("%s?q=%s&hl=%s&gl=%s&ceid=%s",
		base,
		url.QueryEscape(q),
		url.QueryEscape(hl),
		url.QueryEscape(gl),
		url.QueryEscape(ceid))
}
