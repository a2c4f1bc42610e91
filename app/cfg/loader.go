package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Application configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl      string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://news.example.com)"`
	FeedsDir     string `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing feed query configuration files (built-in defaults used when empty)"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for the admin endpoints (optional)"`

	// Pipeline knobs
	ResultCap           int     `long:"result-cap" env:"RESULT_CAP" default:"220" description:"Maximum number of items returned by the aggregate endpoint"`
	SimilarityThreshold float64 `long:"similarity-threshold" env:"SIMILARITY_THRESHOLD" default:"0.62" description:"Jaccard threshold for same-day near-duplicate clustering (0.55 aggressive - 0.70 strict)"`
	MinTokens           int     `long:"min-tokens" env:"MIN_TOKENS" default:"6" description:"Minimum token count before an item participates in similarity clustering"`
	KeepPerCluster      int     `long:"keep-per-cluster" env:"KEEP_PER_CLUSTER" default:"1" description:"Representatives kept per near-duplicate cluster"`
	CacheTTL            int     `long:"cache-ttl" env:"CACHE_TTL" default:"180" description:"Aggregate payload cache TTL in seconds"`
	SearchCacheTTL      int     `long:"search-cache-ttl" env:"SEARCH_CACHE_TTL" default:"600" description:"Per-query search cache TTL in seconds"`
	DirectTimeout       int     `long:"direct-timeout" env:"DIRECT_TIMEOUT" default:"4500" description:"Direct fetch attempt timeout in milliseconds"`
	ProxyTimeout        int     `long:"proxy-timeout" env:"PROXY_TIMEOUT" default:"4500" description:"Fast proxy fetch attempt timeout in milliseconds"`
	SlowProxyTimeout    int     `long:"slow-proxy-timeout" env:"SLOW_PROXY_TIMEOUT" default:"9000" description:"Slow proxy fetch attempt timeout in milliseconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"GlobalTide/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Asia/Seoul)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Port:                raw.Port,
		BaseUrl:             raw.BaseUrl,
		FeedsDir:            raw.FeedsDir,
		APIAccessKey:        raw.APIAccessKey,
		ResultCap:           raw.ResultCap,
		SimilarityThreshold: raw.SimilarityThreshold,
		MinTokens:           raw.MinTokens,
		KeepPerCluster:      raw.KeepPerCluster,
		CacheTTL:            raw.CacheTTL,
		SearchCacheTTL:      raw.SearchCacheTTL,
		DirectTimeout:       raw.DirectTimeout,
		ProxyTimeout:        raw.ProxyTimeout,
		SlowProxyTimeout:    raw.SlowProxyTimeout,
		UserAgent:           raw.UserAgent,
		Timezone:            raw.Timezone,
		Debug:               raw.Debug,
		Version:             GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
