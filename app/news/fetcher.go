package news

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/globaltide/tidenews/app/cfg"
)

// FetchError reports that every transport tier failed for a URL.
type FetchError struct {
	URL      string
	Attempts []string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %s", e.URL, strings.Join(e.Attempts, "; "))
}

type fetchTier struct {
	name    string
	rewrite func(string) string
	timeout time.Duration
}

// Fetcher retrieves raw RSS text with a direct attempt first and a
// fixed ordered list of public relay rewrites as fallback. Upstream
// anti-bot blocks return HTML error pages with status 200, so an
// HTML-looking or too-short body counts as a failure on any tier.
type Fetcher struct {
	client    *http.Client
	userAgent string
	tiers     []fetchTier
}

func NewFetcher(client *http.Client) *Fetcher {
	c := cfg.Get()

	direct := time.Duration(c.DirectTimeout) * time.Millisecond
	proxy := time.Duration(c.ProxyTimeout) * time.Millisecond
	slow := time.Duration(c.SlowProxyTimeout) * time.Millisecond

	return &Fetcher{
		client:    client,
		userAgent: c.UserAgent,
		tiers: []fetchTier{
			{name: "direct", rewrite: func(u string) string { return u }, timeout: direct},
			{name: "allorigins", rewrite: func(u string) string {
				return "https://api.allorigins.win/raw?url=" + url.QueryEscape(u)
			}, timeout: proxy},
			{name: "corsproxy", rewrite: func(u string) string {
				return "https://corsproxy.io/?" + url.QueryEscape(u)
			}, timeout: proxy},
			{name: "codetabs", rewrite: func(u string) string {
				return "https://api.codetabs.com/v1/proxy?quest=" + url.QueryEscape(u)
			}, timeout: slow},
		},
	}
}

// Run fetches rawURL, trying each tier in order and returning the
// first body that passes validation. Each attempt is bounded by its
// own timeout; the overall call is bounded by the sum of tier
// timeouts.
func (f *Fetcher) Run(ctx context.Context, rawURL string) (string, error) {
	var attempts []string

	for _, tier := range f.tiers {
		text, err := f.try(ctx, tier, rawURL)
		if err == nil {
			return text, nil
		}
		attempts = append(attempts, fmt.Sprintf("%s: %v", tier.name, err))

		if ctx.Err() != nil {
			break
		}
	}

	return "", &FetchError{URL: rawURL, Attempts: attempts}
}

func (f *Fetcher) try(ctx context.Context, tier fetchTier, rawURL string) (string, error) {
	tierCtx, cancel := context.WithTimeout(ctx, tier.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(tierCtx, http.MethodGet, tier.rewrite(rawURL), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.7")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	text := string(body)
	if len(text) < 80 {
		return "", fmt.Errorf("response too short (%d bytes)", len(text))
	}
	if strings.Contains(strings.ToLower(text), "<html") {
		return "", fmt.Errorf("received an HTML page instead of a feed")
	}

	return text, nil
}
