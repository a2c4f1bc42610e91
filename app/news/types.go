package news

// RawItem is a feed entry as extracted from RSS text, before cleanup.
// Fields may be empty and may still contain HTML markup or entities.
type RawItem struct {
	Title       string
	Link        string
	PubDate     string
	Description string
	Source      string
}

// Item is a normalized, classified news record. TimestampMs is a sort
// key only and is never serialized.
type Item struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"`
	Date   string `json:"date"` // YYYY-MM-DD, empty when pubDate is unparsable
	Body   string `json:"body"`

	Region      string `json:"region"`
	Type        string `json:"type"`
	IsRFP       bool   `json:"rfp"`
	Institution string `json:"inst"`
	AssetClass  string `json:"asset"`

	RegionLabel string `json:"regionLabel"`
	TypeLabel   string `json:"typeLabel"`
	InstLabel   string `json:"instLabel"`
	AssetLabel  string `json:"assetLabel"`

	TimestampMs int64 `json:"-"`
}

// Payload is the aggregate endpoint response envelope. It is always
// success-shaped: a total aggregation failure is reported through the
// Error field, never as a transport-level failure.
type Payload struct {
	UpdatedAt string `json:"updatedAt"`
	Items     []Item `json:"items"`
	Error     string `json:"error,omitempty"`
}

// SearchResult is the single-query search endpoint response body.
type SearchResult struct {
	Items  []Item `json:"items"`
	Cached bool   `json:"cached,omitempty"`
}

// SearchParams carries the single-query search parameters. Zero values
// fall back to English/US locale and the default limit.
type SearchParams struct {
	Q     string
	HL    string
	GL    string
	CEID  string
	Limit int
	Start string // YYYY-MM-DD, inclusive
	End   string // YYYY-MM-DD, inclusive
}

// Configuration types

type Query struct {
	Name    string      `yaml:"-"` // Derived from filename (without .yml extension)
	Region  string      `yaml:"region"`
	Q       string      `yaml:"q"`
	Locale  QueryLocale `yaml:"locale"`
	Enabled bool        `yaml:"enabled"`
}

type QueryLocale struct {
	HL   string `yaml:"hl"`
	GL   string `yaml:"gl"`
	CEID string `yaml:"ceid"`
}
