package news

import (
	"regexp"
	"strings"
)

// Extractor pulls item records out of RSS text with bounded non-greedy
// pattern matching instead of a full XML parser. This is deliberate:
// upstream feeds (and the proxy relays in front of them) regularly
// produce truncated or malformed XML that a strict parser rejects
// outright, while the fields we need survive intact.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

var (
	reItemBlock = regexp.MustCompile(`(?is)<item[\s>].*?</item>`)
	reCDATA     = regexp.MustCompile(`(?is)^<!\[CDATA\[(.*)\]\]>$`)

	fieldRes = map[string]*regexp.Regexp{
		"title":       regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`),
		"link":        regexp.MustCompile(`(?is)<link[^>]*>(.*?)</link>`),
		"pubDate":     regexp.MustCompile(`(?is)<pubDate[^>]*>(.*?)</pubDate>`),
		"description": regexp.MustCompile(`(?is)<description[^>]*>(.*?)</description>`),
		"content":     regexp.MustCompile(`(?is)<content:encoded[^>]*>(.*?)</content:encoded>`),
		"source":      regexp.MustCompile(`(?is)<source[^>]*>(.*?)</source>`),
	}
)

// Run extracts up to limit items from xmlText in feed order, plus the
// channel title as a fallback source name. limit <= 0 means no cap.
// Malformed input degrades to fewer or emptier items; Run never fails.
func (e *Extractor) Run(xmlText string, limit int) (string, []RawItem) {
	blocks := reItemBlock.FindAllString(xmlText, -1)
	if limit > 0 && len(blocks) > limit {
		blocks = blocks[:limit]
	}

	items := make([]RawItem, 0, len(blocks))
	for _, block := range blocks {
		item := RawItem{
			Title:       e.field(block, "title"),
			Link:        e.field(block, "link"),
			PubDate:     e.field(block, "pubDate"),
			Description: e.field(block, "description"),
			Source:      e.field(block, "source"),
		}
		if item.Description == "" {
			item.Description = e.field(block, "content")
		}
		items = append(items, item)
	}

	return e.channelTitle(xmlText), items
}

func (e *Extractor) field(block, name string) string {
	re, ok := fieldRes[name]
	if !ok {
		return ""
	}
	m := re.FindStringSubmatch(block)
	if m == nil {
		return ""
	}
	return e.unwrapCDATA(strings.TrimSpace(m[1]))
}

// unwrapCDATA prefers the CDATA payload when the field is wrapped.
func (e *Extractor) unwrapCDATA(s string) string {
	if m := reCDATA.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// channelTitle reads the feed-level <title>, looking only before the
// first item so an item title is never mistaken for the channel's.
func (e *Extractor) channelTitle(xmlText string) string {
	head := xmlText
	if loc := reItemBlock.FindStringIndex(xmlText); loc != nil {
		head = xmlText[:loc[0]]
	}

	m := fieldRes["title"].FindStringSubmatch(head)
	if m == nil {
		return ""
	}
	return e.unwrapCDATA(strings.TrimSpace(m[1]))
}
