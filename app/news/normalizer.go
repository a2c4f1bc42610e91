package news

import (
	"html"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/araddon/dateparse"
	"golang.org/x/text/unicode/norm"
)

var reTag = regexp.MustCompile(`<[^>]*>`)

// StripHTML replaces tag markup with spaces, collapses whitespace and
// trims. It does not decode entities; see CleanText.
func StripHTML(s string) string {
	return collapseWhitespace(reTag.ReplaceAllString(s, " "))
}

// DecodeEntities decodes HTML named and numeric entities.
func DecodeEntities(s string) string {
	return html.UnescapeString(s)
}

// CleanText turns a raw feed field into display text: entities decoded
// first so markup hidden inside them is also stripped.
func CleanText(s string) string {
	return StripHTML(DecodeEntities(s))
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Query parameters dropped during URL canonicalization. Any utm_*
// parameter is dropped regardless of this list.
var trackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"gclid", "fbclid", "mc_cid", "mc_eid", "ref", "ref_src",
}

// CanonicalizeURL strips tracking query parameters and the fragment so
// the URL can serve as a stable identity key. On parse failure the
// trimmed original is returned unchanged; this never fails.
func CanonicalizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	u, err := url.Parse(trimmed)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return trimmed
	}

	q := u.Query()
	for _, p := range trackingParams {
		q.Del(p)
	}
	for k := range q {
		if strings.HasPrefix(k, "utm_") {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()
	u.Fragment = ""

	return u.String()
}

// NormalizeTitle produces the comparison form of a title used for
// dedup keys: NFKC-folded, lowercased, quotes removed, every
// non-letter/non-digit rune replaced with a space, whitespace
// collapsed. Not used for display.
func NormalizeTitle(title string) string {
	s := strings.ToLower(norm.NFKC.String(title))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '"' || r == '\'' || r == '“' || r == '”':
			// quotes dropped, not replaced with a space
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	return collapseWhitespace(b.String())
}

// ToISODate parses a feed-native date string permissively and returns
// the UTC calendar day plus the epoch milliseconds used for sorting.
// Unparsable input yields ("", 0); downstream treats an empty date as
// the "unknown day" bucket.
func ToISODate(pubDate string) (string, int64) {
	s := strings.TrimSpace(pubDate)
	if s == "" {
		return "", 0
	}

	t, err := dateparse.ParseAny(s)
	if err != nil {
		return "", 0
	}

	utc := t.UTC()
	return utc.Format("2006-01-02"), utc.UnixMilli()
}

// NormalizeItem converts an extracted RawItem into a cleaned Item.
// Classifier tags are assigned separately.
func NormalizeItem(raw RawItem, fallbackSource string) Item {
	source := CleanText(raw.Source)
	if source == "" {
		source = fallbackSource
	}

	date, ts := ToISODate(raw.PubDate)

	return Item{
		Title:       CleanText(raw.Title),
		URL:         CanonicalizeURL(strings.TrimSpace(DecodeEntities(raw.Link))),
		Source:      source,
		Date:        date,
		Body:        CleanText(raw.Description),
		TimestampMs: ts,
	}
}
