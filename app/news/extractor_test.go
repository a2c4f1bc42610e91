package news

import (
	"testing"
)

const sampleFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
<channel>
<title>"pension fund" - Google News</title>
<link>https://news.google.com/</link>
<item>
<title><![CDATA[Pension fund commits $2B to private credit]]></title>
<link>https://news.example.com/a?utm_source=rss</link>
<pubDate>Mon, 01 Jan 2024 09:00:00 GMT</pubDate>
<description><![CDATA[The fund said it would expand its allocation.]]></description>
<source url="https://example.com">Example Wire</source>
</item>
<item>
<title>Insurance group weighs annuity shift</title>
<link>https://news.example.com/b</link>
<pubDate>Mon, 01 Jan 2024 10:00:00 GMT</pubDate>
<description>Second item body</description>
</item>
<item>
<title>Third headline</title>
<link>https://news.example.com/c</link>
</item>
</channel>
</rss>`

func TestExtractorRun(t *testing.T) {
	e := NewExtractor()

	channelTitle, items := e.Run(sampleFeedXML, 0)

	if channelTitle != `"pension fund" - Google News` {
		t.Errorf("Unexpected channel title: %q", channelTitle)
	}
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}

	first := items[0]
	if first.Title != "Pension fund commits $2B to private credit" {
		t.Errorf("Unexpected title: %q", first.Title)
	}
	if first.Link != "https://news.example.com/a?utm_source=rss" {
		t.Errorf("Unexpected link: %q", first.Link)
	}
	if first.PubDate != "Mon, 01 Jan 2024 09:00:00 GMT" {
		t.Errorf("Unexpected pubDate: %q", first.PubDate)
	}
	if first.Description != "The fund said it would expand its allocation." {
		t.Errorf("Unexpected description: %q", first.Description)
	}
	if first.Source != "Example Wire" {
		t.Errorf("Unexpected source: %q", first.Source)
	}

	if items[2].PubDate != "" || items[2].Description != "" {
		t.Errorf("Expected missing fields to be empty, got %+v", items[2])
	}
}

func TestExtractorLimit(t *testing.T) {
	e := NewExtractor()

	_, items := e.Run(sampleFeedXML, 2)

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0].Link != "https://news.example.com/a?utm_source=rss" {
		t.Errorf("Expected feed order preserved, got %q", items[0].Link)
	}
}

func TestExtractorContentEncodedFallback(t *testing.T) {
	e := NewExtractor()

	xml := `<rss><channel><title>Feed</title>
<item>
<title>Headline</title>
<link>https://news.example.com/x</link>
<content:encoded><![CDATA[Full body text]]></content:encoded>
</item>
</channel></rss>`

	_, items := e.Run(xml, 0)
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if items[0].Description != "Full body text" {
		t.Errorf("Expected content:encoded fallback, got %q", items[0].Description)
	}
}

func TestExtractorMalformedXML(t *testing.T) {
	e := NewExtractor()

	// The second item is truncated mid-element; only the closed item
	// should come back.
	xml := `<rss><channel><title>Feed</title>
<item>
<title>Complete item</title>
<link>https://news.example.com/ok</link>
</item>
<item>
<title>Truncated it`

	channelTitle, items := e.Run(xml, 0)

	if channelTitle != "Feed" {
		t.Errorf("Unexpected channel title: %q", channelTitle)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if items[0].Title != "Complete item" {
		t.Errorf("Unexpected title: %q", items[0].Title)
	}
}

func TestExtractorEmptyInput(t *testing.T) {
	e := NewExtractor()

	channelTitle, items := e.Run("", 0)
	if channelTitle != "" || len(items) != 0 {
		t.Errorf("Expected nothing from empty input, got %q / %d items", channelTitle, len(items))
	}

	channelTitle, items = e.Run("plain text, no markup", 0)
	if channelTitle != "" || len(items) != 0 {
		t.Errorf("Expected nothing from non-XML input, got %q / %d items", channelTitle, len(items))
	}
}

func TestExtractorItemTitleNotMistakenForChannel(t *testing.T) {
	e := NewExtractor()

	xml := `<rss><channel>
<item><title>Only item title</title><link>https://a</link></item>
</channel></rss>`

	channelTitle, items := e.Run(xml, 0)
	if channelTitle != "" {
		t.Errorf("Expected empty channel title, got %q", channelTitle)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
}
