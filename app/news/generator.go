package news

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"time"

	"github.com/globaltide/tidenews/app/cfg"
)

// Generator renders an aggregate payload as a clean RSS 2.0 document
// so the curated stream can feed ordinary readers.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Run(payload Payload) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", "GlobalTide Investor News", 4)
	g.writeElement(&buf, "description", "Aggregated and deduplicated investor news", 4)

	var selfLink string
	if cfg.Get().BaseUrl != "" {
		selfLink = fmt.Sprintf("%s/feeds/investor", cfg.Get().BaseUrl)
	} else {
		selfLink = fmt.Sprintf("http://localhost:%s/feeds/investor", cfg.Get().Port)
	}
	g.writeElement(&buf, "link", selfLink, 4)
	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(selfLink)))

	lastBuildDate := time.Now().UTC()
	if t, err := time.Parse(time.RFC3339, payload.UpdatedAt); err == nil {
		lastBuildDate = t
	}
	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("TideNews/%s", cfg.Get().Version), 4)

	for _, item := range payload.Items {
		g.writeItem(&buf, item)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, item Item) {
	buf.WriteString("    <item>\n")

	if item.URL != "" {
		buf.WriteString(`      <guid isPermaLink="true">`)
		xml.EscapeText(buf, []byte(item.URL))
		buf.WriteString("</guid>\n")
		g.writeElement(buf, "link", item.URL, 6)
	}

	if item.Title != "" {
		g.writeElement(buf, "title", item.Title, 6)
	}

	description := item.Body
	if description == "" {
		description = "No description available"
	}
	g.writeElement(buf, "description", description, 6)

	if item.TimestampMs > 0 {
		pubDate := time.UnixMilli(item.TimestampMs).UTC()
		g.writeElement(buf, "pubDate", pubDate.Format(time.RFC1123Z), 6)
	}

	if item.Source != "" {
		g.writeElement(buf, "source", item.Source, 6)
	}

	for _, category := range []string{item.Region, item.Type, item.Institution, item.AssetClass} {
		if category != "" && category != "all" {
			g.writeElement(buf, "category", category, 6)
		}
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}
