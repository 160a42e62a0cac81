package scraper

import (
	"html"
	"slices"
	"strings"
	"time"

	"rss-monitor/internal/domain/entity"
	"rss-monitor/internal/utils/text"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// normalizeItem converts a parsed feed entry into an article.
func normalizeItem(it *gofeed.Item, feedURL string, summaryLimit int) entity.Article {
	title := plainText(it.Title)
	if title == "" {
		title = entity.UntitledPlaceholder
	}

	link := strings.TrimSpace(it.Link)
	if link == "" && len(it.Links) > 0 {
		link = strings.TrimSpace(it.Links[0])
	}

	published := strings.TrimSpace(it.Published)
	if published == "" {
		published = strings.TrimSpace(it.Updated)
	}

	summary := plainText(it.Description)
	if summary == "" {
		summary = plainText(it.Content)
	}

	return entity.Article{
		Title:     title,
		Link:      link,
		Published: published,
		Summary:   text.Truncate(summary, summaryLimit),
		Source:    feedURL,
	}
}

// plainText strips markup, unescapes leftover entities and collapses whitespace.
func plainText(s string) string {
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, "<&") {
		s = stripTags(s)
	}
	return strings.Join(strings.Fields(s), " ")
}

func stripTags(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return html.UnescapeString(s)
	}

	var b strings.Builder
	for _, n := range doc.Nodes {
		collectText(&b, n)
	}
	// Double-escaped input such as "&amp;eacute;" survives the HTML parser once.
	return html.UnescapeString(b.String())
}

func collectText(b *strings.Builder, n *xhtml.Node) {
	switch n.Type {
	case xhtml.TextNode:
		b.WriteString(n.Data)
		return
	case xhtml.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Iframe:
			return
		}
	}

	block := n.Type == xhtml.ElementNode && isBlock(n.DataAtom)
	if block {
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}
	if block {
		b.WriteByte(' ')
	}
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Br, atom.Li, atom.Ul, atom.Ol, atom.Blockquote,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Tr, atom.Td, atom.Th, atom.Table, atom.Pre, atom.Hr,
		atom.Section, atom.Article, atom.Header, atom.Footer, atom.Figure, atom.Figcaption:
		return true
	}
	return false
}

// newestFirst sorts entries by date, newest first, when every entry carries a
// parseable date. Otherwise document order is kept.
func newestFirst(items []*gofeed.Item) []*gofeed.Item {
	dates := make(map[*gofeed.Item]time.Time, len(items))
	for _, it := range items {
		if it == nil {
			return items
		}
		switch {
		case it.PublishedParsed != nil:
			dates[it] = *it.PublishedParsed
		case it.UpdatedParsed != nil:
			dates[it] = *it.UpdatedParsed
		default:
			return items
		}
	}

	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b *gofeed.Item) int {
		return dates[b].Compare(dates[a])
	})
	return sorted
}
