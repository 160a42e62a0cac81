package scraper_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"rss-monitor/internal/domain/entity"
	"rss-monitor/internal/infra/scraper"
	"rss-monitor/internal/resilience/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastRepair retries timeouts without waiting.
func fastRepair() retry.Policy {
	return retry.Policy{MaxAttempts: 3, Retryable: retry.IsTimeout}
}

func newFetcher() *scraper.RSSFetcher {
	return scraper.NewRSSFetcher(scraper.DefaultConfig(), fastRepair())
}

func serveFeed(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func rssDoc(items string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test Description</description>
` + items + `
  </channel>
</rss>`
}

func TestRSSFetcher_Fetch_Success(t *testing.T) {
	srv := serveFeed(t, rssDoc(`
    <item>
      <title>Article 1</title>
      <link>https://example.com/article1</link>
      <description>Description 1</description>
      <pubDate>Mon, 01 Jan 2024 00:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Article 2</title>
      <link>https://example.com/article2</link>
      <description>Description 2</description>
      <pubDate>Tue, 02 Jan 2024 00:00:00 +0000</pubDate>
    </item>`))

	articles, err := newFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, articles, 2)

	// newest first
	assert.Equal(t, "Article 2", articles[0].Title)
	assert.Equal(t, "https://example.com/article2", articles[0].Link)
	assert.Equal(t, "Description 2", articles[0].Summary)
	assert.Equal(t, "Tue, 02 Jan 2024 00:00:00 +0000", articles[0].Published)
	assert.Equal(t, srv.URL, articles[0].Source)
	assert.Equal(t, "Article 1", articles[1].Title)
}

func TestRSSFetcher_Fetch_SendsBrowserHeaders(t *testing.T) {
	var ua, accept atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua.Store(r.Header.Get("User-Agent"))
		accept.Store(r.Header.Get("Accept"))
		_, _ = w.Write([]byte(rssDoc("")))
	}))
	defer srv.Close()

	_, err := newFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Contains(t, ua.Load().(string), "Mozilla/5.0")
	assert.Contains(t, accept.Load().(string), "application/rss+xml")
}

func TestRSSFetcher_Fetch_Atom(t *testing.T) {
	srv := serveFeed(t, `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Test Atom Feed</title>
  <link href="https://example.com"/>
  <updated>2024-01-01T00:00:00Z</updated>
  <entry>
    <title>Atom Article 1</title>
    <link href="https://example.com/atom1"/>
    <id>urn:atom1</id>
    <updated>2024-01-01T00:00:00Z</updated>
    <content type="html">&lt;p&gt;Atom &lt;b&gt;content&lt;/b&gt;&lt;/p&gt;</content>
  </entry>
</feed>`)

	articles, err := newFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, articles, 1)

	a := articles[0]
	assert.Equal(t, "Atom Article 1", a.Title)
	assert.Equal(t, "https://example.com/atom1", a.Link)
	// published falls back to updated, summary falls back to content
	assert.Equal(t, "2024-01-01T00:00:00Z", a.Published)
	assert.Equal(t, "Atom content", a.Summary)
}

func TestRSSFetcher_Fetch_KeepsDocumentOrderWhenUndated(t *testing.T) {
	srv := serveFeed(t, rssDoc(`
    <item><title>First</title><link>https://example.com/1</link><pubDate>Mon, 01 Jan 2024 00:00:00 +0000</pubDate></item>
    <item><title>Second</title><link>https://example.com/2</link></item>
    <item><title>Third</title><link>https://example.com/3</link><pubDate>Wed, 03 Jan 2024 00:00:00 +0000</pubDate></item>`))

	articles, err := newFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, articles, 3)
	assert.Equal(t, "First", articles[0].Title)
	assert.Equal(t, "Second", articles[1].Title)
	assert.Equal(t, "Third", articles[2].Title)
}

func TestRSSFetcher_Fetch_CapsAtTenNewest(t *testing.T) {
	var items strings.Builder
	for i := 1; i <= 12; i++ {
		fmt.Fprintf(&items, `<item><title>Item %d</title><link>https://example.com/%d</link><pubDate>%s</pubDate></item>`,
			i, i, fmt.Sprintf("Mon, %02d Jan 2024 00:00:00 +0000", i))
	}
	srv := serveFeed(t, rssDoc(items.String()))

	articles, err := newFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, articles, 10)
	assert.Equal(t, "Item 12", articles[0].Title)
	assert.Equal(t, "Item 3", articles[9].Title)
}

func TestRSSFetcher_Fetch_Normalization(t *testing.T) {
	long := strings.Repeat("é", 250)
	srv := serveFeed(t, rssDoc(`
    <item>
      <title><![CDATA[  <b>Bold</b>   title &amp; more ]]></title>
      <link>https://example.com/a</link>
      <description><![CDATA[<p>First para.</p><script>alert(1)</script><p>Second&nbsp;para.</p>]]></description>
    </item>
    <item>
      <title></title>
      <link>https://example.com/b</link>
      <description>`+long+`</description>
    </item>`))

	articles, err := newFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, articles, 2)

	assert.Equal(t, "Bold title & more", articles[0].Title)
	assert.Equal(t, "First para. Second para.", strings.ReplaceAll(articles[0].Summary, " ", " "))

	assert.Equal(t, entity.UntitledPlaceholder, articles[1].Title)
	assert.Equal(t, 200, len([]rune(articles[1].Summary)))
}

func TestRSSFetcher_Fetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	articles, err := newFetcher().Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Nil(t, articles)

	var fe *entity.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
	assert.Empty(t, fe.Hint)
}

func TestRSSFetcher_Fetch_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newFetcher().Fetch(context.Background(), url)
	require.Error(t, err)

	var fe *entity.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Zero(t, fe.StatusCode)
	assert.False(t, fe.Timeout)
}

func TestRSSFetcher_Fetch_InvalidXMLReturnsEmpty(t *testing.T) {
	srv := serveFeed(t, "this is not a feed")

	articles, err := newFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestRSSFetcher_Fetch_EmptyFeed(t *testing.T) {
	srv := serveFeed(t, rssDoc(""))

	articles, err := newFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestRSSFetcher_Fetch_RepairsUndefinedEntities(t *testing.T) {
	var hits atomic.Int32
	body := rssDoc(`
    <item>
      <title>Hello &madeupentity; World</title>
      <link>https://example.com/broken</link>
      <description>Caf&eacute; &mdash; open</description>
      <pubDate>Mon, 01 Jan 2024 00:00:00 +0000</pubDate>
    </item>`)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	articles, err := newFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, articles, 1)

	assert.Equal(t, int32(2), hits.Load(), "repair path re-downloads the document")
	assert.Equal(t, "Hello World", articles[0].Title)
	assert.Equal(t, "Café — open", articles[0].Summary)
	assert.Equal(t, "https://example.com/broken", articles[0].Link)
}

func TestRSSFetcher_Fetch_RepairFailureFallsBackToOriginalEntries(t *testing.T) {
	var hits atomic.Int32
	body := rssDoc(`
    <item>
      <title>Broken &madeupentity; entry</title>
      <link>https://example.com/fallback</link>
    </item>`)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) > 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	articles, err := newFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "https://example.com/fallback", articles[0].Link)
	// 502 is not a timeout, so the repair download is not retried
	assert.Equal(t, int32(2), hits.Load())
}

func TestRepairEntities(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "known and unknown", in: "Caf&eacute; &unknowntag; test", want: "Café   test"},
		{name: "amp", in: "Tom &amp; Jerry", want: "Tom & Jerry"},
		{name: "nbsp", in: "a&nbsp;b", want: "a b"},
		{name: "quotes", in: "&ldquo;hi&rdquo;", want: "“hi”"},
		{name: "numeric untouched", in: "&#233; &#xE9;", want: "&#233; &#xE9;"},
		{name: "no entities", in: "plain", want: "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scraper.RepairEntities(tt.in))
		})
	}
}

func TestRepairEntities_LeavesNoNamedReferences(t *testing.T) {
	out := scraper.RepairEntities("Caf&eacute; &unknowntag; &copy; &#8212; test")

	assert.NotRegexp(t, `&[a-zA-Z]+;`, out)
	assert.Contains(t, out, "&#8212;")
}
