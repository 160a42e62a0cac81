package scraper

import (
	"net/http"
	"net/url"
	"strings"
)

// isProxyHost reports whether the feed is served by an RSSHub instance, a
// feed-generating proxy whose failures have well-known causes.
func isProxyHost(feedURL string) bool {
	u, err := url.Parse(feedURL)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(u.Hostname()), "rsshub")
}

func proxyStatusHint(status int) string {
	switch status {
	case http.StatusForbidden:
		return "RSSHub refused the request (403). The public instance blocks many routes; consider a self-hosted RSSHub."
	case http.StatusNotFound:
		return "RSSHub route not found (404). Check the route path against the RSSHub documentation."
	default:
		return ""
	}
}

// DiagnoseEmpty returns an operator hint for a feed that answered without
// entries, or "" when nothing specific is known about the host.
func (f *RSSFetcher) DiagnoseEmpty(feedURL string) string {
	if !isProxyHost(feedURL) {
		return ""
	}
	return "RSSHub returned no entries. The upstream site may be blocking the instance or the route may need parameters; try the route on another instance."
}
