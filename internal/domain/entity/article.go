// Package entity defines the core domain types of the monitor: feed sources,
// normalized articles, the seen-state that records delivered articles and the
// status reports emitted when a source cannot be read.
package entity

import (
	"crypto/md5" // #nosec G501 -- fingerprint for dedup keys, not a security boundary
	"encoding/hex"
)

// UntitledPlaceholder is used when a feed entry carries no title.
const UntitledPlaceholder = "Untitled"

// Article is a normalized feed entry ready to be rendered.
type Article struct {
	Title string
	Link  string
	// Published is kept verbatim from the feed; its format varies per publisher.
	Published string
	// Summary is plain text, at most 200 runes.
	Summary string
	// Source is the URL of the feed the article came from.
	Source string
}

// Identify returns a stable fingerprint for the article: the MD5 hex digest of
// its link, or of title+published when the entry has no link.
//
// Two link-less entries with identical title and published strings collide.
func Identify(a Article) string {
	identifier := a.Link
	if identifier == "" {
		identifier = a.Title + a.Published
	}
	sum := md5.Sum([]byte(identifier)) // #nosec G401
	return hex.EncodeToString(sum[:])
}

// SeenKey builds the composite dedup key {sourceURL}_{identifier}.
func SeenKey(sourceURL string, a Article) string {
	return sourceURL + "_" + Identify(a)
}
