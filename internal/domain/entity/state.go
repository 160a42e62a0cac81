package entity

import "time"

// SeenEntry records one successfully delivered article.
type SeenEntry struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	PushedAt string `json:"pushed_at"`
}

// NewSeenEntry creates an entry stamped with the given delivery time.
func NewSeenEntry(a Article, pushedAt time.Time) SeenEntry {
	return SeenEntry{
		Title:    a.Title,
		Link:     a.Link,
		PushedAt: pushedAt.Format(time.RFC3339),
	}
}

// SeenState maps composite keys to delivered entries. It is the only
// persistent record the monitor keeps.
type SeenState map[string]SeenEntry

// Has reports whether key was already delivered.
func (s SeenState) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Clone returns an independent copy. A nil state clones to an empty one.
func (s SeenState) Clone() SeenState {
	out := make(SeenState, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Merge returns a new state holding s overlaid with diff. Neither input is modified.
func (s SeenState) Merge(diff SeenState) SeenState {
	out := s.Clone()
	for k, v := range diff {
		out[k] = v
	}
	return out
}
