package entity

import "strings"

// Source is one configured feed.
type Source struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// DisplayName returns the configured name, falling back to the URL.
func (s Source) DisplayName() string {
	if name := strings.TrimSpace(s.Name); name != "" {
		return name
	}
	return s.URL
}

// HasURL reports whether the source can be fetched at all.
func (s Source) HasURL() bool {
	return strings.TrimSpace(s.URL) != ""
}
