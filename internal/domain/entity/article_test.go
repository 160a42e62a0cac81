package entity

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var hexDigest = regexp.MustCompile(`^[0-9a-f]{32}$`)

func TestIdentify_SameLinkSameID(t *testing.T) {
	a := Article{Title: "A", Link: "https://example.com/post/1", Published: "Mon, 01 Jan 2024", Summary: "one"}
	b := Article{Title: "B", Link: "https://example.com/post/1", Published: "Tue, 02 Jan 2024", Summary: "two"}

	assert.Equal(t, Identify(a), Identify(b))
	assert.Regexp(t, hexDigest, Identify(a))
}

func TestIdentify_FallbackWithoutLink(t *testing.T) {
	tests := []struct {
		name string
		a, b Article
		same bool
	}{
		{
			name: "different titles",
			a:    Article{Title: "First", Published: "2024-01-01"},
			b:    Article{Title: "Second", Published: "2024-01-01"},
			same: false,
		},
		{
			name: "different published",
			a:    Article{Title: "Same", Published: "2024-01-01"},
			b:    Article{Title: "Same", Published: "2024-01-02"},
			same: false,
		},
		{
			name: "identical title and published collide",
			a:    Article{Title: "Same", Published: "2024-01-01", Summary: "x"},
			b:    Article{Title: "Same", Published: "2024-01-01", Summary: "y"},
			same: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.same {
				assert.Equal(t, Identify(tt.a), Identify(tt.b))
			} else {
				assert.NotEqual(t, Identify(tt.a), Identify(tt.b))
			}
		})
	}
}

func TestIdentify_KnownDigest(t *testing.T) {
	// md5("https://example.com")
	assert.Equal(t, "c984d06aafbecf6bc55569f964148ea3", Identify(Article{Link: "https://example.com"}))
}

func TestSeenKey(t *testing.T) {
	a := Article{Link: "https://example.com"}
	assert.Equal(t, "https://example.com/feed_c984d06aafbecf6bc55569f964148ea3", SeenKey("https://example.com/feed", a))
}
