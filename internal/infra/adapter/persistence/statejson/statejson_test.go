package statejson_test

import (
	"strings"
	"testing"

	"rss-monitor/internal/domain/entity"
	"rss-monitor/internal/infra/adapter/persistence/statejson"

	"github.com/google/go-cmp/cmp"
)

func TestMarshal_Format(t *testing.T) {
	state := entity.SeenState{
		"https://example.com/feed_abc": {Title: "Café <b>", Link: "https://example.com/?a=1&b=2", PushedAt: "2024-01-01T00:00:00Z"},
	}

	data, err := statejson.Marshal(state)
	if err != nil {
		t.Fatalf("Marshal err=%v", err)
	}

	got := string(data)
	if !strings.Contains(got, "\n  \"https://example.com/feed_abc\": {\n    \"title\": \"Café <b>\"") {
		t.Errorf("unexpected layout:\n%s", got)
	}
	if !strings.Contains(got, "a=1&b=2") {
		t.Errorf("ampersand should not be escaped:\n%s", got)
	}
}

func TestUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    entity.SeenState
		wantErr bool
	}{
		{name: "empty", in: "", want: entity.SeenState{}},
		{name: "whitespace", in: " \n", want: entity.SeenState{}},
		{name: "null", in: "null", want: entity.SeenState{}},
		{name: "entries", in: `{"k":{"title":"t","link":"l","pushed_at":"p"}}`,
			want: entity.SeenState{"k": {Title: "t", Link: "l", PushedAt: "p"}}},
		{name: "corrupt", in: `{"k":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := statejson.Unmarshal([]byte(tt.in))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal err=%v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
