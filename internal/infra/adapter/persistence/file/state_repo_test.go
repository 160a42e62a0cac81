package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"rss-monitor/internal/domain/entity"
	"rss-monitor/internal/infra/adapter/persistence/file"
)

func sampleState() entity.SeenState {
	return entity.SeenState{
		"https://example.com/feed_c984d06aafbecf6bc55569f964148ea3": {
			Title:    "Hello",
			Link:     "https://example.com",
			PushedAt: "2024-01-01T00:00:00Z",
		},
	}
}

func TestStateRepo_LoadMissingFile(t *testing.T) {
	repo := file.NewStateRepo(filepath.Join(t.TempDir(), "state.json"))

	got, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty state, got %v", got)
	}
}

func TestStateRepo_SaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	repo := file.NewStateRepo(path)
	want := sampleState()

	if err := repo.Save(context.Background(), want); err != nil {
		t.Fatalf("Save err=%v", err)
	}
	got, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestStateRepo_SaveReplacesAndLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	repo := file.NewStateRepo(path)

	if err := repo.Save(context.Background(), sampleState()); err != nil {
		t.Fatalf("first Save err=%v", err)
	}
	if err := repo.Save(context.Background(), entity.SeenState{}); err != nil {
		t.Fatalf("second Save err=%v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "state.json" {
		t.Fatalf("unexpected directory contents: %v", entries)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "{}\n" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestStateRepo_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := file.NewStateRepo(path).Load(context.Background())
	if err == nil {
		t.Fatal("expected error for corrupt state file")
	}
}
