package store

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/aluiziolira/go-scrape-watches/models"
)

func TestProgressLoadMissing(t *testing.T) {
	s := NewProgressStore(t.TempDir())

	cursor := s.Load("Rolex")
	if cursor.CurrentPage != 1 {
		t.Errorf("CurrentPage = %d, want 1", cursor.CurrentPage)
	}
	if len(cursor.ProcessedURLs) != 0 {
		t.Errorf("ProcessedURLs = %v, want empty", cursor.ProcessedURLs)
	}
}

func TestProgressLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rolex_progress.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	s := NewProgressStore(dir)
	cursor := s.Load("Rolex")
	if cursor.CurrentPage != 1 || len(cursor.ProcessedURLs) != 0 {
		t.Fatalf("corrupt file should yield fresh cursor, got %+v", cursor)
	}
}

func TestProgressRoundtrip(t *testing.T) {
	dir := t.TempDir()
	s := NewProgressStore(dir)

	saved := &models.Cursor{
		CurrentPage: 4,
		ProcessedURLs: []string{
			"https://www.chrono24.com/rolex/listing-2.htm",
			"https://www.chrono24.com/rolex/listing-1.htm",
		},
	}
	if err := s.Save("Rolex", saved); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded := s.Load("Rolex")
	if loaded.CurrentPage != 4 {
		t.Errorf("CurrentPage = %d, want 4", loaded.CurrentPage)
	}
	want := []string{
		"https://www.chrono24.com/rolex/listing-1.htm",
		"https://www.chrono24.com/rolex/listing-2.htm",
	}
	if !reflect.DeepEqual(loaded.ProcessedURLs, want) {
		t.Errorf("ProcessedURLs = %v, want sorted %v", loaded.ProcessedURLs, want)
	}
}

func TestProgressSaveOverwritesAtomically(t *testing.T) {
	dir := t.TempDir()
	s := NewProgressStore(dir)

	if err := s.Save("Rolex", &models.Cursor{CurrentPage: 2}); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}
	if err := s.Save("Rolex", &models.Cursor{CurrentPage: 5}); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	if got := s.Load("Rolex").CurrentPage; got != 5 {
		t.Errorf("CurrentPage after overwrite = %d, want 5", got)
	}

	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp-*"))
	if err != nil {
		t.Fatalf("glob temp files: %v", err)
	}
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestProgressClampsPage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rolex_progress.json")
	if err := os.WriteFile(path, []byte(`{"current_page":0,"processed_urls":[]}`), 0o644); err != nil {
		t.Fatalf("seed progress file: %v", err)
	}

	s := NewProgressStore(dir)
	if got := s.Load("Rolex").CurrentPage; got != 1 {
		t.Errorf("CurrentPage = %d, want clamped to 1", got)
	}
}

func TestBrandSlug(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single word",
			input:    "Rolex",
			expected: "rolex",
		},
		{
			name:     "spaces to underscores",
			input:    "Patek Philippe",
			expected: "patek_philippe",
		},
		{
			name:     "surrounding whitespace",
			input:    "  Omega ",
			expected: "omega",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BrandSlug(tt.input); got != tt.expected {
				t.Errorf("BrandSlug(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
