package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/aluiziolira/go-scrape-watches/models"
)

// ProgressStore keeps one resume cursor per brand as a small JSON file.
type ProgressStore struct {
	dir string
}

// NewProgressStore returns a store rooted at dir. The directory is created
// lazily on first save.
func NewProgressStore(dir string) *ProgressStore {
	return &ProgressStore{dir: dir}
}

func (s *ProgressStore) path(brandName string) string {
	return filepath.Join(s.dir, BrandSlug(brandName)+"_progress.json")
}

// Load returns the cursor for a brand. A missing or unreadable file yields
// a fresh cursor; corruption is logged, never fatal.
func (s *ProgressStore) Load(brandName string) *models.Cursor {
	path := s.path(brandName)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("reading progress file, starting fresh",
				slog.String("brand", brandName),
				slog.String("path", path),
				slog.Any("error", err),
			)
		}
		return models.NewCursor()
	}

	cursor := &models.Cursor{}
	if err := json.Unmarshal(data, cursor); err != nil {
		slog.Error("corrupt progress file, starting fresh",
			slog.String("brand", brandName),
			slog.String("path", path),
			slog.Any("error", err),
		)
		return models.NewCursor()
	}
	if cursor.CurrentPage < 1 {
		cursor.CurrentPage = 1
	}
	return cursor
}

// Save atomically overwrites the brand's cursor. The URL list is persisted
// sorted so successive saves diff cleanly.
func (s *ProgressStore) Save(brandName string, cursor *models.Cursor) error {
	urls := make([]string, len(cursor.ProcessedURLs))
	copy(urls, cursor.ProcessedURLs)
	sort.Strings(urls)

	data, err := json.Marshal(&models.Cursor{
		CurrentPage:   cursor.CurrentPage,
		ProcessedURLs: urls,
	})
	if err != nil {
		return fmt.Errorf("encode progress for %s: %w", brandName, err)
	}
	if err := writeFileAtomic(s.path(brandName), data); err != nil {
		return fmt.Errorf("save progress for %s: %w", brandName, err)
	}
	return nil
}
