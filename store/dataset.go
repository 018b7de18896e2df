package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/aluiziolira/go-scrape-watches/models"
)

// DatasetStore owns the single JSON array holding every extracted record.
// Records are keyed by URL; appends are idempotent.
type DatasetStore struct {
	path string
	mu   sync.Mutex
}

// NewDatasetStore returns a store writing to path.
func NewDatasetStore(path string) *DatasetStore {
	return &DatasetStore{path: path}
}

// Load reads the current dataset. A missing file is an empty dataset;
// a corrupt file is logged and treated as empty, never fatal.
func (s *DatasetStore) Load() []*models.Watch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *DatasetStore) loadLocked() []*models.Watch {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("reading dataset file, starting fresh",
				slog.String("path", s.path),
				slog.Any("error", err),
			)
		}
		return nil
	}

	var watches []*models.Watch
	if err := json.Unmarshal(data, &watches); err != nil {
		slog.Error("corrupt dataset file, starting fresh",
			slog.String("path", s.path),
			slog.Any("error", err),
		)
		return nil
	}
	return watches
}

// Append merges records into the dataset, dropping any whose URL is
// already stored. When nothing new remains the file is left untouched.
// Returns the number of records actually added.
func (s *DatasetStore) Append(watches []*models.Watch) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.loadLocked()
	seen := make(map[string]struct{}, len(existing))
	for _, w := range existing {
		seen[w.URL] = struct{}{}
	}

	added := make([]*models.Watch, 0, len(watches))
	for _, w := range watches {
		if w == nil {
			continue
		}
		if _, ok := seen[w.URL]; ok {
			continue
		}
		seen[w.URL] = struct{}{}
		added = append(added, w)
	}

	if len(added) == 0 {
		slog.Debug("no new records, skipping dataset write", slog.String("path", s.path))
		return 0, nil
	}

	union := append(existing, added...)
	data, err := json.MarshalIndent(union, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encode dataset: %w", err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return 0, fmt.Errorf("save dataset: %w", err)
	}

	slog.Info("dataset updated",
		slog.Int("added", len(added)),
		slog.Int("total", len(union)),
		slog.String("path", s.path),
	)
	return len(added), nil
}
