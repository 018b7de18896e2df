package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// SnapshotSink writes diagnostic artifacts for failed extractions into the
// errors directory. A bounded LRU of recently dumped keys keeps a page that
// fails the same way on every retry from flooding the disk.
type SnapshotSink struct {
	dir  string
	seen *lru.Cache[string, struct{}]
}

// NewSnapshotSink returns a sink writing under dir, remembering the last
// limit dump keys for duplicate suppression.
func NewSnapshotSink(dir string, limit int) (*SnapshotSink, error) {
	seen, err := lru.New[string, struct{}](limit)
	if err != nil {
		return nil, fmt.Errorf("snapshot cache: %w", err)
	}
	return &SnapshotSink{dir: dir, seen: seen}, nil
}

// SaveMarkup persists a full page-markup dump. reason becomes the file
// prefix ("empty_name", "empty_listing"); key identifies the failure for
// duplicate suppression, usually the page URL. Returns the written path,
// or "" when an identical dump was recently saved.
func (s *SnapshotSink) SaveMarkup(brandName, reason, key, markup string) (string, error) {
	dedupe := reason + "|" + key
	if key != "" {
		if _, ok := s.seen.Get(dedupe); ok {
			return "", nil
		}
	}

	if err := ensureDir(s.dir); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s_%s_%d.html", reason, BrandSlug(brandName), time.Now().Unix())
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, []byte(markup), 0o644); err != nil {
		return "", fmt.Errorf("write markup snapshot: %w", err)
	}

	if key != "" {
		s.seen.Add(dedupe, struct{}{})
	}
	return path, nil
}

// SaveScreenshot persists a page screenshot for a brand's listing page.
// The name is stable per brand and page, so retries overwrite in place.
func (s *SnapshotSink) SaveScreenshot(brandName string, pageNum int, png []byte) (string, error) {
	if err := ensureDir(s.dir); err != nil {
		return "", err
	}
	name := fmt.Sprintf("screenshot_%s_%d.png", BrandSlug(brandName), pageNum)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	return path, nil
}
