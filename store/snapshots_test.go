package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSnapshotSaveMarkup(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewSnapshotSink(dir, 8)
	if err != nil {
		t.Fatalf("NewSnapshotSink() error = %v", err)
	}

	path, err := sink.SaveMarkup("Rolex", "empty_name", "https://www.chrono24.com/rolex/listing-1.htm", "<html></html>")
	if err != nil {
		t.Fatalf("SaveMarkup() error = %v", err)
	}
	if path == "" {
		t.Fatalf("SaveMarkup() skipped the first dump")
	}
	if !strings.HasPrefix(filepath.Base(path), "empty_name_rolex_") {
		t.Errorf("snapshot name = %q, want empty_name_rolex_ prefix", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if string(data) != "<html></html>" {
		t.Errorf("snapshot content = %q", data)
	}
}

func TestSnapshotSuppressesDuplicates(t *testing.T) {
	sink, err := NewSnapshotSink(t.TempDir(), 8)
	if err != nil {
		t.Fatalf("NewSnapshotSink() error = %v", err)
	}

	key := "https://www.chrono24.com/rolex/listing-1.htm"
	first, err := sink.SaveMarkup("Rolex", "empty_name", key, "<html>1</html>")
	if err != nil {
		t.Fatalf("first SaveMarkup() error = %v", err)
	}
	if first == "" {
		t.Fatalf("first dump unexpectedly suppressed")
	}

	second, err := sink.SaveMarkup("Rolex", "empty_name", key, "<html>2</html>")
	if err != nil {
		t.Fatalf("second SaveMarkup() error = %v", err)
	}
	if second != "" {
		t.Errorf("duplicate dump not suppressed, wrote %q", second)
	}

	other, err := sink.SaveMarkup("Rolex", "empty_listing", key, "<html>3</html>")
	if err != nil {
		t.Fatalf("different-reason SaveMarkup() error = %v", err)
	}
	if other == "" {
		t.Errorf("different reason should not be suppressed")
	}
}

func TestSnapshotSaveScreenshot(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewSnapshotSink(dir, 8)
	if err != nil {
		t.Fatalf("NewSnapshotSink() error = %v", err)
	}

	path, err := sink.SaveScreenshot("Patek Philippe", 3, []byte{0x89, 0x50, 0x4e, 0x47})
	if err != nil {
		t.Fatalf("SaveScreenshot() error = %v", err)
	}
	if filepath.Base(path) != "screenshot_patek_philippe_3.png" {
		t.Errorf("screenshot name = %q, want screenshot_patek_philippe_3.png", filepath.Base(path))
	}

	again, err := sink.SaveScreenshot("Patek Philippe", 3, []byte{0x01})
	if err != nil {
		t.Fatalf("second SaveScreenshot() error = %v", err)
	}
	if again != path {
		t.Errorf("screenshot path changed between retries: %q vs %q", again, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read screenshot: %v", err)
	}
	if len(data) != 1 {
		t.Errorf("retry should overwrite in place, got %d bytes", len(data))
	}
}
