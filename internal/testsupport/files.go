package testsupport

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteDump writes a statement dump fixture: a JSON array with one entity
// object per line, the shape the scanner streams.
func WriteDump(t testing.TB, path string, records []string) {
	t.Helper()

	var b strings.Builder
	b.WriteString("[\n")
	for i, record := range records {
		b.WriteString(record)
		if i < len(records)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("]\n")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteGzipDump writes the same fixture gzip-compressed.
func WriteGzipDump(t testing.TB, path string, records []string) {
	t.Helper()

	plain := filepath.Join(t.TempDir(), "dump.json")
	WriteDump(t, plain, records)
	data, err := os.ReadFile(plain)
	if err != nil {
		t.Fatalf("read %s: %v", plain, err)
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
}
