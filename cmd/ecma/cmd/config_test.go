package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadHostConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := "strict: true\nmaxOutputBytes: 1024\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := loadHostConfig(path)
	if err != nil {
		t.Fatalf("loadHostConfig() error = %v", err)
	}
	if !cfg.Strict {
		t.Fatalf("Strict = false, want true")
	}
	if cfg.MaxOutputBytes != 1024 {
		t.Fatalf("MaxOutputBytes = %d, want 1024", cfg.MaxOutputBytes)
	}
}

func TestLoadHostConfigMissingFile(t *testing.T) {
	if _, err := loadHostConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("loadHostConfig() error = nil, want a read error for a missing file")
	}
}

func TestLimitedWriterTruncates(t *testing.T) {
	var buf limitedWriterBuf
	lw := &limitedWriter{w: &buf, remaining: 5}

	n, err := lw.Write([]byte("hello world"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != len("hello world") {
		t.Fatalf("Write() n = %d, want %d (callers expect the full length)", n, len("hello world"))
	}
	if buf.String() != "hello" {
		t.Fatalf("underlying writer got %q, want it truncated to %q", buf.String(), "hello")
	}
}

// limitedWriterBuf is a tiny io.Writer recorder, avoiding a bytes.Buffer
// import purely for one test.
type limitedWriterBuf struct {
	data []byte
}

func (b *limitedWriterBuf) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *limitedWriterBuf) String() string { return string(b.data) }
