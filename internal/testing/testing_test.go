package testing

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

func TestWriters(t *testing.T) {
	t.Run("FWriter fails", func(t *testing.T) {
		if _, err := (&FWriter{}).Write([]byte("x")); err == nil {
			t.Error("expected error from FWriter")
		}
	})

	t.Run("LimitedWriter fails after limit", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewLimitedWriter(2, 1, &buf)
		if _, err := w.Write([]byte("a")); err != nil {
			t.Fatalf("first write: %v", err)
		}
		if _, err := w.Write([]byte("b")); err == nil {
			t.Error("expected second write to fail")
		}
		if buf.String() != "a" {
			t.Errorf("expected target to hold %q, got %q", "a", buf.String())
		}
	})

	t.Run("FCloser read fails", func(t *testing.T) {
		if _, err := io.ReadAll(&FCloser{}); err == nil {
			t.Error("expected read error")
		}
	})
}

func TestMockRoundTripper(t *testing.T) {
	want := errors.New("boom")
	client := &http.Client{Transport: NewMockRoundTripper(nil, want)}
	if _, err := client.Get("http://example.invalid"); !errors.Is(err, want) {
		t.Errorf("expected %v, got %v", want, err)
	}
}

func TestFilesystemHelpers(t *testing.T) {
	dir := t.TempDir()
	AssertDirExists(t, dir)

	wd := MustGetwd(t)
	defer MustChdir(t, wd)
	MustChdir(t, dir)

	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	AssertFileExists(t, path)
	if got := MustReadFile(t, path); got != "hello" {
		t.Errorf("expected %q, got %q", "hello", got)
	}
}
