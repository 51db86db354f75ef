package shared

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

func TestGenerateID(t *testing.T) {
	a := GenerateID()
	b := GenerateID()

	if a == b {
		t.Errorf("expected distinct IDs, got %s twice", a)
	}

	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("GenerateID() = %q is not a valid UUID: %v", a, err)
	}
}

func TestMarshalJSON(t *testing.T) {
	tc := []struct {
		name   string
		pretty bool
		want   string
	}{
		{name: "compact", pretty: false, want: `{"id":"PL1"}`},
		{name: "pretty", pretty: true, want: "{\n  \"id\": \"PL1\"\n}"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalJSON(map[string]string{"id": "PL1"}, tt.pretty)
			if err != nil {
				t.Fatalf("MarshalJSON() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("MarshalJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoggers(t *testing.T) {
	t.Run("NewLogger writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello", "playlist", "PL1")

		if !strings.Contains(buf.String(), "playlist=PL1") {
			t.Errorf("expected key/value pair in output, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "tui.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger() error = %v", err)
		}
		logger.Info("started")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if !strings.Contains(string(data), "started") {
			t.Errorf("expected log line in file, got %q", data)
		}
	})

	t.Run("NewRotatingWriter requires a path", func(t *testing.T) {
		if _, err := NewRotatingWriter(LogConfig{}); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("NewConfiguredLogger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "serve.log")
		logger, err := NewConfiguredLogger(LogConfig{File: path, Level: "warn", MaxSizeMB: 1})
		if err != nil {
			t.Fatalf("NewConfiguredLogger() error = %v", err)
		}
		if logger.GetLevel() != log.WarnLevel {
			t.Errorf("expected warn level, got %v", logger.GetLevel())
		}

		logger.Info("hidden")
		logger.Warn("shown")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if strings.Contains(string(data), "hidden") || !strings.Contains(string(data), "shown") {
			t.Errorf("unexpected log contents %q", data)
		}

		if _, err := NewConfiguredLogger(LogConfig{Level: "loud"}); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig for bad level, got %v", err)
		}
	})
}
