package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"extracto/internal/config"
	"extracto/internal/core"
	"extracto/internal/log"
)

func TestPeriodFromEnv(t *testing.T) {
	now := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name, start, end string
		want             string
		wantErr          bool
	}{
		{"default previous month", "", "", "2024-02-01..2024-02-29", false},
		{"explicit", "2024-01-01", "2024-03-31", "2024-01-01..2024-03-31", false},
		{"half set", "2024-01-01", "", "", true},
		{"bad date", "2024-01-01", "tomorrow", "", true},
		{"reversed", "2024-02-01", "2024-01-01", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("STATEMENT_START", tt.start)
			t.Setenv("STATEMENT_END", tt.end)
			p, err := periodFromEnv(now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && p.String() != tt.want {
				t.Errorf("got %s, want %s", p, tt.want)
			}
		})
	}

	t.Setenv("STATEMENT_START", "2024-02-01")
	t.Setenv("STATEMENT_END", "2024-01-01")
	if _, err := periodFromEnv(now); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func renderConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataBackend:       "memory",
		DataDirectory:     t.TempDir(),
		SampleSeed:        7,
		SampleCount:       12,
		ArtifactStore:     "fs",
		ArtifactDir:       t.TempDir(),
		StatementLayout:   "classic",
		WorkerConcurrency: 2,
	}
}

func TestRun(t *testing.T) {
	t.Setenv("STATEMENT_START", "")
	t.Setenv("STATEMENT_END", "")
	t.Setenv("STATEMENT_MONTHLY", "")
	cfg := renderConfig(t)

	var out bytes.Buffer
	if code := run(log.NewNop(), cfg, time.Now(), &out); code != 0 {
		t.Fatalf("exit code %d", code)
	}
	refs := strings.Fields(out.String())
	if len(refs) != 1 || !strings.HasSuffix(refs[0], ".pdf") {
		t.Fatalf("unexpected refs: %q", out.String())
	}
	if _, err := os.Stat(refs[0]); err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
}

func TestRunFailuresReturnExitCode(t *testing.T) {
	t.Setenv("STATEMENT_MONTHLY", "")

	t.Run("bad period", func(t *testing.T) {
		t.Setenv("STATEMENT_START", "2024-01-01")
		t.Setenv("STATEMENT_END", "")
		if code := run(log.NewNop(), renderConfig(t), time.Now(), &bytes.Buffer{}); code != 1 {
			t.Fatalf("exit code %d, want 1", code)
		}
	})

	t.Run("unknown layout releases backend", func(t *testing.T) {
		t.Setenv("STATEMENT_START", "")
		t.Setenv("STATEMENT_END", "")
		cfg := renderConfig(t)
		cfg.DataBackend = "sqlite"
		cfg.SQLiteDBPath = filepath.Join(t.TempDir(), "extracto.db")
		cfg.StatementLayout = "landscape"
		var out bytes.Buffer
		if code := run(log.NewNop(), cfg, time.Now(), &out); code != 1 {
			t.Fatalf("exit code %d, want 1", code)
		}
		if out.Len() != 0 {
			t.Fatalf("no refs expected, got %q", out.String())
		}
	})
}
