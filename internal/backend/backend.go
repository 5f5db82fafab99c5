// Package backend wires the configured transaction source and artifact store.
package backend

import (
	"context"

	"extracto/internal/artifact"
	"extracto/internal/source"
)

// BackendType selects where transactions are read from.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string { return string(bt) }

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// ArtifactType selects where finished statements are stored.
type ArtifactType string

const (
	FSArtifacts     ArtifactType = "fs"
	GCSArtifacts    ArtifactType = "gcs"
	SQLiteArtifacts ArtifactType = "sqlite"
)

func (at ArtifactType) IsValid() bool {
	switch at {
	case FSArtifacts, GCSArtifacts, SQLiteArtifacts:
		return true
	default:
		return false
	}
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Check reports whether a dependency is usable; used by readiness probes.
type Check func(ctx context.Context) error

// Result holds what the factory built. Cleanup releases everything and is
// never nil.
type Result struct {
	Source    source.Store
	Artifacts artifact.Store
	Checks    map[string]Check
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	Create(ctx context.Context, cfg Config) (*Result, error)
}
