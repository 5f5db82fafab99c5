// Package fs stores statements as files under a local directory.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"extracto/internal/artifact"
	"extracto/internal/statement"
)

var _ artifact.Store = (*Store)(nil)

type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("artifact directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the document to <dir>/<layout>/<name>. The file is renamed
// into place so readers never see a partial statement.
func (s *Store) Save(ctx context.Context, doc statement.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dst := filepath.Join(s.dir, filepath.FromSlash(artifact.ObjectName(doc)))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create layout directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(doc.Content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", doc.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", doc.Name, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("move %s into place: %w", doc.Name, err)
	}
	return dst, nil
}
