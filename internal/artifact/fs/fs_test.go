package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"extracto/internal/statement"
)

func TestSaveWritesUnderLayout(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	doc := statement.Document{Name: "STATEMENT_20240101_20240131.pdf", Layout: "compact", Content: []byte("%PDF-1.3")}
	ref, err := s.Save(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "compact", doc.Name), ref)

	b, err := os.ReadFile(ref)
	require.NoError(t, err)
	assert.Equal(t, doc.Content, b)

	doc.Content = []byte("%PDF-1.3 second")
	_, err = s.Save(context.Background(), doc)
	require.NoError(t, err)
	b, _ = os.ReadFile(ref)
	assert.Equal(t, "%PDF-1.3 second", string(b))

	entries, err := os.ReadDir(filepath.Join(dir, "compact"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestSaveDefaultLayoutAndCancel(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	ref, err := s.Save(context.Background(), statement.Document{Name: "a.json"})
	require.NoError(t, err)
	assert.Equal(t, "classic", filepath.Base(filepath.Dir(ref)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Save(ctx, statement.Document{Name: "b.json"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRequiresDirectory(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}
