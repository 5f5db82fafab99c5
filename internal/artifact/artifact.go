// Package artifact hands finished statements over to durable storage.
package artifact

import (
	"context"
	"path"

	"extracto/internal/statement"
)

// Store persists a document and returns a reference to where it went.
type Store interface {
	Save(ctx context.Context, doc statement.Document) (ref string, err error)
}

// ObjectName is the key a document is stored under: one folder per layout.
func ObjectName(doc statement.Document) string {
	layout := doc.Layout
	if layout == "" {
		layout = "classic"
	}
	return path.Join(layout, doc.Name)
}
