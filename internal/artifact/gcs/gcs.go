// Package gcs stores statements as objects in a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"extracto/internal/artifact"
	"extracto/internal/statement"
)

var _ artifact.Store = (*Store)(nil)

const uploadTimeout = 2 * time.Minute

type Store struct {
	client *storage.Client
	bucket string
	prefix string
}

// New creates a store writing to bucket, under an optional object prefix.
// Without options it uses Application Default Credentials.
func New(ctx context.Context, bucket, prefix string, opts ...option.ClientOption) (*Store, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("GCS bucket is required")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &Store{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// Save uploads the document and returns its gs:// URI.
func (s *Store) Save(ctx context.Context, doc statement.Document) (string, error) {
	key := s.objectName(doc)

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = doc.ContentType
	w.ContentDisposition = fmt.Sprintf("attachment; filename=%q", doc.Name)
	w.Metadata = map[string]string{
		"period":       doc.Period.String(),
		"layout":       doc.Layout,
		"pages":        fmt.Sprint(doc.Pages),
		"generated_at": doc.GeneratedAt.UTC().Format(time.RFC3339),
	}

	if err := upload(w, cancel, doc.Content); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return URI(s.bucket, key), nil
}

// objectWriter is the part of *storage.Writer an upload needs.
type objectWriter interface {
	Write(p []byte) (int, error)
	Close() error
}

// upload writes content and finalizes the object with Close. A failed write
// cancels the writer's context first, which aborts the upload so no partial
// object is committed.
func upload(w objectWriter, cancel context.CancelFunc, content []byte) error {
	if _, err := w.Write(content); err != nil {
		cancel()
		_ = w.Close()
		return fmt.Errorf("write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize: %w", err)
	}
	return nil
}

func (s *Store) objectName(doc statement.Document) string {
	if s.prefix == "" {
		return artifact.ObjectName(doc)
	}
	return path.Join(s.prefix, artifact.ObjectName(doc))
}

// URI formats a gs:// object URI.
func URI(bucket, object string) string {
	return "gs://" + bucket + "/" + object
}

// ParseURI splits a gs:// URI into bucket and object name.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}
