package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"pdf-to-qr-products/internal/domain"

	storage_go "github.com/supabase-community/storage-go"
)

// objectStore is the subset of the storage-go client used by the mirror.
type objectStore interface {
	UploadFile(bucketId string, relativePath string, data io.Reader, fileOptions ...storage_go.FileOptions) (storage_go.FileUploadResponse, error)
	RemoveFile(bucketId string, paths []string) ([]storage_go.FileUploadResponse, error)
}

// SupabaseStorage mirrors saved batches into a Supabase Storage bucket under
// the same directory name used on disk.
type SupabaseStorage struct {
	bucket string
	prefix string
	// connect returns a fresh client; storage-go keeps upload options as
	// client-wide headers, so a client is never shared between calls.
	connect func() objectStore
}

func NewStorageService(
	baseURL string,
	apiKey string,
	bucket string,
	prefix string,
) *SupabaseStorage {
	s := &SupabaseStorage{
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
	if baseURL == "" || apiKey == "" || bucket == "" {
		return s
	}

	endpoint := strings.TrimRight(baseURL, "/") + "/storage/v1"
	s.connect = func() objectStore {
		return storage_go.NewClient(endpoint, apiKey, map[string]string{"apikey": apiKey})
	}
	return s
}

// Enabled reports whether a bucket is configured.
func (s *SupabaseStorage) Enabled() bool {
	return s.connect != nil
}

// Mirror uploads every file of the batch and removes the stale object names.
func (s *SupabaseStorage) Mirror(ctx context.Context, batch *domain.ArtifactBatch, stale []string) error {
	if !s.Enabled() {
		return nil
	}

	for _, img := range batch.Images {
		if err := s.Upload(ctx, img.Name, bytes.NewReader(img.Data), "image/png"); err != nil {
			return fmt.Errorf("mirror %s: %w", img.Name, err)
		}
	}
	if err := s.Upload(ctx, domain.ManifestFileName, bytes.NewReader(batch.Manifest), "text/csv"); err != nil {
		return fmt.Errorf("mirror %s: %w", domain.ManifestFileName, err)
	}

	if len(stale) == 0 {
		return nil
	}
	return s.Remove(ctx, stale)
}

// Upload stores one object below the prefix, replacing any existing one.
func (s *SupabaseStorage) Upload(
	ctx context.Context,
	name string,
	file io.Reader,
	contentType string,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	upsert := true
	_, err := s.connect().UploadFile(s.bucket, escapePath(s.objectPath(name)), file, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("storage upload failed: %w", err)
	}
	return nil
}

// Remove deletes objects below the prefix by name.
func (s *SupabaseStorage) Remove(ctx context.Context, names []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, s.objectPath(name))
	}
	if _, err := s.connect().RemoveFile(s.bucket, paths); err != nil {
		return fmt.Errorf("storage delete failed: %w", err)
	}
	return nil
}

func (s *SupabaseStorage) objectPath(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

func escapePath(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
