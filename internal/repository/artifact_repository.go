package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"pdf-to-qr-products/internal/domain"

	"github.com/google/uuid"
)

const (
	dirMode  = 0o755
	fileMode = 0o644
)

// FileArtifactRepository implements domain.ArtifactRepository on the local file system.
//
// A batch is written to a staging directory next to the target and swapped in
// with two renames, so readers see either the old batch or the new one. Entries
// of the target that are not batch artifacts are moved into the new directory.
type FileArtifactRepository struct {
	root     string
	name     string
	manifest domain.ManifestCodec
	logger   domain.Logger

	mu sync.Mutex
}

// NewFileArtifactRepository creates a repository for root/name.
func NewFileArtifactRepository(root, name string, manifest domain.ManifestCodec, logger domain.Logger) *FileArtifactRepository {
	return &FileArtifactRepository{
		root:     root,
		name:     name,
		manifest: manifest,
		logger:   logger,
	}
}

// Dir returns the artifact directory path.
func (r *FileArtifactRepository) Dir() string {
	return filepath.Join(r.root, r.name)
}

// Replace makes the artifact directory hold exactly the given batch.
func (r *FileArtifactRepository) Replace(ctx context.Context, batch *domain.ArtifactBatch) error {
	if err := batch.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.root, dirMode); err != nil {
		return fmt.Errorf("failed to create upload root: %w", err)
	}
	r.sweep()

	id := uuid.NewString()
	staging := filepath.Join(r.root, r.stagingPrefix()+id)
	if err := os.Mkdir(staging, dirMode); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}

	if err := r.writeBatch(ctx, staging, batch); err != nil {
		r.removeAll(staging)
		return err
	}

	target := r.Dir()
	old := filepath.Join(r.root, r.oldPrefix()+id)
	hadTarget := true
	if err := os.Rename(target, old); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.removeAll(staging)
			return fmt.Errorf("failed to move previous batch aside: %w", err)
		}
		hadTarget = false
	}

	if err := os.Rename(staging, target); err != nil {
		if hadTarget {
			if restoreErr := os.Rename(old, target); restoreErr != nil {
				r.logger.Error("Failed to restore previous batch", restoreErr, "old", old)
			}
		}
		r.removeAll(staging)
		return fmt.Errorf("failed to swap in new batch: %w", err)
	}

	if hadTarget {
		r.carryOver(old, target)
	}
	return nil
}

func (r *FileArtifactRepository) stagingPrefix() string {
	return "." + r.name + "-staging-"
}

func (r *FileArtifactRepository) oldPrefix() string {
	return "." + r.name + "-old-"
}

// sweep cleans up after a Replace that did not finish. Staging directories are
// deleted. If the target is missing, the newest previous directory is moved
// back into place; any other previous directory has its foreign entries
// carried over into the target.
func (r *FileArtifactRepository) sweep() {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		r.logger.Warn("Failed to list upload root", "dir", r.root, "error", err)
		return
	}

	var olds []string
	var newest time.Time
	restore := ""
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(r.root, e.Name())
		switch {
		case strings.HasPrefix(e.Name(), r.stagingPrefix()):
			r.logger.Warn("Removing leftover staging directory", "dir", path)
			r.removeAll(path)
		case strings.HasPrefix(e.Name(), r.oldPrefix()):
			olds = append(olds, path)
			if info, err := e.Info(); err == nil && (restore == "" || info.ModTime().After(newest)) {
				restore, newest = path, info.ModTime()
			}
		}
	}
	if len(olds) == 0 {
		return
	}

	target := r.Dir()
	if _, err := os.Stat(target); errors.Is(err, fs.ErrNotExist) && restore != "" {
		if err := os.Rename(restore, target); err != nil {
			r.logger.Error("Failed to restore interrupted batch", err, "old", restore)
			return
		}
		r.logger.Warn("Restored batch from interrupted replace", "old", restore)
	}

	for _, old := range olds {
		if _, err := os.Stat(old); err == nil {
			r.carryOver(old, target)
		}
	}
}

func (r *FileArtifactRepository) writeBatch(ctx context.Context, dir string, batch *domain.ArtifactBatch) error {
	for _, img := range batch.Images {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, img.Name), img.Data, fileMode); err != nil {
			return fmt.Errorf("failed to write %s: %w", img.Name, err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, domain.ManifestFileName), batch.Manifest, fileMode); err != nil {
		return fmt.Errorf("failed to write %s: %w", domain.ManifestFileName, err)
	}
	return nil
}

// carryOver moves entries that are not batch artifacts from the previous
// directory into the new one, then deletes the previous directory. If anything
// cannot be moved the previous directory is left in place.
func (r *FileArtifactRepository) carryOver(old, target string) {
	entries, err := os.ReadDir(old)
	if err != nil {
		r.logger.Error("Failed to list previous batch", err, "dir", old)
		return
	}

	kept := true
	for _, e := range entries {
		if !e.IsDir() && domain.IsArtifactName(e.Name()) {
			continue
		}
		if err := os.Rename(filepath.Join(old, e.Name()), filepath.Join(target, e.Name())); err != nil {
			r.logger.Warn("Could not carry over file", "name", e.Name(), "error", err)
			kept = false
		}
	}

	if !kept {
		r.logger.Warn("Previous batch directory left in place", "dir", old)
		return
	}
	r.removeAll(old)
}

func (r *FileArtifactRepository) removeAll(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		r.logger.Warn("Failed to remove directory", "dir", dir, "error", err)
	}
}

// Manifest reads the current products.csv. A missing file means no batch.
func (r *FileArtifactRepository) Manifest(ctx context.Context) ([]domain.ManifestRow, error) {
	data, err := os.ReadFile(filepath.Join(r.Dir(), domain.ManifestFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return r.manifest.Decode(data)
}
