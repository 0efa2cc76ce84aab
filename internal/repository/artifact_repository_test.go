package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"

	"pdf-to-qr-products/internal/domain"
)

// lineCodec treats every manifest line as a file name.
type lineCodec struct{}

func (lineCodec) Encode(rows []domain.ManifestRow) ([]byte, error) {
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(row.QRFilename + "\n")
	}
	return []byte(b.String()), nil
}

func (lineCodec) Decode(data []byte) ([]domain.ManifestRow, error) {
	var rows []domain.ManifestRow
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line != "" {
			rows = append(rows, domain.ManifestRow{QRFilename: line})
		}
	}
	return rows, nil
}

type nopLogger struct{}

func (nopLogger) Info(msg string, fields ...interface{})             {}
func (nopLogger) Error(msg string, err error, fields ...interface{}) {}
func (nopLogger) Debug(msg string, fields ...interface{})            {}
func (nopLogger) Warn(msg string, fields ...interface{})             {}

func newTestRepository(t *testing.T) (*FileArtifactRepository, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "uploads")
	return NewFileArtifactRepository(root, "pdf-to-qr-products", lineCodec{}, nopLogger{}), root
}

func batchOf(names ...string) *domain.ArtifactBatch {
	batch := &domain.ArtifactBatch{}
	var manifest strings.Builder
	for _, name := range names {
		batch.Images = append(batch.Images, domain.ArtifactFile{Name: name, Data: []byte("img:" + name)})
		manifest.WriteString(name + "\n")
	}
	batch.Manifest = []byte(manifest.String())
	return batch
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestFileArtifactRepository_ReplaceCreatesDirectory(t *testing.T) {
	repo, root := newTestRepository(t)

	if err := repo.Replace(context.Background(), batchOf("A.png", "B.png")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, want := listDir(t, repo.Dir()), []string{"A.png", "B.png", "products.csv"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got := listDir(t, root); !reflect.DeepEqual(got, []string{"pdf-to-qr-products"}) {
		t.Fatalf("expected no staging leftovers in root, got %v", got)
	}

	data, err := os.ReadFile(filepath.Join(repo.Dir(), "A.png"))
	if err != nil || string(data) != "img:A.png" {
		t.Fatalf("unexpected file content %q (%v)", data, err)
	}
}

func TestFileArtifactRepository_ReplaceRemovesPreviousBatch(t *testing.T) {
	repo, root := newTestRepository(t)

	if err := repo.Replace(context.Background(), batchOf("OLD-1.png", "OLD-2.png")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Replace(context.Background(), batchOf("NEW-1.png")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, want := listDir(t, repo.Dir()), []string{"NEW-1.png", "products.csv"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got := listDir(t, root); len(got) != 1 {
		t.Fatalf("expected old directory to be removed, got %v", got)
	}
}

func TestFileArtifactRepository_KeepsForeignFiles(t *testing.T) {
	repo, _ := newTestRepository(t)

	if err := repo.Replace(context.Background(), batchOf("A.png")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(repo.Dir(), "notes.txt"), []byte("keep"), 0o644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if err := os.Mkdir(filepath.Join(repo.Dir(), "archive"), 0o755); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if err := repo.Replace(context.Background(), batchOf("B.png")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, want := listDir(t, repo.Dir()), []string{"B.png", "archive", "notes.txt", "products.csv"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestFileArtifactRepository_DuplicateNamesLastWins(t *testing.T) {
	repo, _ := newTestRepository(t)

	batch := &domain.ArtifactBatch{
		Images: []domain.ArtifactFile{
			{Name: "DUP.png", Data: []byte("first")},
			{Name: "DUP.png", Data: []byte("second")},
		},
		Manifest: []byte("DUP.png\nDUP.png\n"),
	}
	if err := repo.Replace(context.Background(), batch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(repo.Dir(), "DUP.png"))
	if err != nil || string(data) != "second" {
		t.Fatalf("expected last write to win, got %q (%v)", data, err)
	}
}

func TestFileArtifactRepository_InvalidBatchTouchesNothing(t *testing.T) {
	repo, root := newTestRepository(t)

	err := repo.Replace(context.Background(), batchOf("../escape.png"))
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Fatalf("expected upload root not to be created, stat err = %v", err)
	}
}

func TestFileArtifactRepository_FailedWriteKeepsPreviousBatch(t *testing.T) {
	repo, root := newTestRepository(t)

	if err := repo.Replace(context.Background(), batchOf("KEEP.png")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := repo.Replace(ctx, batchOf("LOST.png")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if got, want := listDir(t, repo.Dir()), []string{"KEEP.png", "products.csv"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected previous batch to survive, got %v", got)
	}
	if got := listDir(t, root); len(got) != 1 {
		t.Fatalf("expected staging directory to be cleaned up, got %v", got)
	}
}

func TestFileArtifactRepository_Manifest(t *testing.T) {
	repo, _ := newTestRepository(t)

	rows, err := repo.Manifest(context.Background())
	if err != nil || rows != nil {
		t.Fatalf("expected no rows before the first save, got %v %v", rows, err)
	}

	if err := repo.Replace(context.Background(), batchOf("A.png", "B.png")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err = repo.Manifest(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 || rows[0].QRFilename != "A.png" || rows[1].QRFilename != "B.png" {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func writeTree(t *testing.T, dir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
	}
}

func TestFileArtifactRepository_SweepsLeftoverDirectories(t *testing.T) {
	repo, root := newTestRepository(t)

	if err := repo.Replace(context.Background(), batchOf("A.png")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	writeTree(t, filepath.Join(root, ".pdf-to-qr-products-staging-dead"), "X.png", "products.csv")
	writeTree(t, filepath.Join(root, ".pdf-to-qr-products-old-dead"), "OLD.png", "products.csv", "notes.txt")
	writeTree(t, filepath.Join(root, ".other-staging-dead"), "keep.png")

	if err := repo.Replace(context.Background(), batchOf("B.png")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, want := listDir(t, root), []string{".other-staging-dead", "pdf-to-qr-products"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got, want := listDir(t, repo.Dir()), []string{"B.png", "notes.txt", "products.csv"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestFileArtifactRepository_RecoversInterruptedSwap(t *testing.T) {
	repo, root := newTestRepository(t)

	// The previous batch was moved aside but the new one never arrived.
	writeTree(t, filepath.Join(root, ".pdf-to-qr-products-old-dead"), "A.png", "products.csv", "notes.txt")

	if err := repo.Replace(context.Background(), batchOf("B.png")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, want := listDir(t, root), []string{"pdf-to-qr-products"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got, want := listDir(t, repo.Dir()), []string{"B.png", "notes.txt", "products.csv"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	data, err := os.ReadFile(filepath.Join(repo.Dir(), "notes.txt"))
	if err != nil || string(data) != "notes.txt" {
		t.Fatalf("expected foreign file to survive, got %q %v", data, err)
	}
}
