package domain

import (
	"path/filepath"
	"strings"
)

// ManifestFileName is the name of the CSV manifest inside the artifact directory.
const ManifestFileName = "products.csv"

// SaveAction is the dispatcher action that persists a batch.
const SaveAction = "pdf_to_qr_frontend_save"

// ProductRecord is one product extracted from a PDF and reviewed by the user.
type ProductRecord struct {
	Reference   string `json:"reference"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// ManifestRow is one data row of products.csv.
type ManifestRow struct {
	Reference   string `csv:"reference" json:"reference"`
	Description string `csv:"description" json:"description"`
	Category    string `csv:"category" json:"category"`
	QRFilename  string `csv:"qr_filename" json:"qr_filename"`
}

// ArtifactFile is a generated file destined for the artifact directory.
type ArtifactFile struct {
	Name string
	Data []byte
}

// ArtifactBatch is the complete desired content of the artifact directory.
// Images are written in order, so a later image with the same name wins.
type ArtifactBatch struct {
	Images   []ArtifactFile
	Manifest []byte
}

// Names returns the distinct file names of the batch, manifest included.
func (b *ArtifactBatch) Names() []string {
	seen := make(map[string]bool, len(b.Images)+1)
	names := make([]string, 0, len(b.Images)+1)
	for _, img := range b.Images {
		if seen[img.Name] {
			continue
		}
		seen[img.Name] = true
		names = append(names, img.Name)
	}
	return append(names, ManifestFileName)
}

// Validate checks that every file can be written inside a single flat directory.
func (b *ArtifactBatch) Validate() error {
	if b.Manifest == nil {
		return &ValidationError{Field: "manifest", Message: "manifest is required"}
	}
	for _, img := range b.Images {
		if img.Name == "" {
			return &ValidationError{Field: "images", Message: "image name is required"}
		}
		if img.Name != filepath.Base(img.Name) || strings.ContainsAny(img.Name, `/\`) || img.Name == ".png" {
			return &ValidationError{Field: "images", Message: "invalid image name " + img.Name}
		}
		if !strings.HasSuffix(img.Name, ".png") {
			return &ValidationError{Field: "images", Message: "image name must end with .png"}
		}
		if img.Name == ManifestFileName {
			return &ValidationError{Field: "images", Message: "image name collides with manifest"}
		}
	}
	return nil
}

// IsArtifactName reports whether a directory entry belongs to a batch and is
// replaced on save.
func IsArtifactName(name string) bool {
	return name == ManifestFileName || strings.HasSuffix(name, ".png")
}

// SaveResult is returned by a successful save.
type SaveResult struct {
	Message string `json:"message"`
	CSVURL  string `json:"csvUrl"`
	Saved   int    `json:"saved"`
	Skipped int    `json:"skipped"`
}

// GalleryItem is a manifest row with the public URL of its QR image.
type GalleryItem struct {
	ManifestRow
	ImageURL string `json:"image_url"`
}

// Gallery is the current batch as shown to users.
type Gallery struct {
	Items  []GalleryItem `json:"items"`
	CSVURL string        `json:"csv_url"`
}
