package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"pdf-to-qr-products/internal/domain"
	"pdf-to-qr-products/pkg/sanitize"
)

const savedMessage = "Saved to server."

// ProductService turns reviewed records into QR images plus a manifest and
// replaces the artifact directory with them.
type ProductService struct {
	repo      domain.ArtifactRepository
	encoder   domain.QREncoder
	manifest  domain.ManifestCodec
	nonces    domain.NonceVerifier
	mirror    domain.ArtifactMirror
	logger    domain.Logger
	publicURL string
}

// NewProductService creates the service. publicURL is the URL the artifact
// directory is served under, without a trailing slash.
func NewProductService(
	repo domain.ArtifactRepository,
	encoder domain.QREncoder,
	manifest domain.ManifestCodec,
	nonces domain.NonceVerifier,
	mirror domain.ArtifactMirror,
	logger domain.Logger,
	publicURL string,
) *ProductService {
	return &ProductService{
		repo:      repo,
		encoder:   encoder,
		manifest:  manifest,
		nonces:    nonces,
		mirror:    mirror,
		logger:    logger,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// SaveBatch validates the caller and the payload, then replaces the stored batch.
// Nothing on disk changes unless every check passes.
func (s *ProductService) SaveBatch(ctx context.Context, user *domain.SupabaseUser, nonce string, rawItems string) (*domain.SaveResult, error) {
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if s.nonces == nil || !s.nonces.Verify(user.ID, domain.SaveAction, nonce) {
		return nil, domain.ErrForbiddenRequest
	}

	records, err := DecodeItems(rawItems)
	if err != nil {
		return nil, err
	}

	batch, rows, skipped, err := s.buildBatch(records)
	if err != nil {
		return nil, err
	}

	var previous []domain.ManifestRow
	if s.mirrorEnabled() {
		if previous, err = s.repo.Manifest(ctx); err != nil {
			s.logger.Warn("Could not read previous manifest", "error", err)
		}
	}

	if err := s.repo.Replace(ctx, batch); err != nil {
		s.logger.Error("Failed to replace artifact directory", err, "user_id", user.ID, "dir", s.repo.Dir())
		return nil, fmt.Errorf("%w: %w", domain.ErrIOFailure, err)
	}

	if s.mirrorEnabled() {
		if err := s.mirror.Mirror(ctx, batch, staleImages(previous, batch)); err != nil {
			s.logger.Error("Failed to mirror batch to remote storage", err, "user_id", user.ID)
		}
	}

	s.logger.Info("Product batch saved", "user_id", user.ID, "saved", len(rows), "skipped", skipped, "images", len(batch.Images))

	return &domain.SaveResult{
		Message: savedMessage,
		CSVURL:  s.ManifestURL(),
		Saved:   len(rows),
		Skipped: skipped,
	}, nil
}

func (s *ProductService) buildBatch(records []domain.ProductRecord) (*domain.ArtifactBatch, []domain.ManifestRow, int, error) {
	batch := &domain.ArtifactBatch{}
	rows := make([]domain.ManifestRow, 0, len(records))
	skipped := 0

	for i, rec := range records {
		ref := sanitize.FileName(rec.Reference)
		if ref == "" {
			skipped++
			s.logger.Warn("Skipping record without usable reference", "index", i)
			continue
		}

		filename := ref + ".png"
		img, err := s.encoder.EncodePNG(rec.Reference)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("%w: qr code for record %d: %w", domain.ErrIOFailure, i, err)
		}
		batch.Images = append(batch.Images, domain.ArtifactFile{Name: filename, Data: img})

		rows = append(rows, domain.ManifestRow{
			Reference:   ref,
			Description: sanitize.TextField(rec.Description),
			Category:    sanitize.TextField(rec.Category),
			QRFilename:  filename,
		})
	}

	manifest, err := s.manifest.Encode(rows)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("%w: %w", domain.ErrIOFailure, err)
	}
	batch.Manifest = manifest

	return batch, rows, skipped, nil
}

// Gallery returns the rows of the current batch with their image URLs.
func (s *ProductService) Gallery(ctx context.Context) (*domain.Gallery, error) {
	rows, err := s.repo.Manifest(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIOFailure, err)
	}

	items := make([]domain.GalleryItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, domain.GalleryItem{
			ManifestRow: row,
			ImageURL:    s.publicURL + "/" + url.PathEscape(row.QRFilename),
		})
	}

	gallery := &domain.Gallery{Items: items}
	if len(rows) > 0 {
		gallery.CSVURL = s.ManifestURL()
	}
	return gallery, nil
}

// ManifestURL returns the public URL of products.csv.
func (s *ProductService) ManifestURL() string {
	return s.publicURL + "/" + domain.ManifestFileName
}

func (s *ProductService) mirrorEnabled() bool {
	return s.mirror != nil && s.mirror.Enabled()
}

// staleImages lists images of the previous batch that the new batch does not contain.
func staleImages(previous []domain.ManifestRow, batch *domain.ArtifactBatch) []string {
	current := make(map[string]bool, len(batch.Images)+1)
	for _, name := range batch.Names() {
		current[name] = true
	}

	var stale []string
	seen := make(map[string]bool)
	for _, row := range previous {
		name := row.QRFilename
		if name == "" || current[name] || seen[name] {
			continue
		}
		seen[name] = true
		stale = append(stale, name)
	}
	return stale
}

// DecodeItems parses the JSON array posted by the browser. Anything other than a
// non-empty array is ErrNoItems. Elements that are not objects decode to empty
// records, which are then dropped for lacking a reference.
func DecodeItems(raw string) ([]domain.ProductRecord, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, domain.ErrNoItems
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil || len(elems) == 0 {
		return nil, domain.ErrNoItems
	}

	records := make([]domain.ProductRecord, 0, len(elems))
	for _, elem := range elems {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(elem, &fields); err != nil {
			records = append(records, domain.ProductRecord{})
			continue
		}
		records = append(records, domain.ProductRecord{
			Reference:   scalarString(fields["reference"]),
			Description: scalarString(fields["description"]),
			Category:    scalarString(fields["category"]),
		})
	}
	return records, nil
}

// scalarString renders a JSON scalar as text; numbers keep their literal form,
// true becomes "1", and false, null, arrays and objects become "".
func scalarString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var v interface{}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return ""
	}

	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "1"
		}
		return ""
	default:
		return ""
	}
}
