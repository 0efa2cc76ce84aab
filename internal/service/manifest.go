package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"pdf-to-qr-products/internal/domain"

	"github.com/jszwec/csvutil"
)

// CSVManifest reads and writes products.csv.
type CSVManifest struct{}

func NewManifestCodec() *CSVManifest {
	return &CSVManifest{}
}

// Encode writes the header followed by one line per row. The header is
// written even when rows is empty.
func (CSVManifest) Encode(rows []domain.ManifestRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	enc := csvutil.NewEncoder(w)

	if err := enc.EncodeHeader(domain.ManifestRow{}); err != nil {
		return nil, fmt.Errorf("failed to write manifest header: %w", err)
	}
	for i, row := range rows {
		if err := enc.Encode(row); err != nil {
			return nil, fmt.Errorf("failed to write manifest row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a manifest. Empty input yields no rows.
func (CSVManifest) Decode(data []byte) ([]domain.ManifestRow, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(bytes.NewReader(data)))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read manifest header: %w", err)
	}

	var rows []domain.ManifestRow
	if err := dec.Decode(&rows); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return rows, nil
}
