package service

import (
	"regexp"
	"strings"
	"unicode"

	"pdf-to-qr-products/internal/domain"
)

var (
	labeledField   = regexp.MustCompile(`(?i)^(reference|ref|sku|description|desc|category|cat)\s*[:#]\s*(.*)$`)
	tabularRow     = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._/-]{2,})\s+(.+)$`)
	columnBreak    = regexp.MustCompile(`\t|\s+\|\s+|\s{2,}`)
	spaceRun       = regexp.MustCompile(`[ \t]+`)
	headingLetters = regexp.MustCompile(`\p{Lu}`)
)

// TextExtractionService finds product records in page text. It is a heuristic:
// pages that match nothing contribute nothing and no error is ever returned.
type TextExtractionService struct{}

func NewExtractionService() *TextExtractionService {
	return &TextExtractionService{}
}

type extractionState struct {
	records  []domain.ProductRecord
	open     *domain.ProductRecord
	category string
}

// Extract scans pages in order. The section category carries over page breaks.
func (s *TextExtractionService) Extract(pages []string) []domain.ProductRecord {
	st := &extractionState{}
	for _, page := range pages {
		for _, raw := range strings.Split(strings.ReplaceAll(page, "\r\n", "\n"), "\n") {
			st.line(raw)
		}
		st.flush()
	}
	return st.records
}

func (st *extractionState) line(raw string) {
	// Keep tabs and double spaces until columns are split.
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}

	if m := labeledField.FindStringSubmatch(raw); m != nil {
		st.labeled(strings.ToLower(m[1]), collapse(m[2]))
		return
	}

	if m := tabularRow.FindStringSubmatch(raw); m != nil && hasDigit(m[1]) {
		st.flush()
		st.records = append(st.records, st.tabular(m[1], m[2]))
		return
	}

	if isHeading(raw) {
		st.flush()
		st.category = collapse(raw)
	}
}

func (st *extractionState) labeled(label, value string) {
	switch label {
	case "reference", "ref", "sku":
		st.flush()
		st.open = &domain.ProductRecord{Reference: value, Category: st.category}
	case "description", "desc":
		if st.open != nil {
			st.open.Description = joinText(st.open.Description, value)
		}
	case "category", "cat":
		if st.open != nil {
			st.open.Category = value
		} else {
			st.category = value
		}
	}
}

func (st *extractionState) tabular(reference, rest string) domain.ProductRecord {
	var cols []string
	rest = strings.TrimLeft(rest, "| \t")
	for _, c := range columnBreak.Split(rest, -1) {
		if c = collapse(c); c != "" {
			cols = append(cols, c)
		}
	}

	rec := domain.ProductRecord{Reference: reference, Category: st.category}
	switch {
	case len(cols) >= 2:
		rec.Description = strings.Join(cols[:len(cols)-1], " ")
		rec.Category = cols[len(cols)-1]
	case len(cols) == 1:
		rec.Description = cols[0]
	}
	return rec
}

func (st *extractionState) flush() {
	if st.open == nil {
		return
	}
	if st.open.Reference != "" {
		st.records = append(st.records, *st.open)
	}
	st.open = nil
}

// isHeading matches short upper-case lines without digits, like "FASTENERS".
func isHeading(s string) bool {
	if hasDigit(s) || len(headingLetters.FindAllString(s, 3)) < 3 {
		return false
	}
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
	}
	return true
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func collapse(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

func joinText(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + " " + b
}
