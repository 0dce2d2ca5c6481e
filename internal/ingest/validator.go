package ingest

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"despesas/internal/table"
)

// Source header names as they appear in the ledger spreadsheets.
const (
	HeaderDate        = "data"
	HeaderDescription = "descrição"
	HeaderType        = "tipo"
	HeaderAmount      = "valor"
	HeaderCategory    = "despesa"
	HeaderStatus      = "status"
	HeaderCostCenter  = "centro de custos"
)

// RequiredHeaders is the column set every upload must contain, in the order
// missing columns are reported.
var RequiredHeaders = []string{
	HeaderDate,
	HeaderDescription,
	HeaderType,
	HeaderAmount,
	HeaderCategory,
	HeaderStatus,
	HeaderCostCenter,
}

// NormalizeHeader lower-cases and trims a header and strips its accents, so
// "descrição", "Descricao" and a decomposed "descrição" all match.
func NormalizeHeader(h string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(h)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(h))
	}
	return folded
}

// Validation is the outcome of a schema check.
type Validation struct {
	OK      bool
	Missing []string
}

// Validate checks that every required header is present in t. It has no
// side effects.
func Validate(t table.Table) Validation {
	present := make(map[string]struct{}, len(t.Headers))
	for _, h := range t.Headers {
		present[NormalizeHeader(h)] = struct{}{}
	}

	var missing []string
	for _, req := range RequiredHeaders {
		if _, ok := present[NormalizeHeader(req)]; !ok {
			missing = append(missing, req)
		}
	}
	return Validation{OK: len(missing) == 0, Missing: missing}
}

// columnIndex maps normalized header names to their first column position.
func columnIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		key := NormalizeHeader(h)
		if _, seen := idx[key]; !seen {
			idx[key] = i
		}
	}
	return idx
}
