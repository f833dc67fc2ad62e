package id

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// OriginKey identifies the source document of an accounting posting: a
// two-letter type code plus the document's numeric key.
type OriginKey struct {
	Code string
	Key  int
}

// String formats the key like "FS-1234".
func (k OriginKey) String() string {
	return FormatOriginKey(k.Code, k.Key)
}

// FormatOriginKey returns an origin key like "FS-1234".
func FormatOriginKey(code string, key int) string {
	return fmt.Sprintf("%s-%d", strings.ToUpper(code), key)
}

// ParseOriginKey parses "FS-1234", "FS1234", "fs 1234" or "FS:1234" into its
// code and numeric key.
func ParseOriginKey(s string) (OriginKey, error) {
	raw := strings.TrimSpace(s)
	if len(raw) < 3 {
		return OriginKey{}, fmt.Errorf("invalid origin key: %q", s)
	}

	code := strings.ToUpper(raw[:2])
	if !isLetters(code) {
		return OriginKey{}, fmt.Errorf("invalid origin code in %q", s)
	}

	rest := strings.TrimLeft(raw[2:], " -:/")
	if rest == "" {
		return OriginKey{}, fmt.Errorf("missing key in origin %q", s)
	}

	key, err := strconv.Atoi(rest)
	if err != nil || key < 0 {
		return OriginKey{}, fmt.Errorf("invalid key in origin %q", s)
	}
	return OriginKey{Code: code, Key: key}, nil
}

// HasOriginCode reports whether s starts with the given two-letter code,
// ignoring case and leading spaces.
func HasOriginCode(s, code string) bool {
	s = strings.TrimSpace(s)
	return len(s) >= len(code) && strings.EqualFold(s[:len(code)], code)
}

func isLetters(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// nfPattern matches "NF 555", "nf.555", "NF: 000555" and "NF nº 555".
// "NF-e 555" does not match.
var nfPattern = regexp.MustCompile(`(?i)\bNF\s*[.:\-]?\s*(?:n\s*[º°o.]\s*)?(\d+)`)

// InvoiceNumbers returns every invoice number referenced as "NF <number>" in
// a free-text history, in order of appearance.
func InvoiceNumbers(text string) []int {
	var out []int
	for _, m := range nfPattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// ReferencesInvoice reports whether text cites the invoice number.
func ReferencesInvoice(text string, number int) bool {
	for _, n := range InvoiceNumbers(text) {
		if n == number {
			return true
		}
	}
	return false
}
