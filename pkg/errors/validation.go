package errors

import (
	"path/filepath"
	"slices"
	"strings"
	"unicode"
)

// Severity names accepted in query filters.
var severityNames = []string{"CRITICAL", "HIGH", "MEDIUM", "LOW", "UNKNOWN"}

// Risk levels accepted in query filters.
var riskLevels = []string{"low", "medium", "high"}

// Sort fields accepted by the package listing.
var sortFields = []string{"name", "risk", "vulnerabilities", "lastUpdate"}

// ValidateFileName checks an uploaded file name and returns its base name.
// Browsers may send full client paths; only the last element is kept.
func ValidateFileName(name string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "" || base == "." || base == "/" {
		return "", New(ErrCodeMissingFile, "file name cannot be empty")
	}
	if len(base) > 255 {
		return "", New(ErrCodeInvalidInput, "file name too long (max 255 characters)")
	}
	for _, r := range base {
		if unicode.IsControl(r) {
			return "", New(ErrCodeInvalidInput, "file name contains control characters")
		}
	}
	return base, nil
}

// ValidateSeverities checks a comma-separated severity filter.
// Matching is case-insensitive; an empty list is valid.
func ValidateSeverities(csv string) error {
	for _, s := range SplitList(csv) {
		if !slices.Contains(severityNames, strings.ToUpper(s)) {
			return New(ErrCodeInvalidQuery, "unknown severity %q (want one of %s)", s, strings.Join(severityNames, ", "))
		}
	}
	return nil
}

// ValidateRiskLevels checks a comma-separated risk level filter.
func ValidateRiskLevels(csv string) error {
	for _, s := range SplitList(csv) {
		if !slices.Contains(riskLevels, strings.ToLower(s)) {
			return New(ErrCodeInvalidQuery, "unknown risk level %q (want one of %s)", s, strings.Join(riskLevels, ", "))
		}
	}
	return nil
}

// ValidateSort checks the sort field and order of a package listing.
func ValidateSort(field, order string) error {
	if field != "" && !slices.Contains(sortFields, field) {
		return New(ErrCodeInvalidQuery, "unknown sort field %q (want one of %s)", field, strings.Join(sortFields, ", "))
	}
	if order != "" && order != "asc" && order != "desc" {
		return New(ErrCodeInvalidQuery, "sort order must be asc or desc")
	}
	return nil
}

// ValidateURL ensures rawURL uses an http or https scheme.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}

// SplitList splits a comma-separated list, trimming blanks.
func SplitList(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
