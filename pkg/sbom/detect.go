package sbom

import "strings"

// Detect reports which schema a decoded document follows. Checks run in
// order and the first match wins: an explicit bomFormat or CycloneDX
// $schema, an SPDX version field, a components array, and finally a
// packages array whose first entry carries an SPDXID. Anything else is
// [FormatNone].
func Detect(doc map[string]any) Format {
	if doc == nil {
		return FormatNone
	}
	if s, _ := doc["bomFormat"].(string); s == "CycloneDX" {
		return FormatCycloneDX
	}
	if s, _ := doc["$schema"].(string); strings.Contains(s, "cyclonedx") {
		return FormatCycloneDX
	}

	for _, k := range []string{"spdxVersion", "SPDXID", "SPDXVersion"} {
		if present(doc[k]) {
			return FormatSPDX
		}
	}

	if _, ok := doc["components"].([]any); ok {
		return FormatCycloneDX
	}

	if pkgs, ok := doc["packages"].([]any); ok && len(pkgs) > 0 {
		if first, ok := pkgs[0].(map[string]any); ok && present(first["SPDXID"]) {
			return FormatSPDX
		}
	}
	return FormatNone
}

// present treats null, false, 0 and "" as absent.
func present(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case float64:
		return x != 0
	default:
		return true
	}
}
