// Package sbom turns CycloneDX and SPDX JSON documents into one canonical
// package list plus raw dependency edges.
//
// Parsing is a two step affair: [Detect] tags the decoded document with a
// [Format], then the matching normalizer ([NormalizeCycloneDX] or
// [NormalizeSPDX]) decodes it into typed structs and maps them onto
// [Package]. [Parse] does both:
//
//	doc, err := sbom.Parse(data)
//	if errors.Is(err, errors.ErrCodeUnsupportedFormat) { ... }
//	for _, p := range doc.Packages {
//	    fmt.Println(p.Name, p.Version, p.Ecosystem)
//	}
//
// Only CycloneDX exposes a dependency graph. [Document.Dependencies] is nil
// for SPDX input and for CycloneDX documents without a dependencies section.
package sbom
