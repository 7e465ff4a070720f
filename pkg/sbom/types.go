package sbom

import (
	"bytes"
	"encoding/json"
)

// Format identifies the schema of an SBOM document.
type Format string

const (
	FormatNone      Format = ""
	FormatCycloneDX Format = "cyclonedx"
	FormatSPDX      Format = "spdx"
)

// RootRef is the synthetic key for a declared root component that is not
// itself listed as a package.
const RootRef = "root"

// UnknownVersion is used when a component declares no version.
const UnknownVersion = "unknown"

// UnknownLicense is used when no usable license is declared.
const UnknownLicense = "Unknown"

// Package is one component of the SBOM in canonical form.
type Package struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Version       string `json:"version"`
	Group         string `json:"group,omitempty"`
	Ecosystem     string `json:"ecosystem"`
	License       string `json:"license"`
	PURL          string `json:"purl,omitempty"`
	Description   string `json:"description,omitempty"`
	Author        string `json:"author,omitempty"`
	RepositoryURL string `json:"repositoryUrl,omitempty"`

	// BOMRef is the key the source document uses to refer to this package.
	BOMRef string `json:"-"`
}

// Key returns the name@version identity used to match lookups.
func (p Package) Key() string { return p.Name + "@" + p.Version }

// Edge means From depends on To. Both are package ids or [RootRef].
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Dependencies is the dependency information of a document.
type Dependencies struct {
	// RootID is the id of the declared root package, [RootRef] when the root
	// is not a listed package, or empty when no root is declared.
	RootID string `json:"rootId,omitempty"`
	Edges  []Edge `json:"edges"`
}

// Document is a normalized SBOM.
type Document struct {
	Format       Format        `json:"format"`
	Packages     []Package     `json:"packages"`
	Dependencies *Dependencies `json:"dependencies"`
}

// text decodes a JSON string, or the "name" of an object, and ignores
// anything else. Real-world SBOMs disagree on whether fields such as
// author or supplier are strings or objects.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*t = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = text(s)
	case data[0] == '{':
		var o struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(data, &o); err == nil {
			*t = text(o.Name)
		}
	default:
		// Numbers are kept verbatim, e.g. "version": 2.
		if data[0] >= '0' && data[0] <= '9' {
			*t = text(data)
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
