package sbom

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	spdxDocumentID = "SPDXRef-DOCUMENT"
	noAssertion    = "NOASSERTION"
	noneValue      = "NONE"
)

type spdxDocument struct {
	Packages []spdxPackage `json:"packages"`
}

type spdxPackage struct {
	SPDXID           string            `json:"SPDXID"`
	Name             text              `json:"name"`
	VersionInfo      text              `json:"versionInfo"`
	LicenseConcluded string            `json:"licenseConcluded"`
	LicenseDeclared  string            `json:"licenseDeclared"`
	Description      string            `json:"description"`
	Summary          string            `json:"summary"`
	Supplier         text              `json:"supplier"`
	Originator       text              `json:"originator"`
	DownloadLocation string            `json:"downloadLocation"`
	ExternalRefs     []spdxExternalRef `json:"externalRefs"`
}

type spdxExternalRef struct {
	ReferenceCategory string `json:"referenceCategory"`
	ReferenceType     string `json:"referenceType"`
	ReferenceLocator  string `json:"referenceLocator"`
}

// NormalizeSPDX decodes an SPDX JSON document. The document's own
// describing entry is skipped. SPDX relationships are not read, so the
// result never carries dependency information.
func NormalizeSPDX(data []byte) (*Document, error) {
	var src spdxDocument
	if err := json.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("decode spdx: %w", err)
	}

	doc := &Document{Format: FormatSPDX, Packages: []Package{}}
	for _, p := range src.Packages {
		if p.SPDXID == spdxDocumentID {
			continue
		}
		purl := spdxPURL(p.ExternalRefs)
		pkg := Package{
			ID:            uuid.NewString(),
			Name:          string(p.Name),
			Version:       versionOrUnknown(string(p.VersionInfo)),
			Ecosystem:     spdxEcosystem(p, purl),
			License:       firstNonEmpty(asserted(p.LicenseConcluded), asserted(p.LicenseDeclared), UnknownLicense),
			PURL:          purl,
			Description:   firstNonEmpty(p.Description, p.Summary),
			Author:        firstNonEmpty(string(p.Supplier), string(p.Originator)),
			RepositoryURL: asserted(p.DownloadLocation),
			BOMRef:        p.SPDXID,
		}
		if info, ok := parsePURL(purl); ok {
			pkg.Group = info.Namespace
		}
		doc.Packages = append(doc.Packages, pkg)
	}
	return doc, nil
}

func spdxPURL(refs []spdxExternalRef) string {
	for _, r := range refs {
		if r.ReferenceType == "purl" ||
			r.ReferenceCategory == "PACKAGE-MANAGER" ||
			r.ReferenceCategory == "PACKAGE_MANAGER" ||
			strings.HasPrefix(r.ReferenceLocator, "pkg:") {
			return r.ReferenceLocator
		}
	}
	return ""
}

func spdxEcosystem(p spdxPackage, purl string) string {
	if eco, ok := ecosystemFromPURL(purl); ok {
		return eco
	}

	name := strings.ToLower(string(p.Name))
	loc := p.DownloadLocation
	switch {
	case strings.Contains(name, "npm") || strings.HasPrefix(name, "@"):
		return EcosystemNPM
	case strings.Contains(loc, "pypi.org"):
		return EcosystemPyPI
	case strings.Contains(loc, "maven"):
		return EcosystemMaven
	case strings.Contains(loc, "nuget"):
		return EcosystemNuGet
	case strings.Contains(loc, "rubygems"):
		return EcosystemGems
	}
	return EcosystemUnknown
}

// asserted returns v unless it is one of SPDX's placeholder values.
func asserted(v string) string {
	if v == noAssertion || v == noneValue {
		return ""
	}
	return v
}
