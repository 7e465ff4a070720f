package sbom

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// =============================================================================
// Wire Types
// =============================================================================

type cdxBOM struct {
	BOMFormat    string           `json:"bomFormat"`
	Metadata     *cdxMetadata     `json:"metadata"`
	Components   []cdxComponent   `json:"components"`
	Dependencies *[]cdxDependency `json:"dependencies"`
}

type cdxMetadata struct {
	Component *cdxComponent `json:"component"`
}

type cdxComponent struct {
	BOMRef             string           `json:"bom-ref"`
	Type               string           `json:"type"`
	Group              text             `json:"group"`
	Name               text             `json:"name"`
	Version            text             `json:"version"`
	PURL               string           `json:"purl"`
	Description        text             `json:"description"`
	Author             text             `json:"author"`
	Publisher          text             `json:"publisher"`
	Licenses           []cdxLicense     `json:"licenses"`
	ExternalReferences []cdxExternalRef `json:"externalReferences"`
	Components         []cdxComponent   `json:"components"`
}

type cdxLicense struct {
	License *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"license"`
	Expression string `json:"expression"`
}

type cdxExternalRef struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type cdxDependency struct {
	Ref       string   `json:"ref"`
	DependsOn []string `json:"dependsOn"`
}

// ref returns the key dependency entries use to refer to c.
func (c cdxComponent) ref() string {
	return firstNonEmpty(c.BOMRef, c.PURL, string(c.Name)+"@"+versionOrUnknown(string(c.Version)))
}

// =============================================================================
// Normalization
// =============================================================================

// NormalizeCycloneDX decodes a CycloneDX JSON document. Nested components
// are flattened into the package list in document order.
func NormalizeCycloneDX(data []byte) (*Document, error) {
	var bom cdxBOM
	if err := json.Unmarshal(data, &bom); err != nil {
		return nil, fmt.Errorf("decode cyclonedx: %w", err)
	}

	doc := &Document{Format: FormatCycloneDX, Packages: []Package{}}
	refs := make(map[string]string)

	var walk func([]cdxComponent)
	walk = func(components []cdxComponent) {
		for _, c := range components {
			pkg := cdxPackage(c)
			doc.Packages = append(doc.Packages, pkg)
			if _, seen := refs[pkg.BOMRef]; !seen {
				refs[pkg.BOMRef] = pkg.ID
			}
			walk(c.Components)
		}
	}
	walk(bom.Components)

	if bom.Dependencies == nil {
		return doc, nil
	}

	deps := &Dependencies{Edges: []Edge{}}
	rootRef := ""
	if bom.Metadata != nil && bom.Metadata.Component != nil {
		rootRef = bom.Metadata.Component.ref()
		if id, ok := refs[rootRef]; ok {
			deps.RootID = id
		} else {
			deps.RootID = RootRef
		}
	}

	resolve := func(ref string) (string, bool) {
		if id, ok := refs[ref]; ok {
			return id, true
		}
		if rootRef != "" && ref == rootRef {
			return deps.RootID, true
		}
		return "", false
	}

	seen := make(map[Edge]struct{})
	for _, d := range *bom.Dependencies {
		from, ok := resolve(d.Ref)
		if !ok {
			continue
		}
		for _, target := range d.DependsOn {
			to, ok := resolve(target)
			if !ok || to == from {
				continue
			}
			e := Edge{From: from, To: to}
			if _, dup := seen[e]; dup {
				continue
			}
			seen[e] = struct{}{}
			deps.Edges = append(deps.Edges, e)
		}
	}
	doc.Dependencies = deps
	return doc, nil
}

func cdxPackage(c cdxComponent) Package {
	pkg := Package{
		ID:            uuid.NewString(),
		Name:          string(c.Name),
		Version:       versionOrUnknown(string(c.Version)),
		Group:         string(c.Group),
		Ecosystem:     cdxEcosystem(c.Type, c.PURL),
		License:       cdxLicenseName(c.Licenses),
		PURL:          c.PURL,
		Description:   string(c.Description),
		Author:        firstNonEmpty(string(c.Author), string(c.Publisher)),
		RepositoryURL: cdxRepositoryURL(c.ExternalReferences),
	}
	if pkg.Group == "" {
		if info, ok := parsePURL(c.PURL); ok {
			pkg.Group = info.Namespace
		}
	}
	pkg.BOMRef = c.ref()
	return pkg
}

func cdxEcosystem(componentType, purl string) string {
	if eco, ok := ecosystemFromPURL(purl); ok {
		return eco
	}
	if eco, ok := componentTypes[componentType]; ok {
		return eco
	}
	return EcosystemUnknown
}

func cdxLicenseName(licenses []cdxLicense) string {
	if len(licenses) == 0 {
		return UnknownLicense
	}
	first := licenses[0]
	if first.License != nil {
		return firstNonEmpty(first.License.ID, first.License.Name, UnknownLicense)
	}
	return firstNonEmpty(first.Expression, UnknownLicense)
}

func cdxRepositoryURL(refs []cdxExternalRef) string {
	for _, r := range refs {
		switch r.Type {
		case "vcs", "website", "distribution":
			return r.URL
		}
	}
	return ""
}

func versionOrUnknown(v string) string {
	if v == "" {
		return UnknownVersion
	}
	return v
}
