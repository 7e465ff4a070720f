package sbom

import (
	"regexp"
	"strings"

	"github.com/package-url/packageurl-go"
)

// Ecosystem names as reported on packages.
const (
	EcosystemNPM     = "npm"
	EcosystemPyPI    = "PyPI"
	EcosystemMaven   = "Maven"
	EcosystemNuGet   = "NuGet"
	EcosystemGems    = "RubyGems"
	EcosystemUnknown = "unknown"
)

var purlTypes = map[string]string{
	"npm":       EcosystemNPM,
	"pypi":      EcosystemPyPI,
	"maven":     EcosystemMaven,
	"nuget":     EcosystemNuGet,
	"gem":       EcosystemGems,
	"cargo":     "crates.io",
	"golang":    "Go",
	"composer":  "Packagist",
	"cocoapods": "CocoaPods",
	"swift":     "Swift",
	"pub":       "Pub",
	"hex":       "Hex",
	"deb":       "Debian",
	"rpm":       "RPM",
	"apk":       "Alpine",
	"docker":    "Docker",
	"github":    "GitHub",
}

var componentTypes = map[string]string{
	"library":          EcosystemUnknown,
	"framework":        EcosystemUnknown,
	"application":      EcosystemUnknown,
	"container":        "container",
	"operating-system": "os",
	"device":           "device",
	"firmware":         "firmware",
	"file":             "file",
}

var purlPrefix = regexp.MustCompile(`^pkg:([^/]+)/`)

// purlInfo is the part of a package URL the normalizers care about.
type purlInfo struct {
	Type      string
	Namespace string
}

// parsePURL extracts type and namespace from a package URL. Inputs the
// strict parser rejects still yield their type when it can be read off the
// "pkg:type/" prefix.
func parsePURL(s string) (purlInfo, bool) {
	if s == "" {
		return purlInfo{}, false
	}
	if p, err := packageurl.FromString(s); err == nil && p.Type != "" {
		return purlInfo{Type: strings.ToLower(p.Type), Namespace: p.Namespace}, true
	}
	if m := purlPrefix.FindStringSubmatch(s); m != nil {
		return purlInfo{Type: strings.ToLower(m[1])}, true
	}
	return purlInfo{}, false
}

// EcosystemForPURLType maps a purl type to an ecosystem name. Unmapped
// types are returned unchanged.
func EcosystemForPURLType(typ string) string {
	if eco, ok := purlTypes[typ]; ok {
		return eco
	}
	return typ
}

// ecosystemFromPURL returns the ecosystem encoded in purl, if any.
func ecosystemFromPURL(purl string) (string, bool) {
	info, ok := parsePURL(purl)
	if !ok {
		return "", false
	}
	return EcosystemForPURLType(info.Type), true
}
