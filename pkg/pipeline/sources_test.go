package pipeline

import (
	"testing"
	"time"

	"github.com/matzehuels/sbomlens/pkg/integrations"
	"github.com/matzehuels/sbomlens/pkg/integrations/github"
	"github.com/matzehuels/sbomlens/pkg/sbom"
)

func TestDefaultSources(t *testing.T) {
	s := DefaultSources(nil, SourceOptions{})
	if s.Vulnerabilities == nil || s.Repositories == nil {
		t.Fatal("default sources must include OSV and GitHub")
	}
	for _, eco := range []string{"npm", "pypi", "maven"} {
		if s.Registries[eco] == nil {
			t.Errorf("missing registry for %s", eco)
		}
	}
}

func TestRegistryFor(t *testing.T) {
	s := DefaultSources(nil, SourceOptions{})

	tests := []struct {
		pkg      sbom.Package
		wantName string
		wantOK   bool
	}{
		{sbom.Package{Name: "express", Ecosystem: "npm"}, "express", true},
		{sbom.Package{Name: "requests", Ecosystem: "PyPI"}, "requests", true},
		{sbom.Package{Name: "guava", Group: "com.google.guava", Ecosystem: "Maven"}, "com.google.guava:guava", true},
		{sbom.Package{Name: "junit:junit", Ecosystem: "Maven"}, "junit:junit", true},
		{sbom.Package{Name: "guava", Ecosystem: "Maven"}, "", false},
		{sbom.Package{Name: "rails", Ecosystem: "RubyGems"}, "", false},
		{sbom.Package{Name: "x", Ecosystem: "unknown"}, "", false},
	}
	for _, tt := range tests {
		_, name, ok := s.registryFor(tt.pkg)
		if ok != tt.wantOK || name != tt.wantName {
			t.Errorf("registryFor(%s/%s) = %q, %v; want %q, %v",
				tt.pkg.Ecosystem, tt.pkg.Name, name, ok, tt.wantName, tt.wantOK)
		}
	}
}

func TestRegistryData(t *testing.T) {
	if registryData(nil) != nil {
		t.Error("nil info should convert to nil")
	}

	released := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	data := registryData(&integrations.RegistryInfo{
		TotalReleases: 3,
		Releases:      []integrations.Release{{Version: "1.0.0", Date: released}},
		Maintainers:   []string{"a", "b"},
		LatestVersion: "1.0.0",
	})
	if data.LastUpdate != nil {
		t.Error("zero LastUpdate should convert to nil")
	}
	if data.MaintainerCount != 2 || data.TotalReleases != 3 {
		t.Errorf("unexpected counts: %+v", data)
	}
	if len(data.Releases) != 1 || !data.Releases[0].Date.Equal(released) {
		t.Errorf("releases not converted: %+v", data.Releases)
	}
}

func TestRepoData(t *testing.T) {
	if repoData(nil) != nil {
		t.Error("nil signals should convert to nil")
	}
	data := repoData(&github.Signals{Stars: 5, Archived: true, ContributorCount: 3})
	if data.Stars != 5 || !data.Archived || data.ContributorCount != 3 {
		t.Errorf("unexpected repo data: %+v", data)
	}
}
