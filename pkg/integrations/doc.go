// Package integrations provides HTTP clients for the upstream services an
// SBOM analysis is enriched from. Each service has its own subpackage:
//
//   - [osv]: OSV vulnerability database
//   - [npm]: npm registry release history
//   - [pypi]: Python Package Index release history
//   - [maven]: Maven Central search release history
//   - [github]: GitHub repository signals
//
// # Client Pattern
//
// All clients embed the shared [Client], which caches decoded responses in
// a [cache.Cache] under a per-service namespace:
//
//	backend, _ := cache.NewFileCache(dir)
//	npmClient := npm.NewClient(backend, 24*time.Hour)
//	info, err := npmClient.FetchPackage(ctx, "express", false)
//
// Errors follow one vocabulary: [ErrNotFound] for 404, [ErrRateLimited]
// for 403/429, [ErrNetwork] for transport failures and other statuses, and
// [ErrMalformed] for undecodable bodies. Callers in the pipeline treat all
// of them as "no data".
//
// [osv]: github.com/matzehuels/sbomlens/pkg/integrations/osv
// [npm]: github.com/matzehuels/sbomlens/pkg/integrations/npm
// [pypi]: github.com/matzehuels/sbomlens/pkg/integrations/pypi
// [maven]: github.com/matzehuels/sbomlens/pkg/integrations/maven
// [github]: github.com/matzehuels/sbomlens/pkg/integrations/github
// [cache.Cache]: github.com/matzehuels/sbomlens/pkg/cache.Cache
package integrations
