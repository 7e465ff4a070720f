// Package maven provides an HTTP client for the Maven Central search API.
//
// # Overview
//
// Maven Central does not publish per-package metadata documents the way
// npm or PyPI do, so release history is reconstructed from the solr
// "gav" core: one document per published version, each carrying a
// millisecond upload timestamp.
//
// # Usage
//
//	client := maven.NewClient(backend, 24*time.Hour)
//	info, err := client.FetchArtifact(ctx, "com.google.guava:guava", false)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(info.LastUpdate, len(info.Releases))
//
// # Coordinates
//
// Artifacts are identified by "groupId:artifactId". Use [Coordinate] to
// build one from a package group and name; a name that already contains a
// colon is taken as a full coordinate.
//
// # Limitations
//
// Maven Central exposes no maintainer list, so Maintainers is always
// empty, and only the 20 most recent versions are requested.
package maven
