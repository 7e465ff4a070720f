// Package npm fetches package metadata from the npm registry
// (https://registry.npmjs.org).
//
// # Usage
//
//	client := npm.NewClient(backend, 24*time.Hour)
//	info, err := client.FetchPackage(ctx, "express", false)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(info.TotalReleases, info.LastUpdate)
//
// # Release History
//
// Releases come from the packument's "time" map, excluding the "created"
// and "modified" bookkeeping entries. The package's last update is the
// "modified" timestamp, falling back to the newest release.
//
// Scoped names are requested with the slash escaped (@scope%2fname).
package npm
