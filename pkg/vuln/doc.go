// Package vuln defines the vulnerability record and a rate-paced batch
// lookup over any [Source].
//
// A [Lookup] fans queries out in fixed-size batches, waits between
// batches, and never fails as a whole: a query that errors or times out
// simply contributes an empty list.
//
//	l := vuln.Lookup{Source: osvClient, Logger: logger}
//	found := l.Run(ctx, queries) // keyed by name@version
package vuln
