// Package osv queries the OSV.dev vulnerability database.
//
// # Usage
//
//	client := osv.NewClient(backend, 24*time.Hour)
//	vulns, err := client.Query(ctx, vuln.Query{Ecosystem: "npm", Name: "lodash", Version: "4.17.20"})
//
// The client implements [vuln.Source]. Packages whose ecosystem OSV does
// not know are answered with no vulnerabilities and no request.
//
// # Severity
//
// OSV advisories carry CVSS entries whose score is either a number or a
// full vector string. Numeric CVSS v3 scores win over v2 scores; vector
// strings are ignored. Without a usable score the advisory's
// database_specific.severity label is used, and UNKNOWN otherwise.
package osv
