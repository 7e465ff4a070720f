// Package health derives a maintenance health record for a package from
// registry release data and repository activity.
//
// [Analyze] is a pure function of its inputs and the supplied clock. Either
// input may be nil; the record is nil only when both are.
//
// # Stagnation
//
// A release that lands shortly after a long silence is a weak signal of a
// hijacked maintainer account. [DetectStagnation] flags a package when its
// newest release is at most 90 days old and the gap to the release before
// it is at least 365 days.
package health
