package health

import (
	"cmp"
	"math"
	"slices"
	"time"

	version "github.com/hashicorp/go-version"
	"github.com/samber/lo"
)

const (
	// DormantDays is the minimum gap before the newest release that counts
	// as a dormancy.
	DormantDays = 365
	// RecentDays is how recent the newest release must be to flag it.
	RecentDays = 90

	activeDays  = 180
	minimalDays = 365

	frequencyWindow = 10
)

// Analyze builds the health record for a package. installed is the
// version declared in the SBOM and is only used to compute Outdated.
func Analyze(reg *RegistryData, repo *RepoData, installed string, now time.Time) *Record {
	if reg == nil && repo == nil {
		return nil
	}

	rec := &Record{
		ReleaseHistory:       []Release{},
		ContributorLocations: []string{},
		MaintenanceStatus:    StatusUnknown,
		UpdateFrequency:      FrequencyUnknown,
	}

	switch {
	case reg != nil && reg.LastUpdate != nil:
		rec.LastUpdate = reg.LastUpdate
	case repo != nil && repo.LastPush != nil:
		rec.LastUpdate = repo.LastPush
	}
	if rec.LastUpdate != nil {
		days := daysBetween(*rec.LastUpdate, now)
		rec.DaysSinceLastUpdate = &days
		rec.MaintenanceStatus = statusFor(days)
	}

	if reg != nil {
		rec.TotalReleases = reg.TotalReleases
		if reg.Releases != nil {
			rec.ReleaseHistory = reg.Releases
		}
		rec.MaintainerCount = reg.MaintainerCount
		rec.RepositoryURL = reg.RepositoryURL
		rec.LatestVersion = reg.LatestVersion
		rec.Outdated = isOutdated(installed, reg.LatestVersion)

		rec.UpdateFrequency = UpdateFrequency(reg.Releases)
		if d := DetectStagnation(reg.Releases, now); d != nil {
			rec.IsStagnant = true
			rec.StagnationDetails = d
		}
	}

	if repo != nil {
		if rec.MaintainerCount == 0 {
			rec.MaintainerCount = repo.ContributorCount
		}
		if len(repo.ContributorLocations) > 0 {
			rec.ContributorLocations = lo.Uniq(repo.ContributorLocations)
		}
		rec.GitHubStats = &GitHubStats{
			Stars:      repo.Stars,
			Forks:      repo.Forks,
			OpenIssues: repo.OpenIssues,
			Archived:   repo.Archived,
		}
	}
	return rec
}

// DetectStagnation returns details when the newest release follows a gap
// of at least [DormantDays] and is itself at most [RecentDays] old, and
// nil otherwise. Both spans are whole days, rounded down.
func DetectStagnation(history []Release, now time.Time) *StagnationDetails {
	if len(history) < 2 {
		return nil
	}
	sorted := newestFirst(history)
	latest, previous := sorted[0].Date, sorted[1].Date

	sinceLatest := daysBetween(latest, now)
	gap := daysBetween(previous, latest)
	if sinceLatest > RecentDays || gap < DormantDays {
		return nil
	}
	return &StagnationDetails{DormantPeriodDays: gap, RecentUpdateDate: latest}
}

// UpdateFrequency classifies the mean gap between up to the 11 newest
// releases.
func UpdateFrequency(history []Release) Frequency {
	if len(history) < 2 {
		return FrequencyUnknown
	}
	sorted := newestFirst(history)
	n := min(len(sorted)-1, frequencyWindow)

	var total float64
	for i := range n {
		total += sorted[i].Date.Sub(sorted[i+1].Date).Hours() / 24
	}
	avg := total / float64(n)

	switch {
	case avg <= 14:
		return FrequencyFrequent
	case avg <= 60:
		return FrequencyRegular
	case avg <= 180:
		return FrequencyInfrequent
	default:
		return FrequencyStale
	}
}

func statusFor(days int) Status {
	switch {
	case days <= activeDays:
		return StatusActive
	case days <= minimalDays:
		return StatusMinimal
	default:
		return StatusAbandoned
	}
}

func newestFirst(history []Release) []Release {
	sorted := slices.Clone(history)
	slices.SortStableFunc(sorted, func(a, b Release) int {
		return cmp.Compare(b.Date.UnixNano(), a.Date.UnixNano())
	})
	return sorted
}

// daysBetween is the number of whole days from a to b, rounded down.
func daysBetween(a, b time.Time) int {
	return int(math.Floor(b.Sub(a).Hours() / 24))
}

func isOutdated(installed, latest string) bool {
	if installed == "" || latest == "" {
		return false
	}
	iv, err := version.NewVersion(installed)
	if err != nil {
		return false
	}
	lv, err := version.NewVersion(latest)
	if err != nil {
		return false
	}
	return iv.LessThan(lv)
}
