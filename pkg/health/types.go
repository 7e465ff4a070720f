package health

import "time"

// Status is a coarse maintenance classification.
type Status string

const (
	StatusActive    Status = "active"
	StatusMinimal   Status = "minimal"
	StatusAbandoned Status = "abandoned"
	StatusUnknown   Status = "unknown"
)

// Frequency classifies the typical gap between releases.
type Frequency string

const (
	FrequencyFrequent   Frequency = "frequent"
	FrequencyRegular    Frequency = "regular"
	FrequencyInfrequent Frequency = "infrequent"
	FrequencyStale      Frequency = "stale"
	FrequencyUnknown    Frequency = "unknown"
)

// Release is one dated package release.
type Release struct {
	Version string    `json:"version"`
	Date    time.Time `json:"date"`
}

// RegistryData is what a package registry reports.
type RegistryData struct {
	LastUpdate      *time.Time
	TotalReleases   int
	Releases        []Release
	MaintainerCount int
	RepositoryURL   string
	LatestVersion   string
}

// RepoData is what the source repository reports.
type RepoData struct {
	LastPush             *time.Time
	ContributorCount     int
	ContributorLocations []string
	Stars                int
	Forks                int
	OpenIssues           int
	Archived             bool
}

// StagnationDetails describes a detected dormancy followed by a release.
type StagnationDetails struct {
	DormantPeriodDays int       `json:"dormantPeriodDays"`
	RecentUpdateDate  time.Time `json:"recentUpdateDate"`
}

// GitHubStats mirrors the repository popularity counters.
type GitHubStats struct {
	Stars      int  `json:"stars"`
	Forks      int  `json:"forks"`
	OpenIssues int  `json:"openIssues"`
	Archived   bool `json:"archived"`
}

// Record is the health assessment of one package. A nil *Record means
// no data was available.
type Record struct {
	LastUpdate           *time.Time         `json:"lastUpdate"`
	DaysSinceLastUpdate  *int               `json:"daysSinceLastUpdate"`
	UpdateFrequency      Frequency          `json:"updateFrequency"`
	TotalReleases        int                `json:"totalReleases"`
	ReleaseHistory       []Release          `json:"releaseHistory"`
	MaintainerCount      int                `json:"maintainerCount"`
	RepositoryURL        string             `json:"repositoryUrl,omitempty"`
	ContributorLocations []string           `json:"contributorLocations"`
	MaintenanceStatus    Status             `json:"maintenanceStatus"`
	IsStagnant           bool               `json:"isStagnant"`
	StagnationDetails    *StagnationDetails `json:"stagnationDetails"`
	GitHubStats          *GitHubStats       `json:"githubStats"`
	LatestVersion        string             `json:"latestVersion,omitempty"`
	Outdated             bool               `json:"outdated"`
}
