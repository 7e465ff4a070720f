package github

import "time"

// Signals are the repository activity signals for one GitHub repository.
type Signals struct {
	FullName             string     `json:"fullName"`
	Description          string     `json:"description,omitempty"`
	Stars                int        `json:"stars"`
	Forks                int        `json:"forks"`
	OpenIssues           int        `json:"openIssues"`
	LastPush             *time.Time `json:"lastPush,omitempty"`
	CreatedAt            *time.Time `json:"createdAt,omitempty"`
	Archived             bool       `json:"archived"`
	Disabled             bool       `json:"disabled"`
	ContributorCount     int        `json:"contributorCount"`
	ContributorLocations []string   `json:"contributorLocations"`
	RecentCommitCount    int        `json:"recentCommitCount"`
	LastCommitDate       *time.Time `json:"lastCommitDate,omitempty"`
}

type repoResponse struct {
	FullName    string     `json:"full_name"`
	Description string     `json:"description"`
	Stars       int        `json:"stargazers_count"`
	Forks       int        `json:"forks_count"`
	OpenIssues  int        `json:"open_issues_count"`
	PushedAt    *time.Time `json:"pushed_at"`
	CreatedAt   *time.Time `json:"created_at"`
	Archived    bool       `json:"archived"`
	Disabled    bool       `json:"disabled"`
}

type contributor struct {
	Login string `json:"login"`
}

type user struct {
	Location string `json:"location"`
}

type commit struct {
	Commit struct {
		Committer struct {
			Date *time.Time `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
}
