package models

import "time"

type Profile struct {
	Username    string    `json:"username"`
	Name        *string   `json:"name"`
	Bio         *string   `json:"bio"`
	Location    *string   `json:"location"`
	Email       *string   `json:"email"`
	Blog        *string   `json:"blog"`
	Company     *string   `json:"company"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	PublicRepos int       `json:"public_repos"`
	AvatarURL   string    `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
}

type Repository struct {
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	Language    *string   `json:"language"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	IsFork      bool      `json:"is_fork"`

	// LanguagesURL is only needed while extracting the language histogram.
	LanguagesURL string `json:"-"`
}

type Stats struct {
	TotalRepos int `json:"total_repos"`
	TotalStars int `json:"total_stars"`
	TotalForks int `json:"total_forks"`
}

// GitHubData is the extraction snapshot consumed by the analyzer.
type GitHubData struct {
	Profile      Profile        `json:"profile"`
	Repositories []Repository   `json:"repositories"`
	Languages    map[string]int `json:"languages"`
	Stats        Stats          `json:"stats"`
}

// ComputeStats totals repo, star and fork counts.
func ComputeStats(repos []Repository) Stats {
	s := Stats{TotalRepos: len(repos)}
	for _, r := range repos {
		s.TotalStars += r.Stars
		s.TotalForks += r.Forks
	}
	return s
}
