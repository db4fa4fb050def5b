// Package pipeline runs the two repo-fit stages: extracting a user's GitHub
// data and scoring their repositories against a job description.
package pipeline

import (
	"context"
	"fmt"

	"github.com/kevinmichaelchen/repo-fit/internal/logging"
	"github.com/kevinmichaelchen/repo-fit/internal/models"
)

// Source is the subset of the GitHub client used during extraction.
type Source interface {
	FetchProfile(ctx context.Context, username string) (*models.Profile, error)
	FetchRepositories(ctx context.Context, username string) ([]models.Repository, error)
	FetchLanguageHistogram(ctx context.Context, repos []models.Repository) map[string]int
}

// Extract gathers the profile, repositories and language histogram of
// username. Only a missing profile is fatal; a failed repository listing
// yields an empty list.
func Extract(ctx context.Context, src Source, username string) (*models.GitHubData, error) {
	logger := logging.FromContext(ctx)
	progress := logging.NewProgress(logger)
	logger.Info("Extracting data", "user", username)

	profile, err := src.FetchProfile(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}

	repos, err := src.FetchRepositories(ctx, username)
	if err != nil {
		logger.Warn("Error fetching repos", "err", err)
		repos = nil
	}
	if repos == nil {
		repos = []models.Repository{}
	}

	languages := src.FetchLanguageHistogram(ctx, repos)

	data := &models.GitHubData{
		Profile:      *profile,
		Repositories: repos,
		Languages:    languages,
		Stats:        models.ComputeStats(repos),
	}
	progress.Done(fmt.Sprintf("Extracted %d repos", len(repos)))
	return data, nil
}
