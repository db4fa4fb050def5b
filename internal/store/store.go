// Package store reads and writes the JSON files exchanged between the
// extract and analyze steps.
package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kevinmichaelchen/repo-fit/internal/models"
)

const (
	DefaultDataFile      = "github_data.json"
	DefaultAnalysisFile  = "repo_analysis.json"
	DetailedAnalysisFile = "repo_analysis_detailed.json"
)

// SaveResults writes every result, not just the top ones, replacing any
// existing file at path.
func SaveResults(path string, results []models.Result) error {
	if results == nil {
		results = []models.Result{}
	}
	return writeJSON(path, results)
}

func LoadResults(path string) ([]models.Result, error) {
	var results []models.Result
	if err := readJSON(path, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func SaveGitHubData(path string, data *models.GitHubData) error {
	return writeJSON(path, data)
}

func LoadGitHubData(path string) (*models.GitHubData, error) {
	var data models.GitHubData
	if err := readJSON(path, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
