// Package surrealdb keeps a history of analysis runs so that results from
// different job descriptions and runs can be compared later.
package surrealdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	sdk "github.com/surrealdb/surrealdb.go"

	"github.com/kevinmichaelchen/repo-fit/internal/config"
	"github.com/kevinmichaelchen/repo-fit/internal/models"
)

// ErrInvalidLimit is returned for history queries asking for fewer than one row.
var ErrInvalidLimit = errors.New("limit must be at least 1")

type Client struct {
	db *sdk.DB
}

func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	db, err := sdk.FromEndpointURLString(ctx, cfg.SurrealURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, sdk.Auth{
		Namespace: cfg.SurrealNS,
		Database:  cfg.SurrealDB,
		Username:  cfg.SurrealUser,
		Password:  cfg.SurrealPass,
	}); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("signing in: %w", err)
	}

	if err := db.Use(ctx, cfg.SurrealNS, cfg.SurrealDB); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("selecting ns/db: %w", err)
	}

	return &Client{db: db}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.db.Close(ctx)
}

func (c *Client) InitSchema(ctx context.Context) error {
	schema := `
DEFINE TABLE IF NOT EXISTS analysis SCHEMAFULL;

DEFINE FIELD IF NOT EXISTS run_id      ON TABLE analysis TYPE string;
DEFINE FIELD IF NOT EXISTS username    ON TABLE analysis TYPE string;
DEFINE FIELD IF NOT EXISTS variant     ON TABLE analysis TYPE string;
DEFINE FIELD IF NOT EXISTS provider    ON TABLE analysis TYPE string;
DEFINE FIELD IF NOT EXISTS repo_name   ON TABLE analysis TYPE string;
DEFINE FIELD IF NOT EXISTS repo_url    ON TABLE analysis TYPE string;
DEFINE FIELD IF NOT EXISTS language    ON TABLE analysis TYPE option<string>;
DEFINE FIELD IF NOT EXISTS stars       ON TABLE analysis TYPE int;
DEFINE FIELD IF NOT EXISTS score       ON TABLE analysis TYPE int;
DEFINE FIELD IF NOT EXISTS relevance   ON TABLE analysis TYPE string;
DEFINE FIELD IF NOT EXISTS reasoning   ON TABLE analysis TYPE string;
DEFINE FIELD IF NOT EXISTS analyzed_at ON TABLE analysis TYPE string;

DEFINE INDEX IF NOT EXISTS idx_run_repo ON TABLE analysis FIELDS run_id, repo_name UNIQUE;
DEFINE INDEX IF NOT EXISTS idx_score    ON TABLE analysis FIELDS score;
`
	_, err := sdk.Query[any](ctx, c.db, schema, nil)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// Run identifies one analyze invocation.
type Run struct {
	Username string
	Variant  string
	Provider string
}

// RecordRun stores every result under a fresh run id and returns that id.
func (c *Client) RecordRun(ctx context.Context, run Run, results []models.Result) (string, error) {
	runID := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)

	for _, r := range results {
		data := recordData(run, runID, now, r)
		_, err := sdk.Query[any](ctx, c.db,
			`UPSERT type::thing("analysis", [$run_id, $repo_name]) MERGE $data`,
			map[string]any{
				"run_id":    runID,
				"repo_name": r.RepoName,
				"data":      data,
			})
		if err != nil {
			return runID, fmt.Errorf("storing %s: %w", r.RepoName, err)
		}
	}
	return runID, nil
}

// recordData builds the stored fields for one result. Optional fields are
// only set when present to avoid the CBOR NULL vs SurrealDB NONE mismatch.
func recordData(run Run, runID, analyzedAt string, r models.Result) map[string]any {
	data := map[string]any{
		"run_id":      runID,
		"username":    run.Username,
		"variant":     run.Variant,
		"provider":    run.Provider,
		"repo_name":   r.RepoName,
		"repo_url":    r.RepoURL,
		"stars":       r.Stars,
		"score":       r.Analysis.Score,
		"relevance":   r.Analysis.Relevance,
		"reasoning":   r.Analysis.Reasoning,
		"analyzed_at": analyzedAt,
	}
	if r.Language != nil {
		data["language"] = *r.Language
	}
	return data
}

// HistoryEntry is one stored result.
type HistoryEntry struct {
	RunID      string `json:"run_id"`
	Username   string `json:"username"`
	Variant    string `json:"variant"`
	RepoName   string `json:"repo_name"`
	RepoURL    string `json:"repo_url"`
	Score      int    `json:"score"`
	Relevance  string `json:"relevance"`
	Reasoning  string `json:"reasoning"`
	AnalyzedAt string `json:"analyzed_at"`
}

// TopAnalyses returns the k best scores across all runs, optionally for a
// single user.
func (c *Client) TopAnalyses(ctx context.Context, username string, k int) ([]HistoryEntry, error) {
	query, vars, err := topAnalysesQuery(username, k)
	if err != nil {
		return nil, err
	}

	results, err := sdk.Query[[]HistoryEntry](ctx, c.db, query, vars)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	if len(*results) == 0 {
		return nil, nil
	}
	return (*results)[0].Result, nil
}

func topAnalysesQuery(username string, k int) (string, map[string]any, error) {
	if k < 1 {
		return "", nil, fmt.Errorf("%w: %d", ErrInvalidLimit, k)
	}

	where := ""
	vars := map[string]any{}
	if username != "" {
		where = "WHERE username = $username"
		vars["username"] = username
	}
	query := fmt.Sprintf(`
		SELECT run_id, username, variant, repo_name, repo_url, score, relevance, reasoning, analyzed_at
		FROM analysis
		%s
		ORDER BY score DESC, analyzed_at DESC
		LIMIT %d
	`, where, k)
	return query, vars, nil
}

type Stats struct {
	Runs     int
	Analyses int
}

func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	results, err := sdk.Query[[]map[string]any](ctx, c.db,
		`SELECT
			count() AS analyses,
			array::len(array::distinct(run_id)) AS runs
		FROM analysis GROUP ALL`,
		nil)
	if err != nil {
		return nil, fmt.Errorf("getting stats: %w", err)
	}
	if len(*results) == 0 || len((*results)[0].Result) == 0 {
		return &Stats{}, nil
	}
	row := (*results)[0].Result[0]
	return &Stats{
		Runs:     toInt(row["runs"]),
		Analyses: toInt(row["analyses"]),
	}, nil
}

func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	default:
		return 0
	}
}
