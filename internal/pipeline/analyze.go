package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/kevinmichaelchen/repo-fit/internal/llm"
	"github.com/kevinmichaelchen/repo-fit/internal/logging"
	"github.com/kevinmichaelchen/repo-fit/internal/models"
	"github.com/kevinmichaelchen/repo-fit/internal/prompt"
	"github.com/kevinmichaelchen/repo-fit/internal/response"
)

// minReadmeLength is the trimmed README length below which the model is not asked.
const minReadmeLength = 50

// DefaultLimit is how many repositories a run analyzes.
const DefaultLimit = 10

// ReadmeFetcher returns the raw README of owner/repo. Any error is treated
// as "no README".
type ReadmeFetcher interface {
	FetchReadme(ctx context.Context, owner, repo string) (string, error)
}

type Options struct {
	// SkipForks drops forked repositories before the limit is applied.
	SkipForks bool
	// Limit keeps the first N repositories in input order. 0 means all.
	Limit   int
	Variant prompt.Variant
}

// Analyzer scores repositories one at a time: README, prompt, model, parse.
type Analyzer struct {
	readmes ReadmeFetcher
	model   llm.Completer
	opts    Options
}

func NewAnalyzer(readmes ReadmeFetcher, model llm.Completer, opts Options) *Analyzer {
	return &Analyzer{readmes: readmes, model: model, opts: opts}
}

// SelectRepos applies the fork filter and the limit without reordering.
func SelectRepos(repos []models.Repository, opts Options) []models.Repository {
	selected := make([]models.Repository, 0, len(repos))
	for _, r := range repos {
		if opts.SkipForks && r.IsFork {
			continue
		}
		selected = append(selected, r)
	}
	if opts.Limit > 0 && len(selected) > opts.Limit {
		selected = selected[:opts.Limit]
	}
	return selected
}

// Analyze scores the selected repositories of data against job. A failure
// in one repository becomes a zero-score result and the loop moves on. It
// only returns an error when ctx is cancelled, along with the results
// gathered so far.
func (a *Analyzer) Analyze(ctx context.Context, data *models.GitHubData, job string) ([]models.Result, error) {
	logger := logging.FromContext(ctx)
	owner := data.Profile.Username
	repos := SelectRepos(data.Repositories, a.opts)

	forks := 0
	for _, r := range data.Repositories {
		if r.IsFork {
			forks++
		}
	}
	logger.Info("Analyzing repositories", "user", owner, "count", len(repos), "forks", forks, "variant", a.opts.Variant)

	results := make([]models.Result, 0, len(repos))
	for i, repo := range repos {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		repoLog := logger.With("repo", repo.Name, "n", fmt.Sprintf("%d/%d", i+1, len(repos)))
		repoLog.Info("Analyzing", "description", describe(repo.Description))

		analysis := a.analyzeRepo(logging.WithLogger(ctx, repoLog), owner, repo, job)
		repoLog.Info("Scored", "score", analysis.Score, "relevance", analysis.Relevance)
		repoLog.Debug("Reasoning", "text", analysis.Reasoning)

		results = append(results, models.NewResult(repo, analysis))
	}
	return results, nil
}

func (a *Analyzer) analyzeRepo(ctx context.Context, owner string, repo models.Repository, job string) (analysis models.Analysis) {
	logger := logging.FromContext(ctx)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("analysis panicked", "panic", r)
			analysis = models.Placeholder(models.RelevanceError, fmt.Sprint(r))
		}
	}()

	readme, err := a.readmes.FetchReadme(ctx, owner, repo.Name)
	if err != nil {
		logger.Warn("No README found", "err", err)
		return models.Placeholder(models.RelevanceNoReadme, "Repository has no README file")
	}
	logger.Debug("README found", "chars", utf8.RuneCountInString(readme))

	if utf8.RuneCountInString(strings.TrimSpace(readme)) < minReadmeLength {
		return models.Placeholder(models.RelevanceNoContent, "README is too short or empty")
	}

	p := prompt.Build(readme, job, a.opts.Variant)
	reply, err := a.model.Complete(ctx, p)
	if err != nil {
		logger.Warn("AI API error", "err", err)
		return errorAnalysis(err)
	}

	return response.Parse(reply, a.opts.Variant).Analysis(reply)
}

// errorAnalysis turns a model failure into a placeholder, keeping rate
// limiting and HTTP status failures apart from everything else.
func errorAnalysis(err error) models.Analysis {
	var statusErr *llm.StatusError
	switch {
	case errors.Is(err, llm.ErrRateLimited):
		return models.Placeholder(models.RelevanceRateLimited, err.Error())
	case errors.As(err, &statusErr):
		return models.Placeholder(models.RelevanceAPIError, statusErr.Error())
	default:
		return models.Placeholder(models.RelevanceError, err.Error())
	}
}

func describe(desc *string) string {
	if desc == nil || *desc == "" {
		return "No description"
	}
	return *desc
}

// Rank returns a copy of results ordered by score, highest first. Ties keep
// their input order.
func Rank(results []models.Result) []models.Result {
	ranked := make([]models.Result, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Analysis.Score > ranked[j].Analysis.Score
	})
	return ranked
}

// Top returns at most n of the highest scoring results.
func Top(results []models.Result, n int) []models.Result {
	ranked := Rank(results)
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// TopN is the size of the summary for each variant.
func TopN(v prompt.Variant) int {
	if v == prompt.Detailed {
		return 10
	}
	return 5
}
