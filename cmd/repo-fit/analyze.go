package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/kevinmichaelchen/repo-fit/internal/config"
	"github.com/kevinmichaelchen/repo-fit/internal/github"
	"github.com/kevinmichaelchen/repo-fit/internal/llm"
	"github.com/kevinmichaelchen/repo-fit/internal/logging"
	"github.com/kevinmichaelchen/repo-fit/internal/models"
	"github.com/kevinmichaelchen/repo-fit/internal/pipeline"
	"github.com/kevinmichaelchen/repo-fit/internal/prompt"
	"github.com/kevinmichaelchen/repo-fit/internal/report"
	"github.com/kevinmichaelchen/repo-fit/internal/store"
	"github.com/kevinmichaelchen/repo-fit/internal/surrealdb"
)

type analyzeFlags struct {
	input         string
	output        string
	job           string
	detailed      bool
	limit         int
	includeForks  bool
	xlsx          string
	waitRateLimit bool
}

func analyzeCmd() *cobra.Command {
	var f analyzeFlags

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score each repository's README against a job description",
		Long: `Reads the data written by "extract", fetches each repository's README and
asks the configured model (Groq or Gemini) how well it matches the job
description. The job description is read from --job, or from stdin until EOF.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, f)
		},
	}
	cmd.Flags().StringVarP(&f.input, "input", "i", store.DefaultDataFile, "GitHub data file written by extract")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "analysis file (default depends on --detailed)")
	cmd.Flags().StringVarP(&f.job, "job", "j", "", `job description file, "-" for stdin`)
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "ask for a technical breakdown of each project")
	cmd.Flags().IntVar(&f.limit, "limit", pipeline.DefaultLimit, "maximum repositories to analyze (0 for all)")
	cmd.Flags().BoolVar(&f.includeForks, "include-forks", false, "analyze forked repositories too")
	cmd.Flags().StringVar(&f.xlsx, "xlsx", "", "also export the ranked results to this spreadsheet")
	cmd.Flags().BoolVar(&f.waitRateLimit, "wait-rate-limit", false, "sleep through GitHub secondary rate limits")
	return cmd
}

func runAnalyze(cmd *cobra.Command, f analyzeFlags) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)
	cfg := config.Load()

	provider, err := llm.SelectProvider(cfg)
	if err != nil {
		return err
	}

	variant := prompt.Minimal
	if f.detailed {
		variant = prompt.Detailed
	}
	if f.output == "" {
		f.output = store.DefaultAnalysisFile
		if variant == prompt.Detailed {
			f.output = store.DetailedAnalysisFile
		}
	}

	model, err := llm.New(provider, cfg, llm.OptionsFor(variant))
	if err != nil {
		return err
	}

	data, err := store.LoadGitHubData(f.input)
	if err != nil {
		return fmt.Errorf("run extract first: %w", err)
	}

	job, err := readJob(f.job, os.Stdin, isatty.IsTerminal(os.Stdin.Fd()))
	if err != nil {
		return err
	}

	gh, err := github.NewClient(githubOptions(cfg, f.waitRateLimit))
	if err != nil {
		return err
	}

	logger.Info("Using model provider", "provider", provider)
	prog := logging.NewProgress(logger)
	analyzer := pipeline.NewAnalyzer(gh, model, pipeline.Options{
		SkipForks: !f.includeForks,
		Limit:     f.limit,
		Variant:   variant,
	})
	results, runErr := analyzer.Analyze(ctx, data, job)
	prog.Done(fmt.Sprintf("Analyzed %d repositories", len(results)))

	// Partial results are still worth keeping when the run is interrupted.
	if err := store.SaveResults(f.output, results); err != nil {
		return err
	}
	logger.Info("Saved analysis", "file", f.output)
	if runErr != nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	report.WriteTop(out, pipeline.Top(results, pipeline.TopN(variant)))
	report.WriteSummary(out, report.Summarize(results))

	if f.xlsx != "" {
		if err := report.WriteXLSX(f.xlsx, pipeline.Rank(results)); err != nil {
			return err
		}
		logger.Info("Exported spreadsheet", "file", f.xlsx)
	}

	if cfg.HistoryEnabled() {
		recordHistory(ctx, cfg, surrealdb.Run{
			Username: data.Profile.Username,
			Variant:  variant.String(),
			Provider: provider.String(),
		}, results)
	}
	return nil
}

// recordHistory is best effort: a failure is logged and the run still succeeds.
func recordHistory(ctx context.Context, cfg *config.Config, run surrealdb.Run, results []models.Result) {
	logger := logging.FromContext(ctx)

	db, err := surrealdb.NewClient(ctx, cfg)
	if err != nil {
		logger.Warn("History unavailable", "err", err)
		return
	}
	defer func() { _ = db.Close(ctx) }()

	if err := db.InitSchema(ctx); err != nil {
		logger.Warn("History unavailable", "err", err)
		return
	}
	runID, err := db.RecordRun(ctx, run, results)
	if err != nil {
		logger.Warn("Recording history failed", "run", runID, "err", err)
		return
	}
	logger.Info("Recorded run", "run", runID, "results", len(results))
}
