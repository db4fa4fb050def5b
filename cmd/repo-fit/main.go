package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kevinmichaelchen/repo-fit/internal/config"
	"github.com/kevinmichaelchen/repo-fit/internal/github"
	"github.com/kevinmichaelchen/repo-fit/internal/logging"
	"github.com/kevinmichaelchen/repo-fit/internal/pipeline"
	"github.com/kevinmichaelchen/repo-fit/internal/report"
	"github.com/kevinmichaelchen/repo-fit/internal/store"
	"github.com/kevinmichaelchen/repo-fit/internal/surrealdb"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "repo-fit",
		Short:        "Score a GitHub user's repositories against a job description",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg := config.Load()
			level := logging.ParseLevel(cfg.LogLevel)
			if verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(logging.WithLogger(cmd.Context(), logging.New(os.Stderr, level)))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(extractCmd(), analyzeCmd(), reportCmd(), historyCmd())
	return root
}

func githubOptions(cfg *config.Config, waitRateLimit bool) github.Options {
	return github.Options{
		ClientID:      cfg.GitHubClientID,
		ClientSecret:  cfg.GitHubClientSecret,
		Token:         cfg.GitHubToken,
		BaseURL:       cfg.GitHubBaseURL,
		WaitRateLimit: waitRateLimit,
		Concurrency:   cfg.LanguageConcurrency,
	}
}

func extractCmd() *cobra.Command {
	var output string
	var waitRateLimit bool

	cmd := &cobra.Command{
		Use:   "extract <username>",
		Short: "Fetch profile, repositories and languages into a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := logging.FromContext(ctx)
			cfg := config.Load()

			gh, err := github.NewClient(githubOptions(cfg, waitRateLimit))
			if err != nil {
				return err
			}

			data, err := pipeline.Extract(ctx, gh, args[0])
			if err != nil {
				return err
			}
			if err := store.SaveGitHubData(output, data); err != nil {
				return err
			}
			logger.Info("Saved GitHub data", "file", output, "repos", len(data.Repositories))

			fmt.Fprintf(cmd.OutOrStdout(), "Repositories: %d  Stars: %d  Forks: %d\n",
				data.Stats.TotalRepos, data.Stats.TotalStars, data.Stats.TotalForks)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", store.DefaultDataFile, "output file")
	cmd.Flags().BoolVar(&waitRateLimit, "wait-rate-limit", false, "sleep through GitHub secondary rate limits")
	return cmd
}

func reportCmd() *cobra.Command {
	var input string
	var top int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the ranked summary of a saved analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := store.LoadResults(input)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			report.WriteTop(out, pipeline.Top(results, top))
			report.WriteSummary(out, report.Summarize(results))
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", store.DefaultAnalysisFile, "analysis file")
	cmd.Flags().IntVarP(&top, "top", "n", 5, "number of repositories to show")
	return cmd
}

func historyCmd() *cobra.Command {
	var top int
	var username string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the best scores recorded across runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if top < 1 {
				return fmt.Errorf("--top must be at least 1, got %d", top)
			}
			ctx := cmd.Context()
			cfg := config.Load()
			if !cfg.HistoryEnabled() {
				return fmt.Errorf("SURREAL_URL is not set")
			}

			db, err := surrealdb.NewClient(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(ctx) }()

			stats, err := db.GetStats(ctx)
			if err != nil {
				return err
			}
			entries, err := db.TopAnalyses(ctx, username, top)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Runs: %d  Analyses: %d\n", stats.Runs, stats.Analyses)
			if len(entries) == 0 {
				fmt.Fprintln(out, "No analyses recorded")
				return nil
			}
			for i, e := range entries {
				fmt.Fprintf(out, "\n%d. %s - Score: %d/10 (%s)\n", i+1, e.RepoName, e.Score, e.Relevance)
				fmt.Fprintf(out, "   %s  %s  %s\n", e.Username, e.Variant, e.AnalyzedAt)
				fmt.Fprintf(out, "   %s\n", e.RepoURL)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&top, "top", "n", 10, "number of analyses to show")
	cmd.Flags().StringVarP(&username, "user", "u", "", "only show analyses for this GitHub user")
	return cmd
}
