// Package report renders analysis results for people: a ranked console
// summary, aggregate score statistics and a spreadsheet export.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/montanaflynn/stats"

	"github.com/kevinmichaelchen/repo-fit/internal/models"
)

var (
	colorCyan  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorAmber = lipgloss.Color("220")
	colorDim   = lipgloss.Color("240")

	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleName   = lipgloss.NewStyle().Bold(true)
	styleHigh   = lipgloss.NewStyle().Foreground(colorGreen)
	styleMedium = lipgloss.NewStyle().Foreground(colorAmber)
	styleDim    = lipgloss.NewStyle().Foreground(colorDim)
)

const reasoningPreview = 100

// Summary aggregates scores across a run.
type Summary struct {
	Count       int
	Analyzed    int
	Mean        float64
	Median      float64
	Max         float64
	ByRelevance map[string]int
}

// Summarize computes score statistics. Mean, median and max cover only
// repositories that produced a model reply.
func Summarize(results []models.Result) Summary {
	s := Summary{Count: len(results), ByRelevance: make(map[string]int)}

	var scores stats.Float64Data
	for _, r := range results {
		s.ByRelevance[r.Analysis.Relevance]++
		if r.Analysis.FullResponse != "" {
			scores = append(scores, float64(r.Analysis.Score))
		}
	}
	s.Analyzed = len(scores)
	if len(scores) == 0 {
		return s
	}

	s.Mean, _ = stats.Mean(scores)
	s.Median, _ = stats.Median(scores)
	s.Max, _ = stats.Max(scores)
	return s
}

// WriteTop prints the ranked results, which callers have already sorted
// and truncated.
func WriteTop(w io.Writer, ranked []models.Result) {
	fmt.Fprintln(w, styleTitle.Render("TOP MATCHING REPOSITORIES"))
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "\nTop %d Most Relevant:\n", len(ranked))

	for i, r := range ranked {
		a := r.Analysis
		fmt.Fprintf(w, "\n%d. %s - Score: %d/10\n", i+1, styleName.Render(r.RepoName), a.Score)
		fmt.Fprintf(w, "   Relevance: %s\n", relevanceStyle(a.Relevance).Render(a.Relevance))
		fmt.Fprintf(w, "   Language: %s\n", orNone(r.Language))
		fmt.Fprintf(w, "   %d stars\n", r.Stars)
		fmt.Fprintf(w, "   %s\n", styleDim.Render(preview(a.Reasoning)))
	}
}

// WriteSummary prints aggregate statistics.
func WriteSummary(w io.Writer, s Summary) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, styleTitle.Render("SCORE SUMMARY"))
	fmt.Fprintf(w, "Repositories: %d (%d scored by the model)\n", s.Count, s.Analyzed)
	if s.Analyzed > 0 {
		fmt.Fprintf(w, "Mean: %.1f  Median: %.1f  Max: %.0f\n", s.Mean, s.Median, s.Max)
	}

	labels := make([]string, 0, len(s.ByRelevance))
	for label := range s.ByRelevance {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if s.ByRelevance[labels[i]] != s.ByRelevance[labels[j]] {
			return s.ByRelevance[labels[i]] > s.ByRelevance[labels[j]]
		}
		return labels[i] < labels[j]
	})
	for _, label := range labels {
		fmt.Fprintf(w, "  %-14s %d\n", label, s.ByRelevance[label])
	}
}

func relevanceStyle(relevance string) lipgloss.Style {
	switch strings.ToLower(relevance) {
	case "high":
		return styleHigh
	case "medium":
		return styleMedium
	default:
		return styleDim
	}
}

func preview(s string) string {
	r := []rune(s)
	if len(r) > reasoningPreview {
		r = r[:reasoningPreview]
	}
	return string(r) + "..."
}

func orNone(s *string) string {
	if s == nil || *s == "" {
		return "None"
	}
	return *s
}
