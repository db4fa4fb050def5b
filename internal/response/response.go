// Package response extracts labelled fields from a model's free-text reply.
//
// Parsing never fails: a missing label keeps its default and an unparseable
// score becomes 0. Every label that ended on its default is reported in
// Fields.Defaulted so callers can tell a fallback from a genuine answer.
package response

import (
	"strconv"
	"strings"

	"github.com/kevinmichaelchen/repo-fit/internal/models"
	"github.com/kevinmichaelchen/repo-fit/internal/prompt"
)

type Fields struct {
	Score     int
	Relevance string
	Reasoning string
	Details   *models.Details
	Defaulted []string
}

// Parse scans text line by line. A line belongs to a label when it starts
// with "LABEL:". When a label repeats, the last line wins.
func Parse(text string, v prompt.Variant) Fields {
	labels := v.Labels()
	values := make(map[string]string, len(labels))
	seen := make(map[string]bool, len(labels))

	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		for _, label := range labels {
			if strings.HasPrefix(line, label+":") {
				values[label] = line[len(label)+1:]
				seen[label] = true
				break
			}
		}
	}

	f := Fields{Relevance: models.RelevanceUnknown}
	scoreOK := false
	if seen[prompt.LabelScore] {
		f.Score, scoreOK = parseScore(values[prompt.LabelScore])
	}
	if seen[prompt.LabelRelevance] {
		f.Relevance = strings.TrimSpace(values[prompt.LabelRelevance])
	}
	f.Reasoning = strings.TrimSpace(values[prompt.LabelReasoning])

	if v == prompt.Detailed {
		get := func(label string) string { return strings.TrimSpace(values[label]) }
		f.Details = &models.Details{
			ProblemStatement: get(prompt.LabelProblemStatement),
			ModelsUsed:       get(prompt.LabelModelsUsed),
			ToolsUsed:        get(prompt.LabelToolsUsed),
			UsesRAG:          get(prompt.LabelUsesRAG),
			UsesAgents:       get(prompt.LabelUsesAgents),
			UsesFineTuning:   get(prompt.LabelUsesFineTuning),
			UsesEmbeddings:   get(prompt.LabelUsesEmbeddings),
			UsesVectorDB:     get(prompt.LabelUsesVectorDB),
		}
	}

	for _, label := range labels {
		if !seen[label] || (label == prompt.LabelScore && !scoreOK) {
			f.Defaulted = append(f.Defaulted, label)
		}
	}
	return f
}

// parseScore reads "8/10" style values. Only the text up to the next colon
// is considered; anything that is not an integer yields 0.
func parseScore(raw string) (int, bool) {
	if i := strings.Index(raw, ":"); i >= 0 {
		raw = raw[:i]
	}
	first, _, _ := strings.Cut(strings.TrimSpace(raw), "/")
	n, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Analysis converts parsed fields into a result analysis, keeping the raw reply.
func (f Fields) Analysis(raw string) models.Analysis {
	return models.Analysis{
		Score:           f.Score,
		Relevance:       f.Relevance,
		Reasoning:       f.Reasoning,
		FullResponse:    raw,
		Details:         f.Details,
		DefaultedFields: f.Defaulted,
	}
}
