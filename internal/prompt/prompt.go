// Package prompt renders the README-vs-job-description scoring prompt.
package prompt

import (
	"fmt"
	"strings"
)

// Reply labels the model must echo back, one per line as "LABEL: value".
const (
	LabelScore            = "SCORE"
	LabelRelevance        = "RELEVANCE"
	LabelReasoning        = "REASONING"
	LabelProblemStatement = "PROBLEM_STATEMENT"
	LabelModelsUsed       = "MODELS_USED"
	LabelToolsUsed        = "TOOLS_USED"
	LabelUsesRAG          = "USES_RAG"
	LabelUsesAgents       = "USES_AGENTS"
	LabelUsesFineTuning   = "USES_FINE_TUNING"
	LabelUsesEmbeddings   = "USES_EMBEDDINGS"
	LabelUsesVectorDB     = "USES_VECTOR_DB"
)

// Variant selects between the short three-field prompt and the detailed
// technical breakdown.
type Variant int

const (
	Minimal Variant = iota
	Detailed
)

func (v Variant) String() string {
	if v == Detailed {
		return "detailed"
	}
	return "minimal"
}

// ReadmeBudget is the number of README characters embedded in the prompt.
func (v Variant) ReadmeBudget() int {
	if v == Detailed {
		return 3000
	}
	return 2000
}

// Labels lists the reply labels in the order the template asks for them.
func (v Variant) Labels() []string {
	labels := []string{LabelScore, LabelRelevance, LabelReasoning}
	if v == Detailed {
		labels = append(labels,
			LabelProblemStatement,
			LabelModelsUsed,
			LabelToolsUsed,
			LabelUsesRAG,
			LabelUsesAgents,
			LabelUsesFineTuning,
			LabelUsesEmbeddings,
			LabelUsesVectorDB,
		)
	}
	return labels
}

// Truncate cuts s to at most n characters. It does not look for word boundaries.
func Truncate(s string, n int) string {
	if n < 0 {
		n = 0
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

const minimalFormat = `SCORE: [0-10]
RELEVANCE: [High/Medium/Low/None]
REASONING: [2-3 sentences explaining the match]`

const detailedFormat = minimalFormat + `
PROBLEM_STATEMENT: [one sentence describing the problem the project solves]
MODELS_USED: [comma-separated models mentioned, or None]
TOOLS_USED: [comma-separated frameworks, libraries and services, or None]
USES_RAG: [Yes/No]
USES_AGENTS: [Yes/No]
USES_FINE_TUNING: [Yes/No]
USES_EMBEDDINGS: [Yes/No]
USES_VECTOR_DB: [Yes/No]`

// Build renders the scoring prompt for one README.
func Build(readme, jobDescription string, v Variant) string {
	format := minimalFormat
	if v == Detailed {
		format = detailedFormat
	}

	var b strings.Builder
	b.WriteString("You are analyzing a GitHub project's README against a job description.\n\n")
	fmt.Fprintf(&b, "JOB DESCRIPTION:\n%s\n\n", jobDescription)
	fmt.Fprintf(&b, "PROJECT README:\n%s\n\n", Truncate(readme, v.ReadmeBudget()))
	b.WriteString("Task: Analyze how relevant this project is to the job requirements.\n\n")
	fmt.Fprintf(&b, "Provide your response in this exact format:\n%s\n\n", format)
	b.WriteString("Focus on:\n")
	b.WriteString("- Technologies used (RAG, LLMs, embeddings, vector DBs)\n")
	b.WriteString("- Project complexity and scope\n")
	b.WriteString("- Relevant skills demonstrated\n")
	return b.String()
}
