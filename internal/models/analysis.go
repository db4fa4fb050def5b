package models

// Relevance labels synthesized without a model reply.
const (
	RelevanceNoReadme    = "No README"
	RelevanceNoContent   = "No Content"
	RelevanceRateLimited = "Rate Limited"
	RelevanceAPIError    = "API Error"
	RelevanceError       = "Error"
	RelevanceUnknown     = "Unknown"
)

type Analysis struct {
	Score        int      `json:"score"`
	Relevance    string   `json:"relevance"`
	Reasoning    string   `json:"reasoning"`
	FullResponse string   `json:"full_response,omitempty"`
	Details      *Details `json:"details,omitempty"`

	// DefaultedFields lists reply labels that were missing or unparseable
	// and therefore hold their default value.
	DefaultedFields []string `json:"defaulted_fields,omitempty"`
}

// Details carries the technical fields requested by the detailed prompt.
type Details struct {
	ProblemStatement string `json:"problem_statement"`
	ModelsUsed       string `json:"models_used"`
	ToolsUsed        string `json:"tools_used"`
	UsesRAG          string `json:"uses_rag"`
	UsesAgents       string `json:"uses_agents"`
	UsesFineTuning   string `json:"uses_fine_tuning"`
	UsesEmbeddings   string `json:"uses_embeddings"`
	UsesVectorDB     string `json:"uses_vector_db"`
}

// Result is one analyzed repository in the output report.
type Result struct {
	RepoName    string   `json:"repo_name"`
	RepoURL     string   `json:"repo_url"`
	Description *string  `json:"description"`
	Stars       int      `json:"stars"`
	Language    *string  `json:"language"`
	IsFork      bool     `json:"is_fork"`
	Analysis    Analysis `json:"analysis"`
}

// Placeholder builds a zero-score analysis that never reached the model.
func Placeholder(relevance, reasoning string) Analysis {
	return Analysis{Score: 0, Relevance: relevance, Reasoning: reasoning}
}

// NewResult copies the repository metadata into a result.
func NewResult(r Repository, a Analysis) Result {
	return Result{
		RepoName:    r.Name,
		RepoURL:     r.URL,
		Description: r.Description,
		Stars:       r.Stars,
		Language:    r.Language,
		IsFork:      r.IsFork,
		Analysis:    a,
	}
}
