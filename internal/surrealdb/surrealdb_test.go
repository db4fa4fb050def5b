package surrealdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinmichaelchen/repo-fit/internal/models"
)

func TestToInt(t *testing.T) {
	assert.Equal(t, 3, toInt(float64(3)))
	assert.Equal(t, 4, toInt(4))
	assert.Equal(t, 5, toInt(int64(5)))
	assert.Equal(t, 6, toInt(uint64(6)))
	assert.Equal(t, 0, toInt("7"))
	assert.Equal(t, 0, toInt(nil))
}

func TestRecordData(t *testing.T) {
	run := Run{Username: "octo", Variant: "minimal", Provider: "Groq"}
	lang := "Python"
	r := models.Result{
		RepoName: "rag-bot",
		RepoURL:  "https://github.com/octo/rag-bot",
		Stars:    9,
		Language: &lang,
		Analysis: models.Analysis{Score: 8, Relevance: "High", Reasoning: "RAG"},
	}

	t.Run("all fields", func(t *testing.T) {
		data := recordData(run, "run-1", "2026-01-02T03:04:05Z", r)
		assert.Equal(t, map[string]any{
			"run_id":      "run-1",
			"username":    "octo",
			"variant":     "minimal",
			"provider":    "Groq",
			"repo_name":   "rag-bot",
			"repo_url":    "https://github.com/octo/rag-bot",
			"stars":       9,
			"score":       8,
			"relevance":   "High",
			"reasoning":   "RAG",
			"analyzed_at": "2026-01-02T03:04:05Z",
			"language":    "Python",
		}, data)
	})

	t.Run("nil language is omitted", func(t *testing.T) {
		r := r
		r.Language = nil
		data := recordData(run, "run-1", "2026-01-02T03:04:05Z", r)
		assert.NotContains(t, data, "language")
		assert.Len(t, data, 11)
	})
}

func TestTopAnalysesQuery(t *testing.T) {
	t.Run("all users", func(t *testing.T) {
		query, vars, err := topAnalysesQuery("", 5)
		require.NoError(t, err)
		assert.Contains(t, query, "LIMIT 5")
		assert.Contains(t, query, "ORDER BY score DESC")
		assert.NotContains(t, query, "WHERE")
		assert.Empty(t, vars)
	})

	t.Run("single user", func(t *testing.T) {
		query, vars, err := topAnalysesQuery("octo", 10)
		require.NoError(t, err)
		assert.Contains(t, query, "WHERE username = $username")
		assert.Contains(t, query, "LIMIT 10")
		assert.Equal(t, map[string]any{"username": "octo"}, vars)
	})

	for _, k := range []int{0, -3} {
		_, _, err := topAnalysesQuery("", k)
		assert.ErrorIs(t, err, ErrInvalidLimit, "k=%d", k)
	}
}
