package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{name: "shorter than budget", in: "abc", n: 5, want: "abc"},
		{name: "exact budget", in: "abcde", n: 5, want: "abcde"},
		{name: "hard cut mid word", in: "hello world", n: 7, want: "hello w"},
		{name: "multibyte runes", in: "héllo", n: 2, want: "hé"},
		{name: "negative budget", in: "abc", n: -1, want: ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Truncate(tc.in, tc.n))
		})
	}
}

func TestBuild_Minimal(t *testing.T) {
	readme := strings.Repeat("a", 2500)
	p := Build(readme, "RAG, LangChain", Minimal)

	assert.Contains(t, p, "JOB DESCRIPTION:\nRAG, LangChain\n")
	assert.Contains(t, p, "PROJECT README:\n"+strings.Repeat("a", 2000)+"\n")
	assert.NotContains(t, p, strings.Repeat("a", 2001))
	assert.Contains(t, p, "SCORE: [0-10]")
	assert.Contains(t, p, "RELEVANCE: [High/Medium/Low/None]")
	assert.Contains(t, p, "REASONING:")
	assert.NotContains(t, p, "USES_RAG:")
}

func TestBuild_DetailedListsEveryLabel(t *testing.T) {
	readme := strings.Repeat("b", 3500)
	p := Build(readme, "jd", Detailed)

	assert.Contains(t, p, strings.Repeat("b", 3000))
	assert.NotContains(t, p, strings.Repeat("b", 3001))
	for _, label := range Detailed.Labels() {
		assert.Contains(t, p, "\n"+label+": [", "missing %s", label)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	assert.Equal(t, Build("readme", "jd", Minimal), Build("readme", "jd", Minimal))
}

func TestVariant(t *testing.T) {
	assert.Len(t, Minimal.Labels(), 3)
	assert.Len(t, Detailed.Labels(), 11)
	assert.Equal(t, 2000, Minimal.ReadmeBudget())
	assert.Equal(t, 3000, Detailed.ReadmeBudget())
	assert.Equal(t, "minimal", Minimal.String())
	assert.Equal(t, "detailed", Detailed.String())
}
