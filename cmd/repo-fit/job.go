package main

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// defaultJob is used when no job file is given and stdin is a terminal.
const defaultJob = `Mesa-LLM Responsibilities:

- RAG Pipeline Development: Design, implement, and optimize Retrieval-Augmented Generation (RAG)
  pipelines for grounding LLMs with proprietary data. This includes experimenting with various
  chunking strategies, embedding models, and vector database indexing methods (e.g., Pinecone,
  Chroma, FAISS). Implementing advanced retrieval techniques like hybrid search (vector + lexical),
  re-ranking, and document pre-processing.

- Prompt Engineering & Optimization: Develop and refine sophisticated prompting techniques
  (e.g., Chain-of-Thought, ReAct, Few-Shot) to maximize model accuracy, relevance, and safety
  across various tasks (summarization, Q&A, reasoning).

- Agentic AI Prototyping: Assist in building and evaluating multi-step, goal-driven AI agents
  using frameworks like LangChain or LlamaIndex. Focus on implementing tool-use, memory, and
  reflection capabilities.

- Model Evaluation & Benchmarking: Conduct rigorous quantitative and qualitative evaluations
  of RAG and LLM outputs to measure performance against key metrics (e.g., hallucination rate,
  factual accuracy, latency, cost).

- LLM Integration: Integrate proof-of-concept models and RAG components into software stack,
  often using Python and APIs (e.g., OpenAI, Gemini, or self-hosted models).`

// readJob resolves the job description. path "-" forces stdin; an empty
// path reads stdin unless it is a terminal, in which case defaultJob is used.
func readJob(path string, stdin io.Reader, terminal bool) (string, error) {
	var raw []byte
	var err error
	switch {
	case path != "" && path != "-":
		raw, err = os.ReadFile(path)
	case path == "" && terminal:
		return defaultJob, nil
	default:
		raw, err = io.ReadAll(stdin)
	}
	if err != nil {
		return "", fmt.Errorf("reading job description: %w", err)
	}

	job := strings.TrimSpace(string(raw))
	if job == "" {
		return "", fmt.Errorf("job description is empty")
	}
	return job, nil
}
