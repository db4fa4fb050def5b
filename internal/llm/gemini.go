package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kevinmichaelchen/repo-fit/internal/logging"
)

const (
	geminiAttempts     = 3
	geminiBackoffStep  = 3 * time.Second
	geminiCooldown     = 2 * time.Second
	geminiMaxErrorBody = 512
)

// GeminiClient calls the single-turn generateContent endpoint. HTTP 429 is
// retried with linear backoff; every other failure is returned at once.
type GeminiClient struct {
	baseURL string
	apiKey  string
	model   string
	opts    Options
}

func NewGeminiClient(baseURL, apiKey, model string, opts Options) *GeminiClient {
	return &GeminiClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		opts:    opts.withDefaults(),
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (c *GeminiClient) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, url.QueryEscape(c.apiKey))
}

func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	logger := logging.FromContext(ctx)
	attempt := 0
	var text string
	err = retryLinear(ctx, geminiAttempts, geminiBackoffStep, c.loggingSleep(logger), func() error {
		attempt++
		var callErr error
		text, callErr = c.generate(ctx, body)
		return callErr
	})
	if err != nil {
		if isRetryable(err) {
			logger.Debug("Gemini rate limit retries exhausted", "attempts", attempt)
			return "", ErrRateLimited
		}
		return "", err
	}

	// The reply is kept even if ctx ends during the cooldown.
	_ = c.opts.Sleep(ctx, geminiCooldown)
	return text, nil
}

func (c *GeminiClient) loggingSleep(logger *log.Logger) Sleeper {
	return func(ctx context.Context, d time.Duration) error {
		logger.Warn("Rate limited, waiting", "wait", d)
		return c.opts.Sleep(ctx, d)
	}
}

func (c *GeminiClient) generate(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{
			Provider: ProviderGemini,
			Code:     resp.StatusCode,
			Err:      fmt.Errorf("gemini: %s", truncateBody(respBody)),
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return "", &retryableError{err: statusErr}
		}
		return "", statusErr
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("parsing Gemini response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

func truncateBody(b []byte) string {
	if len(b) > geminiMaxErrorBody {
		b = b[:geminiMaxErrorBody]
	}
	return string(b)
}
