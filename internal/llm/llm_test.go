package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kevinmichaelchen/repo-fit/internal/config"
	"github.com/kevinmichaelchen/repo-fit/internal/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordSleeps returns a Sleeper that records durations instead of waiting.
func recordSleeps(slept *[]time.Duration) Sleeper {
	return func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
}

func TestSelectProvider(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     config.Config
		want    Provider
		wantErr error
	}{
		{name: "groq preferred", cfg: config.Config{GroqAPIKey: "g", GeminiAPIKey: "m"}, want: ProviderGroq},
		{name: "gemini fallback", cfg: config.Config{GeminiAPIKey: "m"}, want: ProviderGemini},
		{name: "none configured", cfg: config.Config{}, want: ProviderNone, wantErr: ErrNoCredential},
		{name: "forced gemini", cfg: config.Config{LLMProvider: "gemini", GroqAPIKey: "g", GeminiAPIKey: "m"}, want: ProviderGemini},
		{name: "forced groq without key", cfg: config.Config{LLMProvider: "groq", GeminiAPIKey: "m"}, want: ProviderNone, wantErr: ErrNoCredential},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SelectProvider(&tc.cfg)
			assert.Equal(t, tc.want, got)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSelectProvider_Unknown(t *testing.T) {
	_, err := SelectProvider(&config.Config{LLMProvider: "claude", GroqAPIKey: "g"})
	assert.ErrorContains(t, err, "unknown LLM_PROVIDER")
}

func TestOptionsFor(t *testing.T) {
	assert.Equal(t, Options{Temperature: 0.3, MaxTokens: 500}, OptionsFor(prompt.Minimal))
	assert.Equal(t, Options{Temperature: 0.2, MaxTokens: 1000}, OptionsFor(prompt.Detailed))
}

func TestNew(t *testing.T) {
	cfg := &config.Config{GroqBaseURL: "http://groq", GeminiBaseURL: "http://gemini"}

	c, err := New(ProviderGroq, cfg, Options{})
	require.NoError(t, err)
	assert.IsType(t, &GroqClient{}, c)

	c, err = New(ProviderGemini, cfg, Options{})
	require.NoError(t, err)
	assert.IsType(t, &GeminiClient{}, c)

	_, err = New(ProviderNone, cfg, Options{})
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestGroqClient_Complete(t *testing.T) {
	var slept []time.Duration
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer groq-key", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama-3.3-70b-versatile", req["model"])
		assert.InDelta(t, 0.3, req["temperature"], 0.001)
		assert.EqualValues(t, 500, req["max_tokens"])

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"SCORE: 8/10"}}]}`)
	}))
	defer server.Close()

	opts := OptionsFor(prompt.Minimal)
	opts.Sleep = recordSleeps(&slept)
	c := NewGroqClient(server.URL+"/", "groq-key", "llama-3.3-70b-versatile", opts)

	text, err := c.Complete(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "SCORE: 8/10", text)
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, slept)
}

func TestGroqClient_StatusErrorNoRetry(t *testing.T) {
	var hits atomic.Int32
	var slept []time.Duration
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"slow down","type":"rate_limit"}}`)
	}))
	defer server.Close()

	c := NewGroqClient(server.URL, "k", "m", Options{Sleep: recordSleeps(&slept)})

	_, err := c.Complete(context.Background(), "prompt")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.Code)
	assert.Equal(t, ProviderGroq, statusErr.Provider)
	assert.Equal(t, "API returned status 429", err.Error())
	assert.EqualValues(t, 1, hits.Load())
	assert.Empty(t, slept)
}

func TestGroqClient_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"1","choices":[]}`)
	}))
	defer server.Close()

	c := NewGroqClient(server.URL, "k", "m", Options{Sleep: recordSleeps(new([]time.Duration))})

	_, err := c.Complete(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func geminiOK(text string) string {
	return fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, text)
}

func TestGeminiClient_Complete(t *testing.T) {
	var slept []time.Duration
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "gem-key", r.URL.Query().Get("key"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"contents":[{"parts":[{"text":"hello"}]}]}`, string(body))

		fmt.Fprint(w, geminiOK("SCORE: 6/10"))
	}))
	defer server.Close()

	c := NewGeminiClient(server.URL, "gem-key", "gemini-2.0-flash", Options{Sleep: recordSleeps(&slept)})

	text, err := c.Complete(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, "SCORE: 6/10", text)
	assert.Equal(t, []time.Duration{2 * time.Second}, slept)
}

func TestGeminiClient_RateLimitExhausted(t *testing.T) {
	var hits atomic.Int32
	var slept []time.Duration
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewGeminiClient(server.URL, "k", "gemini-2.0-flash", Options{Sleep: recordSleeps(&slept)})

	_, err := c.Complete(context.Background(), "hello")

	assert.ErrorIs(t, err, ErrRateLimited)
	assert.EqualValues(t, 3, hits.Load())
	assert.Equal(t, []time.Duration{3 * time.Second, 6 * time.Second}, slept)
}

func TestGeminiClient_RecoversAfterRateLimit(t *testing.T) {
	var hits atomic.Int32
	var slept []time.Duration
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, geminiOK("SCORE: 2/10"))
	}))
	defer server.Close()

	c := NewGeminiClient(server.URL, "k", "m", Options{Sleep: recordSleeps(&slept)})

	text, err := c.Complete(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, "SCORE: 2/10", text)
	assert.EqualValues(t, 2, hits.Load())
	assert.Equal(t, []time.Duration{3 * time.Second, 2 * time.Second}, slept)
}

func TestGeminiClient_OtherStatusNoRetry(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":"boom"}`)
	}))
	defer server.Close()

	c := NewGeminiClient(server.URL, "k", "m", Options{Sleep: recordSleeps(new([]time.Duration))})

	_, err := c.Complete(context.Background(), "hello")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	assert.False(t, errors.Is(err, ErrRateLimited))
	assert.EqualValues(t, 1, hits.Load())
}

func TestGeminiClient_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[]}`)
	}))
	defer server.Close()

	c := NewGeminiClient(server.URL, "k", "m", Options{Sleep: recordSleeps(new([]time.Duration))})

	_, err := c.Complete(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestRetryLinear_NonRetryableStopsImmediately(t *testing.T) {
	var slept []time.Duration
	calls := 0
	boom := errors.New("boom")

	err := retryLinear(context.Background(), 3, time.Second, recordSleeps(&slept), func() error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.Empty(t, slept)
}

func TestRetryLinear_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0

	err := retryLinear(ctx, 3, time.Hour, Sleep, func() error {
		calls++
		return &retryableError{err: errors.New("429")}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestComplete_CancelledDuringCooldownKeepsReply(t *testing.T) {
	cancelledSleep := func(context.Context, time.Duration) error { return context.Canceled }

	groq := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"SCORE: 8/10"}}]}`)
	}))
	defer groq.Close()
	gemini := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, geminiOK("SCORE: 6/10"))
	}))
	defer gemini.Close()

	testCases := []struct {
		name   string
		client Completer
		want   string
	}{
		{name: "groq", client: NewGroqClient(groq.URL, "k", "m", Options{Sleep: cancelledSleep}), want: "SCORE: 8/10"},
		{name: "gemini", client: NewGeminiClient(gemini.URL, "k", "gemini-2.0-flash", Options{Sleep: cancelledSleep}), want: "SCORE: 6/10"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			text, err := tc.client.Complete(context.Background(), "prompt")
			require.NoError(t, err)
			assert.Equal(t, tc.want, text)
		})
	}
}
