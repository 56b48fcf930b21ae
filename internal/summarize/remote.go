package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultInferenceURL is the hosted BART CNN summarization model.
const DefaultInferenceURL = "https://api-inference.huggingface.co/models/facebook/bart-large-cnn"

const (
	remoteMaxInput     = 512
	remoteMaxSentences = 3
)

// Remote calls a Hugging Face compatible summarization endpoint.
type Remote struct {
	url        string
	apiKey     string
	httpClient *http.Client

	// backoff is swapped in tests.
	backoff func(attempt int) time.Duration
}

// NewRemote returns a Remote summarizer. An empty url uses
// DefaultInferenceURL; a nil client gets a 120s timeout.
func NewRemote(url, apiKey string, client *http.Client) *Remote {
	if url == "" {
		url = DefaultInferenceURL
	}
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &Remote{url: url, apiKey: apiKey, httpClient: client, backoff: Backoff}
}

type inferenceParams struct {
	MaxLength int  `json:"max_length"`
	MinLength int  `json:"min_length"`
	DoSample  bool `json:"do_sample"`
}

type inferenceRequest struct {
	Inputs     string          `json:"inputs"`
	Parameters inferenceParams `json:"parameters"`
}

type inferenceResult struct {
	SummaryText string `json:"summary_text"`
}

type inferenceError struct {
	Error string `json:"error"`
	// Seconds until a cold model is ready; sent with 503.
	EstimatedTime float64 `json:"estimated_time"`
}

// Summarize retries transient failures up to MaxRetries attempts.
func (r *Remote) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return TooShort, nil
	}
	input := text
	if runes := []rune(input); len(runes) > remoteMaxInput {
		input = string(runes[:remoteMaxInput])
	}

	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retryDelay(lastErr, r.backoff(attempt-1))):
			}
		}
		summary, err := r.call(ctx, input)
		if err == nil {
			sents := sentences(summary)
			if len(sents) == 0 {
				return NoSentences, nil
			}
			if len(sents) > remoteMaxSentences {
				sents = sents[:remoteMaxSentences]
			}
			return strings.Join(sents, "\n"), nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return "", err
		}
	}
	return "", fmt.Errorf("inference failed after %d attempts: %w", MaxRetries, lastErr)
}

func (r *Remote) call(ctx context.Context, input string) (string, error) {
	body, err := json.Marshal(inferenceRequest{
		Inputs:     input,
		Parameters: inferenceParams{MaxLength: 100, MinLength: 30, DoSample: false},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("inference api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		retryErr := &RetryableError{StatusCode: resp.StatusCode, Message: string(respBody)}
		var loading inferenceError
		if json.Unmarshal(respBody, &loading) == nil && loading.EstimatedTime > 0 {
			retryErr.Wait = time.Duration(loading.EstimatedTime * float64(time.Second))
		}
		return "", retryErr
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr inferenceError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return "", fmt.Errorf("inference api status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return "", fmt.Errorf("inference api status %d: %s", resp.StatusCode, truncateRunes(string(respBody), 200))
	}

	var results []inferenceResult
	if err := json.Unmarshal(respBody, &results); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(results) == 0 {
		return "", fmt.Errorf("empty response from inference api")
	}
	return results[0].SummaryText, nil
}

// Close releases idle connections.
func (r *Remote) Close() {
	r.httpClient.CloseIdleConnections()
}
