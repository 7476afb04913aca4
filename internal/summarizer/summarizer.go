// Package summarizer produces length-constrained factual summaries through
// an OpenAI-compatible chat-completions API.
package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const primaryPrompt = `Summarize the following news article in exactly %d words. ` +
	`Cover who, what, where, when and why. State only facts reported in the article. ` +
	`Do not use promotional language and do not include calls to action.

Article:
%s`

const escalatedPrompt = `Summarize the following news article. The summary MUST contain ` +
	`at least %d words; do not produce a shorter one. Aim for %d words. ` +
	`Cover who, what, where, when and why. State only facts reported in the article. ` +
	`Do not use promotional language and do not include calls to action.

Article:
%s`

type Config struct {
	BaseURL     string
	Model       string
	APIKey      string
	Timeout     time.Duration
	MaxRetries  int
	MinWords    int
	TargetWords int
}

type Client struct {
	httpClient  *http.Client
	baseURL     string
	model       string
	apiKey      string
	maxRetries  int
	minWords    int
	targetWords int
	logger      *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		maxRetries:  cfg.MaxRetries,
		minWords:    cfg.MinWords,
		targetWords: cfg.TargetWords,
		logger:      logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Summarize asks the model for a summary of text and re-asks with an
// escalated prompt while the result stays under the word minimum. The loop
// is bounded by MaxRetries; after exhausting it the last text is returned
// as-is, even when still short — acceptance is the caller's check. A
// transport or API error terminates immediately: that is a fault, not a
// quality failure, and is never retried here.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(primaryPrompt, c.targetWords, text)

	var last string
	for attempt := 0; ; attempt++ {
		out, err := c.complete(ctx, prompt)
		if err != nil {
			return "", fmt.Errorf("completion request: %w", err)
		}

		last = strings.TrimSpace(out)
		words := wordCount(last)
		if words >= c.minWords || attempt >= c.maxRetries {
			return last, nil
		}

		c.logger.Debug("summary below minimum, escalating",
			"attempt", attempt+1,
			"words", words,
			"min_words", c.minWords,
		)
		prompt = fmt.Sprintf(escalatedPrompt, c.minWords, c.targetWords, text)
	}
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("api error %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("api error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return chatResp.Choices[0].Message.Content, nil
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
