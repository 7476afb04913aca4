// Package extractor calls the external article-extraction service to turn
// a candidate link into full article text.
package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNoArticleText is returned when the service answers without a usable
// article object. The candidate is dropped; extraction is never retried.
var ErrNoArticleText = errors.New("extractor: no article text in response")

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		logger:  logger,
	}
}

type apiResponse struct {
	Objects []articleObject `json:"objects"`
}

type articleObject struct {
	Text string `json:"text"`
}

// Extract fetches the article text behind articleURL. The response may
// contain several extracted objects; the first one's text is used.
func (c *Client) Extract(ctx context.Context, articleURL string) (string, error) {
	params := url.Values{}
	params.Set("token", c.token)
	params.Set("url", articleURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(apiResp.Objects) == 0 {
		return "", ErrNoArticleText
	}

	text := strings.TrimSpace(apiResp.Objects[0].Text)
	if text == "" {
		return "", ErrNoArticleText
	}

	c.logger.Debug("article extracted",
		"url", articleURL,
		"chars", len(text),
	)

	return text, nil
}
