package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"scm-agent/config"
	"scm-agent/scmerrors"

	"go.uber.org/zap"
)

// Client wraps the external text-generation endpoint with retry, backoff, and
// post-processing. Each attempt is bounded by the configured request timeout,
// independent of the attempt cap.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.GenRequestTimeout},
		logger:     logger,
	}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// Generate sends the prompt and returns post-processed narrative text.
// Rate-limit and transient failures are retried up to the configured attempt
// cap with exponential backoff; quota/permission failures and malformed
// responses are not retried. On exhaustion the classified error propagates.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(c.cfg.GenAPIURL) == "" {
		return "", scmerrors.WrapError(scmerrors.ErrNotConfigured, "generation endpoint URL is empty")
	}

	maxAttempts := c.cfg.MaxGenAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	url := strings.TrimRight(c.cfg.GenAPIURL, "/") + "/generate"

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		text, err := c.attempt(ctx, url, prompt)
		if err == nil {
			return FormatResponse(text), nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		switch {
		case scmerrors.IsRateLimited(err):
			lastErr = err
			if attempt < maxAttempts-1 {
				c.logger.Warn("generation rate limited, backing off", zap.Int("attempt", attempt+1))
				c.backoffSleep(attempt, 2)
				continue
			}
		case errors.Is(err, scmerrors.ErrQuotaExceeded), errors.Is(err, scmerrors.ErrEmptyResponse):
			// Hard failures: surface immediately, the composer decides the
			// fallback.
			return "", err
		default:
			lastErr = err
			if attempt < maxAttempts-1 {
				c.logger.Warn("generation attempt failed, retrying",
					zap.Int("attempt", attempt+1), zap.Error(err))
				c.backoffSleep(attempt, 1)
				continue
			}
		}
	}
	return "", lastErr
}

func (c *Client) attempt(ctx context.Context, url, prompt string) (string, error) {
	jsonBody, err := json.Marshal(generateRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("marshal generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.GenAPIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.GenAPIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", scmerrors.WrapError(scmerrors.ErrServiceUnavailable, err.Error())
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", scmerrors.WrapError(scmerrors.ErrServiceUnavailable, "read generation response")
	}
	body := string(bodyBytes)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", scmerrors.WrapErrorf(scmerrors.ErrRateLimited, "generation server status %s", resp.Status)
	case resp.StatusCode == http.StatusForbidden:
		return "", scmerrors.WrapErrorf(scmerrors.ErrQuotaExceeded, "generation server status %s", resp.Status)
	case resp.StatusCode >= 500:
		return "", scmerrors.WrapErrorf(scmerrors.ErrServiceUnavailable, "generation server status %s", resp.Status)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("generation server status %s: %s", resp.Status, body)
	}

	var gr generateResponse
	if err := json.Unmarshal(bodyBytes, &gr); err != nil {
		return "", scmerrors.WrapError(scmerrors.ErrEmptyResponse, "malformed generation response body")
	}
	if strings.TrimSpace(gr.Text) == "" {
		return "", scmerrors.ErrEmptyResponse
	}
	return gr.Text, nil
}

// backoffSleep waits base * scale * 2^attempt with a small jitter.
func (c *Client) backoffSleep(attempt, scale int) {
	base := c.cfg.RetryBaseDelaySeconds
	if base <= 0 {
		return
	}
	d := base * time.Duration(scale) * time.Duration(1<<attempt)
	jitter := time.Duration(time.Now().UnixNano() % int64(d/10+1))
	time.Sleep(d + jitter)
}

