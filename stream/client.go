package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"scm-agent/config"
	"scm-agent/scmerrors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const consumeAttempts = 3

// Client fetches topic messages through the stream REST bridge. Every fetch
// uses a fresh consumer group so the bridge replays the topic from the
// configured offset instead of resuming a stale group.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.StreamRequestTimeout},
		logger:     logger,
	}
}

type consumeRequest struct {
	Topic           string `json:"topic"`
	GroupID         string `json:"group_id"`
	AutoOffsetReset string `json:"auto_offset_reset"`
	Limit           int    `json:"limit"`
}

// Consume fetches up to the configured limit of messages from a topic and
// returns each message value decoded as a generic JSON object. Transient
// failures are retried with doubling backoff before giving up.
func (c *Client) Consume(ctx context.Context, topic string) ([]map[string]any, error) {
	if strings.TrimSpace(c.cfg.StreamAPIURL) == "" {
		return nil, scmerrors.WrapError(scmerrors.ErrNotConfigured, "stream endpoint URL is empty")
	}

	var lastErr error
	for attempt := 0; attempt < consumeAttempts; attempt++ {
		records, err := c.fetch(ctx, topic)
		if err == nil {
			return records, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		if attempt < consumeAttempts-1 {
			delay := c.cfg.RetryBaseDelaySeconds * time.Duration(1<<attempt)
			c.logger.Warn("stream fetch failed, retrying",
				zap.String("topic", topic), zap.Int("attempt", attempt+1), zap.Error(err))
			if delay > 0 {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
		}
	}
	return nil, fmt.Errorf("consume topic %s: %w", topic, lastErr)
}

// ConsumeOrEmpty degrades a failed fetch to an empty slice so one bad topic
// does not block a refresh of the other.
func (c *Client) ConsumeOrEmpty(ctx context.Context, topic string) []map[string]any {
	records, err := c.Consume(ctx, topic)
	if err != nil {
		c.logger.Warn("stream topic unavailable, continuing with empty data",
			zap.String("topic", topic), zap.Error(err))
		return []map[string]any{}
	}
	return records
}

func (c *Client) fetch(ctx context.Context, topic string) ([]map[string]any, error) {
	reqBody := consumeRequest{
		Topic:           topic,
		GroupID:         fmt.Sprintf("scm-agent-%s", uuid.New().String()),
		AutoOffsetReset: c.cfg.OffsetReset,
		Limit:           c.cfg.ConsumeLimit,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal consume request: %w", err)
	}

	url := strings.TrimRight(c.cfg.StreamAPIURL, "/") + "/consume"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create consume request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, scmerrors.WrapError(scmerrors.ErrServiceUnavailable, err.Error())
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read consume response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("stream server status %s: %s", resp.Status, string(bodyBytes))
	}

	return decodeMessages(bodyBytes)
}

// decodeMessages accepts the bridge's response shapes: an envelope with a
// messages array, a bare array of messages, or a single message object.
// Message values may be embedded objects or JSON-encoded strings.
func decodeMessages(body []byte) ([]map[string]any, error) {
	var envelope struct {
		Count    int               `json:"count"`
		Messages []json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Messages != nil {
		return decodeValues(envelope.Messages)
	}

	var list []json.RawMessage
	if err := json.Unmarshal(body, &list); err == nil {
		return decodeValues(list)
	}

	var single json.RawMessage = body
	records, err := decodeValues([]json.RawMessage{single})
	if err != nil {
		return nil, fmt.Errorf("unrecognized stream response shape: %s", truncate(string(body), 200))
	}
	return records, nil
}

func decodeValues(raw []json.RawMessage) ([]map[string]any, error) {
	records := make([]map[string]any, 0, len(raw))
	for _, msg := range raw {
		record, ok := decodeValue(msg)
		if ok {
			records = append(records, record)
		}
	}
	if len(records) == 0 && len(raw) > 0 {
		return nil, fmt.Errorf("no decodable message values among %d messages", len(raw))
	}
	return records, nil
}

func decodeValue(msg json.RawMessage) (map[string]any, bool) {
	var wrapper struct {
		Value json.RawMessage `json:"value"`
	}
	payload := msg
	if err := json.Unmarshal(msg, &wrapper); err == nil && wrapper.Value != nil {
		payload = wrapper.Value
	}

	var record map[string]any
	if err := json.Unmarshal(payload, &record); err == nil {
		return record, true
	}

	// Value delivered as a JSON-encoded string.
	var encoded string
	if err := json.Unmarshal(payload, &encoded); err == nil {
		if err := json.Unmarshal([]byte(encoded), &record); err == nil {
			return record, true
		}
	}
	return nil, false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
