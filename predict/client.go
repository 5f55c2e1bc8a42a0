package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"scm-agent/config"
	"scm-agent/scmerrors"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

// Client calls the ML prediction endpoint. Successful predictions are cached
// per (project, item, date) since the model is deterministic for a given day.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     *zap.Logger
	cache      *lru.Cache
}

func New(cfg *config.Config, logger *zap.Logger) (*Client, error) {
	size := cfg.PredictionCacheSize
	if size <= 0 {
		size = 128
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create prediction cache: %w", err)
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.MLRequestTimeout},
		logger:     logger,
		cache:      cache,
	}, nil
}

type predictionRequest struct {
	ProjectName   string `json:"project_name"`
	ItemName      string `json:"item_name"`
	RequestedDate string `json:"requested_date"`
	InUse         int    `json:"in_use"`
}

// Predict returns the predicted quantity for an item within a project. The
// endpoint's body may be a number, a numeric string, a well-known field, or a
// nested structure; the first parseable numeric value wins. A non-2xx status
// or non-numeric body is an error, never coerced to zero.
func (c *Client) Predict(ctx context.Context, project, item string, date time.Time, inUse int) (float64, error) {
	if strings.TrimSpace(c.cfg.MLAPIURL) == "" {
		return 0, scmerrors.WrapError(scmerrors.ErrNotConfigured, "ML endpoint URL is empty")
	}

	day := date.Format("2006-01-02")
	cacheKey := project + "|" + item + "|" + day
	if v, ok := c.cache.Get(cacheKey); ok {
		return v.(float64), nil
	}

	reqBody := predictionRequest{
		ProjectName:   project,
		ItemName:      item,
		RequestedDate: day,
		InUse:         inUse,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return 0, fmt.Errorf("marshal prediction request: %w", err)
	}

	url := strings.TrimRight(c.cfg.MLAPIURL, "/") + "/predict"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return 0, fmt.Errorf("create prediction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, scmerrors.WrapError(scmerrors.ErrServiceUnavailable, err.Error())
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read prediction response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("ML server status %s: %s", resp.Status, string(bodyBytes))
	}

	value, err := extractNumeric(bodyBytes)
	if err != nil {
		return 0, err
	}
	c.cache.Add(cacheKey, value)
	return value, nil
}

// Fields checked before falling back to a full nested scan.
var knownFields = []string{"predicted_quantity", "prediction", "predicted", "value", "result", "output"}

func extractNumeric(body []byte) (float64, error) {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		// Not JSON; maybe a bare number in plain text.
		if f, perr := strconv.ParseFloat(strings.TrimSpace(string(body)), 64); perr == nil {
			return f, nil
		}
		return 0, fmt.Errorf("ML response is neither JSON nor numeric: %s", string(body))
	}

	if f, ok := toNumber(decoded); ok {
		return f, nil
	}
	if m, ok := decoded.(map[string]any); ok {
		for _, field := range knownFields {
			if f, ok := toNumber(m[field]); ok {
				return f, nil
			}
		}
	}
	if f, ok := firstNumber(decoded); ok {
		return f, nil
	}
	return 0, fmt.Errorf("unable to extract numeric prediction from ML response: %s", string(body))
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// firstNumber walks arrays and objects depth-first for any parseable number.
func firstNumber(v any) (float64, bool) {
	if f, ok := toNumber(v); ok {
		return f, true
	}
	switch t := v.(type) {
	case []any:
		for _, elem := range t {
			if f, ok := firstNumber(elem); ok {
				return f, true
			}
		}
	case map[string]any:
		for _, elem := range t {
			if f, ok := firstNumber(elem); ok {
				return f, true
			}
		}
	}
	return 0, false
}
