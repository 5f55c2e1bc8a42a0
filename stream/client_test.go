package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"scm-agent/config"

	"go.uber.org/zap"
)

func testConfig(url string) *config.Config {
	return &config.Config{
		StreamAPIURL:          url,
		InventoryTopic:        "scm_inventory",
		RequestsTopic:         "scm_requests",
		ConsumeLimit:          100,
		OffsetReset:           "earliest",
		StreamRequestTimeout:  5 * time.Second,
		RetryBaseDelaySeconds: 0, // no backoff sleeps in tests
	}
}

func TestConsumeResponseShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{
			name: "envelope_with_messages",
			body: `{"count": 2, "messages": [{"value": {"item_name": "Cement"}}, {"value": {"item_name": "Steel"}}]}`,
			want: 2,
		},
		{
			name: "bare_array",
			body: `[{"value": {"item_name": "Cement"}}]`,
			want: 1,
		},
		{
			name: "string_encoded_values",
			body: `{"messages": [{"value": "{\"item_name\": \"Cement\"}"}]}`,
			want: 1,
		},
		{
			name: "values_without_wrapper",
			body: `[{"item_name": "Cement"}, {"item_name": "Steel"}]`,
			want: 2,
		},
		{
			name: "single_object",
			body: `{"item_name": "Cement"}`,
			want: 1,
		},
		{
			name: "empty_envelope",
			body: `{"count": 0, "messages": []}`,
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := New(testConfig(server.URL), zap.NewNop())
			records, err := client.Consume(context.Background(), "scm_inventory")
			if err != nil {
				t.Fatalf("Consume() error = %v", err)
			}
			if len(records) != tt.want {
				t.Errorf("Consume() returned %d records, want %d", len(records), tt.want)
			}
		})
	}
}

func TestConsumeSendsFreshGroupID(t *testing.T) {
	groups := make(map[string]bool)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Topic           string `json:"topic"`
			GroupID         string `json:"group_id"`
			AutoOffsetReset string `json:"auto_offset_reset"`
			Limit           int    `json:"limit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.Topic != "scm_requests" || req.AutoOffsetReset != "earliest" || req.Limit != 100 {
			t.Errorf("unexpected request: %+v", req)
		}
		groups[req.GroupID] = true
		w.Write([]byte(`{"messages": []}`))
	}))
	defer server.Close()

	client := New(testConfig(server.URL), zap.NewNop())
	for i := 0; i < 2; i++ {
		if _, err := client.Consume(context.Background(), "scm_requests"); err != nil {
			t.Fatalf("Consume() error = %v", err)
		}
	}
	if len(groups) != 2 {
		t.Errorf("saw %d distinct group ids across 2 fetches, want 2", len(groups))
	}
}

func TestConsumeRetriesThenFails(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(testConfig(server.URL), zap.NewNop())
	if _, err := client.Consume(context.Background(), "scm_inventory"); err == nil {
		t.Error("Consume() error = nil, want failure after retries")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestConsumeRecoversWithinRetries(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"messages": [{"value": {"item_name": "Cement"}}]}`))
	}))
	defer server.Close()

	client := New(testConfig(server.URL), zap.NewNop())
	records, err := client.Consume(context.Background(), "scm_inventory")
	if err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want 1", len(records))
	}
}

func TestConsumeOrEmptyDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(testConfig(server.URL), zap.NewNop())
	records := client.ConsumeOrEmpty(context.Background(), "scm_inventory")
	if records == nil || len(records) != 0 {
		t.Errorf("ConsumeOrEmpty() = %v, want empty non-nil slice", records)
	}
}
