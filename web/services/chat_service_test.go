package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"scm-agent/chatbot"
	"scm-agent/config"
	"scm-agent/stream"

	"go.uber.org/zap"
)

func testStreamServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Topic string `json:"topic"`
		}
		if err := jsonDecode(r, &req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		switch req.Topic {
		case "scm_inventory":
			w.Write([]byte(`{"messages": [{"value": {"item_name": "Cement", "quantity_available": 3, "amount": 100}}]}`))
		default:
			w.Write([]byte(`{"messages": [
				{"value": {"project_display": "Alpha", "item_name": "Cement", "requested_quantity": 10, "requested_date": "2025-01-10"}},
				{"value": {"project_display": "Alpha", "item_name": "Cement", "requested_quantity": 20, "requested_date": "2025-01-20"}}
			]}`))
		}
	}))
}

func jsonDecode(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func testServicesConfig(url string) *config.Config {
	return &config.Config{
		StreamAPIURL:         url,
		InventoryTopic:       "scm_inventory",
		RequestsTopic:        "scm_requests",
		ConsumeLimit:         100,
		OffsetReset:          "earliest",
		StreamRequestTimeout: 5 * time.Second,
	}
}

func TestDataServiceRefresh(t *testing.T) {
	server := testStreamServer(t)
	defer server.Close()

	cfg := testServicesConfig(server.URL)
	logger := zap.NewNop()
	data := NewDataService(cfg, stream.New(cfg, logger), logger)

	snap, err := data.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if len(snap.Dataset.Inventory) != 1 || len(snap.Dataset.Requests) != 2 {
		t.Errorf("snapshot sizes = %d inventory, %d requests; want 1 and 2",
			len(snap.Dataset.Inventory), len(snap.Dataset.Requests))
	}
	if _, ok := snap.Lexicon.Projects["alpha"]; !ok {
		t.Errorf("Lexicon.Projects = %v, want alpha present", snap.Lexicon.Projects)
	}

	// Subsequent Snapshot calls reuse the stored view.
	again, err := data.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if again != snap {
		t.Error("Snapshot() did not return the cached snapshot")
	}
}

func TestChatServiceAsk(t *testing.T) {
	server := testStreamServer(t)
	defer server.Close()

	cfg := testServicesConfig(server.URL)
	logger := zap.NewNop()
	data := NewDataService(cfg, stream.New(cfg, logger), logger)
	engine := chatbot.NewEngine(nil, nil, nil, logger)
	chat := NewChatService(engine, data, nil, logger)

	resp, stale, err := chat.Ask(context.Background(), "", "show me low stock items")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if stale {
		t.Fatal("Ask() reported stale for the only question in the session")
	}
	if resp.SessionID == "" {
		t.Error("Ask() minted no session id")
	}
	if resp.Sequence != 1 {
		t.Errorf("Sequence = %d, want 1", resp.Sequence)
	}
	if !strings.Contains(resp.Answer, "Critical items") {
		t.Errorf("Answer = %q, want stock breakdown", resp.Answer)
	}
	if resp.AnswerHTML == "" {
		t.Error("AnswerHTML is empty, want rendered answer")
	}

	// A second question in the same session advances the sequence.
	resp2, _, err := chat.Ask(context.Background(), resp.SessionID, "top requested items last month")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if resp2.Sequence != 2 {
		t.Errorf("Sequence = %d, want 2", resp2.Sequence)
	}
}

func TestChatServiceSequencesPerSession(t *testing.T) {
	chat := NewChatService(nil, nil, nil, zap.NewNop())

	if got := chat.nextSequence("a"); got != 1 {
		t.Errorf("nextSequence(a) = %d, want 1", got)
	}
	if got := chat.nextSequence("a"); got != 2 {
		t.Errorf("nextSequence(a) = %d, want 2", got)
	}
	if got := chat.nextSequence("b"); got != 1 {
		t.Errorf("nextSequence(b) = %d, want 1 (independent session)", got)
	}
	if got := chat.latestSequence("a"); got != 2 {
		t.Errorf("latestSequence(a) = %d, want 2", got)
	}
}
