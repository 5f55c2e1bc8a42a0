package chatbot

import (
	"testing"
	"time"
)

func TestParseRequestRecords(t *testing.T) {
	raw := []map[string]any{
		{
			"project_display":         "ALPHA",
			"item_name":               "Cement",
			"requested_quantity":      float64(20),
			"current_consumed_amount": "5",
			"returned_quantity":       float64(0),
			"requester_name":          "Dana",
			"requested_date":          "2025-01-20",
		},
		{
			"requested_project_name": "beta",
			"item_name":              "Steel Rod",
			"quantity":               "10.5",
			"requested_date":         "2025-01-10T08:30:00Z",
		},
		{
			"item_name":          "Paint",
			"requested_quantity": "not-a-number",
			"requested_date":     "garbage",
		},
		nil,
	}

	records := ParseRequestRecords(raw)
	if len(records) != 3 {
		t.Fatalf("ParseRequestRecords() returned %d records, want 3", len(records))
	}

	// Sorted ascending by request date; the unparseable date sorts first as
	// the zero time.
	if records[0].ItemName != "Paint" {
		t.Errorf("records[0].ItemName = %q, want Paint (zero date first)", records[0].ItemName)
	}
	if records[1].ItemName != "Steel Rod" || records[2].ItemName != "Cement" {
		t.Errorf("records not sorted by date: got %q then %q", records[1].ItemName, records[2].ItemName)
	}

	cement := records[2]
	if cement.Project != "ALPHA" {
		t.Errorf("cement.Project = %q, want ALPHA", cement.Project)
	}
	if cement.Consumed != 5 {
		t.Errorf("cement.Consumed = %v, want 5 (numeric string)", cement.Consumed)
	}
	if cement.Requester != "Dana" {
		t.Errorf("cement.Requester = %q, want Dana", cement.Requester)
	}

	steel := records[1]
	if steel.Quantity != 10.5 {
		t.Errorf("steel.Quantity = %v, want 10.5", steel.Quantity)
	}
	if steel.Project != "beta" {
		t.Errorf("steel.Project = %q, want beta (fallback field)", steel.Project)
	}

	paint := records[0]
	if paint.Quantity != 0 {
		t.Errorf("paint.Quantity = %v, want 0 for unparseable value", paint.Quantity)
	}
	if !paint.RequestedAt.IsZero() {
		t.Errorf("paint.RequestedAt = %v, want zero time for unparseable date", paint.RequestedAt)
	}
}

func TestParseInventoryRecords(t *testing.T) {
	raw := []map[string]any{
		{
			"item_name":          "Cement",
			"quantity_available": float64(3),
			"amount":             float64(1500),
			"store_store_name":   "Main Depot",
		},
		{"quantity_available": float64(7)}, // no item name, dropped
	}

	records := ParseInventoryRecords(raw)
	if len(records) != 1 {
		t.Fatalf("ParseInventoryRecords() returned %d records, want 1", len(records))
	}
	if records[0].Quantity != 3 || records[0].Store != "Main Depot" {
		t.Errorf("unexpected record: %+v", records[0])
	}
}

func TestRequestRecordUnreturned(t *testing.T) {
	tests := []struct {
		name   string
		record RequestRecord
		want   bool
	}{
		{"nothing_consumed_or_returned", RequestRecord{Quantity: 10}, true},
		{"partially_consumed", RequestRecord{Quantity: 10, Consumed: 2}, false},
		{"fully_returned", RequestRecord{Quantity: 10, Returned: 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.Unreturned(); got != tt.want {
				t.Errorf("Unreturned() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOutstandingSince(t *testing.T) {
	requested := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	received := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)

	withReceived := RequestRecord{RequestedAt: requested, ReceivedAt: received}
	if got := withReceived.OutstandingSince(); !got.Equal(received) {
		t.Errorf("OutstandingSince() = %v, want received date %v", got, received)
	}

	withoutReceived := RequestRecord{RequestedAt: requested}
	if got := withoutReceived.OutstandingSince(); !got.Equal(requested) {
		t.Errorf("OutstandingSince() = %v, want requested date %v", got, requested)
	}
}
