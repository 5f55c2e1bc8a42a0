package chatbot

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// InventoryRecord is one point-in-time stock snapshot row.
type InventoryRecord struct {
	ItemName     string
	Quantity     float64
	Amount       float64
	Price        float64
	Store        string
	Project      string
	PurchaseDate time.Time
}

// RequestRecord is one item request/transaction row.
type RequestRecord struct {
	Project     string
	ItemName    string
	Quantity    float64
	Consumed    float64
	Returned    float64
	Requester   string
	RequestedAt time.Time
	ReceivedAt  time.Time
}

// Unreturned reports whether nothing of this request was consumed or returned.
func (r RequestRecord) Unreturned() bool {
	return r.Consumed == 0 && r.Returned == 0
}

// OutstandingSince is the date a lingering request is measured from: the
// requester-received date when known, otherwise the request date.
func (r RequestRecord) OutstandingSince() time.Time {
	if !r.ReceivedAt.IsZero() {
		return r.ReceivedAt
	}
	return r.RequestedAt
}

// Dataset holds one wholesale snapshot of both topics. It is replaced, never
// patched, on reload.
type Dataset struct {
	Inventory []InventoryRecord
	Requests  []RequestRecord
}

// Normalize makes two name strings comparable: trimmed and lowercased.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// asString pulls the first non-empty string among alternate field names.
func asString(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// asNumber pulls the first parseable finite number among alternate field
// names. Unparseable values count as zero, never as an error.
func asNumber(raw map[string]any, keys ...string) float64 {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
				return f
			}
		}
	}
	return 0
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseDate returns the zero time when the value has no parseable date.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ParseInventoryRecords converts raw stream messages into stable inventory
// records. Rows without an item name are dropped.
func ParseInventoryRecords(raw []map[string]any) []InventoryRecord {
	records := make([]InventoryRecord, 0, len(raw))
	for _, m := range raw {
		if m == nil {
			continue
		}
		name := asString(m, "item_name")
		if name == "" {
			continue
		}
		records = append(records, InventoryRecord{
			ItemName:     name,
			Quantity:     asNumber(m, "quantity_available", "quantity"),
			Amount:       asNumber(m, "amount"),
			Price:        asNumber(m, "price"),
			Store:        asString(m, "store_store_name", "warehouse_location"),
			Project:      asString(m, "department_id", "project_name"),
			PurchaseDate: parseDate(asString(m, "date_of_purchased")),
		})
	}
	return records
}

// ParseRequestRecords converts raw stream messages into stable request
// records, sorted ascending by request date. The display project field is
// preferred over the raw requested-project field.
func ParseRequestRecords(raw []map[string]any) []RequestRecord {
	records := make([]RequestRecord, 0, len(raw))
	for _, m := range raw {
		if m == nil {
			continue
		}
		records = append(records, RequestRecord{
			Project:     asString(m, "project_display", "requested_project_name"),
			ItemName:    asString(m, "item_name"),
			Quantity:    asNumber(m, "requested_quantity", "quantity"),
			Consumed:    asNumber(m, "current_consumed_amount", "consumed_amount"),
			Returned:    asNumber(m, "returned_quantity"),
			Requester:   asString(m, "requester_name"),
			RequestedAt: parseDate(asString(m, "requested_date", "date")),
			ReceivedAt:  parseDate(asString(m, "requester_received_date")),
		})
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].RequestedAt.Before(records[j].RequestedAt)
	})
	return records
}
