package chatbot

import (
	"sort"
	"time"

	"scm-agent/scmerrors"
)

// Filter selects the slice of the snapshot a question is about. Empty fields
// mean "all"; a nil window means no date bound.
type Filter struct {
	Project string
	Item    string
	Window  *Window
}

// Caps bound the size of a computed summary so downstream prompts stay small.
type Caps struct {
	TopItems    int
	TopProjects int
	Recent      int
	Inventory   int
}

// DefaultCaps mirrors the limits the prompt layer was designed around.
func DefaultCaps() Caps {
	return Caps{TopItems: 10, TopProjects: 5, Recent: 50, Inventory: 100}
}

// ItemQuantity is one top-N ranking entry for items.
type ItemQuantity struct {
	Item     string
	Quantity float64
}

// ProjectCount is one top-N ranking entry for projects.
type ProjectCount struct {
	Project string
	Count   int
}

// StockCounts buckets inventory rows by stock status.
type StockCounts struct {
	Critical   int
	Low        int
	Sufficient int
}

// Stock status thresholds on available quantity.
const (
	criticalStockMax = 5
	lowStockMax      = 20
)

// Summary is the ephemeral, request-scoped aggregate passed to the narrative
// step or rendered directly. It is computed fresh per question.
type Summary struct {
	TotalRequests  int
	TotalQuantity  float64
	UniqueItems    int
	UniqueProjects int
	DateMin        time.Time
	DateMax        time.Time
	TopItems       []ItemQuantity
	TopProjects    []ProjectCount
	Recent         []RequestRecord
	Inventory      []InventoryRecord
	InventoryCount int
	InventoryValue float64
	Stock          StockCounts
	Window         *Window
}

// UnreturnedAlert describes the longest-outstanding unreturned request within
// a project, plus how many such requests exist.
type UnreturnedAlert struct {
	Requester       string
	Item            string
	Project         string
	Since           time.Time
	DaysOutstanding int
	Count           int
}

func (f Filter) matchRequest(r RequestRecord) bool {
	if f.Project != "" && Normalize(r.Project) != f.Project {
		return false
	}
	if f.Item != "" && Normalize(r.ItemName) != f.Item {
		return false
	}
	if f.Window != nil {
		// Records with no parseable date are excluded from date-bounded
		// queries but still counted in entity-only queries.
		if r.RequestedAt.IsZero() || !f.Window.Contains(r.RequestedAt) {
			return false
		}
	}
	return true
}

func (f Filter) matchInventory(inv InventoryRecord) bool {
	return f.Item == "" || Normalize(inv.ItemName) == f.Item
}

// Aggregate computes the filtered, capped statistics for one question. The
// source record sets are never mutated. An empty filtered set yields
// scmerrors.ErrNoData, never a zero-filled summary.
func Aggregate(ds *Dataset, f Filter, caps Caps) (*Summary, error) {
	if ds == nil {
		return nil, scmerrors.ErrNoData
	}

	var requests []RequestRecord
	for _, r := range ds.Requests {
		if f.matchRequest(r) {
			requests = append(requests, r)
		}
	}
	var inventory []InventoryRecord
	for _, inv := range ds.Inventory {
		if f.matchInventory(inv) {
			inventory = append(inventory, inv)
		}
	}

	if len(requests) == 0 && len(inventory) == 0 {
		return nil, scmerrors.ErrNoData
	}

	summary := &Summary{TotalRequests: len(requests), Window: f.Window}

	// Per-item quantities and per-project counts in first-seen order so the
	// later sort can break ties stably.
	itemQty := make(map[string]float64)
	var itemOrder []string
	projCount := make(map[string]int)
	var projOrder []string

	for _, r := range requests {
		summary.TotalQuantity += r.Quantity

		item := r.ItemName
		if item == "" {
			item = "Unknown"
		}
		if _, seen := itemQty[item]; !seen {
			itemOrder = append(itemOrder, item)
		}
		itemQty[item] += r.Quantity

		proj := r.Project
		if proj == "" {
			proj = "Unknown"
		}
		if _, seen := projCount[proj]; !seen {
			projOrder = append(projOrder, proj)
		}
		projCount[proj]++

		if !r.RequestedAt.IsZero() {
			if summary.DateMin.IsZero() || r.RequestedAt.Before(summary.DateMin) {
				summary.DateMin = r.RequestedAt
			}
			if r.RequestedAt.After(summary.DateMax) {
				summary.DateMax = r.RequestedAt
			}
		}
	}
	summary.UniqueItems = len(itemQty)
	summary.UniqueProjects = len(projCount)

	ranked := make([]ItemQuantity, 0, len(itemOrder))
	for _, item := range itemOrder {
		ranked = append(ranked, ItemQuantity{Item: item, Quantity: itemQty[item]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Quantity > ranked[j].Quantity
	})
	if len(ranked) > caps.TopItems {
		ranked = ranked[:caps.TopItems]
	}
	summary.TopItems = ranked

	rankedProj := make([]ProjectCount, 0, len(projOrder))
	for _, proj := range projOrder {
		rankedProj = append(rankedProj, ProjectCount{Project: proj, Count: projCount[proj]})
	}
	sort.SliceStable(rankedProj, func(i, j int) bool {
		return rankedProj[i].Count > rankedProj[j].Count
	})
	if len(rankedProj) > caps.TopProjects {
		rankedProj = rankedProj[:caps.TopProjects]
	}
	summary.TopProjects = rankedProj

	recent := requests
	if len(recent) > caps.Recent {
		recent = recent[len(recent)-caps.Recent:]
	}
	summary.Recent = recent

	summary.InventoryCount = len(inventory)
	capped := inventory
	if len(capped) > caps.Inventory {
		capped = capped[:caps.Inventory]
	}
	summary.Inventory = capped
	for _, inv := range inventory {
		summary.InventoryValue += inv.Amount
		switch {
		case inv.Quantity <= criticalStockMax:
			summary.Stock.Critical++
		case inv.Quantity <= lowStockMax:
			summary.Stock.Low++
		default:
			summary.Stock.Sufficient++
		}
	}

	return summary, nil
}

// UnreturnedReport finds the longest-outstanding request with zero consumed
// and zero returned quantity within a project.
func UnreturnedReport(ds *Dataset, project string, now time.Time) (*UnreturnedAlert, error) {
	if ds == nil || project == "" {
		return nil, scmerrors.ErrNoData
	}

	var unreturned []RequestRecord
	for _, r := range ds.Requests {
		if Normalize(r.Project) == project && r.Unreturned() {
			unreturned = append(unreturned, r)
		}
	}
	if len(unreturned) == 0 {
		return nil, scmerrors.ErrNoData
	}

	oldest := unreturned[0]
	for _, r := range unreturned[1:] {
		since := r.OutstandingSince()
		if since.IsZero() {
			continue
		}
		if oldest.OutstandingSince().IsZero() || since.Before(oldest.OutstandingSince()) {
			oldest = r
		}
	}

	alert := &UnreturnedAlert{
		Requester: oldest.Requester,
		Item:      oldest.ItemName,
		Project:   oldest.Project,
		Since:     oldest.OutstandingSince(),
		Count:     len(unreturned),
	}
	if !alert.Since.IsZero() {
		alert.DaysOutstanding = int(now.Sub(alert.Since).Hours() / 24)
	}
	return alert, nil
}
