package chatbot

import (
	"sort"
	"time"

	"scm-agent/scmerrors"
)

// WeeklyAverage is the local demand heuristic: bucket the item's historical
// request quantities into Monday-started weeks over the trailing window and
// average the weeks that actually saw demand. weeksUsed reports how many
// weeks carried data so callers can state the basis of the estimate.
func WeeklyAverage(ds *Dataset, item string, now time.Time, weeks int) (float64, int, error) {
	if ds == nil || weeks <= 0 {
		return 0, 0, scmerrors.ErrInsufficientData
	}

	item = Normalize(item)
	cutoff := startOfWeek(now).AddDate(0, 0, -7*weeks)

	buckets := make(map[time.Time]float64)
	for _, r := range ds.Requests {
		if Normalize(r.ItemName) != item || r.RequestedAt.IsZero() {
			continue
		}
		if r.RequestedAt.Before(cutoff) || !r.RequestedAt.Before(now) {
			continue
		}
		buckets[startOfWeek(r.RequestedAt)] += r.Quantity
	}
	if len(buckets) == 0 {
		return 0, 0, scmerrors.ErrInsufficientData
	}

	var total float64
	for _, qty := range buckets {
		total += qty
	}
	return total / float64(len(buckets)), len(buckets), nil
}

var demandLadderMonths = []int{3, 6, 9, 12}

// LikelyItems ranks the items a project has been requesting, widening the
// history window (3, 6, 9, 12 months) until at least one item is found. An
// empty project ranks across all projects. Returns the items by request count
// and the number of months of history used.
func LikelyItems(ds *Dataset, project string, now time.Time) ([]string, int, error) {
	if ds == nil {
		return nil, 0, scmerrors.ErrInsufficientData
	}

	rank := func(cutoff time.Time) []string {
		counts := make(map[string]int)
		var order []string
		for _, r := range ds.Requests {
			if project != "" && Normalize(r.Project) != project {
				continue
			}
			if !cutoff.IsZero() && (r.RequestedAt.IsZero() || r.RequestedAt.Before(cutoff)) {
				continue
			}
			item := r.ItemName
			if item == "" {
				continue
			}
			if _, seen := counts[item]; !seen {
				order = append(order, item)
			}
			counts[item]++
		}
		sort.SliceStable(order, func(i, j int) bool {
			return counts[order[i]] > counts[order[j]]
		})
		return order
	}

	for _, months := range demandLadderMonths {
		cutoff := dateOnly(now).AddDate(0, 0, -30*months)
		if items := rank(cutoff); len(items) > 0 {
			return items, months, nil
		}
	}
	if items := rank(time.Time{}); len(items) > 0 {
		return items, demandLadderMonths[len(demandLadderMonths)-1], nil
	}
	return nil, 0, scmerrors.ErrInsufficientData
}
