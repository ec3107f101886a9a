// Package pipeline holds the pure computation over merged opportunity
// records: view filtering and sorting, board grouping, and pipeline
// analytics. Nothing here performs I/O, so a full reload can re-run the
// whole chain idempotently.
package pipeline

import (
	"sort"
	"time"

	"github.com/dkaplan/opportunity-pipeline/internal/models"
)

// FilterAll selects every record regardless of type.
const FilterAll = "all"

// SortKey selects the comparator used by View.
type SortKey string

const (
	SortByScore    SortKey = "ai_match_score"
	SortByCreated  SortKey = "created_at"
	SortByDeadline SortKey = "deadline"
	SortByPriority SortKey = "priority_level"
)

// View filters records by type and orders them by the given key. The input
// slice is not modified; relative order of equal keys is preserved so the
// rendered board is deterministic.
func View(records []models.Opportunity, filter string, key SortKey) []models.Opportunity {
	out := make([]models.Opportunity, 0, len(records))
	for _, rec := range records {
		if filter == FilterAll || filter == "" || string(rec.Type) == filter {
			out = append(out, rec)
		}
	}

	less := comparator(key)
	if less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out
}

func comparator(key SortKey) func(a, b models.Opportunity) bool {
	switch key {
	case SortByScore:
		return func(a, b models.Opportunity) bool {
			return a.AIMatchScore > b.AIMatchScore
		}
	case SortByCreated:
		// Most recent first; a missing timestamp counts as "now" so fresh
		// unsaved records surface at the top.
		return func(a, b models.Opportunity) bool {
			return effectiveCreatedAt(a).After(effectiveCreatedAt(b))
		}
	case SortByDeadline:
		return func(a, b models.Opportunity) bool {
			if a.Deadline == nil {
				return false
			}
			if b.Deadline == nil {
				return true
			}
			return a.Deadline.Before(*b.Deadline)
		}
	case SortByPriority:
		return func(a, b models.Opportunity) bool {
			return models.PriorityRank(a.PriorityLevel) > models.PriorityRank(b.PriorityLevel)
		}
	}
	return nil
}

func effectiveCreatedAt(o models.Opportunity) time.Time {
	if o.CreatedAt.IsZero() {
		return time.Now()
	}
	return o.CreatedAt
}
