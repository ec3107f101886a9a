package models

import (
	"strings"
	"time"
)

// Type identifies which kind of engagement an opportunity is. Speaking
// records live in a separate collection and are tagged at merge time.
type Type string

const (
	TypeBoardDirector Type = "board_director"
	TypeExecutive     Type = "executive_position"
	TypeAdvisor       Type = "advisor"
	TypeSpeaking      Type = "speaking"
)

// ParseType validates a raw type string.
func ParseType(raw string) (Type, bool) {
	switch Type(raw) {
	case TypeBoardDirector, TypeExecutive, TypeAdvisor, TypeSpeaking:
		return Type(raw), true
	}
	return "", false
}

// Status is one discrete position in the pipeline lifecycle. The set is a
// labeled bucket set, not a strict linear guard: records move backward too
// (an offer withdrawn back to under_consideration).
type Status string

const (
	StatusProspect           Status = "prospect"
	StatusApplied            Status = "applied"
	StatusInterviewStage     Status = "interview_stage"
	StatusUnderConsideration Status = "under_consideration"
	StatusOfferReceived      Status = "offer_received"
	StatusAccepted           Status = "accepted"
	StatusRejected           Status = "rejected"
)

// BucketClosed is the board column holding accepted and rejected records.
// It is a presentation grouping only and is never persisted as a status.
const BucketClosed = "closed"

// ParseStatus validates a raw status string against the persisted set.
func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusProspect, StatusApplied, StatusInterviewStage,
		StatusUnderConsideration, StatusOfferReceived,
		StatusAccepted, StatusRejected:
		return Status(raw), true
	}
	return "", false
}

// Priority is the urgency level of an opportunity.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// NormalizePriority maps a raw priority to one of the four levels,
// defaulting unrecognized values to medium.
func NormalizePriority(raw string) Priority {
	switch Priority(strings.ToLower(strings.TrimSpace(raw))) {
	case PriorityCritical:
		return PriorityCritical
	case PriorityHigh:
		return PriorityHigh
	case PriorityLow:
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// PriorityRank returns the sort rank of a priority value. Unmapped values
// rank 0 so they order after low.
func PriorityRank(p Priority) int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Key is the composite identity of a record. The two source collections
// assign ids independently, so a numeric id alone is ambiguous.
type Key struct {
	Type Type
	ID   int64
}

// Opportunity is the canonical record both source collections normalize
// into. All pipeline computation operates on this shape.
type Opportunity struct {
	ID              int64      `json:"id"`
	Type            Type       `json:"type"`
	Title           string     `json:"title"`
	Organization    string     `json:"organization"`
	Location        string     `json:"location,omitempty"`
	Compensation    string     `json:"compensation,omitempty"`
	Status          Status     `json:"status"`
	PriorityLevel   Priority   `json:"priority_level"`
	AIMatchScore    float64    `json:"ai_match_score"`
	Deadline        *time.Time `json:"deadline"`
	ApplicationDate *time.Time `json:"application_date"`
	Requirements    []string   `json:"requirements"`
	Notes           string     `json:"notes,omitempty"`
	NextStep        string     `json:"next_step,omitempty"`
	Source          string     `json:"source,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (o Opportunity) Key() Key {
	return Key{Type: o.Type, ID: o.ID}
}

// SplitRequirements turns a user-entered comma-separated list into trimmed
// entries with empties removed.
func SplitRequirements(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// TrimRequirements normalizes an already-split requirements list.
func TrimRequirements(items []string) []string {
	var out []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// ClampScore bounds an AI match score to [0,100].
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
