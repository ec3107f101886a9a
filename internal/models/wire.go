package models

import "time"

// GenericOpportunity is the wire shape served by /opportunities. It covers
// board_director, executive_position and advisor records and names its
// fields the way that collection does (company, compensation_range).
type GenericOpportunity struct {
	ID                int64      `json:"id"`
	Type              Type       `json:"type"`
	Title             string     `json:"title"`
	Company           string     `json:"company"`
	CompensationRange string     `json:"compensation_range,omitempty"`
	Location          string     `json:"location,omitempty"`
	Status            Status     `json:"status"`
	PriorityLevel     Priority   `json:"priority_level"`
	AIMatchScore      float64    `json:"ai_match_score"`
	Deadline          *time.Time `json:"deadline"`
	ApplicationDate   *time.Time `json:"application_date"`
	Requirements      []string   `json:"requirements"`
	Notes             string     `json:"notes,omitempty"`
	NextStep          string     `json:"next_step,omitempty"`
	Source            string     `json:"source,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Normalize projects a generic record into the canonical shape.
func (g GenericOpportunity) Normalize() Opportunity {
	return Opportunity{
		ID:              g.ID,
		Type:            g.Type,
		Title:           g.Title,
		Organization:    g.Company,
		Location:        g.Location,
		Compensation:    g.CompensationRange,
		Status:          g.Status,
		PriorityLevel:   g.PriorityLevel,
		AIMatchScore:    g.AIMatchScore,
		Deadline:        g.Deadline,
		ApplicationDate: g.ApplicationDate,
		Requirements:    g.Requirements,
		Notes:           g.Notes,
		NextStep:        g.NextStep,
		Source:          g.Source,
		CreatedAt:       g.CreatedAt,
		UpdatedAt:       g.UpdatedAt,
	}
}

// SpeakingOpportunity is the wire shape served by /speaking-opportunities.
// The collection predates the generic one and kept its own field names
// (organizer, speaking_fee, submission_deadline).
type SpeakingOpportunity struct {
	ID                 int64      `json:"id"`
	Title              string     `json:"title"`
	EventName          string     `json:"event_name,omitempty"`
	Organizer          string     `json:"organizer"`
	EventType          string     `json:"event_type,omitempty"`
	EventDate          *time.Time `json:"event_date"`
	SubmissionDeadline *time.Time `json:"submission_deadline"`
	SpeakingFee        string     `json:"speaking_fee,omitempty"`
	AudienceSize       int        `json:"audience_size,omitempty"`
	Location           string     `json:"location,omitempty"`
	Status             Status     `json:"status"`
	PriorityLevel      Priority   `json:"priority_level"`
	AIMatchScore       float64    `json:"ai_match_score"`
	ApplicationDate    *time.Time `json:"application_date"`
	Requirements       []string   `json:"requirements"`
	Notes              string     `json:"notes,omitempty"`
	Source             string     `json:"source,omitempty"`
	TravelRequired     bool       `json:"travel_required"`
	VirtualOption      bool       `json:"virtual_option"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Normalize projects a speaking record into the canonical shape, tagging it
// with the speaking type. Organizer maps to organization, speaking fee to
// compensation, submission deadline to deadline.
func (s SpeakingOpportunity) Normalize() Opportunity {
	return Opportunity{
		ID:              s.ID,
		Type:            TypeSpeaking,
		Title:           s.Title,
		Organization:    s.Organizer,
		Location:        s.Location,
		Compensation:    s.SpeakingFee,
		Status:          s.Status,
		PriorityLevel:   s.PriorityLevel,
		AIMatchScore:    s.AIMatchScore,
		Deadline:        s.SubmissionDeadline,
		ApplicationDate: s.ApplicationDate,
		Requirements:    s.Requirements,
		Notes:           s.Notes,
		Source:          s.Source,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// MergeCollections concatenates both normalized collections into one list.
// No deduplication is attempted: ids are only unique within a source
// collection, which is why Key carries the type.
func MergeCollections(generic []GenericOpportunity, speaking []SpeakingOpportunity) []Opportunity {
	merged := make([]Opportunity, 0, len(generic)+len(speaking))
	for _, g := range generic {
		merged = append(merged, g.Normalize())
	}
	for _, s := range speaking {
		merged = append(merged, s.Normalize())
	}
	return merged
}
