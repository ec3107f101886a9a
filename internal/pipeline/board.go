package pipeline

import "github.com/dkaplan/opportunity-pipeline/internal/models"

// Board is the kanban grouping of a record set. Closed collects accepted
// and rejected records; every record lands in exactly one column.
type Board struct {
	Prospect           []models.Opportunity `json:"prospect"`
	Applied            []models.Opportunity `json:"applied"`
	InterviewStage     []models.Opportunity `json:"interview_stage"`
	UnderConsideration []models.Opportunity `json:"under_consideration"`
	OfferReceived      []models.Opportunity `json:"offer_received"`
	Closed             []models.Opportunity `json:"closed"`
}

// Counts reports the per-column sizes in board order.
type Counts struct {
	Prospect           int `json:"prospect"`
	Applied            int `json:"applied"`
	InterviewStage     int `json:"interview_stage"`
	UnderConsideration int `json:"under_consideration"`
	OfferReceived      int `json:"offer_received"`
	Closed             int `json:"closed"`
}

// Group partitions records into the six board columns. A status outside the
// persisted set falls into prospect so legacy data stays visible.
func Group(records []models.Opportunity) Board {
	var b Board
	for _, rec := range records {
		switch rec.Status {
		case models.StatusApplied:
			b.Applied = append(b.Applied, rec)
		case models.StatusInterviewStage:
			b.InterviewStage = append(b.InterviewStage, rec)
		case models.StatusUnderConsideration:
			b.UnderConsideration = append(b.UnderConsideration, rec)
		case models.StatusOfferReceived:
			b.OfferReceived = append(b.OfferReceived, rec)
		case models.StatusAccepted, models.StatusRejected:
			b.Closed = append(b.Closed, rec)
		default:
			b.Prospect = append(b.Prospect, rec)
		}
	}
	return b
}

// Counts returns the column sizes.
func (b Board) Counts() Counts {
	return Counts{
		Prospect:           len(b.Prospect),
		Applied:            len(b.Applied),
		InterviewStage:     len(b.InterviewStage),
		UnderConsideration: len(b.UnderConsideration),
		OfferReceived:      len(b.OfferReceived),
		Closed:             len(b.Closed),
	}
}

// Total is the number of records across all columns.
func (b Board) Total() int {
	c := b.Counts()
	return c.Prospect + c.Applied + c.InterviewStage + c.UnderConsideration + c.OfferReceived + c.Closed
}
