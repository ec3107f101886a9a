package pipeline

import (
	"testing"

	"github.com/dkaplan/opportunity-pipeline/internal/models"
)

func TestGroupPartitionsExactlyOnce(t *testing.T) {
	records := []models.Opportunity{
		{ID: 1, Status: models.StatusProspect},
		{ID: 2, Status: models.StatusApplied},
		{ID: 3, Status: models.StatusInterviewStage},
		{ID: 4, Status: models.StatusUnderConsideration},
		{ID: 5, Status: models.StatusOfferReceived},
		{ID: 6, Status: models.StatusAccepted},
		{ID: 7, Status: models.StatusRejected},
		{ID: 8, Status: "archived"}, // legacy status
	}

	b := Group(records)
	if b.Total() != len(records) {
		t.Fatalf("bucket sizes sum to %d, want %d", b.Total(), len(records))
	}

	c := b.Counts()
	if c.Closed != 2 {
		t.Fatalf("closed must hold accepted+rejected, got %d", c.Closed)
	}
	if c.Prospect != 2 {
		t.Fatalf("unknown statuses fall into prospect, got %d", c.Prospect)
	}
	if c.Applied != 1 || c.InterviewStage != 1 || c.UnderConsideration != 1 || c.OfferReceived != 1 {
		t.Fatalf("unexpected working-column counts: %+v", c)
	}
}

func TestGroupEmpty(t *testing.T) {
	b := Group(nil)
	if b.Total() != 0 {
		t.Fatalf("expected empty board, got total %d", b.Total())
	}
}
