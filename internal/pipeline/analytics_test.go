package pipeline

import (
	"math"
	"testing"

	"github.com/dkaplan/opportunity-pipeline/internal/models"
)

func repeat(status models.Status, n int) []models.Opportunity {
	out := make([]models.Opportunity, n)
	for i := range out {
		out[i] = models.Opportunity{ID: int64(i + 1), Type: models.TypeExecutive, Status: status}
	}
	return out
}

func TestAnalyzeEmptySet(t *testing.T) {
	a := Analyze(nil)
	if a.HealthScore != 0 {
		t.Fatalf("expected health 0 for empty set, got %d", a.HealthScore)
	}
	if a.OverallConversion != 0 {
		t.Fatalf("expected overall conversion 0, got %f", a.OverallConversion)
	}
	for _, sc := range a.StageConversion {
		if sc.Rate != 0 {
			t.Fatalf("expected %s->%s rate 0, got %f", sc.From, sc.To, sc.Rate)
		}
	}
}

func TestAnalyzeFunnelScenario(t *testing.T) {
	// 10 records: 4 still prospect, 3 applied, 2 interview_stage, 1 accepted.
	// 6 reached applied, 3 reached interview_stage, 1 reached accepted.
	var records []models.Opportunity
	records = append(records, repeat(models.StatusProspect, 4)...)
	records = append(records, repeat(models.StatusApplied, 3)...)
	records = append(records, repeat(models.StatusInterviewStage, 2)...)
	records = append(records, repeat(models.StatusAccepted, 1)...)

	a := Analyze(records)
	if a.TotalRecords != 10 {
		t.Fatalf("expected 10 records, got %d", a.TotalRecords)
	}

	first := a.StageConversion[0]
	if first.From != models.StatusApplied || first.To != models.StatusInterviewStage {
		t.Fatalf("unexpected first stage pair: %s->%s", first.From, first.To)
	}
	if first.Reached != 6 {
		t.Fatalf("expected 6 reached applied, got %d", first.Reached)
	}
	if math.Abs(first.Rate-0.5) > 1e-9 {
		t.Fatalf("expected applied->interview rate 0.5, got %f", first.Rate)
	}

	if math.Abs(a.OverallConversion-1.0/6.0) > 1e-9 {
		t.Fatalf("expected overall conversion 1/6, got %f", a.OverallConversion)
	}
}

func TestAnalyzeCountsIgnoreFilter(t *testing.T) {
	records := append(repeat(models.StatusApplied, 2), models.Opportunity{
		ID: 99, Type: models.TypeSpeaking, Status: models.StatusAccepted,
	})
	a := Analyze(records)
	if a.ByType[models.TypeExecutive] != 2 || a.ByType[models.TypeSpeaking] != 1 {
		t.Fatalf("unexpected per-type counts: %+v", a.ByType)
	}
	if a.ByStatus[models.StatusApplied] != 2 || a.ByStatus[models.StatusAccepted] != 1 {
		t.Fatalf("unexpected per-status counts: %+v", a.ByStatus)
	}
}

func TestHealthScoreBoundsAndMonotonicity(t *testing.T) {
	// All-prospect pipeline: nothing progressing, low score.
	stuck := Analyze(repeat(models.StatusProspect, 20))
	if stuck.HealthScore != 0 {
		t.Fatalf("all-prospect pipeline should score 0, got %d", stuck.HealthScore)
	}

	// Fully converted pipeline stays within bounds.
	converted := Analyze(repeat(models.StatusAccepted, 5))
	if converted.HealthScore < 0 || converted.HealthScore > 100 {
		t.Fatalf("health score out of bounds: %d", converted.HealthScore)
	}

	// More conversion at equal balance never lowers the score.
	low := append(repeat(models.StatusApplied, 9), repeat(models.StatusAccepted, 1)...)
	high := append(repeat(models.StatusApplied, 5), repeat(models.StatusAccepted, 5)...)
	if Analyze(high).HealthScore < Analyze(low).HealthScore {
		t.Fatal("health score must be monotonic in overall conversion")
	}
}

func TestAnalyzeRejectedLeftProspect(t *testing.T) {
	// A rejected record counts in the overall-conversion denominator but not
	// as having reached interview_stage.
	records := []models.Opportunity{
		{ID: 1, Status: models.StatusRejected},
		{ID: 2, Status: models.StatusAccepted},
	}
	a := Analyze(records)
	if math.Abs(a.OverallConversion-0.5) > 1e-9 {
		t.Fatalf("expected overall conversion 0.5, got %f", a.OverallConversion)
	}
	if a.StageConversion[0].Reached != 2 {
		t.Fatalf("expected both records to have reached applied, got %d", a.StageConversion[0].Reached)
	}
}
