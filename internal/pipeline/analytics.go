package pipeline

import (
	"math"

	"github.com/dkaplan/opportunity-pipeline/internal/models"
)

// Analytics is the derived view of the full, unfiltered record set.
type Analytics struct {
	TotalRecords      int                   `json:"total_records"`
	ByType            map[models.Type]int   `json:"by_type"`
	ByStatus          map[models.Status]int `json:"by_status"`
	StageConversion   []StageConversion     `json:"stage_conversion"`
	OverallConversion float64               `json:"overall_conversion"`
	HealthScore       int                   `json:"health_score"`
}

// StageConversion is the rate between two adjacent funnel stages using
// cumulative "reached" semantics.
type StageConversion struct {
	From    models.Status `json:"from"`
	To      models.Status `json:"to"`
	Reached int           `json:"reached"`
	Rate    float64       `json:"rate"`
}

// conversionStages is the ordered funnel measured for stage-to-stage rates.
// under_consideration sits between interview_stage and offer_received in
// the lifecycle but is not a measured checkpoint.
var conversionStages = []models.Status{
	models.StatusApplied,
	models.StatusInterviewStage,
	models.StatusOfferReceived,
	models.StatusAccepted,
}

// stageRank orders statuses along the funnel. A record at a later stage has
// reached every earlier one. Rejected records left prospect but their
// furthest stage is unknown, so they only count as having reached applied.
func stageRank(s models.Status) int {
	switch s {
	case models.StatusApplied, models.StatusRejected:
		return 1
	case models.StatusInterviewStage:
		return 2
	case models.StatusUnderConsideration:
		return 3
	case models.StatusOfferReceived:
		return 4
	case models.StatusAccepted:
		return 5
	}
	return 0
}

var checkpointRank = map[models.Status]int{
	models.StatusApplied:        1,
	models.StatusInterviewStage: 2,
	models.StatusOfferReceived:  4,
	models.StatusAccepted:       5,
}

// Analyze computes funnel counts, conversion rates and the health score
// over the full record set. It never fails: an empty set yields zero rates
// and a health score of 0.
func Analyze(records []models.Opportunity) Analytics {
	a := Analytics{
		TotalRecords: len(records),
		ByType:       make(map[models.Type]int),
		ByStatus:     make(map[models.Status]int),
	}

	var accepted, leftProspect int
	for _, rec := range records {
		a.ByType[rec.Type]++
		a.ByStatus[rec.Status]++
		if rec.Status == models.StatusAccepted {
			accepted++
		}
		if stageRank(rec.Status) >= 1 {
			leftProspect++
		}
	}

	reached := func(stage models.Status) int {
		min := checkpointRank[stage]
		n := 0
		for _, rec := range records {
			if stageRank(rec.Status) >= min {
				n++
			}
		}
		return n
	}

	for i := 0; i < len(conversionStages)-1; i++ {
		from, to := conversionStages[i], conversionStages[i+1]
		fromCount, toCount := reached(from), reached(to)
		sc := StageConversion{From: from, To: to, Reached: fromCount}
		if fromCount > 0 {
			sc.Rate = float64(toCount) / float64(fromCount)
		}
		a.StageConversion = append(a.StageConversion, sc)
	}

	if leftProspect > 0 {
		a.OverallConversion = float64(accepted) / float64(leftProspect)
	}

	a.HealthScore = healthScore(len(records), leftProspect, a.OverallConversion)
	return a
}

// healthScore combines funnel balance and conversion quality into a 0-100
// integer. Balance is the share of records that progressed past prospect,
// so a pipeline overloaded in prospect with nothing moving scores low even
// before conversion is considered.
func healthScore(total, active int, conversion float64) int {
	if total == 0 {
		return 0
	}
	balance := float64(active) / float64(total)
	score := int(math.Round(40*balance + 60*conversion))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
