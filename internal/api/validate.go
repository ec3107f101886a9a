package api

import (
	"fmt"

	"github.com/microcosm-cc/bluemonday"

	"github.com/dkaplan/opportunity-pipeline/internal/models"
)

// textPolicy strips all HTML from user-entered free text before it is
// persisted.
var textPolicy = bluemonday.StrictPolicy()

// validateGeneric normalizes a generic opportunity payload in place and
// rejects values outside the defined enums. Runs before any store call.
func validateGeneric(g *models.GenericOpportunity) error {
	typ, ok := models.ParseType(string(g.Type))
	if !ok || typ == models.TypeSpeaking {
		return fmt.Errorf("type must be one of board_director, executive_position, advisor")
	}

	if g.Status == "" {
		g.Status = models.StatusProspect
	}
	if _, ok := models.ParseStatus(string(g.Status)); !ok {
		return fmt.Errorf("invalid status %q", g.Status)
	}

	g.PriorityLevel = models.NormalizePriority(string(g.PriorityLevel))
	g.AIMatchScore = models.ClampScore(g.AIMatchScore)
	g.Requirements = models.TrimRequirements(g.Requirements)

	g.Title = textPolicy.Sanitize(g.Title)
	g.Company = textPolicy.Sanitize(g.Company)
	g.Location = textPolicy.Sanitize(g.Location)
	g.CompensationRange = textPolicy.Sanitize(g.CompensationRange)
	g.Notes = textPolicy.Sanitize(g.Notes)
	g.NextStep = textPolicy.Sanitize(g.NextStep)
	g.Source = textPolicy.Sanitize(g.Source)
	return nil
}

// validateSpeaking is the speaking-collection counterpart.
func validateSpeaking(sp *models.SpeakingOpportunity) error {
	if sp.Status == "" {
		sp.Status = models.StatusProspect
	}
	if _, ok := models.ParseStatus(string(sp.Status)); !ok {
		return fmt.Errorf("invalid status %q", sp.Status)
	}
	if sp.AudienceSize < 0 {
		return fmt.Errorf("audience_size must not be negative")
	}

	sp.PriorityLevel = models.NormalizePriority(string(sp.PriorityLevel))
	sp.AIMatchScore = models.ClampScore(sp.AIMatchScore)
	sp.Requirements = models.TrimRequirements(sp.Requirements)

	sp.Title = textPolicy.Sanitize(sp.Title)
	sp.EventName = textPolicy.Sanitize(sp.EventName)
	sp.Organizer = textPolicy.Sanitize(sp.Organizer)
	sp.EventType = textPolicy.Sanitize(sp.EventType)
	sp.Location = textPolicy.Sanitize(sp.Location)
	sp.SpeakingFee = textPolicy.Sanitize(sp.SpeakingFee)
	sp.Notes = textPolicy.Sanitize(sp.Notes)
	sp.Source = textPolicy.Sanitize(sp.Source)
	return nil
}
