package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkaplan/opportunity-pipeline/internal/models"
)

// ErrNotFound is returned when a record id does not exist in its
// collection.
var ErrNotFound = errors.New("record not found")

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const opportunityCols = `id, type, title, company, compensation_range, location,
	status, priority_level, ai_match_score, deadline, application_date,
	requirements, notes, next_step, source, created_at, updated_at`

func scanGeneric(scan func(dest ...any) error) (models.GenericOpportunity, error) {
	var g models.GenericOpportunity
	var compensation, location, notes, nextStep, source *string
	var requirementsRaw []byte

	err := scan(
		&g.ID, &g.Type, &g.Title, &g.Company, &compensation, &location,
		&g.Status, &g.PriorityLevel, &g.AIMatchScore, &g.Deadline, &g.ApplicationDate,
		&requirementsRaw, &notes, &nextStep, &source, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return g, err
	}

	if compensation != nil {
		g.CompensationRange = *compensation
	}
	if location != nil {
		g.Location = *location
	}
	if notes != nil {
		g.Notes = *notes
	}
	if nextStep != nil {
		g.NextStep = *nextStep
	}
	if source != nil {
		g.Source = *source
	}
	if len(requirementsRaw) > 0 {
		_ = json.Unmarshal(requirementsRaw, &g.Requirements)
	}
	return g, nil
}

func (s *Store) ListOpportunities(ctx context.Context) ([]models.GenericOpportunity, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf("SELECT %s FROM opportunities ORDER BY id", opportunityCols))
	if err != nil {
		return nil, fmt.Errorf("failed to list opportunities: %w", err)
	}
	defer rows.Close()

	out := []models.GenericOpportunity{}
	for rows.Next() {
		g, err := scanGeneric(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan opportunity: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Store) GetOpportunity(ctx context.Context, id int64) (*models.GenericOpportunity, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM opportunities WHERE id = $1", opportunityCols), id)
	g, err := scanGeneric(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get opportunity: %w", err)
	}
	return &g, nil
}

func (s *Store) CreateOpportunity(ctx context.Context, g models.GenericOpportunity) (*models.GenericOpportunity, error) {
	requirements, err := json.Marshal(emptyIfNil(g.Requirements))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal requirements: %w", err)
	}

	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO opportunities (
			type, title, company, compensation_range, location, status,
			priority_level, ai_match_score, deadline, application_date,
			requirements, notes, next_step, source
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING %s`, opportunityCols),
		g.Type, g.Title, g.Company, nilIfEmpty(g.CompensationRange), nilIfEmpty(g.Location), g.Status,
		g.PriorityLevel, g.AIMatchScore, g.Deadline, g.ApplicationDate,
		requirements, nilIfEmpty(g.Notes), nilIfEmpty(g.NextStep), nilIfEmpty(g.Source),
	)

	created, err := scanGeneric(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("failed to create opportunity: %w", err)
	}
	return &created, nil
}

func (s *Store) UpdateOpportunity(ctx context.Context, g models.GenericOpportunity) (*models.GenericOpportunity, error) {
	requirements, err := json.Marshal(emptyIfNil(g.Requirements))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal requirements: %w", err)
	}

	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE opportunities SET
			type = $2, title = $3, company = $4, compensation_range = $5,
			location = $6, status = $7, priority_level = $8, ai_match_score = $9,
			deadline = $10, application_date = $11, requirements = $12,
			notes = $13, next_step = $14, source = $15, updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, opportunityCols),
		g.ID, g.Type, g.Title, g.Company, nilIfEmpty(g.CompensationRange),
		nilIfEmpty(g.Location), g.Status, g.PriorityLevel, g.AIMatchScore,
		g.Deadline, g.ApplicationDate, requirements,
		nilIfEmpty(g.Notes), nilIfEmpty(g.NextStep), nilIfEmpty(g.Source),
	)

	updated, err := scanGeneric(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update opportunity: %w", err)
	}
	return &updated, nil
}

func (s *Store) UpdateOpportunityStatus(ctx context.Context, id int64, status models.Status) (*models.GenericOpportunity, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE opportunities SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, opportunityCols), id, status)

	updated, err := scanGeneric(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update opportunity status: %w", err)
	}
	return &updated, nil
}

func (s *Store) DeleteOpportunity(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM opportunities WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete opportunity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const speakingCols = `id, title, event_name, organizer, event_type, event_date,
	submission_deadline, speaking_fee, audience_size, location, status,
	priority_level, ai_match_score, application_date, requirements, notes,
	source, travel_required, virtual_option, created_at, updated_at`

func scanSpeaking(scan func(dest ...any) error) (models.SpeakingOpportunity, error) {
	var sp models.SpeakingOpportunity
	var eventName, eventType, fee, location, notes, source *string
	var audienceSize *int
	var requirementsRaw []byte

	err := scan(
		&sp.ID, &sp.Title, &eventName, &sp.Organizer, &eventType, &sp.EventDate,
		&sp.SubmissionDeadline, &fee, &audienceSize, &location, &sp.Status,
		&sp.PriorityLevel, &sp.AIMatchScore, &sp.ApplicationDate, &requirementsRaw, &notes,
		&source, &sp.TravelRequired, &sp.VirtualOption, &sp.CreatedAt, &sp.UpdatedAt,
	)
	if err != nil {
		return sp, err
	}

	if eventName != nil {
		sp.EventName = *eventName
	}
	if eventType != nil {
		sp.EventType = *eventType
	}
	if fee != nil {
		sp.SpeakingFee = *fee
	}
	if location != nil {
		sp.Location = *location
	}
	if notes != nil {
		sp.Notes = *notes
	}
	if source != nil {
		sp.Source = *source
	}
	if audienceSize != nil {
		sp.AudienceSize = *audienceSize
	}
	if len(requirementsRaw) > 0 {
		_ = json.Unmarshal(requirementsRaw, &sp.Requirements)
	}
	return sp, nil
}

func (s *Store) ListSpeaking(ctx context.Context) ([]models.SpeakingOpportunity, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf("SELECT %s FROM speaking_opportunities ORDER BY id", speakingCols))
	if err != nil {
		return nil, fmt.Errorf("failed to list speaking opportunities: %w", err)
	}
	defer rows.Close()

	out := []models.SpeakingOpportunity{}
	for rows.Next() {
		sp, err := scanSpeaking(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan speaking opportunity: %w", err)
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

func (s *Store) GetSpeaking(ctx context.Context, id int64) (*models.SpeakingOpportunity, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM speaking_opportunities WHERE id = $1", speakingCols), id)
	sp, err := scanSpeaking(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get speaking opportunity: %w", err)
	}
	return &sp, nil
}

func (s *Store) CreateSpeaking(ctx context.Context, sp models.SpeakingOpportunity) (*models.SpeakingOpportunity, error) {
	requirements, err := json.Marshal(emptyIfNil(sp.Requirements))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal requirements: %w", err)
	}

	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO speaking_opportunities (
			title, event_name, organizer, event_type, event_date,
			submission_deadline, speaking_fee, audience_size, location, status,
			priority_level, ai_match_score, application_date, requirements,
			notes, source, travel_required, virtual_option
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING %s`, speakingCols),
		sp.Title, nilIfEmpty(sp.EventName), sp.Organizer, nilIfEmpty(sp.EventType), sp.EventDate,
		sp.SubmissionDeadline, nilIfEmpty(sp.SpeakingFee), nilIfZero(sp.AudienceSize), nilIfEmpty(sp.Location), sp.Status,
		sp.PriorityLevel, sp.AIMatchScore, sp.ApplicationDate, requirements,
		nilIfEmpty(sp.Notes), nilIfEmpty(sp.Source), sp.TravelRequired, sp.VirtualOption,
	)

	created, err := scanSpeaking(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("failed to create speaking opportunity: %w", err)
	}
	return &created, nil
}

func (s *Store) UpdateSpeaking(ctx context.Context, sp models.SpeakingOpportunity) (*models.SpeakingOpportunity, error) {
	requirements, err := json.Marshal(emptyIfNil(sp.Requirements))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal requirements: %w", err)
	}

	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE speaking_opportunities SET
			title = $2, event_name = $3, organizer = $4, event_type = $5,
			event_date = $6, submission_deadline = $7, speaking_fee = $8,
			audience_size = $9, location = $10, status = $11, priority_level = $12,
			ai_match_score = $13, application_date = $14, requirements = $15,
			notes = $16, source = $17, travel_required = $18, virtual_option = $19,
			updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, speakingCols),
		sp.ID, sp.Title, nilIfEmpty(sp.EventName), sp.Organizer, nilIfEmpty(sp.EventType),
		sp.EventDate, sp.SubmissionDeadline, nilIfEmpty(sp.SpeakingFee),
		nilIfZero(sp.AudienceSize), nilIfEmpty(sp.Location), sp.Status, sp.PriorityLevel,
		sp.AIMatchScore, sp.ApplicationDate, requirements,
		nilIfEmpty(sp.Notes), nilIfEmpty(sp.Source), sp.TravelRequired, sp.VirtualOption,
	)

	updated, err := scanSpeaking(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update speaking opportunity: %w", err)
	}
	return &updated, nil
}

func (s *Store) UpdateSpeakingStatus(ctx context.Context, id int64, status models.Status) (*models.SpeakingOpportunity, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE speaking_opportunities SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, speakingCols), id, status)

	updated, err := scanSpeaking(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update speaking status: %w", err)
	}
	return &updated, nil
}

func (s *Store) DeleteSpeaking(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM speaking_opportunities WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete speaking opportunity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nilIfZero(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}

func emptyIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
