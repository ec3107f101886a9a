package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dkaplan/opportunity-pipeline/internal/models"
	"github.com/dkaplan/opportunity-pipeline/internal/pipeline"
	"github.com/dkaplan/opportunity-pipeline/internal/scoring"
)

// Session holds the merged record set between loads. It is rebuilt from the
// server on every Load, so there is no hidden cache to go stale: the
// server-held record is the sole source of truth and every mutation is
// followed by either an optimistic local patch or a full reload.
type Session struct {
	client *Client
	scorer scoring.Scorer
	log    *logrus.Logger

	mu      sync.Mutex
	records []models.Opportunity
	pending map[models.Key]bool
}

func NewSession(client *Client, scorer scoring.Scorer, log *logrus.Logger) *Session {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Session{
		client:  client,
		scorer:  scorer,
		log:     log,
		pending: make(map[models.Key]bool),
	}
}

// Load fetches both source collections concurrently, merges them into the
// canonical record set and replaces the session state. A failed collection
// is treated as empty; the returned *LoadError says which side failed so
// the caller can surface a notification without discarding partial data.
func (s *Session) Load(ctx context.Context) error {
	var (
		generic  []models.GenericOpportunity
		speaking []models.SpeakingOpportunity
		errG     error
		errS     error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		generic, errG = s.client.ListOpportunities(gctx)
		return nil
	})
	g.Go(func() error {
		speaking, errS = s.client.ListSpeaking(gctx)
		return nil
	})
	_ = g.Wait()

	merged := models.MergeCollections(generic, speaking)

	s.mu.Lock()
	s.records = merged
	s.pending = make(map[models.Key]bool)
	s.mu.Unlock()

	if errG != nil || errS != nil {
		loadErr := &LoadError{GenericErr: errG, SpeakingErr: errS}
		s.log.WithError(loadErr).Warn("pipeline load incomplete")
		return loadErr
	}
	return nil
}

// Records returns a snapshot copy of the merged record set.
func (s *Session) Records() []models.Opportunity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Opportunity, len(s.records))
	copy(out, s.records)
	return out
}

// View runs the filter/sort engine over the current snapshot.
func (s *Session) View(filter string, key pipeline.SortKey) []models.Opportunity {
	return pipeline.View(s.Records(), filter, key)
}

// Board groups the filtered, sorted snapshot into kanban columns.
func (s *Session) Board(filter string, key pipeline.SortKey) pipeline.Board {
	return pipeline.Group(s.View(filter, key))
}

// Analytics computes pipeline analytics over the full, unfiltered set.
func (s *Session) Analytics() pipeline.Analytics {
	return pipeline.Analyze(s.Records())
}

// Pending reports whether a record has an optimistic status write in
// flight.
func (s *Session) Pending(key models.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[key]
}

// ResolveBucket maps a board drop target to a concrete persisted status.
// Dropping into closed persists rejected: a closed opportunity defaults to
// "did not convert" and the user corrects to accepted explicitly.
func ResolveBucket(bucket string) (models.Status, error) {
	if bucket == models.BucketClosed {
		return models.StatusRejected, nil
	}
	status, ok := models.ParseStatus(bucket)
	if !ok {
		return "", ErrUnknownBucket
	}
	return status, nil
}

// Transition applies a requested status change in two phases: patch the
// local record and mark it pending, then persist. On write failure the
// optimistic copy is discarded by a forced full reload, so local state is
// never trusted ahead of the server.
func (s *Session) Transition(ctx context.Context, typ models.Type, id int64, bucket string) error {
	status, err := ResolveBucket(bucket)
	if err != nil {
		return err
	}

	key := models.Key{Type: typ, ID: id}
	s.mu.Lock()
	idx := -1
	for i, rec := range s.records {
		if rec.Key() == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.records[idx].Status = status
	s.pending[key] = true
	s.mu.Unlock()

	if err := s.client.UpdateStatus(ctx, typ, id, status); err != nil {
		s.mu.Lock()
		delete(s.pending, key)
		s.mu.Unlock()

		reloadErr := s.Load(ctx)
		if reloadErr != nil {
			return errors.Join(err, reloadErr)
		}
		return err
	}

	s.mu.Lock()
	delete(s.pending, key)
	s.mu.Unlock()
	return nil
}

// CreateInput is the form payload for a new opportunity. Requirements are
// the raw comma-separated user entry. Score is only honored for speaking
// records, which arrive with an externally pre-computed score or none.
type CreateInput struct {
	Type            models.Type
	Title           string
	Organization    string
	Location        string
	Compensation    string
	PriorityLevel   string
	Requirements    string
	Deadline        *time.Time
	ApplicationDate *time.Time
	Notes           string
	NextStep        string
	Source          string
	Score           *float64
}

// Create validates the input, scores it, persists it to the type-specific
// endpoint and reloads. The created record is returned in canonical form.
func (s *Session) Create(ctx context.Context, in CreateInput) (models.Opportunity, error) {
	typ, ok := models.ParseType(string(in.Type))
	if !ok {
		return models.Opportunity{}, &ValidationError{Field: "type", Reason: "must be one of board_director, executive_position, advisor, speaking"}
	}

	requirements := models.SplitRequirements(in.Requirements)
	priority := models.NormalizePriority(in.PriorityLevel)

	score := s.resolveScore(ctx, typ, requirements, in)

	var created models.Opportunity
	if typ == models.TypeSpeaking {
		wire, err := s.client.CreateSpeaking(ctx, models.SpeakingOpportunity{
			Title:              in.Title,
			Organizer:          in.Organization,
			Location:           in.Location,
			SpeakingFee:        in.Compensation,
			Status:             models.StatusProspect,
			PriorityLevel:      priority,
			AIMatchScore:       score,
			SubmissionDeadline: in.Deadline,
			ApplicationDate:    in.ApplicationDate,
			Requirements:       requirements,
			Notes:              in.Notes,
			Source:             in.Source,
		})
		if err != nil {
			return models.Opportunity{}, err
		}
		created = wire.Normalize()
	} else {
		wire, err := s.client.CreateOpportunity(ctx, models.GenericOpportunity{
			Type:              typ,
			Title:             in.Title,
			Company:           in.Organization,
			Location:          in.Location,
			CompensationRange: in.Compensation,
			Status:            models.StatusProspect,
			PriorityLevel:     priority,
			AIMatchScore:      score,
			Deadline:          in.Deadline,
			ApplicationDate:   in.ApplicationDate,
			Requirements:      requirements,
			Notes:             in.Notes,
			NextStep:          in.NextStep,
			Source:            in.Source,
		})
		if err != nil {
			return models.Opportunity{}, err
		}
		created = wire.Normalize()
	}

	if err := s.Load(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// resolveScore picks the AI match score for a new record. Speaking records
// accept a pre-computed score; every other type goes through the scoring
// adapter, whose fallback guarantees a usable value.
func (s *Session) resolveScore(ctx context.Context, typ models.Type, requirements []string, in CreateInput) float64 {
	if typ == models.TypeSpeaking {
		if in.Score != nil {
			return models.ClampScore(*in.Score)
		}
		return 0
	}
	if s.scorer == nil {
		return scoring.FallbackScore
	}
	return s.scorer.Score(ctx, scoring.Request{
		Type:         typ,
		Requirements: requirements,
		Context: map[string]string{
			"title":        in.Title,
			"organization": in.Organization,
		},
	})
}

// Update writes a full-record edit to the type-specific endpoint, then
// reloads. Scoring is never re-invoked on edit.
func (s *Session) Update(ctx context.Context, rec models.Opportunity) error {
	if _, ok := models.ParseStatus(string(rec.Status)); !ok {
		return &ValidationError{Field: "status", Reason: "not a persisted status"}
	}
	rec.PriorityLevel = models.NormalizePriority(string(rec.PriorityLevel))
	rec.AIMatchScore = models.ClampScore(rec.AIMatchScore)
	rec.Requirements = models.TrimRequirements(rec.Requirements)

	var err error
	if rec.Type == models.TypeSpeaking {
		err = s.client.UpdateSpeaking(ctx, models.SpeakingOpportunity{
			ID:                 rec.ID,
			Title:              rec.Title,
			Organizer:          rec.Organization,
			Location:           rec.Location,
			SpeakingFee:        rec.Compensation,
			Status:             rec.Status,
			PriorityLevel:      rec.PriorityLevel,
			AIMatchScore:       rec.AIMatchScore,
			SubmissionDeadline: rec.Deadline,
			ApplicationDate:    rec.ApplicationDate,
			Requirements:       rec.Requirements,
			Notes:              rec.Notes,
			Source:             rec.Source,
		})
	} else {
		err = s.client.UpdateOpportunity(ctx, models.GenericOpportunity{
			ID:                rec.ID,
			Type:              rec.Type,
			Title:             rec.Title,
			Company:           rec.Organization,
			Location:          rec.Location,
			CompensationRange: rec.Compensation,
			Status:            rec.Status,
			PriorityLevel:     rec.PriorityLevel,
			AIMatchScore:      rec.AIMatchScore,
			Deadline:          rec.Deadline,
			ApplicationDate:   rec.ApplicationDate,
			Requirements:      rec.Requirements,
			Notes:             rec.Notes,
			NextStep:          rec.NextStep,
			Source:            rec.Source,
		})
	}
	if err != nil {
		return err
	}
	return s.Load(ctx)
}

// Delete removes a record after the caller has confirmed. No local
// mutation happens on failure.
func (s *Session) Delete(ctx context.Context, typ models.Type, id int64) error {
	if err := s.client.DeleteOpportunity(ctx, typ, id); err != nil {
		return err
	}
	return s.Load(ctx)
}
