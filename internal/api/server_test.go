package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dkaplan/opportunity-pipeline/internal/db"
	"github.com/dkaplan/opportunity-pipeline/internal/models"
	"github.com/dkaplan/opportunity-pipeline/internal/pipeline"
)

var testSecret = []byte("test-secret")

// memStore is an in-memory db.Backend for handler tests.
type memStore struct {
	mu       sync.Mutex
	generic  map[int64]models.GenericOpportunity
	speaking map[int64]models.SpeakingOpportunity
	nextID   int64
}

func newMemStore() *memStore {
	return &memStore{
		generic:  make(map[int64]models.GenericOpportunity),
		speaking: make(map[int64]models.SpeakingOpportunity),
	}
}

func (m *memStore) ListOpportunities(ctx context.Context) ([]models.GenericOpportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.GenericOpportunity{}
	for _, g := range m.generic {
		out = append(out, g)
	}
	return out, nil
}

func (m *memStore) GetOpportunity(ctx context.Context, id int64) (*models.GenericOpportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.generic[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &g, nil
}

func (m *memStore) CreateOpportunity(ctx context.Context, g models.GenericOpportunity) (*models.GenericOpportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	g.ID = m.nextID
	g.CreatedAt = time.Now()
	m.generic[g.ID] = g
	return &g, nil
}

func (m *memStore) UpdateOpportunity(ctx context.Context, g models.GenericOpportunity) (*models.GenericOpportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.generic[g.ID]; !ok {
		return nil, db.ErrNotFound
	}
	m.generic[g.ID] = g
	return &g, nil
}

func (m *memStore) UpdateOpportunityStatus(ctx context.Context, id int64, status models.Status) (*models.GenericOpportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.generic[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	g.Status = status
	m.generic[id] = g
	return &g, nil
}

func (m *memStore) DeleteOpportunity(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.generic[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.generic, id)
	return nil
}

func (m *memStore) ListSpeaking(ctx context.Context) ([]models.SpeakingOpportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.SpeakingOpportunity{}
	for _, sp := range m.speaking {
		out = append(out, sp)
	}
	return out, nil
}

func (m *memStore) GetSpeaking(ctx context.Context, id int64) (*models.SpeakingOpportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sp, ok := m.speaking[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &sp, nil
}

func (m *memStore) CreateSpeaking(ctx context.Context, sp models.SpeakingOpportunity) (*models.SpeakingOpportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	sp.ID = m.nextID
	sp.CreatedAt = time.Now()
	m.speaking[sp.ID] = sp
	return &sp, nil
}

func (m *memStore) UpdateSpeaking(ctx context.Context, sp models.SpeakingOpportunity) (*models.SpeakingOpportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.speaking[sp.ID]; !ok {
		return nil, db.ErrNotFound
	}
	m.speaking[sp.ID] = sp
	return &sp, nil
}

func (m *memStore) UpdateSpeakingStatus(ctx context.Context, id int64, status models.Status) (*models.SpeakingOpportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sp, ok := m.speaking[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	sp.Status = status
	m.speaking[id] = sp
	return &sp, nil
}

func (m *memStore) DeleteSpeaking(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.speaking[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.speaking, id)
	return nil
}

func testToken(t *testing.T) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": uuid.New().String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func newTestServer(t *testing.T, store db.Backend) *Server {
	t.Helper()
	return NewServer(store, testSecret, []string{"http://localhost:4200"}, nil)
}

func doRequest(t *testing.T, s *Server, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func TestRequestsWithoutTokenRejected(t *testing.T) {
	s := newTestServer(t, newMemStore())
	rec := doRequest(t, s, http.MethodGet, "/api/v1/opportunities", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHealthIsOpen(t *testing.T) {
	s := newTestServer(t, newMemStore())
	rec := doRequest(t, s, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCreateOpportunityValidatesType(t *testing.T) {
	s := newTestServer(t, newMemStore())
	rec := doRequest(t, s, http.MethodPost, "/api/v1/opportunities",
		`{"type":"franchise","title":"Nope"}`, testToken(t))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateOpportunitySanitizesAndNormalizes(t *testing.T) {
	store := newMemStore()
	s := newTestServer(t, store)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/opportunities",
		`{"type":"board_director","title":"<script>x</script>Chair","company":"Acme","priority_level":"urgent","ai_match_score":250}`,
		testToken(t))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created models.GenericOpportunity
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Title != "Chair" {
		t.Fatalf("expected HTML stripped from title, got %q", created.Title)
	}
	if created.PriorityLevel != models.PriorityMedium {
		t.Fatalf("unknown priority must normalize to medium, got %s", created.PriorityLevel)
	}
	if created.AIMatchScore != 100 {
		t.Fatalf("expected score clamped to 100, got %f", created.AIMatchScore)
	}
	if created.Status != models.StatusProspect {
		t.Fatalf("expected default status prospect, got %s", created.Status)
	}
}

func TestStatusUpdateRejectsClosed(t *testing.T) {
	store := newMemStore()
	store.generic[1] = models.GenericOpportunity{ID: 1, Type: models.TypeAdvisor, Status: models.StatusApplied}
	store.nextID = 1
	s := newTestServer(t, store)

	// closed is a board column, never a persisted status.
	rec := doRequest(t, s, http.MethodPut, "/api/v1/opportunities/1/status",
		`{"status":"closed"}`, testToken(t))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for closed, got %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodPut, "/api/v1/opportunities/1/status",
		`{"status":"offer_received"}`, testToken(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if store.generic[1].Status != models.StatusOfferReceived {
		t.Fatalf("status not persisted, got %s", store.generic[1].Status)
	}
}

func TestDeleteMissingOpportunity(t *testing.T) {
	s := newTestServer(t, newMemStore())
	rec := doRequest(t, s, http.MethodDelete, "/api/v1/opportunities/99", "", testToken(t))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAnalyticsMatchesLocalComputation(t *testing.T) {
	store := newMemStore()
	store.generic[1] = models.GenericOpportunity{ID: 1, Type: models.TypeExecutive, Status: models.StatusApplied}
	store.generic[2] = models.GenericOpportunity{ID: 2, Type: models.TypeExecutive, Status: models.StatusAccepted}
	store.speaking[3] = models.SpeakingOpportunity{ID: 3, Status: models.StatusProspect}
	s := newTestServer(t, store)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/pipeline/analytics", "", testToken(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var served pipeline.Analytics
	if err := json.Unmarshal(rec.Body.Bytes(), &served); err != nil {
		t.Fatalf("decode: %v", err)
	}

	generic, _ := store.ListOpportunities(context.Background())
	speaking, _ := store.ListSpeaking(context.Background())
	local := pipeline.Analyze(models.MergeCollections(generic, speaking))

	if served.HealthScore != local.HealthScore {
		t.Fatalf("health score mismatch: served %d, local %d", served.HealthScore, local.HealthScore)
	}
	if served.OverallConversion != local.OverallConversion {
		t.Fatalf("overall conversion mismatch: %f vs %f", served.OverallConversion, local.OverallConversion)
	}
	if !reflect.DeepEqual(served.ByStatus, local.ByStatus) {
		t.Fatalf("per-status counts mismatch: %#v vs %#v", served.ByStatus, local.ByStatus)
	}
}
