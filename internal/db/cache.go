package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dkaplan/opportunity-pipeline/internal/models"
)

// Backend is the persistence surface the API serves from. *Store
// implements it directly; Cache wraps any Backend with Redis-backed
// caching of the two collection reads.
type Backend interface {
	ListOpportunities(ctx context.Context) ([]models.GenericOpportunity, error)
	GetOpportunity(ctx context.Context, id int64) (*models.GenericOpportunity, error)
	CreateOpportunity(ctx context.Context, g models.GenericOpportunity) (*models.GenericOpportunity, error)
	UpdateOpportunity(ctx context.Context, g models.GenericOpportunity) (*models.GenericOpportunity, error)
	UpdateOpportunityStatus(ctx context.Context, id int64, status models.Status) (*models.GenericOpportunity, error)
	DeleteOpportunity(ctx context.Context, id int64) error

	ListSpeaking(ctx context.Context) ([]models.SpeakingOpportunity, error)
	GetSpeaking(ctx context.Context, id int64) (*models.SpeakingOpportunity, error)
	CreateSpeaking(ctx context.Context, sp models.SpeakingOpportunity) (*models.SpeakingOpportunity, error)
	UpdateSpeaking(ctx context.Context, sp models.SpeakingOpportunity) (*models.SpeakingOpportunity, error)
	UpdateSpeakingStatus(ctx context.Context, id int64, status models.Status) (*models.SpeakingOpportunity, error)
	DeleteSpeaking(ctx context.Context, id int64) error
}

const (
	opportunitiesCacheKey = "pipeline:opportunities"
	speakingCacheKey      = "pipeline:speaking"
)

// Cache is a read-through cache over the two collection list queries.
// Every mutation evicts both keys so a following load sees server truth.
// A nil Redis client degrades to a pass-through.
type Cache struct {
	base  Backend
	redis *redis.Client
	ttl   time.Duration
}

func NewCache(base Backend, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("db.NewCache: base backend is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{base: base, redis: client, ttl: ttl}
}

func (c *Cache) ListOpportunities(ctx context.Context) ([]models.GenericOpportunity, error) {
	var cached []models.GenericOpportunity
	if c.loadCached(ctx, opportunitiesCacheKey, &cached) {
		return cached, nil
	}

	out, err := c.base.ListOpportunities(ctx)
	if err != nil {
		return nil, err
	}
	c.storeCached(ctx, opportunitiesCacheKey, out)
	return out, nil
}

func (c *Cache) ListSpeaking(ctx context.Context) ([]models.SpeakingOpportunity, error) {
	var cached []models.SpeakingOpportunity
	if c.loadCached(ctx, speakingCacheKey, &cached) {
		return cached, nil
	}

	out, err := c.base.ListSpeaking(ctx)
	if err != nil {
		return nil, err
	}
	c.storeCached(ctx, speakingCacheKey, out)
	return out, nil
}

func (c *Cache) GetOpportunity(ctx context.Context, id int64) (*models.GenericOpportunity, error) {
	return c.base.GetOpportunity(ctx, id)
}

func (c *Cache) GetSpeaking(ctx context.Context, id int64) (*models.SpeakingOpportunity, error) {
	return c.base.GetSpeaking(ctx, id)
}

func (c *Cache) CreateOpportunity(ctx context.Context, g models.GenericOpportunity) (*models.GenericOpportunity, error) {
	created, err := c.base.CreateOpportunity(ctx, g)
	if err == nil {
		c.evict(ctx)
	}
	return created, err
}

func (c *Cache) UpdateOpportunity(ctx context.Context, g models.GenericOpportunity) (*models.GenericOpportunity, error) {
	updated, err := c.base.UpdateOpportunity(ctx, g)
	if err == nil {
		c.evict(ctx)
	}
	return updated, err
}

func (c *Cache) UpdateOpportunityStatus(ctx context.Context, id int64, status models.Status) (*models.GenericOpportunity, error) {
	updated, err := c.base.UpdateOpportunityStatus(ctx, id, status)
	if err == nil {
		c.evict(ctx)
	}
	return updated, err
}

func (c *Cache) DeleteOpportunity(ctx context.Context, id int64) error {
	if err := c.base.DeleteOpportunity(ctx, id); err != nil {
		return err
	}
	c.evict(ctx)
	return nil
}

func (c *Cache) CreateSpeaking(ctx context.Context, sp models.SpeakingOpportunity) (*models.SpeakingOpportunity, error) {
	created, err := c.base.CreateSpeaking(ctx, sp)
	if err == nil {
		c.evict(ctx)
	}
	return created, err
}

func (c *Cache) UpdateSpeaking(ctx context.Context, sp models.SpeakingOpportunity) (*models.SpeakingOpportunity, error) {
	updated, err := c.base.UpdateSpeaking(ctx, sp)
	if err == nil {
		c.evict(ctx)
	}
	return updated, err
}

func (c *Cache) UpdateSpeakingStatus(ctx context.Context, id int64, status models.Status) (*models.SpeakingOpportunity, error) {
	updated, err := c.base.UpdateSpeakingStatus(ctx, id, status)
	if err == nil {
		c.evict(ctx)
	}
	return updated, err
}

func (c *Cache) DeleteSpeaking(ctx context.Context, id int64) error {
	if err := c.base.DeleteSpeaking(ctx, id); err != nil {
		return err
	}
	c.evict(ctx)
	return nil
}

func (c *Cache) loadCached(ctx context.Context, key string, out any) bool {
	if c.redis == nil {
		return false
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backing store without failing.
			_ = c.redis.Del(ctx, key).Err()
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return false
	}
	return true
}

func (c *Cache) storeCached(ctx context.Context, key string, v any) {
	if c.redis == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.ttl).Err()
}

func (c *Cache) evict(ctx context.Context) {
	if c.redis == nil {
		return
	}
	_ = c.redis.Del(ctx, opportunitiesCacheKey, speakingCacheKey).Err()
}
