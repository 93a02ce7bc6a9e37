package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/justsurfingit/job-trends-api/internal/cache"
	"github.com/justsurfingit/job-trends-api/internal/database/dbtest"
	"github.com/justsurfingit/job-trends-api/internal/events"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, cache.ErrNotFound
	}
	return v, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.sets++
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *memoryCache) Close() error { return nil }

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	events   []events.JobEvent
}

func (p *recordingPublisher) PublishJobEvent(_ context.Context, subject string, e events.JobEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() {}

type fixture struct {
	db        *gorm.DB
	jobs      *JobService
	analytics *AnalyticsService
	cache     *memoryCache
	events    *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	c := newMemoryCache()
	pub := &recordingPublisher{}
	logger := zap.NewNop()

	return &fixture{
		db:     db,
		cache:  c,
		events: pub,
		jobs: &JobService{
			DB:              db,
			Events:          pub,
			Cache:           c,
			Logger:          logger,
			DefaultWorkYear: 2025,
		},
		analytics: &AnalyticsService{
			DB:         db,
			Cache:      cache.Noop{},
			CacheTTL:   time.Minute,
			Logger:     logger,
			Dimensions: DefaultDimensions,
		},
	}
}

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }
