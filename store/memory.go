package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/use-agent/clipper/models"
)

// Ensure Memory implements Store at compile time.
var _ Store = (*Memory)(nil)

// Memory keeps records in process memory. It is safe for concurrent use.
// At capacity the oldest record is evicted; with a TTL, a background loop
// also drops records older than the TTL.
type Memory struct {
	mu         sync.RWMutex
	byID       map[string]*models.Content
	order      []string // ids, oldest first
	maxEntries int

	stop chan struct{}
	once sync.Once
}

// NewMemory creates a Memory store bounded to maxEntries (<= 0 means
// unbounded). ttl > 0 starts a cleanup loop that runs every ttl/12, at least
// once a minute.
func NewMemory(maxEntries int, ttl time.Duration) *Memory {
	m := &Memory{
		byID:       make(map[string]*models.Content),
		maxEntries: maxEntries,
		stop:       make(chan struct{}),
	}
	if ttl > 0 {
		go m.cleanupLoop(ttl)
	}
	return m
}

func (m *Memory) Kind() string { return "memory" }

func (m *Memory) Create(_ context.Context, c *models.Content) error {
	c.ID = uuid.New().String()
	c.CreatedAt = time.Now().UTC()
	c.ContentHash = hashContent(c.Content)

	cp := *c

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxEntries > 0 {
		for len(m.order) >= m.maxEntries {
			delete(m.byID, m.order[0])
			m.order = m.order[1:]
		}
	}
	m.byID[cp.ID] = &cp
	m.order = append(m.order, cp.ID)
	return nil
}

func (m *Memory) FindByID(_ context.Context, id string) (*models.Content, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.byID[id]
	if !ok {
		return nil, notFound("content")
	}
	cp := *c
	return &cp, nil
}

func (m *Memory) FindByURL(_ context.Context, url string) (*models.Content, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.order) - 1; i >= 0; i-- {
		if c := m.byID[m.order[i]]; c.URL == url {
			cp := *c
			return &cp, nil
		}
	}
	return nil, notFound("content")
}

func (m *Memory) Update(_ context.Context, c *models.Content) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.byID[c.ID]
	if !ok {
		return notFound("content")
	}
	c.CreatedAt = old.CreatedAt
	c.ContentHash = hashContent(c.Content)
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

// Close stops the cleanup loop.
func (m *Memory) Close() error {
	m.once.Do(func() { close(m.stop) })
	return nil
}

// cleanupLoop evicts records older than ttl.
func (m *Memory) cleanupLoop(ttl time.Duration) {
	every := ttl / 12
	if every <= 0 || every > time.Minute {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.evictBefore(now.Add(-ttl))
		}
	}
}

func (m *Memory) evictBefore(cutoff time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.order[:0]
	for _, id := range m.order {
		if m.byID[id].CreatedAt.Before(cutoff) {
			delete(m.byID, id)
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
}
