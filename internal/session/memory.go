package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DeepikaKgithub/PharmaGEN/pkg"
)

// MemoryStore keeps consultations in a mutex-guarded map. Records are
// deep-copied on the way in and out so no caller ever holds a pointer
// into the store. With a TTL set, a background janitor evicts records
// whose last write is older than the TTL.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*pkg.Consultation

	ttl  time.Duration
	done chan struct{}
	once sync.Once
}

func NewMemoryStore(opts ...Option) *MemoryStore {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	s := &MemoryStore{
		items: make(map[string]*pkg.Consultation),
		ttl:   o.ttl,
		done:  make(chan struct{}),
	}
	if s.ttl > 0 {
		go s.janitor()
	}
	return s
}

// janitor sweeps idle records every half TTL until Close.
func (s *MemoryStore) janitor() {
	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep(time.Now().Add(-s.ttl))
		}
	}
}

// sweep drops every record last written before the cutoff.
func (s *MemoryStore) sweep(cutoff time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.items {
		if c.UpdatedAt.Before(cutoff) {
			delete(s.items, id)
		}
	}
}

func (s *MemoryStore) Create(ctx context.Context, c *pkg.Consultation) error {
	if c == nil || c.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[c.ID]; exists {
		return fmt.Errorf("%w: consultation %s already exists", ErrInvalidRecord, c.ID)
	}
	c.Version = 1
	c.UpdatedAt = time.Now().UTC()
	s.items[c.ID] = c.Clone()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*pkg.Consultation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c.Clone(), nil
}

func (s *MemoryStore) Update(ctx context.Context, c *pkg.Consultation) error {
	if c == nil || c.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.items[c.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != c.Version {
		return ErrVersionConflict
	}
	c.Version++
	c.UpdatedAt = time.Now().UTC()
	s.items[c.ID] = c.Clone()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}
