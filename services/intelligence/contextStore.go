// File: services/intelligence/contextStore.go
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"facilities/models"

	"github.com/go-redis/redis/v8"
)

const bookingContextPrefix = "booking:ctx:"

// ErrContextNotFound is returned for a session without an active booking context.
var ErrContextNotFound = errors.New("booking context not found")

// ContextStore keeps one BookingContext per conversation.
type ContextStore interface {
	// Create stores a fresh context, replacing any earlier one for the session.
	Create(ctx context.Context, bc models.BookingContext) error
	// Update records an availability check. The first checked instant becomes
	// the original request; every check becomes the current preference.
	Update(ctx context.Context, sessionID, technicianID, technicianName string, checked *models.Instant) error
	// SetPreferredDate records an accepted alternative without touching the original request.
	SetPreferredDate(ctx context.Context, sessionID string, preferred *models.Instant, considered []models.Instant) error
	Get(ctx context.Context, sessionID string) (*models.BookingContext, error)
	Clear(ctx context.Context, sessionID string) error
}

func applyUpdate(bc *models.BookingContext, technicianID, technicianName string, checked *models.Instant, now time.Time) {
	bc.PreferredTechnicianID = technicianID
	bc.PreferredTechnician = technicianName
	if checked != nil {
		c := *checked
		if bc.OriginalRequested == nil {
			o := c
			bc.OriginalRequested = &o
		}
		bc.CurrentPreferred = &c
		l := c
		bc.LastChecked = &l
	}
	bc.UpdatedAt = now
}

func applyPreferred(bc *models.BookingContext, preferred *models.Instant, considered []models.Instant, now time.Time) {
	if preferred != nil {
		p := *preferred
		bc.CurrentPreferred = &p
	}
	bc.SuggestedAlternatives = append([]models.Instant(nil), considered...)
	bc.UpdatedAt = now
}

func cloneContext(bc models.BookingContext) *models.BookingContext {
	out := bc
	if bc.OriginalRequested != nil {
		v := *bc.OriginalRequested
		out.OriginalRequested = &v
	}
	if bc.CurrentPreferred != nil {
		v := *bc.CurrentPreferred
		out.CurrentPreferred = &v
	}
	if bc.LastChecked != nil {
		v := *bc.LastChecked
		out.LastChecked = &v
	}
	out.SuggestedAlternatives = append([]models.Instant(nil), bc.SuggestedAlternatives...)
	return &out
}

const contextShards = 32

type contextShard struct {
	mu    sync.RWMutex
	items map[string]models.BookingContext
}

// MemoryContextStore is an in-process ContextStore. Sessions are spread over
// shards so unrelated conversations do not contend on one lock.
type MemoryContextStore struct {
	shards [contextShards]*contextShard
	Now    func() time.Time
}

func NewMemoryContextStore() *MemoryContextStore {
	s := &MemoryContextStore{Now: time.Now}
	for i := range s.shards {
		s.shards[i] = &contextShard{items: make(map[string]models.BookingContext)}
	}
	return s
}

func (s *MemoryContextStore) shard(sessionID string) *contextShard {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	return s.shards[h.Sum32()%contextShards]
}

func (s *MemoryContextStore) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *MemoryContextStore) Create(_ context.Context, bc models.BookingContext) error {
	if bc.SessionID == "" {
		return fmt.Errorf("session id is required")
	}
	now := s.now()
	bc.CreatedAt = now
	bc.UpdatedAt = now
	sh := s.shard(bc.SessionID)
	sh.mu.Lock()
	sh.items[bc.SessionID] = *cloneContext(bc)
	sh.mu.Unlock()
	return nil
}

func (s *MemoryContextStore) mutate(sessionID string, fn func(*models.BookingContext)) error {
	sh := s.shard(sessionID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	bc, ok := sh.items[sessionID]
	if !ok {
		return ErrContextNotFound
	}
	fn(&bc)
	sh.items[sessionID] = bc
	return nil
}

func (s *MemoryContextStore) Update(_ context.Context, sessionID, technicianID, technicianName string, checked *models.Instant) error {
	return s.mutate(sessionID, func(bc *models.BookingContext) {
		applyUpdate(bc, technicianID, technicianName, checked, s.now())
	})
}

func (s *MemoryContextStore) SetPreferredDate(_ context.Context, sessionID string, preferred *models.Instant, considered []models.Instant) error {
	return s.mutate(sessionID, func(bc *models.BookingContext) {
		applyPreferred(bc, preferred, considered, s.now())
	})
}

func (s *MemoryContextStore) Get(_ context.Context, sessionID string) (*models.BookingContext, error) {
	sh := s.shard(sessionID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	bc, ok := sh.items[sessionID]
	if !ok {
		return nil, ErrContextNotFound
	}
	return cloneContext(bc), nil
}

func (s *MemoryContextStore) Clear(_ context.Context, sessionID string) error {
	sh := s.shard(sessionID)
	sh.mu.Lock()
	delete(sh.items, sessionID)
	sh.mu.Unlock()
	return nil
}

// Sweep drops contexts idle for longer than olderThan and returns how many went.
func (s *MemoryContextStore) Sweep(olderThan time.Duration) int {
	cutoff := s.now().Add(-olderThan)
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for id, bc := range sh.items {
			if bc.UpdatedAt.Before(cutoff) {
				delete(sh.items, id)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// Len is the number of live contexts.
func (s *MemoryContextStore) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.items)
		sh.mu.RUnlock()
	}
	return n
}

// RedisContextStore keeps contexts as JSON with a sliding TTL, so abandoned
// conversations expire on their own.
type RedisContextStore struct {
	client *redis.Client
	ttl    time.Duration
	Now    func() time.Time
}

func NewRedisContextStore(client *redis.Client, ttl time.Duration) *RedisContextStore {
	return &RedisContextStore{client: client, ttl: ttl, Now: time.Now}
}

func (s *RedisContextStore) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *RedisContextStore) save(ctx context.Context, bc *models.BookingContext) error {
	b, err := json.Marshal(bc)
	if err != nil {
		return fmt.Errorf("failed to encode booking context: %w", err)
	}
	return s.client.Set(ctx, bookingContextPrefix+bc.SessionID, b, s.ttl).Err()
}

func (s *RedisContextStore) Create(ctx context.Context, bc models.BookingContext) error {
	if bc.SessionID == "" {
		return fmt.Errorf("session id is required")
	}
	now := s.now()
	bc.CreatedAt = now
	bc.UpdatedAt = now
	return s.save(ctx, &bc)
}

func (s *RedisContextStore) Get(ctx context.Context, sessionID string) (*models.BookingContext, error) {
	data, err := s.client.Get(ctx, bookingContextPrefix+sessionID).Result()
	if err == redis.Nil {
		return nil, ErrContextNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read booking context: %w", err)
	}
	var bc models.BookingContext
	if err := json.Unmarshal([]byte(data), &bc); err != nil {
		return nil, fmt.Errorf("failed to decode booking context: %w", err)
	}
	return &bc, nil
}

func (s *RedisContextStore) Update(ctx context.Context, sessionID, technicianID, technicianName string, checked *models.Instant) error {
	bc, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	applyUpdate(bc, technicianID, technicianName, checked, s.now())
	return s.save(ctx, bc)
}

func (s *RedisContextStore) SetPreferredDate(ctx context.Context, sessionID string, preferred *models.Instant, considered []models.Instant) error {
	bc, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	applyPreferred(bc, preferred, considered, s.now())
	return s.save(ctx, bc)
}

func (s *RedisContextStore) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, bookingContextPrefix+sessionID).Err()
}
