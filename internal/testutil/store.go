package testutil

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/Sternrassler/pagecache/pkg/cache"
)

// ErrStoreDown is returned by MemoryStore operations while a failure is injected.
var ErrStoreDown = errors.New("store unavailable")

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// MemoryStore is an in-memory cache.Store with a manual clock. It records
// every operation so tests can assert on side effects.
type MemoryStore struct {
	mu      sync.Mutex
	now     time.Time
	entries map[string]memoryEntry

	failGet  error
	failSet  error
	failIncr error

	gets  int
	sets  int
	incrs int
}

var _ cache.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store whose clock starts at a fixed instant.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		entries: make(map[string]memoryEntry),
	}
}

// Advance moves the store clock forward by d.
func (s *MemoryStore) Advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.now.Add(d)
}

// FailGet makes subsequent Get calls return err. Pass nil to recover.
func (s *MemoryStore) FailGet(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failGet = err
}

// FailSet makes subsequent SetWithExpiry calls return err.
func (s *MemoryStore) FailSet(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSet = err
}

// FailIncr makes subsequent Incr calls return err.
func (s *MemoryStore) FailIncr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failIncr = err
}

// Get implements cache.Store.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++

	if s.failGet != nil {
		return nil, s.failGet
	}

	e, ok := s.lookup(key)
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// SetWithExpiry implements cache.Store.
func (s *MemoryStore) SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++

	if s.failSet != nil {
		return s.failSet
	}
	if ttl <= 0 {
		return cache.ErrInvalidTTL
	}

	v := make([]byte, len(value))
	copy(v, value)
	s.entries[key] = memoryEntry{value: v, expiresAt: s.now.Add(ttl)}
	return nil
}

// Incr implements cache.Store.
func (s *MemoryStore) Incr(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incrs++

	if s.failIncr != nil {
		return 0, s.failIncr
	}

	var n int64
	if e, ok := s.lookup(key); ok {
		parsed, err := strconv.ParseInt(string(e.value), 10, 64)
		if err != nil {
			return 0, errors.New("value is not an integer or out of range")
		}
		n = parsed
	}
	n++
	s.entries[key] = memoryEntry{value: []byte(strconv.FormatInt(n, 10))}
	return n, nil
}

// lookup returns the live entry for key, dropping it if expired.
// Caller must hold s.mu.
func (s *MemoryStore) lookup(key string) (memoryEntry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !e.expiresAt.IsZero() && !s.now.Before(e.expiresAt) {
		delete(s.entries, key)
		return memoryEntry{}, false
	}
	return e, true
}

// Value returns the raw stored value without touching the call counters.
func (s *MemoryStore) Value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(key)
	return string(e.value), ok
}

// Gets returns the number of Get calls.
func (s *MemoryStore) Gets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets
}

// Sets returns the number of SetWithExpiry calls.
func (s *MemoryStore) Sets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets
}

// Incrs returns the number of Incr calls.
func (s *MemoryStore) Incrs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.incrs
}
