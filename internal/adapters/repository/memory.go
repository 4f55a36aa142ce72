package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/okian/mergington/internal/domain/activity"
	"github.com/okian/mergington/internal/domain/model"
	"github.com/okian/mergington/pkg/metrics"
)

const nanosecondsPerMillisecond = 1e6

// entry guards one activity's roster.
type entry struct {
	mu       sync.RWMutex
	activity model.Activity
}

// MemoryStore is an in-memory Store with one lock per activity.
//
// The name -> entry map is written only by NewMemoryStore; afterwards
// activities are never added, renamed or removed, so lookups take the
// store-level read lock only to publish the map safely.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*entry
	metrics *metrics.Manager
}

// NewMemoryStore builds a registry from seed. Every seeded activity must
// already satisfy the roster invariants.
func NewMemoryStore(ctx context.Context, seed []model.Activity, opts ...Option) (*MemoryStore, error) {
	s := &MemoryStore{
		entries: make(map[string]*entry, len(seed)),
		metrics: metrics.Global(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range seed {
		if err := activity.Validate(a); err != nil {
			return nil, err
		}
		if _, exists := s.entries[a.Name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateActivity, a.Name)
		}
		s.entries[a.Name] = &entry{activity: a.Clone()}
		s.metrics.UpdateRoster(a.Name, len(a.Participants), a.MaxParticipants)
	}
	s.metrics.UpdateActivityCount(len(s.entries))
	return s, nil
}

func (s *MemoryStore) lookup(name string) (*entry, error) {
	s.mu.RLock()
	e, ok := s.entries[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", activity.ErrActivityNotFound, name)
	}
	return e, nil
}

// List returns a snapshot of every activity. Each roster is copied under its
// own read lock, so no caller sees a half-applied mutation.
func (s *MemoryStore) List(_ context.Context) map[string]model.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]model.Activity, len(s.entries))
	for name, e := range s.entries {
		e.mu.RLock()
		out[name] = e.activity.Clone()
		e.mu.RUnlock()
	}
	return out
}

// Get returns a snapshot of one activity.
func (s *MemoryStore) Get(_ context.Context, name string) (model.Activity, error) {
	e, err := s.lookup(name)
	if err != nil {
		return model.Activity{}, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.activity.Clone(), nil
}

// Signup validates email and appends it to the roster.
// Errors: ErrActivityNotFound, ErrInvalidEmail, ErrAlreadyRegistered,
// ErrActivityFull (all from the activity package).
func (s *MemoryStore) Signup(_ context.Context, name, email string) (model.Confirmation, error) {
	e, err := s.lookup(name)
	if err != nil {
		return model.Confirmation{}, err
	}
	clean, err := activity.CleanEmail(email)
	if err != nil {
		return model.Confirmation{}, err
	}

	start := time.Now()
	e.mu.Lock()
	defer func() {
		e.mu.Unlock()
		s.metrics.RecordMutationLatency("signup", float64(time.Since(start).Nanoseconds())/nanosecondsPerMillisecond)
	}()

	a := &e.activity
	if activity.IndexOf(a.Participants, clean) >= 0 {
		return model.Confirmation{}, fmt.Errorf("%w: %q in %q", activity.ErrAlreadyRegistered, clean, name)
	}
	if a.Full() {
		return model.Confirmation{}, fmt.Errorf("%w: %q (%d/%d)", activity.ErrActivityFull, name, len(a.Participants), a.MaxParticipants)
	}
	a.Participants = append(a.Participants, clean)
	s.metrics.UpdateRoster(name, len(a.Participants), a.MaxParticipants)

	return model.Confirmation{Activity: name, Email: clean}, nil
}

// Unregister removes the participant matching email case-insensitively.
// The confirmation carries the stored spelling of the removed email.
// Errors: ErrActivityNotFound, ErrNotRegistered.
func (s *MemoryStore) Unregister(_ context.Context, name, email string) (model.Confirmation, error) {
	e, err := s.lookup(name)
	if err != nil {
		return model.Confirmation{}, err
	}

	start := time.Now()
	e.mu.Lock()
	defer func() {
		e.mu.Unlock()
		s.metrics.RecordMutationLatency("unregister", float64(time.Since(start).Nanoseconds())/nanosecondsPerMillisecond)
	}()

	a := &e.activity
	i := activity.IndexOf(a.Participants, email)
	if i < 0 {
		return model.Confirmation{}, fmt.Errorf("%w: %q in %q", activity.ErrNotRegistered, email, name)
	}
	removed := a.Participants[i]
	a.Participants = slices.Delete(a.Participants, i, i+1)
	s.metrics.UpdateRoster(name, len(a.Participants), a.MaxParticipants)

	return model.Confirmation{Activity: name, Email: removed}, nil
}

// Count returns the number of activities.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
