// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	repository "github.com/okian/mergington/internal/adapters/repository"
	"github.com/okian/mergington/internal/domain/activity"
	"github.com/okian/mergington/internal/domain/model"
	"github.com/okian/mergington/pkg/logger"
	"github.com/okian/mergington/pkg/metrics"
)

// Service owns the activity registry for the lifetime of the process and
// exposes it to the HTTP layer.
type Service struct {
	mu sync.RWMutex

	store   repository.Store
	seed    []model.Activity
	metrics *metrics.Manager

	started   bool
	startedAt time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSeed replaces the default seed activities.
func WithSeed(seed []model.Activity) Option {
	return func(s *Service) {
		if len(seed) > 0 {
			s.seed = seed
		}
	}
}

// WithStore injects a ready registry; the seed is then ignored.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithMetrics sets the metrics manager used by the service and its store.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// New constructs a Service with the default seed.
func New(opts ...Option) *Service {
	s := &Service{
		seed:    activity.DefaultSeed(),
		metrics: metrics.Global(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the registry from the seed. Calling Start twice is a no-op.
func (s *Service) Start(ctx context.Context) error {
	const op = "service.start"
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	if s.store == nil {
		store, err := repository.NewMemoryStore(ctx, s.seed, repository.WithMetrics(s.metrics))
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		s.store = store
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "activity registry ready", logger.Int("activities", s.store.Count(ctx)))
	return nil
}

// Stop marks the service stopped. The registry is kept so in-flight
// requests finish against a consistent state.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "activity service stopped")
}

// registry returns the store once Start has run at least once.
func (s *Service) registry() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.startedAt.IsZero() {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// List returns a snapshot of every activity.
func (s *Service) List(ctx context.Context) (map[string]model.Activity, error) {
	store, err := s.registry()
	if err != nil {
		return nil, fmt.Errorf("service.list: %w", err)
	}
	return store.List(ctx), nil
}

// Get returns one activity.
func (s *Service) Get(ctx context.Context, name string) (model.Activity, error) {
	store, err := s.registry()
	if err != nil {
		return model.Activity{}, fmt.Errorf("service.get: %w", err)
	}
	a, err := store.Get(ctx, name)
	if err != nil {
		return model.Activity{}, fmt.Errorf("service.get: %w", err)
	}
	return a, nil
}

// Signup registers email for the named activity.
func (s *Service) Signup(ctx context.Context, name, email string) (model.Confirmation, error) {
	const op = "service.signup"
	store, err := s.registry()
	if err != nil {
		return model.Confirmation{}, fmt.Errorf("%s: %w", op, err)
	}

	conf, err := store.Signup(ctx, name, email)
	s.metrics.RecordSignup(metricLabel(name, err), outcome(err))
	if err != nil {
		s.logger.Debug(ctx, "signup rejected",
			logger.String("activity", name),
			logger.String("email", email),
			logger.Error(err),
		)
		return model.Confirmation{}, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info(ctx, "student signed up",
		logger.String("activity", conf.Activity),
		logger.String("email", conf.Email),
	)
	return conf, nil
}

// Unregister removes email from the named activity.
func (s *Service) Unregister(ctx context.Context, name, email string) (model.Confirmation, error) {
	const op = "service.unregister"
	store, err := s.registry()
	if err != nil {
		return model.Confirmation{}, fmt.Errorf("%s: %w", op, err)
	}

	conf, err := store.Unregister(ctx, name, email)
	s.metrics.RecordUnregister(metricLabel(name, err), outcome(err))
	if err != nil {
		s.logger.Debug(ctx, "unregister rejected",
			logger.String("activity", name),
			logger.String("email", email),
			logger.Error(err),
		)
		return model.Confirmation{}, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info(ctx, "student unregistered",
		logger.String("activity", conf.Activity),
		logger.String("email", conf.Email),
	)
	return conf, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
	}
	if s.startedAt.IsZero() {
		return stats
	}

	ctx := context.Background()
	var participants, capacity, full int
	for _, a := range s.store.List(ctx) {
		participants += len(a.Participants)
		capacity += a.MaxParticipants
		if a.Full() {
			full++
		}
	}
	stats["activities"] = s.store.Count(ctx)
	stats["participants"] = participants
	stats["capacity"] = capacity
	stats["fullActivities"] = full
	if s.started {
		stats["uptimeSeconds"] = int(time.Since(s.startedAt).Seconds())
	}
	return stats
}

// outcome maps a registry error to its metrics label.
func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, activity.ErrActivityNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, activity.ErrInvalidEmail):
		return metrics.OutcomeInvalidEmail
	case errors.Is(err, activity.ErrAlreadyRegistered):
		return metrics.OutcomeAlreadyRegistered
	case errors.Is(err, activity.ErrActivityFull):
		return metrics.OutcomeFull
	case errors.Is(err, activity.ErrNotRegistered):
		return metrics.OutcomeNotRegistered
	default:
		return "error"
	}
}

// metricLabel keeps unknown activity names out of the label set.
func metricLabel(name string, err error) string {
	if errors.Is(err, activity.ErrActivityNotFound) {
		return "unknown"
	}
	return name
}
