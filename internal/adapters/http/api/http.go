// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/mergington/internal/domain/activity"
	"github.com/okian/mergington/internal/domain/model"
	"github.com/okian/mergington/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	List(ctx context.Context) (map[string]model.Activity, error)
	Get(ctx context.Context, name string) (model.Activity, error)
	Signup(ctx context.Context, name, email string) (model.Confirmation, error)
	Unregister(ctx context.Context, name, email string) (model.Confirmation, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	activitiesHandler *ActivitiesHandler
	logger            logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for access logs and error details.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("http")
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.activitiesHandler = NewActivitiesHandler(deps, s.logger)
	return s
}

// Register attaches all HTTP routes to mux. Patterns carry their method, so
// a known path hit with the wrong method answers 405.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.route("healthz", s.healthHandler.HandleHealth))
	mux.HandleFunc("GET /stats", s.route("stats", s.statsHandler.HandleStats))
	mux.HandleFunc("GET /activities", s.route("activities", s.activitiesHandler.HandleList))
	mux.HandleFunc("GET /activities/{name}", s.route("activity", s.activitiesHandler.HandleGet))
	mux.HandleFunc("POST /activities/{name}/signup", s.route("signup", s.activitiesHandler.HandleSignup))
	mux.HandleFunc("DELETE /activities/{name}/participants", s.route("unregister", s.activitiesHandler.HandleUnregister))
}

func (s *Server) route(endpoint string, h http.HandlerFunc) http.HandlerFunc {
	return RequestIDMiddleware(AccessLogMiddleware(s.logger, endpoint, MetricsMiddleware(h, endpoint)))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message, Detail: message})
}

// classify maps an error chain to its HTTP status, code and human message.
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, activity.ErrActivityNotFound):
		return http.StatusNotFound, "not_found", "Activity not found"
	case errors.Is(err, activity.ErrInvalidEmail):
		return http.StatusBadRequest, "invalid_email", "Invalid email address"
	case errors.Is(err, activity.ErrAlreadyRegistered):
		return http.StatusBadRequest, "already_registered", "Student is already signed up"
	case errors.Is(err, activity.ErrActivityFull):
		return http.StatusBadRequest, "activity_full", "Activity is full"
	case errors.Is(err, activity.ErrNotRegistered):
		return http.StatusNotFound, "not_registered", "Student is not signed up for this activity"
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request", "Malformed request body"
	default:
		return http.StatusInternalServerError, "internal_error", "Internal server error"
	}
}
