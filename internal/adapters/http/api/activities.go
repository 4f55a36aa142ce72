package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/okian/mergington/internal/domain/types"
	"github.com/okian/mergington/pkg/logger"
)

const maxBodyBytes = 1 << 16

// ActivitiesHandler serves the activity registry.
type ActivitiesHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewActivitiesHandler creates a new activities handler.
func NewActivitiesHandler(deps Dependencies, log logger.Logger) *ActivitiesHandler {
	return &ActivitiesHandler{deps: deps, logger: log}
}

// emailRequest is the JSON body accepted by signup and unregister.
type emailRequest struct {
	Email string `json:"email"`
}

// HandleList handles GET /activities.
func (h *ActivitiesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_activities"
	list, err := h.deps.List(r.Context())
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	out := make(map[string]types.ActivityView, len(list))
	for name, a := range list {
		out[name] = types.NewActivityView(a)
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGet handles GET /activities/{name}.
func (h *ActivitiesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_activity"
	a, err := h.deps.Get(r.Context(), r.PathValue("name"))
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.NewActivityView(a))
}

// HandleSignup handles POST /activities/{name}/signup. The email comes from
// the query string, a JSON body or a form field, in that order.
func (h *ActivitiesHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	const op = "api.signup"
	name := r.PathValue("name")

	email := r.URL.Query().Get("email")
	if email == "" {
		var err error
		if email, err = emailFromBody(w, r); err != nil {
			h.rejectBody(w, r, op, name, err)
			return
		}
	}

	conf, err := h.deps.Signup(r.Context(), name, email)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.Message{
		Message: fmt.Sprintf("Signed up %s for %s", conf.Email, conf.Activity),
	})
}

// HandleUnregister handles DELETE /activities/{name}/participants. The email
// comes from a JSON body, or from the query string when the body is empty.
func (h *ActivitiesHandler) HandleUnregister(w http.ResponseWriter, r *http.Request) {
	const op = "api.unregister"
	name := r.PathValue("name")

	var req emailRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		h.rejectBody(w, r, op, name, err)
		return
	}
	if req.Email == "" {
		req.Email = r.URL.Query().Get("email")
	}

	conf, err := h.deps.Unregister(r.Context(), name, req.Email)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.Message{
		Message: fmt.Sprintf("Unregistered %s from %s", conf.Email, conf.Activity),
	})
}

// rejectBody answers an unreadable body. An unknown activity still wins
// over the malformed body and yields 404.
func (h *ActivitiesHandler) rejectBody(w http.ResponseWriter, r *http.Request, op, name string, cause error) {
	if _, err := h.deps.Get(r.Context(), name); err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	h.fail(w, r, WrapKind(op, ErrBadRequest, cause))
}

// fail writes the classified error body and keeps the full chain in the log.
func (h *ActivitiesHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := classify(err)
	fields := []logger.Field{
		logger.String("request_id", RequestIDFromContext(r.Context())),
		logger.String("code", code),
		logger.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", fields...)
	} else {
		h.logger.Debug(r.Context(), "request rejected", fields...)
	}
	writeError(w, status, code, msg)
}

// emailFromBody reads the email from a JSON or form-encoded body. An empty
// body yields an empty email, which the registry rejects as invalid.
func emailFromBody(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req emailRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return req.Email, nil
	}

	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return r.PostForm.Get("email"), nil
}
