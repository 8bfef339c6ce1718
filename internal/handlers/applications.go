// Package handlers provides HTTP and Lambda handlers for the credit
// decision engine.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"credit-decision-engine/internal/decision"
	"credit-decision-engine/internal/models"
	"credit-decision-engine/internal/services/history"
	"credit-decision-engine/internal/services/notify"
	s3service "credit-decision-engine/internal/services/s3"
	"credit-decision-engine/internal/session"
	"credit-decision-engine/internal/utils"
)

// ApplicationHandler wires the application endpoints to the session
// manager, the decision history and the notification fan-out.
type ApplicationHandler struct {
	sessions *session.Manager
	history  history.Store
	archiver *s3service.Service
	notifier *notify.Service
}

// NewApplicationHandler creates the handler. The archiver and notifier may
// be nil when S3 or notifications are not configured.
func NewApplicationHandler(sessions *session.Manager, store history.Store, archiver *s3service.Service, notifier *notify.Service) *ApplicationHandler {
	return &ApplicationHandler{
		sessions: sessions,
		history:  store,
		archiver: archiver,
		notifier: notifier,
	}
}

// Register mounts the application API on the router.
func (h *ApplicationHandler) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/applications", h.CreateApplication)
		r.Get("/applications/{id}", h.GetApplication)
		r.Post("/applications/{id}/steps/{step}", h.SubmitStep)
		r.Post("/applications/{id}/decision", h.Decide)
		r.Post("/applications/{id}/reset", h.Reset)

		r.Get("/history", h.ListHistory)
		r.Get("/history/export", h.ExportHistory)
		r.Post("/history/archive", h.ArchiveHistory)
	})
}

// StepResponse reports the result of one step submission.
type StepResponse struct {
	Session   *session.Session `json:"session"`
	NewAlerts []models.Alert   `json:"new_alerts"`
}

// DecisionResponse reports the final decision. AlreadyDecided is true when
// the call found a verdict already on file and returned it unchanged.
type DecisionResponse struct {
	Session        *session.Session `json:"session"`
	AlreadyDecided bool             `json:"already_decided"`
}

// CreateApplication handles POST /api/applications.
func (h *ApplicationHandler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	var req CreateApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Policy != "" {
		if _, err := decision.PolicyByName(req.Policy); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Mode != "" {
		if _, err := decision.ModeByName(req.Mode); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	sess, err := h.sessions.Open(r.Context(), session.OpenOptions{
		Policy:         req.Policy,
		Mode:           req.Mode,
		ClientNumber:   req.ClientNumber,
		ClientName:     req.ClientName,
		AccountOfficer: req.AccountOfficer,
		OfficerEmail:   req.OfficerEmail,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sess)
}

// GetApplication handles GET /api/applications/{id}.
func (h *ApplicationHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

// SubmitStep handles POST /api/applications/{id}/steps/{step}.
func (h *ApplicationHandler) SubmitStep(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	step, err := strconv.Atoi(chi.URLParam(r, "step"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Step must be a number")
		return
	}

	var req StepRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	fragment, err := req.ToProfile()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := h.sessions.SubmitStep(r.Context(), id, step, fragment)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// Stop-early mode can finalize the application during a step.
	if result.Session.Status == session.StatusDecided {
		h.recordDecision(r.Context(), result.Session)
	}

	newAlerts := result.NewAlerts
	if newAlerts == nil {
		newAlerts = []models.Alert{}
	}

	writeJSON(w, http.StatusOK, StepResponse{
		Session:   result.Session,
		NewAlerts: newAlerts,
	})
}

// Decide handles POST /api/applications/{id}/decision.
func (h *ApplicationHandler) Decide(w http.ResponseWriter, r *http.Request) {
	sess, alreadyDecided, err := h.sessions.Decide(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if !alreadyDecided {
		h.recordDecision(r.Context(), sess)
	}

	writeJSON(w, http.StatusOK, DecisionResponse{
		Session:        sess,
		AlreadyDecided: alreadyDecided,
	})
}

// Reset handles POST /api/applications/{id}/reset.
func (h *ApplicationHandler) Reset(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Reset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

// recordDecision appends the decided session to the history log and fans
// out notifications. Failures are logged, not surfaced: the decision
// itself already stands.
func (h *ApplicationHandler) recordDecision(ctx context.Context, sess *session.Session) {
	if sess.Decision == nil {
		return
	}

	record := &models.DecisionRecord{
		ID:        uuid.New().String(),
		SessionID: sess.ID,
		Profile:   sess.Profile,
		Outcome:   sess.Decision.Outcome,
		Reasons:   sess.Decision.Reasons,
		Policy:    sess.Policy,
		Mode:      sess.Mode,
		CreatedAt: sess.Decision.DecidedAt,
	}

	if h.history != nil {
		if err := h.history.Append(ctx, record); err != nil {
			utils.GetLogger().Error("Failed to append decision history",
				utils.String("sessionID", sess.ID),
				utils.Error(err))
		}
	}

	if h.notifier != nil {
		h.notifier.NotifyDecision(ctx, record)
	}
}

// decodeJSON decodes the request body into v. An empty body is allowed
// and leaves v at its zero value.
func decodeJSON(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == io.EOF {
		return nil
	}
	return err
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		utils.GetLogger().Error("Failed to encode response", utils.Error(err))
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error":   http.StatusText(statusCode),
		"message": message,
	})
}

// writeDomainError maps domain errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	var fieldErr *models.FieldError

	switch {
	case errors.Is(err, models.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrSessionDecided):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrStepOutOfOrder):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrInvalidStep):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &fieldErr):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		utils.GetLogger().Error("Request failed", utils.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
