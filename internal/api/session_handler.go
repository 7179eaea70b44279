package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lingora/practice-api/internal/api/middleware"
	"github.com/lingora/practice-api/internal/api/shared"
	"github.com/lingora/practice-api/internal/domain"
	"github.com/lingora/practice-api/internal/domain/session"
	"github.com/lingora/practice-api/internal/platform/logger"
	"github.com/lingora/practice-api/internal/service/practice"
)

// SessionHandler handles practice session HTTP requests.
type SessionHandler struct {
	practiceService practice.PracticeService
	logger          *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(practiceService practice.PracticeService, logger *slog.Logger) *SessionHandler {
	if practiceService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("practiceService cannot be nil for SessionHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SessionHandler")
	}

	return &SessionHandler{
		practiceService: practiceService,
		logger:          logger.With(slog.String("component", "session_handler")),
	}
}

// CreateSession handles POST /sessions requests. It composes a task
// list for the learner and returns the not-yet-started session.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, ok := middleware.GetLearnerID(r)
	if !ok || learnerID == uuid.Nil {
		log.Warn("learner ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Learner ID not found or invalid")
		return
	}

	var req CreateSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("request validation failed", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request parameters")
		return
	}

	config := domain.SessionConfiguration{
		TopicID:         req.TopicID,
		LearningPathIDs: req.LearningPathIDs,
		TargetCount:     req.TargetCount,
		IncludeReview:   req.IncludeReview,
	}

	created, err := h.practiceService.CreateSession(r.Context(), learnerID, config)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	response, err := NewSessionResponse(session.Snapshot{Session: created}, nil)
	if err != nil {
		shared.RespondWithErrorAndLog(
			w, r, http.StatusInternalServerError, "Failed to build session response", err)
		return
	}

	log.Debug("practice session created",
		slog.String("session_id", created.ID.String()),
		slog.Int("task_count", len(created.Execution.TaskIDs)))
	shared.RespondWithJSON(w, r, http.StatusCreated, response)
}

// GetSession handles GET /sessions/{id} requests.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "get session", h.practiceService.GetSession)
}

// StartSession handles POST /sessions/{id}/start requests.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "start session", h.practiceService.StartSession)
}

// SubmitAnswer handles POST /sessions/{id}/answer requests. The graded
// result and canonical answer come back on the session view.
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, sessionID, ok := h.requestIDs(w, r, log)
	if !ok {
		return
	}

	var req SubmitAnswerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("request validation failed", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request parameters")
		return
	}

	snapshot, err := h.practiceService.SubmitAnswer(
		r.Context(), learnerID, sessionID, req.Answer, req.ElapsedMs)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.respondSnapshot(w, r, learnerID, snapshot)
}

// SkipTask handles POST /sessions/{id}/skip requests.
func (h *SessionHandler) SkipTask(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "skip task", h.practiceService.SkipTask)
}

// AdvanceTask handles POST /sessions/{id}/advance requests.
func (h *SessionHandler) AdvanceTask(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "advance task", h.practiceService.AdvanceTask)
}

// ToggleHint handles POST /sessions/{id}/hint requests.
func (h *SessionHandler) ToggleHint(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "toggle hint", h.practiceService.ToggleHint)
}

// CancelSession handles POST /sessions/{id}/cancel requests.
func (h *SessionHandler) CancelSession(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "cancel session", h.practiceService.CancelSession)
}

// FinishSession handles POST /sessions/{id}/finish requests.
func (h *SessionHandler) FinishSession(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "finish session", h.practiceService.FinishSession)
}

// handle runs one snapshot-returning session command: extract IDs,
// invoke the command, respond with the session view.
func (h *SessionHandler) handle(
	w http.ResponseWriter,
	r *http.Request,
	action string,
	command func(ctx context.Context, learnerID, sessionID uuid.UUID) (session.Snapshot, error),
) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, sessionID, ok := h.requestIDs(w, r, log)
	if !ok {
		return
	}

	snapshot, err := command(r.Context(), learnerID, sessionID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug(action,
		slog.String("session_id", sessionID.String()),
		slog.String("status", string(snapshot.Session.Execution.Status)))
	h.respondSnapshot(w, r, learnerID, snapshot)
}

// requestIDs extracts the authenticated learner ID and the session ID
// from the URL path, writing the error response itself on failure.
func (h *SessionHandler) requestIDs(
	w http.ResponseWriter,
	r *http.Request,
	log *slog.Logger,
) (learnerID, sessionID uuid.UUID, ok bool) {
	learnerID, found := middleware.GetLearnerID(r)
	if !found || learnerID == uuid.Nil {
		log.Warn("learner ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Learner ID not found or invalid")
		return uuid.Nil, uuid.Nil, false
	}

	pathID := chi.URLParam(r, "id")
	sessionID, err := uuid.Parse(pathID)
	if err != nil {
		log.Warn("invalid session ID format", slog.String("session_id", pathID))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID format")
		return uuid.Nil, uuid.Nil, false
	}

	return learnerID, sessionID, true
}

// respondSnapshot builds and writes the session view, resolving the
// presented task's content when the session has one under its cursor.
func (h *SessionHandler) respondSnapshot(
	w http.ResponseWriter,
	r *http.Request,
	learnerID uuid.UUID,
	snapshot session.Snapshot,
) {
	var currentItem *domain.ContentItem
	if snapshot.CurrentTaskID != uuid.Nil {
		item, err := h.practiceService.CurrentItem(r.Context(), learnerID, snapshot.Session.ID)
		// The cursor may have moved between command and read; a missing
		// current task just means the view carries no task.
		if err != nil && !errors.Is(err, session.ErrInvalidTransition) {
			shared.RespondWithErrorAndLog(
				w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
			return
		}
		currentItem = item
	}

	response, err := NewSessionResponse(snapshot, currentItem)
	if err != nil {
		shared.RespondWithErrorAndLog(
			w, r, http.StatusInternalServerError, "Failed to build session response", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, response)
}
