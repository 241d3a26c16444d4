package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lingua-prep/adaptive-exam-engine/internal/middleware"
	"github.com/lingua-prep/adaptive-exam-engine/internal/model"
	"github.com/lingua-prep/adaptive-exam-engine/internal/response"
	"github.com/lingua-prep/adaptive-exam-engine/internal/service"
	"github.com/lingua-prep/adaptive-exam-engine/internal/validator"
)

// SessionHandler handles exam session lifecycle endpoints.
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// sessionIDParam parses the :id path parameter.
func sessionIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// CreateSession godoc
// POST /api/v1/sessions
// Allocates a new exam session in ASSIGNED state for the caller.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	// The sponsoring org comes from the token when present; the request body
	// cannot sponsor a session on someone else's balance.
	orgID := claims.OrganizationID

	session, err := h.sessionService.Create(c.Request.Context(), claims.CandidateID, orgID, model.ExamKind(req.ExamKind))
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": session})
}

// ListSessions godoc
// GET /api/v1/sessions
// Returns the caller's session history.
func (h *SessionHandler) ListSessions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessions, err := h.sessionService.List(c.Request.Context(), claims.CandidateID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"sessions": sessions})
}

// StartSession godoc
// POST /api/v1/sessions/:id/start
// Transitions ASSIGNED to STARTED. Safe to repeat: an already started session
// is returned unchanged.
func (h *SessionHandler) StartSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	session, err := h.sessionService.Start(c.Request.Context(), claims.CandidateID, sessionID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// GetSessionState godoc
// GET /api/v1/sessions/:id/state
// Returns the resume payload: served questions, recorded answers, progress
// index and remaining seconds.
func (h *SessionHandler) GetSessionState(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	state, err := h.sessionService.State(c.Request.Context(), claims.CandidateID, sessionID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"state": state})
}

// CompleteSession godoc
// POST /api/v1/sessions/:id/complete
// Finalizes the session: scoring, breakdown, credit debit and result hash.
func (h *SessionHandler) CompleteSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var req model.CompleteSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.sessionService.Complete(c.Request.Context(), claims.CandidateID, sessionID, req.WarningsCount)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// VerifyResult godoc
// GET /api/v1/results/:id/verify
// Recomputes the result hash for a completed session. Public: holding the
// session ID is the capability.
func (h *SessionHandler) VerifyResult(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	verdict, err := h.sessionService.VerifyResult(c.Request.Context(), sessionID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"verification": verdict})
}
