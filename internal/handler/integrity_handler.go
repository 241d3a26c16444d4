package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lingua-prep/adaptive-exam-engine/internal/middleware"
	"github.com/lingua-prep/adaptive-exam-engine/internal/model"
	"github.com/lingua-prep/adaptive-exam-engine/internal/response"
	"github.com/lingua-prep/adaptive-exam-engine/internal/service"
	"github.com/lingua-prep/adaptive-exam-engine/internal/validator"
)

// IntegrityHandler handles violation reporting and cheating termination.
type IntegrityHandler struct {
	integrityService *service.IntegrityService
}

// NewIntegrityHandler creates a new IntegrityHandler.
func NewIntegrityHandler(integrityService *service.IntegrityService) *IntegrityHandler {
	return &IntegrityHandler{integrityService: integrityService}
}

// ReportViolation godoc
// POST /api/v1/sessions/:id/violations
// Records one client-detected violation event against the session.
func (h *IntegrityHandler) ReportViolation(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var req model.ReportViolationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ack, err := h.integrityService.ReportViolation(c.Request.Context(), claims.CandidateID, sessionID, req.Kind, req.Detail)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, ack)
}

// TerminateSession godoc
// POST /api/v1/sessions/:id/terminate
// Immediately terminates the session for cheating. No score is produced.
func (h *IntegrityHandler) TerminateSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var req model.TerminateSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.integrityService.Terminate(c.Request.Context(), claims.CandidateID, sessionID, req.Violations); err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"terminated": true})
}
