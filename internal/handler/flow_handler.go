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

// FlowHandler handles the adaptive question flow endpoints.
type FlowHandler struct {
	flowService *service.FlowService
}

// NewFlowHandler creates a new FlowHandler.
func NewFlowHandler(flowService *service.FlowService) *FlowHandler {
	return &FlowHandler{flowService: flowService}
}

// NextQuestion godoc
// GET /api/v1/sessions/:id/next-question
// Returns the next question for the session, or finished=true with the
// termination reason.
func (h *FlowHandler) NextQuestion(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	result, err := h.flowService.NextQuestion(c.Request.Context(), claims.CandidateID, sessionID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// SubmitAnswer godoc
// POST /api/v1/sessions/:id/answers
// Commits an answer and returns the next-question result in one round trip.
func (h *FlowHandler) SubmitAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.flowService.SubmitAnswer(c.Request.Context(), claims.CandidateID, sessionID, req.QuestionID, req.SelectedOption)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// AutosaveAnswer godoc
// PUT /api/v1/sessions/:id/answers
// Saves a draft answer without grading it or advancing the sequencer.
func (h *FlowHandler) AutosaveAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.flowService.Autosave(c.Request.Context(), claims.CandidateID, sessionID, req.QuestionID, req.SelectedOption); err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"saved": true})
}
