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

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService      *service.AuthService
	candidateService service.CandidateStore
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, candidates service.CandidateStore) *AuthHandler {
	return &AuthHandler{
		authService:      authService,
		candidateService: candidates,
	}
}

// CandidateLogin godoc
// POST /api/v1/auth/candidate/login
// Validates email + password and returns a JWT plus the candidate profile.
func (h *AuthHandler) CandidateLogin(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, cand, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"candidate": gin.H{
			"id":            cand.ID,
			"email":         cand.Email,
			"name":          cand.Name,
			"current_level": cand.CurrentLevel,
		},
	})
}

// GetCandidateProfile godoc
// GET /api/v1/auth/candidate/me
// Returns the profile of the currently authenticated candidate.
func (h *AuthHandler) GetCandidateProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	cand, err := h.candidateService.GetByID(c.Request.Context(), claims.CandidateID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"candidate": gin.H{
			"id":            cand.ID,
			"email":         cand.Email,
			"name":          cand.Name,
			"current_level": cand.CurrentLevel,
		},
	})
}
