package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lingua-prep/adaptive-exam-engine/internal/repository"
	"github.com/lingua-prep/adaptive-exam-engine/internal/response"
	"github.com/lingua-prep/adaptive-exam-engine/internal/service"
)

// failFromError maps service-layer sentinels onto HTTP statuses and API error
// codes. Anything unrecognized is a 500.
func failFromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrQuestionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotSessionOwner):
		response.Fail(c, http.StatusForbidden, response.ErrNotSessionOwner)
	case errors.Is(err, service.ErrSessionNotStarted):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotStarted)
	case errors.Is(err, service.ErrSessionAlreadyCompleted):
		response.Fail(c, http.StatusConflict, response.ErrSessionAlreadyCompleted)
	case errors.Is(err, service.ErrSessionTerminated):
		response.Fail(c, http.StatusConflict, response.ErrSessionTerminated)
	case errors.Is(err, service.ErrResultNotAvailable):
		response.Fail(c, http.StatusConflict, response.ErrResultNotAvailable)
	case errors.Is(err, repository.ErrInsufficientCredits):
		response.Fail(c, http.StatusPaymentRequired, response.ErrInsufficientCredits)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
