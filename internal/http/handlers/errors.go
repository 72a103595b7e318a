package handlers

import (
	"log"
	"net/http"

	"locacar/internal/domain"
	"locacar/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the error payload of every handler.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Details   any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.JSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		Message:   message,
		RequestID: middleware.GetRequestID(c),
		Details:   details,
	})
}

// RespondDomainError maps domain errors to HTTP responses. Integrity and
// unknown failures are logged and answered with a generic 500.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsIntegrity(err):
		log.Printf("[ERROR] request_id=%s integrity failure: %v", middleware.GetRequestID(c), err)
		respondError(c, http.StatusInternalServerError, "integrity_error", "internal error", nil)
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	default:
		log.Printf("[ERROR] request_id=%s method=%s path=%s err=%v", middleware.GetRequestID(c), c.Request.Method, c.Request.URL.Path, err)
		respondError(c, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}
