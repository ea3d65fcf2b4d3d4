package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dhabedank/strategem/internal/core"
	"github.com/dhabedank/strategem/internal/ingest"
	"github.com/dhabedank/strategem/internal/store"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapError translates domain errors to HTTP status codes and error codes.
func MapError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "analysis not found"
	case errors.Is(err, core.ErrUnknownFramework):
		return http.StatusBadRequest, "UNKNOWN_FRAMEWORK", err.Error()
	case errors.Is(err, core.ErrNoFrameworks):
		return http.StatusBadRequest, "NO_FRAMEWORKS", "no frameworks requested"
	case errors.Is(err, ingest.ErrEmptyContext):
		return http.StatusBadRequest, "EMPTY_CONTEXT", "problem context is empty"
	case errors.Is(err, ingest.ErrInvalidDecisionFocus):
		return http.StatusBadRequest, "INVALID_DECISION_FOCUS", err.Error()
	case errors.Is(err, store.ErrInvalidID):
		return http.StatusBadRequest, "INVALID_ID", "invalid analysis id"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps an error and sends the appropriate error response.
func HandleError(c *gin.Context, logger *zap.Logger, err error) {
	status, code, msg := MapError(err)
	if status >= 500 {
		logger.Error("request failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err),
		)
	}
	RespondError(c, status, code, msg)
}
