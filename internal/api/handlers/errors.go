package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/porter-wallet/porter_service/internal/domain/entities"
	apperrors "github.com/porter-wallet/porter_service/pkg/errors"
)

// Error codes as constants for consistent error responses across handlers
const (
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeValidationError = "VALIDATION_ERROR"
	ErrCodeInternalError   = "INTERNAL_ERROR"
	ErrCodeNotFound        = "NOT_FOUND"
)

// SendBadRequest sends a 400 Bad Request error
func SendBadRequest(c *gin.Context, code, message string, details ...map[string]interface{}) {
	var det map[string]interface{}
	if len(details) > 0 {
		det = details[0]
	}
	c.JSON(http.StatusBadRequest, entities.ErrorResponse{
		Code:    code,
		Message: message,
		Details: det,
	})
}

// SendNotFound sends a 404 Not Found error
func SendNotFound(c *gin.Context, code, message string) {
	c.JSON(http.StatusNotFound, entities.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// SendInternalError sends a 500 Internal Server Error
func SendInternalError(c *gin.Context, code, message string) {
	c.JSON(http.StatusInternalServerError, entities.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// SendSuccess sends a 200 OK response with data
func SendSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// SendCreated sends a 201 Created response with data
func SendCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// SendAppError maps a classified service error onto its HTTP response.
// Unclassified errors become opaque 500s; internal detail never leaks.
func SendAppError(c *gin.Context, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		message := appErr.Message
		if appErr.Type == apperrors.ErrorTypeInternal {
			message = "Internal server error"
		}
		c.JSON(appErr.StatusCode, entities.ErrorResponse{
			Code:    appErr.Code,
			Message: message,
		})
		return
	}

	SendInternalError(c, ErrCodeInternalError, "Internal server error")
}
