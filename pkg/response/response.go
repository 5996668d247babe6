package response

import (
	"errors"
	"net/http"

	"marketplace-backoffice/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Envelope is the standard response body. Every endpoint answers with
// `success`, an optional human-readable `message`, and (on success)
// `data`; error bodies additionally carry the machine-checkable
// `error_code`.
type Envelope struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	ErrorCode string      `json:"error_code,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// OK sends a 200 response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{
		Success:   true,
		Data:      data,
		RequestID: getRequestID(c),
	})
}

// OKWithMessage sends a 200 response with data and a message.
func OKWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: getRequestID(c),
	})
}

// Created sends a 201 response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{
		Success:   true,
		Data:      data,
		RequestID: getRequestID(c),
	})
}

// Error sends an error response. It checks if err is an
// *apperror.AppError and maps it accordingly, otherwise returns 500.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, Envelope{
			Success:   false,
			Message:   appErr.Message,
			ErrorCode: appErr.Code,
			RequestID: getRequestID(c),
		})
		return
	}

	// Unknown error -> 500
	c.JSON(http.StatusInternalServerError, Envelope{
		Success:   false,
		Message:   "Internal server error",
		ErrorCode: "SYS_000",
		RequestID: getRequestID(c),
	})
}

// getRequestID retrieves request ID from context, or generates one.
func getRequestID(c *gin.Context) string {
	if id, exists := c.Get("request_id"); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return uuid.New().String()
}
