package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/rwa-portal/rwa-backend/internal/pkg/errors"
)

// ErrorBody is the error half of the API envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Envelope is the standard error/success wrapper:
// {"success": false, "error": {"code": ..., "message": ...}}.
type Envelope struct {
	Success bool       `json:"success"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// OK writes a 200 response with success=true merged into the payload
func OK(c *gin.Context, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// Created writes a 201 response with success=true merged into the payload
func Created(c *gin.Context, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusCreated, body)
}

// JSON writes an arbitrary 200 payload without the envelope. Used by list
// endpoints whose contract is a bare object.
func JSON(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// Error writes an error envelope with the given status and code
func Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message},
	})
}

// HandleError maps an application error to the API envelope. Unrecognized
// errors become 500 SERVER_ERROR; the underlying cause is never exposed.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	appErr := apperrors.From(err)
	Error(c, appErr.HTTPStatus(), appErr.Code, appErr.Message)
}
