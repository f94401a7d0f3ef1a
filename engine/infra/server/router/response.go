package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/substratehq/substrate/pkg/logger"
)

// Response is the canonical success envelope for API responses.
type Response struct {
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

// ErrorInfo is the canonical error envelope body.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorResponse wraps ErrorInfo for serialization.
type ErrorResponse struct {
	Error *ErrorInfo `json:"error"`
}

// RespondOK writes a 200 response with the standard envelope.
func RespondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Response{Data: data, Message: message})
}

// RespondCreated writes a 201 response with the standard envelope.
func RespondCreated(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Response{Data: data, Message: message})
}

// RespondNoContent writes a 204 response with no body.
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// RespondWithError writes an error envelope for the given status and code,
// logs it, and aborts the request.
func RespondWithError(c *gin.Context, status int, code string, message string, err error) {
	log := logger.FromContext(c.Request.Context())
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	fields := []any{
		"status", status,
		"code", code,
		"route", route,
		"method", c.Request.Method,
	}
	var details string
	if err != nil {
		details = err.Error()
		fields = append(fields, "error", err)
	}
	if status >= http.StatusInternalServerError {
		log.Error(message, fields...)
	} else {
		log.Debug(message, fields...)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: &ErrorInfo{
		Code:    code,
		Message: message,
		Details: details,
	}})
}

// RespondWithServerError writes a 500 error envelope.
func RespondWithServerError(c *gin.Context, code string, message string, err error) {
	RespondWithError(c, http.StatusInternalServerError, code, message, err)
}

// RespondWithCodedError maps the code to its HTTP status and writes the
// error envelope. Unknown codes fall back to 500.
func RespondWithCodedError(c *gin.Context, code string, message string, err error) {
	RespondWithError(c, StatusFromCode(code), code, message, err)
}
