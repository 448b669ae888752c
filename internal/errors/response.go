package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SuccessResponse is the standard success envelope.
type SuccessResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Error   string `json:"error"`   // machine-readable code, see codes.go
	Message string `json:"message"` // human-readable detail
}

// OK writes a 200 response with the standard success envelope.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
	})
}

// Created writes a 201 response with the standard success envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
	})
}

// RespondWithError writes the standard error envelope.
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Code:    statusCode,
		Error:   errorCode,
		Message: message,
	})
}

// Shorthand helpers for the common responses.

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "access denied"
	}
	RespondWithError(c, http.StatusForbidden, AuthzForbidden, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func Conflict(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusConflict, errorCode, message)
}

func UnprocessableEntity(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusUnprocessableEntity, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "an internal error occurred, please try again later"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

func BadGateway(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadGateway, errorCode, message)
}

// ValidationError reports per-field validation failures.
type ValidationError struct {
	Code    int               `json:"code"`
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func RespondWithValidationError(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, ValidationError{
		Code:    http.StatusBadRequest,
		Error:   ValidationInvalidInput,
		Message: "invalid input",
		Fields:  fields,
	})
}
