package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"clinic-practice-server/internal/access"
)

// ResponseData represents the structure of a standard API error response.
type ResponseData struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Error sends a standard error response.
func Error(c *gin.Context, statusCode int, errorMessage string) {
	c.JSON(statusCode, ResponseData{
		Status:  statusCode,
		Message: "An error occurred",
		Error:   errorMessage,
	})
}

// FromError maps an access-layer error to its HTTP status. Anything outside
// the taxonomy (store connectivity and the like) is a 500.
func FromError(c *gin.Context, err error) {
	var accessErr *access.Error
	if errors.As(err, &accessErr) {
		Error(c, accessErr.Status(), accessErr.Message)
		return
	}
	InternalServerError(c, err.Error())
}

// BadRequest sends a 400 Bad Request error response.
func BadRequest(c *gin.Context, errorMessage string) {
	Error(c, http.StatusBadRequest, errorMessage)
}

// Unauthorized sends a 401 Unauthorized error response.
func Unauthorized(c *gin.Context, errorMessage string) {
	Error(c, http.StatusUnauthorized, errorMessage)
}

// Forbidden sends a 403 Forbidden error response.
func Forbidden(c *gin.Context, errorMessage string) {
	Error(c, http.StatusForbidden, errorMessage)
}

// NotFound sends a 404 Not Found error response.
func NotFound(c *gin.Context, errorMessage string) {
	Error(c, http.StatusNotFound, errorMessage)
}

// InternalServerError sends a 500 Internal Server Error response.
func InternalServerError(c *gin.Context, errorMessage string) {
	Error(c, http.StatusInternalServerError, errorMessage)
}
