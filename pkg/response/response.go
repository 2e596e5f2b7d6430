package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// APIResponse is the success envelope. Results is set for list payloads.
type APIResponse[T any] struct {
	Status  string `json:"status"`
	Results *int   `json:"results,omitempty"`
	Data    T      `json:"data"`
}

// ErrorResponse is the failure envelope. Error and Stack are only filled in
// development.
type ErrorResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Error   string            `json:"error,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Stack   string            `json:"stack,omitempty"`
}

// Success writes {status:"success", data:{key: value}}.
func Success(c *gin.Context, status int, key string, value any) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, APIResponse[gin.H]{Status: StatusSuccess, Data: gin.H{key: value}})
}

// List writes {status:"success", results:n, data:{key: items}}.
func List[T any](c *gin.Context, key string, items []T) {
	n := len(items)
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, APIResponse[gin.H]{Status: StatusSuccess, Results: &n, Data: gin.H{key: items}})
}

// Created writes a 201 envelope.
func Created(c *gin.Context, key string, value any) {
	Success(c, http.StatusCreated, key, value)
}

// NoContent writes 204 with an empty body.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Token writes the auth envelope {status, token, data:{user}}.
func Token(c *gin.Context, status int, token string, user any) {
	c.JSON(status, gin.H{"status": StatusSuccess, "token": token, "data": gin.H{"user": user}})
}

// StatusFor maps an HTTP status to "fail" (4xx) or "error" (5xx).
func StatusFor(code int) string {
	if code >= 400 && code < 500 {
		return StatusFail
	}
	return StatusError
}

// Error writes a failure envelope and aborts the chain.
func Error(c *gin.Context, code int, body ErrorResponse) {
	if body.Status == "" {
		body.Status = StatusFor(code)
	}
	c.AbortWithStatusJSON(code, body)
}
