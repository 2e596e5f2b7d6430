package middleware

import (
	"expvar"
	"strconv"

	"github.com/gin-gonic/gin"
)

var (
	requestsTotal   = expvar.NewInt("http_requests_total")
	responsesByCode = expvar.NewMap("http_responses_by_status")
)

// Metrics counts requests and response statuses for /debug/vars.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestsTotal.Add(1)
		c.Next()
		responsesByCode.Add(strconv.Itoa(c.Writer.Status()), 1)
	}
}
