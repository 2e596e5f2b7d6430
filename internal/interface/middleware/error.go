package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tour-booking-api/pkg/apperror"
	"github.com/oksasatya/tour-booking-api/pkg/response"
)

const genericMessage = "Something went wrong!"

// ErrorHandler renders the last error attached to the request as the failure
// envelope. Only Compression may run before it; it must see errors from every
// later stage. In development the envelope also carries the error detail, field
// messages and origin.
func ErrorHandler(logger *logrus.Logger, dev bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		Render(c, logger, dev, c.Errors.Last().Err)
	}
}

// Render writes err as the failure envelope.
func Render(c *gin.Context, logger *logrus.Logger, dev bool, err error) {
	ae := apperror.As(err)
	code := ae.Kind.Status()
	body := response.ErrorResponse{Status: response.StatusFor(code), Message: ae.Message}

	if code >= http.StatusInternalServerError && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": RequestID(c),
			"kind":       ae.Kind.String(),
			"origin":     ae.Origin,
			"path":       c.Request.URL.Path,
		}).Error("request failed")
	}

	if dev {
		body.Error = err.Error()
		body.Fields = ae.Fields
		body.Stack = ae.Origin
	} else if ae.Kind == apperror.KindInternal {
		body.Message = genericMessage
	}
	response.Error(c, code, body)
}

// Recovery turns a panic into an Internal error for ErrorHandler.
func Recovery(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				if logger != nil {
					logger.WithField("request_id", RequestID(c)).
						WithField("panic", fmt.Sprint(rec)).
						Error(string(debug.Stack()))
				}
				_ = c.Error(apperror.Internal("panic recovered", fmt.Errorf("%v", rec)))
				c.Abort()
			}
		}()
		c.Next()
	}
}

// NotFound answers unmatched routes.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = c.Error(apperror.NotFound(fmt.Sprintf("Can't find %s on this server!", c.Request.URL.Path)))
		c.Abort()
	}
}

// Fail attaches err for ErrorHandler and stops the chain.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
