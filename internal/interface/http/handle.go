package handlers

import (
	"encoding/json"
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/tour-booking-api/internal/application"
	"github.com/oksasatya/tour-booking-api/internal/domain/auth"
	"github.com/oksasatya/tour-booking-api/internal/interface/middleware"
	"github.com/oksasatya/tour-booking-api/pkg/apperror"
	"github.com/oksasatya/tour-booking-api/pkg/validation"
)

// HandlerFunc is a gin handler that reports failures by returning them.
type HandlerFunc func(c *gin.Context) error

// Handle adapts fn to gin, sending its error to the error funnel.
func Handle(fn HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := fn(c); err != nil {
			middleware.Fail(c, err)
		}
	}
}

// maxUploadMemory bounds the in-memory part of multipart parsing.
const maxUploadMemory = 8 << 20

func bindJSON(c *gin.Context, dst any) error {
	return validation.FromError(c.ShouldBindJSON(dst))
}

func parseID(c *gin.Context, name string) (primitive.ObjectID, error) {
	raw := c.Param(name)
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperror.Validation("Invalid "+name+": "+raw, map[string]string{name: "must be a valid id"})
	}
	return id, nil
}

func principal(c *gin.Context) (auth.Principal, error) {
	p, ok := auth.PrincipalFrom(c.Request.Context())
	if !ok {
		return auth.Principal{}, apperror.Unauthorized("You are not logged in! Please log in to get access.")
	}
	return p, nil
}

func clientMeta(c *gin.Context) application.ClientMeta {
	return application.ClientMeta{IP: middleware.ClientIP(c), UserAgent: c.GetHeader("User-Agent")}
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

func multipartForm(c *gin.Context) (*multipart.Form, error) {
	if err := c.Request.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, validation.FromError(err)
	}
	return c.Request.MultipartForm, nil
}

// openFiles opens every upload under field. The caller closes them.
func openFiles(form *multipart.Form, field string, max int) ([]multipart.File, error) {
	headers := form.File[field]
	if len(headers) > max {
		return nil, apperror.Validation("Too many files for "+field, map[string]string{field: "too many files"})
	}
	files := make([]multipart.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll(files)
			return nil, apperror.Validation("Cannot read upload "+fh.Filename, map[string]string{field: "unreadable file"})
		}
		files = append(files, f)
	}
	return files, nil
}

func closeAll(files []multipart.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

// rawObject decodes a JSON object body, keeping every key.
func rawObject(c *gin.Context) (map[string]any, error) {
	body, err := c.GetRawData()
	if err != nil {
		return nil, validation.FromError(err)
	}
	out := map[string]any{}
	if len(strings.TrimSpace(string(body))) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, validation.FromError(err)
	}
	return out, nil
}
