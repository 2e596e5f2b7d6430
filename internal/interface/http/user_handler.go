package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/tour-booking-api/internal/application"
	"github.com/oksasatya/tour-booking-api/pkg/response"
)

type UserHandler struct {
	Svc *application.UserService
}

func NewUserHandler(svc *application.UserService) *UserHandler {
	return &UserHandler{Svc: svc}
}

func (h *UserHandler) List(c *gin.Context) error {
	users, err := h.Svc.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		return err
	}
	response.List(c, "users", users)
	return nil
}

func (h *UserHandler) Get(c *gin.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	u, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		return err
	}
	response.Success(c, http.StatusOK, "user", u)
	return nil
}

func (h *UserHandler) Me(c *gin.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	u, err := h.Svc.Get(c.Request.Context(), p.UserID)
	if err != nil {
		return err
	}
	response.Success(c, http.StatusOK, "user", u)
	return nil
}

// UpdateMe accepts JSON or a multipart form with an optional photo file.
// Only name and email may be sent.
func (h *UserHandler) UpdateMe(c *gin.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var (
		in    application.ProfileInput
		photo io.Reader
	)
	if isMultipart(c) {
		form, err := multipartForm(c)
		if err != nil {
			return err
		}
		raw := map[string]any{}
		for k, v := range form.Value {
			if len(v) > 0 {
				raw[k] = v[0]
			}
		}
		if in, err = application.ProfileFromMap(raw); err != nil {
			return err
		}
		files, err := openFiles(form, "photo", 1)
		if err != nil {
			return err
		}
		defer closeAll(files)
		if len(files) == 1 {
			photo = files[0]
		}
	} else {
		raw, err := rawObject(c)
		if err != nil {
			return err
		}
		if in, err = application.ProfileFromMap(raw); err != nil {
			return err
		}
	}
	u, err := h.Svc.UpdateMe(c.Request.Context(), p.UserID, in, photo)
	if err != nil {
		return err
	}
	response.Success(c, http.StatusOK, "user", u)
	return nil
}

func (h *UserHandler) DeleteMe(c *gin.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteMe(c.Request.Context(), p.UserID); err != nil {
		return err
	}
	response.NoContent(c)
	return nil
}

func (h *UserHandler) Update(c *gin.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in application.UserInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	u, err := h.Svc.Update(c.Request.Context(), id, in)
	if err != nil {
		return err
	}
	response.Success(c, http.StatusOK, "user", u)
	return nil
}

func (h *UserHandler) Delete(c *gin.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		return err
	}
	response.NoContent(c)
	return nil
}
