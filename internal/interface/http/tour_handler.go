package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/tour-booking-api/internal/application"
	"github.com/oksasatya/tour-booking-api/pkg/response"
)

const maxTourImages = 3

type TourHandler struct {
	Svc *application.TourService
}

func NewTourHandler(svc *application.TourService) *TourHandler {
	return &TourHandler{Svc: svc}
}

func (h *TourHandler) List(c *gin.Context) error {
	tours, err := h.Svc.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		return err
	}
	response.List(c, "tours", tours)
	return nil
}

// TopCheap is List with a fixed query: the five best rated, cheapest tours.
func (h *TourHandler) TopCheap(c *gin.Context) error {
	tours, err := h.Svc.List(c.Request.Context(), application.TopCheapParams(c.Request.URL.Query()))
	if err != nil {
		return err
	}
	response.List(c, "tours", tours)
	return nil
}

func (h *TourHandler) Get(c *gin.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	t, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		return err
	}
	response.Success(c, http.StatusOK, "tour", t)
	return nil
}

func (h *TourHandler) Create(c *gin.Context) error {
	var in application.TourInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	t, err := h.Svc.Create(c.Request.Context(), in)
	if err != nil {
		return err
	}
	response.Created(c, "tour", t)
	return nil
}

// Update takes a JSON patch, or a multipart form carrying imageCover (one
// file) and images (up to three files).
func (h *TourHandler) Update(c *gin.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var (
		in      application.TourInput
		uploads application.TourUploads
	)
	if isMultipart(c) {
		form, err := multipartForm(c)
		if err != nil {
			return err
		}
		covers, err := openFiles(form, "imageCover", 1)
		if err != nil {
			return err
		}
		defer closeAll(covers)
		images, err := openFiles(form, "images", maxTourImages)
		if err != nil {
			return err
		}
		defer closeAll(images)
		if len(covers) == 1 {
			uploads.Cover = covers[0]
		}
		for _, f := range images {
			uploads.Images = append(uploads.Images, io.Reader(f))
		}
	} else if err := bindJSON(c, &in); err != nil {
		return err
	}
	t, err := h.Svc.Update(c.Request.Context(), id, in, uploads)
	if err != nil {
		return err
	}
	response.Success(c, http.StatusOK, "tour", t)
	return nil
}

func (h *TourHandler) Delete(c *gin.Context) error {
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

func (h *TourHandler) Statistics(c *gin.Context) error {
	stats, err := h.Svc.Statistics(c.Request.Context())
	if err != nil {
		return err
	}
	response.Success(c, http.StatusOK, "statistics", stats)
	return nil
}

func (h *TourHandler) MonthlyPlan(c *gin.Context) error {
	year, err := application.ParseYear(c.Param("year"))
	if err != nil {
		return err
	}
	plan, err := h.Svc.MonthlyPlan(c.Request.Context(), year)
	if err != nil {
		return err
	}
	response.Success(c, http.StatusOK, "plan", plan)
	return nil
}

func (h *TourHandler) Within(c *gin.Context) error {
	q, err := application.ParseWithin(c.Param("distance"), c.Param("latlng"), c.Param("unit"))
	if err != nil {
		return err
	}
	tours, err := h.Svc.WithinRadius(c.Request.Context(), q)
	if err != nil {
		return err
	}
	response.List(c, "tours", tours)
	return nil
}

func (h *TourHandler) Search(c *gin.Context) error {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchTours(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		return err
	}
	response.List(c, "tours", hits)
	return nil
}
