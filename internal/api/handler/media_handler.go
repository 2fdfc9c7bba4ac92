package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/blog-api/internal/core/ports"
	"github.com/inkpress/blog-api/internal/core/service"
)

// MediaHandler handles image uploads to the external host.
type MediaHandler struct {
	service ports.MediaService
}

func NewMediaHandler(service ports.MediaService) *MediaHandler {
	return &MediaHandler{service: service}
}

type uploadResponse struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
	Bytes    int64  `json:"bytes"`
	Format   string `json:"format"`
}

// Upload handles POST /media/upload (auth required). Expects a multipart
// form with the image under the "file" field.
func (h *MediaHandler) Upload(c echo.Context) error {
	if _, err := currentUser(c); err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file field")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable file")
	}
	defer f.Close()

	result, err := h.service.Upload(
		c.Request().Context(),
		f,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
	)
	if err != nil {
		if errors.Is(err, service.ErrUploadTooLarge) || errors.Is(err, service.ErrUnsupportedImageType) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusCreated, uploadResponse{
		PublicID: result.PublicID,
		URL:      result.URL,
		Bytes:    result.Bytes,
		Format:   result.Format,
	})
}
