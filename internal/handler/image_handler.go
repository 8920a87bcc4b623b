package handler

import (
	"net/http"

	"github.com/Growthfyi/squeak/internal/auth"
	"github.com/Growthfyi/squeak/internal/upload"
	"github.com/Growthfyi/squeak/pkg/logger"
	"github.com/Growthfyi/squeak/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ImageHandler forwards uploaded images to the CDN.
type ImageHandler struct {
	uploader *upload.CloudinaryClient
	sessions *auth.Resolver
}

// NewImageHandler creates an image handler
func NewImageHandler(uploader *upload.CloudinaryClient, sessions *auth.Resolver) *ImageHandler {
	return &ImageHandler{uploader: uploader, sessions: sessions}
}

// Upload accepts a multipart image and returns the CDN's public id, format and
// version. Upstream failure maps to a 500; nothing is stored locally.
func (h *ImageHandler) Upload(c echo.Context) error {
	log := logger.FromEcho(c)

	if h.sessions.Resolve(c) == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{})
	}

	if !h.uploader.Configured() {
		log.Error("image upload requested but CDN is not configured")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Image uploads not configured"})
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image file is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error("failed to open uploaded file", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error reading image"})
	}
	defer file.Close()

	result, err := h.uploader.Upload(c.Request().Context(), fileHeader.Filename, file)
	if err != nil {
		log.Error("image upload failed", zap.String("filename", fileHeader.Filename), zap.Error(err))
		prometheus.RecordImageUpload("error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error uploading image"})
	}

	prometheus.RecordImageUpload("ok")
	return c.JSON(http.StatusOK, result)
}
