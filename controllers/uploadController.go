package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"civiclens-be/logger"
	"civiclens-be/services"
	"civiclens-be/storage"
)

type UploadController struct {
	photos *services.PhotoService
}

func NewUploadController(photos *services.PhotoService) *UploadController {
	return &UploadController{photos: photos}
}

// UploadPhoto stores one image from the multipart field "file" and returns its URL.
func (ctl *UploadController) UploadPhoto(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided."})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided."})
		return
	}
	defer file.Close()

	ctx, cancel := requestContext(c)
	defer cancel()

	photo, err := ctl.photos.Upload(ctx, services.PhotoUpload{
		Reader:      file,
		Name:        fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
	})
	if err != nil {
		var invalid *storage.ValidationError
		switch {
		case errors.As(err, &invalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Message})
		case errors.Is(err, services.ErrPhotoStorageUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": backendNotConfigured})
		default:
			logger.Log.Errorf("[api/upload] error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "url": photo.URL})
}
