package services

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"civiclens-be/logger"
	"civiclens-be/storage"
)

var ErrPhotoStorageUnavailable = errors.New("photo storage not configured")

// PhotoUpload is a file as received from a multipart form.
type PhotoUpload struct {
	Reader      io.Reader
	Name        string
	ContentType string
}

// UploadedPhoto is a stored photo. Image keeps the validated bytes for the prioritizer.
type UploadedPhoto struct {
	Path  string
	URL   string
	Image *storage.Image
}

type PhotoService struct {
	uploader *storage.Uploader
	maxBytes int64
}

// NewPhotoService accepts a nil uploader; uploads then fail with ErrPhotoStorageUnavailable.
func NewPhotoService(uploader *storage.Uploader, maxBytes int64) *PhotoService {
	return &PhotoService{uploader: uploader, maxBytes: maxBytes}
}

func (s *PhotoService) Upload(ctx context.Context, file PhotoUpload) (*UploadedPhoto, error) {
	img, err := storage.ReadImage(file.Reader, file.Name, file.ContentType, s.maxBytes)
	if err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, ErrPhotoStorageUnavailable
	}

	path, url, err := s.uploader.Upload(ctx, img)
	if err != nil {
		return nil, err
	}
	logger.Log.WithFields(logrus.Fields{
		"object": path,
		"bytes":  img.Size(),
		"type":   img.ContentType,
	}).Info("Photo stored")

	return &UploadedPhoto{Path: path, URL: url, Image: img}, nil
}

// Discard removes a stored photo, logging failures.
func (s *PhotoService) Discard(ctx context.Context, path string) {
	if s.uploader == nil || path == "" {
		return
	}
	if err := s.uploader.Store.Delete(ctx, path); err != nil {
		logger.Log.WithField("object", path).Warnf("Failed to delete orphaned photo: %v", err)
	}
}
