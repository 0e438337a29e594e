package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gcs "cloud.google.com/go/storage"
)

const photoCacheControl = "public,max-age=31536000,immutable"

// signedURLExpiry is far enough out that stored report links never lapse.
var signedURLExpiry = time.Date(2100, time.January, 1, 0, 0, 0, 0, time.UTC)

// GCSPhotoStore keeps photos in the Firebase storage bucket.
type GCSPhotoStore struct {
	bucket *gcs.BucketHandle
}

func NewGCSPhotoStore(bucket *gcs.BucketHandle) *GCSPhotoStore {
	return &GCSPhotoStore{bucket: bucket}
}

func (s *GCSPhotoStore) Save(ctx context.Context, objectPath, contentType string, r io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := s.bucket.Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = photoCacheControl
	// Small chunks keep reads paced by the network so upload progress is observable.
	w.ChunkSize = 256 * 1024

	if _, err := io.Copy(w, r); err != nil {
		cancel()
		_ = w.Close()
		return fmt.Errorf("upload %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", objectPath, err)
	}
	return nil
}

func (s *GCSPhotoStore) URL(_ context.Context, objectPath string) (string, error) {
	url, err := s.bucket.SignedURL(objectPath, &gcs.SignedURLOptions{
		Method:  http.MethodGet,
		Expires: signedURLExpiry,
		Scheme:  gcs.SigningSchemeV2,
	})
	if err != nil {
		return "", fmt.Errorf("sign url for %s: %w", objectPath, err)
	}
	return url, nil
}

func (s *GCSPhotoStore) Delete(ctx context.Context, objectPath string) error {
	err := s.bucket.Object(objectPath).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("delete %s: %w", objectPath, err)
	}
	return nil
}
