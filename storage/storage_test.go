package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"civiclens-be/logger"
)

func TestMain(m *testing.M) {
	logger.Silence()
	goleak.VerifyTestMain(m)
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

func TestObjectPath(t *testing.T) {
	p := ObjectPath("../../etc/my photo (1).png")
	assert.True(t, strings.HasPrefix(p, "issues/"), p)
	assert.True(t, strings.HasSuffix(p, "_my_photo_1_.png"), p)
	assert.NotContains(t, strings.TrimPrefix(p, "issues/"), "/")
	assert.NotEqual(t, p, ObjectPath("../../etc/my photo (1).png"))

	assert.True(t, strings.HasSuffix(ObjectPath(""), "_photo"))
}

func TestReadImage(t *testing.T) {
	img, err := ReadImage(bytes.NewReader(pngHeader), "a.png", "image/png", 1024)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, int64(len(pngHeader)), img.Size())

	tests := []struct {
		name     string
		r        io.Reader
		declared string
		max      int64
		want     error
		message  string
	}{
		{"no file", nil, "", 1024, ErrNoFile, "No file provided."},
		{"declared text", bytes.NewReader(pngHeader), "text/plain", 1024, ErrNotImage, "Only image files are allowed."},
		{"empty", bytes.NewReader(nil), "image/png", 1024, ErrEmptyUpload, "The file is empty."},
		{"sniffed text", strings.NewReader("hello, definitely not an image"), "image/png", 1024, ErrNotImage, "Only image files are allowed."},
		{"too large", bytes.NewReader(append(pngHeader, make([]byte, 3*1024*1024)...)), "image/png", 2 * 1024 * 1024, ErrFileTooBig, "File size cannot exceed 2MB."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadImage(tt.r, "x.png", tt.declared, tt.max)
			require.ErrorIs(t, err, tt.want)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.message, ve.Message)
		})
	}
}

func TestLocalPhotoStore(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalPhotoStore(root, "/media/")
	require.NoError(t, err)
	ctx := context.Background()

	path := "issues/abc_photo.png"
	require.NoError(t, store.Save(ctx, path, "image/png", bytes.NewReader(pngHeader)))

	data, err := os.ReadFile(filepath.Join(root, "issues", "abc_photo.png"))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	url, err := store.URL(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "/media/issues/abc_photo.png", url)

	require.NoError(t, store.Delete(ctx, path))
	_, err = os.Stat(filepath.Join(root, "issues", "abc_photo.png"))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, store.Delete(ctx, path), "deleting twice is fine")

	assert.Error(t, store.Save(ctx, "../escape.png", "image/png", bytes.NewReader(pngHeader)))
}

// stallingStore never reads on its first calls, then behaves.
type stallingStore struct {
	mu      sync.Mutex
	stalls  int
	calls   int
	saved   map[string][]byte
	deleted []string
}

func (s *stallingStore) Save(ctx context.Context, objectPath, _ string, r io.Reader) error {
	s.mu.Lock()
	s.calls++
	stall := s.calls <= s.stalls
	s.mu.Unlock()

	if stall {
		<-ctx.Done()
		return ctx.Err()
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		s.saved = make(map[string][]byte)
	}
	s.saved[objectPath] = data
	return nil
}

func (s *stallingStore) URL(_ context.Context, objectPath string) (string, error) {
	return "https://cdn.test/" + objectPath, nil
}

func (s *stallingStore) Delete(_ context.Context, objectPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, objectPath)
	return nil
}

func newTestUploader(store PhotoStore, attempts uint) *Uploader {
	u := NewUploader(store, 20*time.Millisecond, attempts)
	u.RetryDelay = time.Millisecond
	return u
}

func TestUploaderRetriesStalledAttempt(t *testing.T) {
	store := &stallingStore{stalls: 1}
	img := &Image{Name: "pothole.png", ContentType: "image/png", Data: pngHeader}

	path, url, err := newTestUploader(store, 3).Upload(context.Background(), img)
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls)
	assert.Equal(t, "https://cdn.test/"+path, url)
	assert.Equal(t, pngHeader, store.saved[path])
}

func TestUploaderGivesUpAfterAttempts(t *testing.T) {
	store := &stallingStore{stalls: 5}
	img := &Image{Name: "pothole.png", ContentType: "image/png", Data: pngHeader}

	_, _, err := newTestUploader(store, 2).Upload(context.Background(), img)
	require.ErrorIs(t, err, ErrUploadStalled)
	assert.Equal(t, 2, store.calls)
}

type failingStore struct {
	stallingStore
	calls int
}

func (s *failingStore) Save(context.Context, string, string, io.Reader) error {
	s.calls++
	return errors.New("permission denied")
}

func TestUploaderDoesNotRetryOtherErrors(t *testing.T) {
	store := &failingStore{}
	img := &Image{Name: "a.png", ContentType: "image/png", Data: pngHeader}

	_, _, err := newTestUploader(store, 3).Upload(context.Background(), img)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUploadStalled)
	assert.Equal(t, 1, store.calls)
}

func TestUploaderDefaultsNonPositiveStallTimeout(t *testing.T) {
	for _, stall := range []time.Duration{0, -time.Second} {
		u := NewUploader(&stallingStore{}, stall, 1)
		assert.Equal(t, DefaultStallTimeout, u.StallTimeout)
	}

	store := &stallingStore{}
	u := &Uploader{Store: store, Attempts: 1}
	img := &Image{Name: "curb.png", ContentType: "image/png", Data: pngHeader}

	path, _, err := u.Upload(context.Background(), img)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, store.saved[path])
}
