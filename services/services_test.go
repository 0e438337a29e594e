package services

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"civiclens-be/ai"
	"civiclens-be/logger"
	"civiclens-be/messaging"
	"civiclens-be/models"
	"civiclens-be/repository"
	"civiclens-be/storage"
	"civiclens-be/utils"
)

func TestMain(m *testing.M) {
	logger.Silence()
	m.Run()
}

var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01}

type recordingPublisher struct {
	mu     sync.Mutex
	events []messaging.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e messaging.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Events() []messaging.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]messaging.Event(nil), p.events...)
}

type failingRepo struct {
	repository.Unconfigured
	err error
}

func (r failingRepo) Create(context.Context, *models.IssueReport) (string, error) {
	return "", r.err
}

type testEnv struct {
	svc       *IssueService
	repo      *repository.MemoryIssueRepository
	store     *storage.LocalPhotoStore
	publisher *recordingPublisher
}

func newTestEnv(t *testing.T, prioritizer ai.Prioritizer) *testEnv {
	t.Helper()
	store, err := storage.NewLocalPhotoStore(t.TempDir(), "/media")
	require.NoError(t, err)
	uploader := storage.NewUploader(store, time.Second, 1)

	repo := repository.NewMemoryIssueRepository()
	pub := &recordingPublisher{}
	svc := NewIssueService(repo, NewPhotoService(uploader, 10*1024*1024), prioritizer, pub, IssueServiceOptions{
		AITimeout:   time.Second,
		FallbackLat: 34.0522,
		FallbackLng: -118.2437,
	})
	return &testEnv{svc: svc, repo: repo, store: store, publisher: pub}
}

func validInput() SubmitInput {
	return SubmitInput{
		Description: "Deep pothole in the bike lane on 5th street.",
		Category:    models.Pothole,
		Address:     "5th St, Los Angeles",
	}
}

func TestSubmitCreatesOneSubmittedIssueWithDefaults(t *testing.T) {
	env := newTestEnv(t, nil)

	issue, err := env.svc.Submit(context.Background(), validInput())
	require.NoError(t, err)

	assert.NotEmpty(t, issue.ID)
	assert.Equal(t, models.Submitted, issue.Status)
	assert.Equal(t, models.Medium, issue.Priority)
	assert.Equal(t, "Awaiting review", issue.Reason)
	assert.Nil(t, issue.PhotoURL)
	assert.InDelta(t, 34.0522, issue.Location.Lat, 0.05)
	assert.InDelta(t, -118.2437, issue.Location.Lng, 0.05)
	assert.Equal(t, 1, env.repo.Len())

	require.Eventually(t, func() bool { return len(env.publisher.Events()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, messaging.IssueCreated, env.publisher.Events()[0].Type)
	assert.Equal(t, issue.ID, env.publisher.Events()[0].IssueID)
}

func TestSubmitUsesAIPriorityAndPhoto(t *testing.T) {
	ctrl := gomock.NewController(t)
	prioritizer := ai.NewMockPrioritizer(ctrl)
	prioritizer.EXPECT().
		Prioritize(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in ai.PrioritizeInput) (*ai.PrioritizeResult, error) {
			assert.Equal(t, "image/jpeg", in.PhotoMIME)
			assert.Equal(t, jpegBytes, in.Photo)
			return &ai.PrioritizeResult{Priority: models.High, Reason: "Cyclists at risk."}, nil
		})

	env := newTestEnv(t, prioritizer)
	in := validInput()
	lat, lng := 40.0, -70.0
	in.Lat, in.Lng = &lat, &lng
	in.Photo = &PhotoUpload{Reader: bytes.NewReader(jpegBytes), Name: "hole.jpg", ContentType: "image/jpeg"}

	issue, err := env.svc.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, models.High, issue.Priority)
	assert.Equal(t, "Cyclists at risk.", issue.Reason)
	assert.Equal(t, models.Location{Lat: 40, Lng: -70}, issue.Location)
	require.NotNil(t, issue.PhotoURL)
	assert.True(t, strings.HasPrefix(*issue.PhotoURL, "/media/issues/"), *issue.PhotoURL)
	assert.True(t, strings.HasSuffix(*issue.PhotoURL, "_hole.jpg"))
}

func TestSubmitFallsBackWhenAIFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	prioritizer := ai.NewMockPrioritizer(ctrl)
	prioritizer.EXPECT().Prioritize(gomock.Any(), gomock.Any()).Return(nil, errors.New("quota"))

	env := newTestEnv(t, prioritizer)
	issue, err := env.svc.Submit(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPriority, issue.Priority)
	assert.Equal(t, models.DefaultReason, issue.Reason)
}

func TestSubmitKeepsPhotoURL(t *testing.T) {
	env := newTestEnv(t, nil)
	in := validInput()
	in.PhotoURL = "https://example.com/p.jpg"

	issue, err := env.svc.Submit(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, issue.PhotoURL)
	assert.Equal(t, "https://example.com/p.jpg", *issue.PhotoURL)
}

func TestSubmitRejectsBadInputBeforeStorage(t *testing.T) {
	env := newTestEnv(t, nil)

	in := validInput()
	in.Category = "volcano"
	_, err := env.svc.Submit(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidCategory)

	in = validInput()
	in.Photo = &PhotoUpload{Reader: strings.NewReader("plain text"), Name: "a.txt", ContentType: "text/plain"}
	_, err = env.svc.Submit(context.Background(), in)
	assert.ErrorIs(t, err, storage.ErrNotImage)

	assert.Equal(t, 0, env.repo.Len())
}

func TestSubmitDeletesPhotoWhenWriteFails(t *testing.T) {
	store, err := storage.NewLocalPhotoStore(t.TempDir(), "/media")
	require.NoError(t, err)
	photos := NewPhotoService(storage.NewUploader(store, time.Second, 1), 1024)
	boom := errors.New("firestore unavailable")
	svc := NewIssueService(failingRepo{err: boom}, photos, nil, nil, IssueServiceOptions{})

	in := validInput()
	in.Photo = &PhotoUpload{Reader: bytes.NewReader(jpegBytes), Name: "a.jpg", ContentType: "image/jpeg"}
	_, err = svc.Submit(context.Background(), in)
	require.ErrorIs(t, err, boom)

	entries, err := storedFiles(store.RootPath())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpdateStatus(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	issue, err := env.svc.Submit(ctx, validInput())
	require.NoError(t, err)

	for _, status := range models.Statuses {
		require.NoError(t, env.svc.UpdateStatus(ctx, issue.ID, status))
		got, err := env.svc.Get(ctx, issue.ID)
		require.NoError(t, err)
		assert.Equal(t, status, got.Status)
	}

	err = env.svc.UpdateStatus(ctx, issue.ID, "Closed")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	got, err := env.svc.Get(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Resolved, got.Status)

	assert.ErrorIs(t, env.svc.UpdateStatus(ctx, "missing", models.Resolved), repository.ErrIssueNotFound)

	require.Eventually(t, func() bool { return len(env.publisher.Events()) == 5 }, time.Second, 5*time.Millisecond)
}

func TestUpdateStatusWithoutBackend(t *testing.T) {
	svc := NewIssueService(repository.Unconfigured{}, NewPhotoService(nil, 1024), nil, nil, IssueServiceOptions{})
	err := svc.UpdateStatus(context.Background(), "1", models.Resolved)
	assert.ErrorIs(t, err, repository.ErrBackendNotConfigured)
}

func TestPhotoServiceWithoutStorage(t *testing.T) {
	photos := NewPhotoService(nil, 1024)
	_, err := photos.Upload(context.Background(), PhotoUpload{Reader: bytes.NewReader(jpegBytes), Name: "a.jpg"})
	assert.ErrorIs(t, err, ErrPhotoStorageUnavailable)
}

// Auth

type fakeVerifier struct {
	token *auth.Token
	err   error
}

func (f fakeVerifier) VerifyIDToken(context.Context, string) (*auth.Token, error) {
	return f.token, f.err
}

func testSigner() *utils.SessionSigner {
	return utils.NewSessionSigner("0123456789abcdef0123456789abcdef", time.Hour)
}

func TestLoginDevelopmentFallback(t *testing.T) {
	svc := NewAuthService(models.AdminAccount{Username: "admin"}, false, testSigner(), nil)

	token, session, err := svc.Login("admin", "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", session.User)

	parsed, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, models.ProviderPassword, parsed.Provider)

	_, _, err = svc.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWithHashedPassword(t *testing.T) {
	hash, err := models.HashPassword("s3cret-pass")
	require.NoError(t, err)
	svc := NewAuthService(models.AdminAccount{Username: "clerk", PasswordHash: hash}, true, testSigner(), nil)

	_, _, err = svc.Login("clerk", "s3cret-pass")
	require.NoError(t, err)

	_, _, err = svc.Login("admin", "admin")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login("clerk", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginNoHashInProductionRejectsEverything(t *testing.T) {
	svc := NewAuthService(models.AdminAccount{Username: "admin"}, true, testSigner(), nil)
	_, _, err := svc.Login("admin", "admin")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWithIDToken(t *testing.T) {
	token := &auth.Token{UID: "uid-1", Claims: map[string]interface{}{"email": "staff@city.gov"}}
	token.Firebase.SignInProvider = "password"
	svc := NewAuthService(models.AdminAccount{}, true, testSigner(), fakeVerifier{token: token})

	_, session, err := svc.LoginWithIDToken(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, "staff@city.gov", session.User)
	assert.Equal(t, models.ProviderFirebase, session.Provider)

	anon := &auth.Token{UID: "uid-2"}
	anon.Firebase.SignInProvider = "anonymous"
	svc = NewAuthService(models.AdminAccount{}, true, testSigner(), fakeVerifier{token: anon})
	_, _, err = svc.LoginWithIDToken(context.Background(), "id-token")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	svc = NewAuthService(models.AdminAccount{}, true, testSigner(), fakeVerifier{err: errors.New("expired")})
	_, _, err = svc.LoginWithIDToken(context.Background(), "id-token")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	svc = NewAuthService(models.AdminAccount{}, true, testSigner(), nil)
	_, _, err = svc.LoginWithIDToken(context.Background(), "id-token")
	assert.ErrorIs(t, err, ErrIdentityUnavailable)
}

// Geocoder

func TestGeocoderReverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "CivicLens/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "34.05", r.URL.Query().Get("lat"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"display_name":"City Hall, Los Angeles"}`))
	}))
	defer srv.Close()

	g := NewGeocoder(srv.URL, nil)
	assert.Equal(t, "City Hall, Los Angeles", g.Reverse(context.Background(), 34.05, -118.24))
}

func TestGeocoderFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := NewGeocoder(srv.URL, nil)
	assert.Equal(t, "Near lat: 34.0522, lng: -118.2437", g.Reverse(context.Background(), 34.0522, -118.2437))

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer empty.Close()
	assert.Equal(t, "Near lat: 1.0000, lng: 2.0000", NewGeocoder(empty.URL, nil).Reverse(context.Background(), 1, 2))
}

func storedFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
