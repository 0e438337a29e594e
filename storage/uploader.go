package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go"
	"github.com/sirupsen/logrus"

	"civiclens-be/logger"
)

// ErrUploadStalled means no bytes moved for a whole stall window.
var ErrUploadStalled = errors.New("upload stalled")

// DefaultStallTimeout applies when no positive stall window is configured.
const DefaultStallTimeout = 15 * time.Second

// Uploader saves photos through a PhotoStore, cancelling attempts that stop making
// progress and retrying them with back-off.
type Uploader struct {
	Store        PhotoStore
	StallTimeout time.Duration
	Attempts     uint
	RetryDelay   time.Duration
}

func NewUploader(store PhotoStore, stallTimeout time.Duration, attempts uint) *Uploader {
	if attempts == 0 {
		attempts = 1
	}
	if stallTimeout <= 0 {
		stallTimeout = DefaultStallTimeout
	}
	return &Uploader{
		Store:        store,
		StallTimeout: stallTimeout,
		Attempts:     attempts,
		RetryDelay:   500 * time.Millisecond,
	}
}

// Upload stores img under a fresh object path and returns that path and its URL.
func (u *Uploader) Upload(ctx context.Context, img *Image) (string, string, error) {
	objectPath := ObjectPath(img.Name)

	err := retry.Do(
		func() error {
			return u.attempt(ctx, objectPath, img)
		},
		retry.Context(ctx),
		retry.Attempts(u.Attempts),
		retry.Delay(u.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, ErrUploadStalled)
		}),
		retry.OnRetry(func(n uint, err error) {
			logger.Log.WithFields(logrus.Fields{
				"object":  objectPath,
				"attempt": n + 1,
			}).Warnf("Photo upload stalled, retrying: %v", err)
		}),
	)
	if err != nil {
		return "", "", err
	}

	url, err := u.Store.URL(ctx, objectPath)
	if err != nil {
		_ = u.Store.Delete(context.WithoutCancel(ctx), objectPath)
		return "", "", err
	}
	return objectPath, url, nil
}

func (u *Uploader) attempt(ctx context.Context, objectPath string, img *Image) error {
	attemptCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	window := u.StallTimeout
	if window <= 0 {
		window = DefaultStallTimeout
	}

	src := &progressReader{ctx: attemptCtx, r: bytes.NewReader(img.Data)}
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		watch(attemptCtx, done, src, window, cancel)
	}()

	err := u.Store.Save(attemptCtx, objectPath, img.ContentType, src)
	close(done)
	wg.Wait()

	if errors.Is(context.Cause(attemptCtx), ErrUploadStalled) {
		return ErrUploadStalled
	}
	return err
}

// watch cancels the attempt when the byte count stops moving between ticks.
func watch(ctx context.Context, done <-chan struct{}, src *progressReader, window time.Duration, cancel context.CancelCauseFunc) {
	ticker := time.NewTicker(window)
	defer ticker.Stop()

	var last int64
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := src.Transferred()
			if n == last {
				cancel(ErrUploadStalled)
				return
			}
			last = n
		}
	}
}

type progressReader struct {
	ctx context.Context
	r   io.Reader
	n   atomic.Int64
}

func (p *progressReader) Read(b []byte) (int, error) {
	if err := p.ctx.Err(); err != nil {
		return 0, context.Cause(p.ctx)
	}
	n, err := p.r.Read(b)
	p.n.Add(int64(n))
	return n, err
}

func (p *progressReader) Transferred() int64 {
	return p.n.Load()
}
