package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalPhotoStore writes photos to disk; the router serves them under baseURL.
type LocalPhotoStore struct {
	rootPath string
	baseURL  string
}

func NewLocalPhotoStore(rootPath, baseURL string) (*LocalPhotoStore, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", rootPath, err)
	}
	return &LocalPhotoStore{
		rootPath: rootPath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *LocalPhotoStore) RootPath() string { return s.rootPath }

func (s *LocalPhotoStore) resolve(objectPath string) (string, error) {
	target := filepath.Join(s.rootPath, filepath.FromSlash(objectPath))
	rel, err := filepath.Rel(s.rootPath, target)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("storage: invalid object path %q", objectPath)
	}
	return target, nil
}

func (s *LocalPhotoStore) Save(ctx context.Context, objectPath, _ string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := s.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("storage: create directory: %w", err)
	}

	tempPath := target + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("storage: create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("storage: write file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("storage: close file: %w", err)
	}
	if err := os.Rename(tempPath, target); err != nil {
		return fmt.Errorf("storage: rename file: %w", err)
	}
	return nil
}

func (s *LocalPhotoStore) URL(_ context.Context, objectPath string) (string, error) {
	if _, err := s.resolve(objectPath); err != nil {
		return "", err
	}
	return s.baseURL + "/" + objectPath, nil
}

func (s *LocalPhotoStore) Delete(ctx context.Context, objectPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := s.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete file: %w", err)
	}
	return nil
}
