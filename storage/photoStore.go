package storage

import (
	"context"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// PhotoStore keeps uploaded photos under object paths.
type PhotoStore interface {
	Save(ctx context.Context, objectPath, contentType string, r io.Reader) error
	URL(ctx context.Context, objectPath string) (string, error)
	Delete(ctx context.Context, objectPath string) error
}

const objectPrefix = "issues/"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ObjectPath returns issues/<uuid>_<sanitized filename>.
func ObjectPath(filename string) string {
	return objectPrefix + uuid.New().String() + "_" + sanitizeFilename(filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "")
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if name == "" || name == "." {
		name = "photo"
	}
	return name
}
