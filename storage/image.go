package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/h2non/filetype"
)

var (
	ErrNoFile      = errors.New("no file provided")
	ErrEmptyUpload = errors.New("file is empty")
	ErrNotImage    = errors.New("not an allowed image type")
	ErrFileTooBig  = errors.New("file too large")
)

// ValidationError carries the message shown to the uploader.
type ValidationError struct {
	Err     error
	Message string
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(err error, message string) error {
	return &ValidationError{Err: err, Message: message}
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Image is an upload that passed validation. ContentType is the sniffed type.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

func (i *Image) Size() int64 { return int64(len(i.Data)) }

// ReadImage reads at most maxBytes from r and checks that both the declared and the
// sniffed content type are allowed images.
func ReadImage(r io.Reader, name, declaredType string, maxBytes int64) (*Image, error) {
	if r == nil {
		return nil, invalid(ErrNoFile, "No file provided.")
	}
	if declaredType != "" && !strings.HasPrefix(declaredType, "image/") {
		return nil, invalid(ErrNotImage, "Only image files are allowed.")
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if n == 0 {
		return nil, invalid(ErrEmptyUpload, "The file is empty.")
	}
	if n > maxBytes {
		return nil, invalid(ErrFileTooBig, fmt.Sprintf("File size cannot exceed %dMB.", maxBytes/(1024*1024)))
	}

	kind, err := filetype.Match(buf.Bytes())
	if err != nil || kind == filetype.Unknown || !allowedImageTypes[kind.MIME.Value] {
		return nil, invalid(ErrNotImage, "Only image files are allowed.")
	}

	return &Image{
		Name:        name,
		ContentType: kind.MIME.Value,
		Data:        buf.Bytes(),
	}, nil
}
