// Package media stores uploaded images on the local filesystem or in an
// S3-compatible bucket
package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrUnsupportedType = errors.New("unsupported media type")
	ErrForeignURL      = errors.New("url does not belong to this store")
)

// Store saves and removes uploaded files. Save returns the public URL.
type Store interface {
	Save(ctx context.Context, dir, contentType string, r io.Reader, size int64) (string, error)
	Delete(ctx context.Context, url string) error
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Extension returns the file extension for an accepted image type
func Extension(contentType string) (string, error) {
	ext, ok := extensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", ErrUnsupportedType
	}
	return ext, nil
}

// ObjectKey builds "<dir>/<uuid><ext>" for a new upload
func ObjectKey(dir, contentType string) (string, error) {
	ext, err := Extension(contentType)
	if err != nil {
		return "", err
	}
	return path.Join(strings.Trim(dir, "/"), uuid.NewString()+ext), nil
}

// Sniff detects the content type from the first bytes of r and returns a
// reader that still yields the whole stream
func Sniff(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, err
	}
	head = head[:n]
	return http.DetectContentType(head), io.MultiReader(bytes.NewReader(head), r), nil
}
