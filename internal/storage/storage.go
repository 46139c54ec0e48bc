// Package storage keeps recipe images on local disk or in S3.
package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"path"
	"strings"

	"foodgram/internal/config"
	"foodgram/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MaxImageSize bounds decoded image payloads.
const MaxImageSize = 10 << 20

// imageDir is the directory recipe images are stored under.
const imageDir = "recipes/images"

var extensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Image is a decoded recipe image.
type Image struct {
	Data        []byte
	ContentType string
}

// Ext returns the file extension for the image content type.
func (i *Image) Ext() string {
	return extensions[i.ContentType]
}

// ImageStore persists images and resolves their public URLs.
type ImageStore interface {
	// Save stores img and returns its storage path.
	Save(ctx context.Context, img *Image) (string, error)

	// Delete removes the image at path. Missing images are not an error.
	Delete(ctx context.Context, path string) error

	// URL returns the URL the image at path is served from.
	URL(path string) string
}

// DecodeDataURI decodes a "data:image/<type>;base64,<payload>" string.
// The content type is sniffed from the payload, not trusted from the header.
func DecodeDataURI(uri string) (*Image, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return nil, model.ErrInvalidImage
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageSize {
		return nil, model.ErrInvalidImage
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil || len(data) == 0 {
		return nil, model.ErrInvalidImage
	}

	contentType := http.DetectContentType(data)
	if _, ok := extensions[contentType]; !ok {
		return nil, model.ErrInvalidImage
	}

	return &Image{Data: data, ContentType: contentType}, nil
}

// newImagePath returns a fresh storage path for img.
func newImagePath(img *Image) string {
	return path.Join(imageDir, uuid.NewString()+"."+img.Ext())
}

// New creates the image store selected by cfg.Storage.Backend.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (ImageStore, error) {
	switch cfg.Storage.Backend {
	case "local":
		return NewFileStore(cfg.Storage.MediaRoot, cfg.Storage.MediaURL, logger)
	case "s3":
		return NewS3Store(ctx, cfg.S3, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}
}
