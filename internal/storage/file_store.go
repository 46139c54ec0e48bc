package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// fileStore keeps images below a local media root.
type fileStore struct {
	root    string
	baseURL string
	logger  zerolog.Logger
}

// NewFileStore creates an image store rooted at root and served at baseURL.
func NewFileStore(root, baseURL string, logger zerolog.Logger) (ImageStore, error) {
	if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(imageDir)), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}

	return &fileStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With().Str("component", "file-image-store").Logger(),
	}, nil
}

func (s *fileStore) Save(_ context.Context, img *Image) (string, error) {
	p := newImagePath(img)

	if err := os.WriteFile(s.fullPath(p), img.Data, 0o644); err != nil {
		s.logger.Error().Err(err).Str("path", p).Msg("failed to write image")
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	s.logger.Debug().Str("path", p).Int("bytes", len(img.Data)).Msg("image saved")
	return p, nil
}

func (s *fileStore) Delete(_ context.Context, p string) error {
	if p == "" {
		return nil
	}

	err := os.Remove(s.fullPath(p))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete image %s: %w", p, err)
	}
	return nil
}

func (s *fileStore) URL(p string) string {
	if p == "" {
		return ""
	}
	return s.baseURL + "/" + p
}

// fullPath resolves p below the root; ".." segments cannot escape it.
func (s *fileStore) fullPath(p string) string {
	return filepath.Join(s.root, filepath.FromSlash(path.Clean("/"+p)))
}
