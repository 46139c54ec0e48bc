package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"foodgram/internal/config"
	"foodgram/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))))
	return buf.Bytes()
}

func dataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func TestDecodeDataURI(t *testing.T) {
	raw := pngBytes(t)

	img, err := DecodeDataURI(dataURI("image/png", raw))
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, "png", img.Ext())
	assert.Equal(t, raw, img.Data)

	// The declared type is ignored in favour of the sniffed one.
	img, err = DecodeDataURI(dataURI("image/jpeg", raw))
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
}

func TestDecodeDataURI_Invalid(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{name: "Empty", uri: ""},
		{name: "No comma", uri: "data:image/png;base64"},
		{name: "Not a data URI", uri: "https://example.com/a.png"},
		{name: "Not base64 encoded", uri: "data:image/png,abc"},
		{name: "Not an image type", uri: dataURI("text/plain", []byte("hello"))},
		{name: "Bad base64", uri: "data:image/png;base64,!!!"},
		{name: "Empty payload", uri: "data:image/png;base64,"},
		{name: "Text payload", uri: dataURI("image/png", []byte("plain text, not an image"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeDataURI(tt.uri)
			assert.Nil(t, img)
			assert.True(t, errors.Is(err, model.ErrInvalidImage))
		})
	}
}

func TestFileStore(t *testing.T) {
	root := t.TempDir()
	store, err := NewFileStore(root, "/media/", zerolog.Nop())
	require.NoError(t, err)

	ctx := context.Background()
	img := &Image{Data: pngBytes(t), ContentType: "image/png"}

	p, err := store.Save(ctx, img)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, "recipes/images/"))
	assert.True(t, strings.HasSuffix(p, ".png"))

	saved, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(p)))
	require.NoError(t, err)
	assert.Equal(t, img.Data, saved)

	assert.Equal(t, "/media/"+p, store.URL(p))
	assert.Equal(t, "", store.URL(""))

	require.NoError(t, store.Delete(ctx, p))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(p)))
	assert.True(t, os.IsNotExist(err))

	// Deleting twice is fine.
	require.NoError(t, store.Delete(ctx, p))
	require.NoError(t, store.Delete(ctx, ""))
}

func TestFileStore_PathsStayBelowRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewFileStore(root, "/media", zerolog.Nop())
	require.NoError(t, err)

	fs := store.(*fileStore)
	assert.Equal(t, filepath.Join(root, "etc", "passwd"), fs.fullPath("../../etc/passwd"))
}

type mockObjectAPI struct {
	mock.Mock
}

func (m *mockObjectAPI) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func (m *mockObjectAPI) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.DeleteObjectOutput), args.Error(1)
}

func TestS3Store_Save(t *testing.T) {
	api := new(mockObjectAPI)
	store := newS3Store(api, config.S3Config{Bucket: "bucket", Region: "eu-west-1", Prefix: "media/"}, zerolog.Nop())
	ctx := context.Background()

	api.On("PutObject", ctx, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "bucket" &&
			strings.HasPrefix(aws.ToString(in.Key), "media/recipes/images/") &&
			aws.ToString(in.ContentType) == "image/png"
	})).Return(&s3.PutObjectOutput{}, nil)

	p, err := store.Save(ctx, &Image{Data: pngBytes(t), ContentType: "image/png"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, "recipes/images/"))
	assert.Equal(t, "https://bucket.s3.eu-west-1.amazonaws.com/media/"+p, store.URL(p))

	api.AssertExpectations(t)
}

func TestS3Store_SaveError(t *testing.T) {
	api := new(mockObjectAPI)
	store := newS3Store(api, config.S3Config{Bucket: "bucket", Region: "eu-west-1"}, zerolog.Nop())
	ctx := context.Background()

	api.On("PutObject", ctx, mock.Anything).Return(nil, errors.New("access denied"))

	p, err := store.Save(ctx, &Image{Data: []byte("x"), ContentType: "image/gif"})
	assert.Error(t, err)
	assert.Empty(t, p)
	assert.Contains(t, err.Error(), "access denied")
}

func TestS3Store_Delete(t *testing.T) {
	api := new(mockObjectAPI)
	store := newS3Store(api, config.S3Config{
		Bucket:    "bucket",
		Region:    "eu-west-1",
		Prefix:    "media/",
		PublicURL: "https://cdn.example.com/",
	}, zerolog.Nop())
	ctx := context.Background()

	api.On("DeleteObject", ctx, mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
		return aws.ToString(in.Key) == "media/recipes/images/a.png"
	})).Return(&s3.DeleteObjectOutput{}, nil)

	require.NoError(t, store.Delete(ctx, "recipes/images/a.png"))
	require.NoError(t, store.Delete(ctx, ""))
	assert.Equal(t, "https://cdn.example.com/media/recipes/images/a.png", store.URL("recipes/images/a.png"))

	api.AssertExpectations(t)
	api.AssertNumberOfCalls(t, "DeleteObject", 1)
}

func TestNew(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Backend: "local", MediaRoot: t.TempDir(), MediaURL: "/media/"}}
	store, err := New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &fileStore{}, store)

	cfg.Storage.Backend = "ftp"
	_, err = New(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}
