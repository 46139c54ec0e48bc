package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"foodgram/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// objectAPI is the subset of the S3 client used by s3Store.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// s3Store keeps images as objects in an S3 bucket.
type s3Store struct {
	client    objectAPI
	bucket    string
	prefix    string
	publicURL string
	logger    zerolog.Logger
}

// NewS3Store creates an S3-backed image store using the default AWS
// credential chain.
func NewS3Store(ctx context.Context, cfg config.S3Config, logger zerolog.Logger) (ImageStore, error) {
	logger = logger.With().Str("component", "s3-image-store").Logger()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", cfg.Bucket).
		Str("region", cfg.Region).
		Msg("S3 image store initialised")

	return newS3Store(s3.NewFromConfig(awsCfg), cfg, logger), nil
}

func newS3Store(client objectAPI, cfg config.S3Config, logger zerolog.Logger) *s3Store {
	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &s3Store{
		client:    client,
		bucket:    cfg.Bucket,
		prefix:    cfg.Prefix,
		publicURL: publicURL,
		logger:    logger,
	}
}

func (s *s3Store) Save(ctx context.Context, img *Image) (string, error) {
	p := newImagePath(img)
	key := s.prefix + p

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(img.ContentType),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", key).
			Msg("failed to put object to S3")
		return "", fmt.Errorf("failed to upload image to S3 (bucket=%s, key=%s): %w", s.bucket, key, err)
	}

	s.logger.Debug().Str("key", key).Int("bytes", len(img.Data)).Msg("image uploaded")
	return p, nil
}

func (s *s3Store) Delete(ctx context.Context, p string) error {
	if p == "" {
		return nil
	}

	key := s.prefix + p
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image from S3 (bucket=%s, key=%s): %w", s.bucket, key, err)
	}
	return nil
}

func (s *s3Store) URL(p string) string {
	if p == "" {
		return ""
	}
	return s.publicURL + "/" + s.prefix + p
}
