// Package storage uploads profile avatars to the backend's S3-compatible
// object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cc "github.com/dmitrijs2005/connecthub/internal/client/config"
	"github.com/google/uuid"
)

// MaxAvatarSize caps uploaded avatar files.
const MaxAvatarSize = 5 * 1024 * 1024

var (
	ErrStorageDisabled = errors.New("avatar storage is not configured")
	ErrNotImage        = errors.New("file is not an image")
	ErrAvatarTooLarge  = errors.New("avatar file is too large")
	ErrEmptyAvatar     = errors.New("avatar file is empty")
)

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) putObjectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// AvatarStore writes avatar objects to one bucket and hands out their public
// URLs.
type AvatarStore struct {
	client     putObjectAPI
	bucket     string
	publicBase string
	newKey     func(userID, ext string) string
}

// NewAvatarStore builds an AvatarStore from cfg. Without S3 keys the store is
// created disabled and every upload returns ErrStorageDisabled.
func NewAvatarStore(ctx context.Context, cfg *cc.Config) (*AvatarStore, error) {
	s := &AvatarStore{
		bucket:     cfg.AvatarBucket,
		publicBase: strings.TrimRight(cfg.BackendURL, "/") + "/storage/v1/object/public/" + cfg.AvatarBucket,
		newKey:     randomKey,
	}
	if cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
		return s, nil
	}

	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	endpoint := cfg.StorageEndpoint()
	s.client = newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return s, nil
}

// Enabled reports whether uploads are possible.
func (s *AvatarStore) Enabled() bool {
	return s.client != nil
}

func randomKey(userID, ext string) string {
	return fmt.Sprintf("%s/%s%s", userID, uuid.New(), ext)
}

// UploadAvatar stores the image read from body under a fresh key in the
// user's folder and returns its public URL.
func (s *AvatarStore) UploadAvatar(ctx context.Context, userID, filename string, body io.Reader) (string, error) {
	if !s.Enabled() {
		return "", ErrStorageDisabled
	}

	data, err := io.ReadAll(io.LimitReader(body, MaxAvatarSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read avatar: %w", err)
	}
	switch {
	case len(data) == 0:
		return "", ErrEmptyAvatar
	case len(data) > MaxAvatarSize:
		return "", ErrAvatarTooLarge
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: %s", ErrNotImage, contentType)
	}

	key := s.newKey(userID, strings.ToLower(path.Ext(filename)))

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	return s.publicBase + "/" + key, nil
}
