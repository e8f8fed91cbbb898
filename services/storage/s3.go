// Package storagesvc presigns object storage URLs (S3 or any S3 compatible server such as MinIO).
package storagesvc

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	"github.com/fitsenior/backend/core"
)

// swapped in tests
var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
	newS3PresignClient    = func(c *s3.Client) *s3.PresignClient { return s3.NewPresignClient(c) }
)

type s3Storage struct {
	client        *s3.PresignClient
	bucket        string
	expiry        time.Duration
	publicBaseURL string
}

var _ core.FileStorage = (*s3Storage)(nil)

func NewS3Storage(ctx context.Context, conf core.StorageConfig) (core.FileStorage, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(conf.Region)}
	if conf.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conf.AccessKey, conf.SecretKey, ""),
		))
	}
	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "loading aws config")
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if conf.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(conf.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	expiry := conf.PresignExpiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &s3Storage{
		client:        newS3PresignClient(client),
		bucket:        conf.Bucket,
		expiry:        expiry,
		publicBaseURL: strings.TrimRight(conf.PublicBaseURL, "/"),
	}, nil
}

func (s *s3Storage) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	req, err := s.client.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", errors.Wrap(err, "presigning upload")
	}
	return req.URL, nil
}

func (s *s3Storage) PresignDownload(ctx context.Context, key string) (string, error) {
	req, err := s.client.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", errors.Wrap(err, "presigning download")
	}
	return req.URL, nil
}

func (s *s3Storage) PublicURL(key string) string {
	return s.publicBaseURL + "/" + strings.TrimLeft(key, "/")
}
