package storagesvc

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitsenior/backend/core"
)

var testConf = core.StorageConfig{
	Region:        "us-east-1",
	Bucket:        "fitsenior",
	BaseEndpoint:  "http://127.0.0.1:9000",
	AccessKey:     "minioadmin",
	SecretKey:     "minioadmin",
	PublicBaseURL: "http://127.0.0.1:9000/fitsenior/",
	PresignExpiry: 10 * time.Minute,
}

func restoreConstructors(t *testing.T) {
	origLoad, origNewS3, origNewPre := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
	})
}

func TestNewS3Storage_Options(t *testing.T) {
	restoreConstructors(t)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		assert.NotNil(t, lo.Credentials)
		return aws.Config{Region: lo.Region, Credentials: lo.Credentials}, nil
	}
	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return s3.NewFromConfig(cfg, optFns...)
	}

	_, err := NewS3Storage(context.Background(), testConf)
	require.NoError(t, err)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, testConf.BaseEndpoint, *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
}

func TestNewS3Storage_ConfigError(t *testing.T) {
	restoreConstructors(t)

	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("boom")
	}
	_, err := NewS3Storage(context.Background(), testConf)
	assert.EqualError(t, err, "loading aws config: boom")
}

func TestS3Storage_Presign(t *testing.T) {
	storage, err := NewS3Storage(context.Background(), testConf)
	require.NoError(t, err)

	uploadURL, err := storage.PresignUpload(context.Background(), "avatar/u1/photo.png", "image/png")
	require.NoError(t, err)
	u, err := url.Parse(uploadURL)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", u.Host)
	assert.Equal(t, "/fitsenior/avatar/u1/photo.png", u.Path)
	assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))

	downloadURL, err := storage.PresignDownload(context.Background(), "avatar/u1/photo.png")
	require.NoError(t, err)
	assert.Contains(t, downloadURL, "/fitsenior/avatar/u1/photo.png?")

	assert.Equal(t, "http://127.0.0.1:9000/fitsenior/avatar/u1/photo.png", storage.PublicURL("/avatar/u1/photo.png"))
}
