package media_storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/khoahotran/screenvault/internal/application/service"
	"github.com/khoahotran/screenvault/internal/config"
	"github.com/khoahotran/screenvault/pkg/logger"
)

type s3Adapter struct {
	client *s3.Client
	bucket string
	logger logger.Logger
}

func NewS3Adapter(ctx context.Context, cfg config.Config, log logger.Logger) (service.FileStorage, error) {
	if strings.TrimSpace(cfg.S3.Bucket) == "" {
		return nil, errors.New("s3 storage: bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3.Region),
	}
	if cfg.S3.AccessKeyID != "" && cfg.S3.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
			o.UsePathStyle = true
		}
	})

	log.Info("Initialize S3 storage successfully.", zap.String("bucket", cfg.S3.Bucket))
	return &s3Adapter{client: client, bucket: cfg.S3.Bucket, logger: log}, nil
}

// Delete removes the object behind a public URL. S3 treats a missing key as success.
func (a *s3Adapter) Delete(ctx context.Context, fileURL string) error {
	key, err := objectKeyFromURL(fileURL, a.bucket)
	if err != nil {
		return err
	}

	_, err = a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 storage delete %s: %w", key, err)
	}

	a.logger.Info("Deleted S3 object", zap.String("bucket", a.bucket), zap.String("key", key))
	return nil
}

// objectKeyFromURL accepts virtual-hosted and path-style URLs as well as bare keys.
func objectKeyFromURL(raw, bucket string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid object url %q: %w", raw, err)
	}

	key := strings.TrimLeft(u.Path, "/")
	if u.Host != "" && !strings.HasPrefix(u.Host, bucket+".") {
		key = strings.TrimPrefix(key, bucket+"/")
	}
	if key == "" {
		return "", fmt.Errorf("empty object key in %q", raw)
	}
	return key, nil
}
