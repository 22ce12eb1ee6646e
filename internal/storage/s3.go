package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	appcfg "stockroom/internal/config"
	"stockroom/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Storage puts uploads into an S3-compatible bucket (AWS or MinIO via the
// endpoint override) and returns the object URL.
type S3Storage struct {
	client   *s3.Client
	bucket   string
	endpoint string
	region   string
}

func NewS3Storage(ctx context.Context, cfg *appcfg.Config) (*S3Storage, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client:   client,
		bucket:   cfg.S3Bucket,
		endpoint: strings.TrimRight(cfg.S3Endpoint, "/"),
		region:   cfg.S3Region,
	}, nil
}

func storageKey(name string) string {
	d := time.Now()
	return fmt.Sprintf("products/%d/%02d/%v%s", d.Year(), d.Month(), uuid.New(), path.Ext(name))
}

func (s *S3Storage) Save(ctx context.Context, up Upload) (*models.FileInfo, error) {
	key := storageKey(up.Name)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          up.Body,
		ContentType:   aws.String(up.MIME),
		ContentLength: aws.Int64(up.Size),
	})
	if err != nil {
		return nil, err
	}

	return &models.FileInfo{
		FileName: up.Name,
		FilePath: s.objectURL(key),
		FileType: up.MIME,
		FileSize: FormatSize(up.Size, 2),
	}, nil
}

func (s *S3Storage) objectURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
