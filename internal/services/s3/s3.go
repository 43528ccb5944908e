// Package s3service reads university catalog uploads from S3.
package s3service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"admissions-engine/internal/utils"
)

const (
	// UploadPrefix is where catalog files are uploaded for import.
	UploadPrefix = "uploads/"
	// ArchivePrefix is where imported catalog files are moved.
	ArchivePrefix = "processed/"
)

// ObjectAPI is the subset of the S3 client the service uses.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Presigner is the subset of the S3 presign client the service uses.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Service handles S3 operations
type Service struct {
	client        ObjectAPI
	presigner     Presigner
	defaultBucket string
}

// NewService creates a new S3 service for the given region. defaultBucket is
// used when a call passes an empty bucket name.
func NewService(ctx context.Context, region, defaultBucket string) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return NewServiceWithClient(client, defaultBucket).WithPresigner(s3.NewPresignClient(client)), nil
}

// NewServiceWithClient wraps an existing client.
func NewServiceWithClient(client ObjectAPI, defaultBucket string) *Service {
	return &Service{client: client, defaultBucket: defaultBucket}
}

// WithPresigner enables PresignUpload.
func (s *Service) WithPresigner(p Presigner) *Service {
	s.presigner = p
	return s
}

// PresignUpload returns a URL that accepts a CSV PUT to key in the default bucket.
func (s *Service) PresignUpload(ctx context.Context, key string, expires time.Duration) (string, error) {
	if s.presigner == nil {
		return "", fmt.Errorf("presigning is not configured")
	}

	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.defaultBucket),
		Key:         aws.String(key),
		ContentType: aws.String("text/csv"),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("failed to presign upload: %w", err)
	}

	utils.GetLogger().Info("Generated presigned upload URL",
		zap.String("bucket", s.defaultBucket),
		zap.String("key", key),
	)

	return req.URL, nil
}

func (s *Service) bucket(name string) string {
	if name == "" {
		return s.defaultBucket
	}
	return name
}

// DownloadFile downloads an object and returns its content as a string.
func (s *Service) DownloadFile(ctx context.Context, bucket, key string) (string, error) {
	bucket = s.bucket(bucket)

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		utils.GetLogger().Error("Failed to download file from S3",
			zap.String("bucket", bucket),
			zap.String("key", key),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to download file: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read file content: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("file %s is empty", key)
	}

	utils.GetLogger().Info("Downloaded file from S3",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.Int("size", len(data)),
	)

	return string(data), nil
}

// ArchiveFile moves an imported object under ArchivePrefix so it is not
// imported again. Keys already archived are left alone.
func (s *Service) ArchiveFile(ctx context.Context, bucket, key string) (string, error) {
	bucket = s.bucket(bucket)
	if strings.HasPrefix(key, ArchivePrefix) {
		return key, nil
	}
	archiveKey := ArchivePrefix + key

	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(bucket),
		CopySource: aws.String(bucket + "/" + key),
		Key:        aws.String(archiveKey),
	})
	if err != nil {
		return "", fmt.Errorf("failed to copy to archive: %w", err)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to delete original: %w", err)
	}

	utils.GetLogger().Info("Archived catalog file",
		zap.String("source", key),
		zap.String("destination", archiveKey),
	)

	return archiveKey, nil
}
