// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/laihecha/tea-api/internal/config"
)

const defaultUploadExt = ".bin"

// StorageService stores cover images in S3 when AWS credentials are
// configured and on local disk otherwise.
type StorageService struct {
	s3Client *s3.S3
	aws      config.AWSConfig
	upload   config.UploadConfig
}

type UploadResult struct {
	URL      string `json:"url"`
	Key      string `json:"-"`
	Size     int64  `json:"-"`
	MimeType string `json:"-"`
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	s := &StorageService{aws: cfg.AWS, upload: cfg.Upload}
	if cfg.AWS.AccessKeyID == "" {
		if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create upload dir: %w", err)
		}
		return s, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	s.s3Client = s3.New(sess)
	return s, nil
}

// Local reports whether uploads land on disk and must be served by the API.
func (s *StorageService) Local() bool {
	return s.s3Client == nil
}

func (s *StorageService) MaxBytes() int64 {
	return int64(s.upload.MaxSizeMB) * 1024 * 1024
}

// Upload stores r under a random name keeping the original extension.
func (s *StorageService) Upload(ctx context.Context, filename, contentType string, r io.Reader) (*UploadResult, error) {
	limit := s.MaxBytes()
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: file exceeds %d MB", ErrBadRequest, s.upload.MaxSizeMB)
	}

	key := generateFileName(filename)
	if s.s3Client != nil {
		return s.uploadToS3(ctx, data, key, contentType)
	}
	return s.uploadToLocal(data, key, contentType)
}

func (s *StorageService) uploadToS3(ctx context.Context, data []byte, key, contentType string) (*UploadResult, error) {
	params := &s3.PutObjectInput{
		Bucket:        aws.String(s.aws.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ACL:           aws.String("public-read"),
	}
	if contentType != "" {
		params.ContentType = aws.String(contentType)
	}

	if _, err := s.s3Client.PutObjectWithContext(ctx, params); err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		URL:      s.getS3URL(key),
		Key:      key,
		Size:     int64(len(data)),
		MimeType: contentType,
	}, nil
}

func (s *StorageService) uploadToLocal(data []byte, key, contentType string) (*UploadResult, error) {
	dst := filepath.Join(s.upload.Dir, key)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}

	logrus.WithFields(logrus.Fields{"key": key, "size": len(data)}).Debug("Stored upload on disk")

	return &UploadResult{
		URL:      strings.TrimRight(s.upload.PublicURL, "/") + "/" + key,
		Key:      key,
		Size:     int64(len(data)),
		MimeType: contentType,
	}, nil
}

// KeyForURL maps a URL returned by Upload back to its storage key. ok is
// false for URLs this service did not hand out.
func (s *StorageService) KeyForURL(url string) (key string, ok bool) {
	prefix := strings.TrimRight(s.upload.PublicURL, "/") + "/"
	if s.s3Client != nil {
		prefix = s.getS3URL("")
	}
	key = strings.TrimPrefix(url, prefix)
	if key == url || key == "" || strings.Contains(key, "/") {
		return "", false
	}
	return key, true
}

func (s *StorageService) Delete(ctx context.Context, key string) error {
	if s.s3Client == nil {
		err := os.Remove(filepath.Join(s.upload.Dir, path.Base(key)))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete upload: %w", err)
		}
		return nil
	}

	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.aws.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

func generateFileName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" || ext == "." {
		ext = defaultUploadExt
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "") + ext
}

func (s *StorageService) getS3URL(key string) string {
	if s.aws.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.aws.CloudFrontURL, "/"), key)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		s.aws.S3Bucket, s.aws.Region, key)
}
