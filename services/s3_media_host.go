package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/bagusrestoration/bengkel-progress-api/config"
	"github.com/bagusrestoration/bengkel-progress-api/logger"
	"github.com/bagusrestoration/bengkel-progress-api/utils"
	"go.uber.org/zap"
)

// S3API is the subset of the S3 client used for job photos
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3MediaHost stores job photos in a public-read S3 bucket
type S3MediaHost struct {
	client        S3API
	bucket        string
	publicBaseURL string
	now           func() time.Time
}

// NewS3MediaHost loads AWS configuration and creates the media host.
// Static credentials are used when configured, otherwise the default chain.
func NewS3MediaHost(ctx context.Context, cfg *config.Config) (*S3MediaHost, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)))
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig)
	return NewS3MediaHostWithClient(client, cfg.AWSS3Bucket, cfg.AWSRegion, cfg.AWSS3PublicBaseURL), nil
}

// NewS3MediaHostWithClient wires an existing client. An empty publicBaseURL
// falls back to the virtual-hosted bucket URL.
func NewS3MediaHostWithClient(client S3API, bucket, region, publicBaseURL string) *S3MediaHost {
	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &S3MediaHost{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		now:           time.Now,
	}
}

// Upload puts the photo under jobs/ and returns its public URL
func (h *S3MediaHost) Upload(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	// Format: jobs/{unix nanos}_{filename}
	filename := strings.ReplaceAll(filepath.Base(fileHeader.Filename), " ", "_")
	key := fmt.Sprintf("jobs/%d_%s", h.now().UnixNano(), filename)

	contentType, ok := utils.ImageContentType(filename)
	if !ok {
		contentType = "application/octet-stream"
	}

	_, err = h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(h.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return h.publicBaseURL + "/" + key, nil
}

// Delete removes the object behind a URL this host produced; other URLs are ignored
func (h *S3MediaHost) Delete(ctx context.Context, url string) error {
	key, ok := h.keyFor(url)
	if !ok {
		logger.WithContext(ctx).Debug("skipping delete of foreign photo url", zap.String("url", url))
		return nil
	}

	_, err := h.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

func (h *S3MediaHost) keyFor(url string) (string, bool) {
	prefix := h.publicBaseURL + "/"
	if url == "" || !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	return key, key != ""
}
