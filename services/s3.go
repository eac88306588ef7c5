package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	wardrobeconfig "wardrobeapi/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var ErrStorageNotConfigured = errors.New("object storage is not configured")

var allowedImageMimeTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/heic": true,
}

type AWSServiceProvider interface {
	PresignLink(ctx context.Context, fileName string) (string, error)
	UploadToPresignedURL(ctx context.Context, url string, fileContent []byte) (int, error)
	GetPresignedR2FileReadURL(ctx context.Context, fileKey string) (string, error)
}

// AWSService talks to Cloudflare R2 through the S3 API. Only presigned URLs
// are handed out; clients upload and download photos directly.
type AWSService struct {
	S3PresignClient *s3.PresignClient
	Bucket          string
	HTTPClient      *http.Client
}

func NewAWSService(ctx context.Context, cfg wardrobeconfig.StorageConfig) (*AWSService, error) {
	awsService := &AWSService{Bucket: cfg.Bucket}
	if err := awsService.InitPresignClient(ctx, cfg); err != nil {
		return nil, err
	}
	return awsService, nil
}

func (awsService *AWSService) InitPresignClient(ctx context.Context, storage wardrobeconfig.StorageConfig) error {
	if storage.AccountID == "" || storage.Bucket == "" {
		return ErrStorageNotConfigured
	}
	r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", storage.AccountID),
		}, nil
	})
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithEndpointResolverWithOptions(r2Resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(storage.AccessKeyID, storage.AccessKeySecret, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return fmt.Errorf("unable to load SDK config: %w", err)
	}

	awsService.S3PresignClient = s3.NewPresignClient(s3.NewFromConfig(cfg))
	awsService.Bucket = storage.Bucket
	return nil
}

func (awsService *AWSService) PresignLink(ctx context.Context, fileName string) (string, error) {
	if awsService.S3PresignClient == nil {
		return "", ErrStorageNotConfigured
	}
	request, err := awsService.S3PresignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(awsService.Bucket),
		Key:    aws.String(fileName),
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign upload: %w", err)
	}
	return request.URL, nil
}

func (awsService *AWSService) GetPresignedR2FileReadURL(ctx context.Context, fileKey string) (string, error) {
	if awsService.S3PresignClient == nil {
		return "", ErrStorageNotConfigured
	}
	presignedGetRequest, err := awsService.S3PresignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(awsService.Bucket),
		Key:    aws.String(fileKey),
	}, s3.WithPresignExpires(presignedURLExpiration))
	if err != nil {
		return "", fmt.Errorf("failed to presign request: %w", err)
	}
	return presignedGetRequest.URL, nil
}

// UploadToPresignedURL PUTs an image to a presigned URL and returns the
// storage status code.
func (awsService *AWSService) UploadToPresignedURL(ctx context.Context, url string, fileContent []byte) (int, error) {
	mimeType := http.DetectContentType(fileContent)
	if !allowedImageMimeTypes[mimeType] {
		return 0, fmt.Errorf("unsupported file type: %s", mimeType)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(fileContent))
	if err != nil {
		return 0, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", mimeType)

	client := awsService.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("error uploading file: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("upload rejected with status %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}

// ClothingObjectKey names a new photo object, keeping the client's extension.
func ClothingObjectKey(fileName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if !IsAllowedImage(fileName) {
		return "", fmt.Errorf("unsupported image extension %q", ext)
	}
	return fmt.Sprintf("clothes/%s%s", uuid.NewString(), ext), nil
}
