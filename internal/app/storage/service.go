/*
Package storage provides presigned-URL access to the S3-compatible bucket that
holds chat message attachments. Clients upload directly to the bucket and send
only the object key over the realtime channel.
*/
package storage

import (
	"context"
	"time"
)

// ServiceConfig holds the configuration required to reach the storage backend.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// Service is the public interface for attachment storage.
type Service interface {
	// PresignUpload generates a time-limited URL for uploading one object.
	PresignUpload(
		ctx context.Context,
		key string,
		mimeType string,
		fileSize int64,
		duration time.Duration,
	) (string, error)

	// PresignDownload generates a time-limited URL for downloading one object.
	PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error)
}

// NewService returns a Service for the given configuration.
// Only S3-compatible backends are supported.
func NewService(cfg ServiceConfig) (Service, error) {
	return newS3Client(cfg)
}
