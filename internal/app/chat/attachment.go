package chat

import (
	"path/filepath"
	"strings"
	"time"

	"uchat/internal/pkg/errs"
)

const (
	// MaxAttachmentSizeMB is the maximum allowed attachment size in megabytes.
	MaxAttachmentSizeMB = 5

	// MaxAttachmentSize is the maximum allowed attachment size in bytes.
	MaxAttachmentSize = MaxAttachmentSizeMB * 1024 * 1024

	// PresignedURLDuration is how long a presigned upload/download URL stays valid.
	PresignedURLDuration = 5 * time.Minute

	// AttachmentKeyPrefix namespaces every chat attachment key in the bucket.
	AttachmentKeyPrefix = "chat/"
)

// AllowedMIMETypes defines the permitted MIME types for message attachments.
var AllowedMIMETypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// ExtToMIME maps file extensions to their corresponding MIME types.
var ExtToMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// ValidateAttachmentSize checks that the file size is positive and within limits.
func ValidateAttachmentSize(fileSize int64) *errs.CustomError {
	if fileSize <= 0 {
		return errs.NewError(errs.ErrInvalidParams)
	}

	if fileSize > MaxAttachmentSize {
		return errs.NewError(errs.ErrFileSizeTooLarge)
	}

	return nil
}

// ValidateAttachmentType checks that the file name extension and MIME type are
// allowed and agree with each other.
func ValidateAttachmentType(fileName string, mimeType string) *errs.CustomError {
	lowerMimeType := strings.ToLower(mimeType)

	if _, ok := AllowedMIMETypes[lowerMimeType]; !ok {
		return errs.NewError(errs.ErrAttachmentTypeInvalid)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" || len(ext) < 2 {
		return errs.NewError(errs.ErrAttachmentTypeInvalid)
	}

	expectedMIME, ok := ExtToMIME[ext]
	if !ok {
		return errs.NewError(errs.ErrAttachmentTypeInvalid)
	}

	if expectedMIME != lowerMimeType {
		return errs.NewError(errs.ErrAttachmentTypeInvalid)
	}

	return nil
}

// ValidAttachmentKey reports whether the storage key lives in the chat
// attachment namespace.
func ValidAttachmentKey(key string) bool {
	return strings.HasPrefix(key, AttachmentKeyPrefix) && len(key) > len(AttachmentKeyPrefix)
}
