package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"uchat/internal/app/chat"
	"uchat/internal/pkg/auth/jwt"
	"uchat/internal/pkg/errs"
	"uchat/internal/pkg/logx"
	"uchat/internal/pkg/req"
	"uchat/internal/pkg/resp"
)

// PresignUploadRequest is the payload for requesting an attachment upload URL.
type PresignUploadRequest struct {
	FileName string `json:"fileName" validate:"required,max=255"`
	MimeType string `json:"mimeType" validate:"required"`
	FileSize int64  `json:"fileSize" validate:"required,gt=0"`
}

// PresignUploadResponse carries the upload URL and the object key the client
// must attach to its chat message.
type PresignUploadResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// PresignDownloadResponse carries a time-limited download URL.
type PresignDownloadResponse struct {
	URL string `json:"url"`
}

// HandlePresignUpload validates the attachment metadata and returns a
// presigned upload URL plus the bucket key to store on the message.
func HandlePresignUpload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Storage == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageDisabled))
			return
		}

		if jwt.GetPayloadFromContext(r) == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var body PresignUploadRequest
		if bindErr := req.BindJSON(w, r, &body); bindErr != nil {
			resp.RespondError(w, r, bindErr)
			return
		}

		if err := validate.Struct(body); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if sizeErr := chat.ValidateAttachmentSize(body.FileSize); sizeErr != nil {
			resp.RespondError(w, r, sizeErr)
			return
		}

		if typeErr := chat.ValidateAttachmentType(body.FileName, body.MimeType); typeErr != nil {
			resp.RespondError(w, r, typeErr)
			return
		}

		ext := strings.ToLower(filepath.Ext(body.FileName))
		key := chat.AttachmentKeyPrefix + uuid.NewString() + ext

		url, err := deps.Storage.PresignUpload(
			r.Context(),
			key,
			strings.ToLower(body.MimeType),
			body.FileSize,
			chat.PresignedURLDuration,
		)
		if err != nil {
			logx.Error(err, "Failed to presign attachment upload", "key", key)
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, "ok", PresignUploadResponse{URL: url, Key: key})
	}
}

// HandlePresignDownload returns a presigned download URL for the attachment
// key given in the query string.
func HandlePresignDownload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Storage == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageDisabled))
			return
		}

		key := r.URL.Query().Get("key")
		if !chat.ValidAttachmentKey(key) {
			resp.RespondError(w, r, errs.NewError(errs.ErrAttachmentKeyInvalid))
			return
		}

		url, err := deps.Storage.PresignDownload(r.Context(), key, chat.PresignedURLDuration)
		if err != nil {
			logx.Error(err, "Failed to presign attachment download", "key", key)
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, "ok", PresignDownloadResponse{URL: url})
	}
}
