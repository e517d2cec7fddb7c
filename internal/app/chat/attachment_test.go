package chat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"uchat/internal/pkg/errs"
)

func TestValidateAttachmentSize(t *testing.T) {
	require.Nil(t, ValidateAttachmentSize(1))
	require.Nil(t, ValidateAttachmentSize(MaxAttachmentSize))

	tooLarge := ValidateAttachmentSize(MaxAttachmentSize + 1)
	require.NotNil(t, tooLarge)
	require.Equal(t, errs.ErrFileSizeTooLarge, tooLarge.Code)

	require.NotNil(t, ValidateAttachmentSize(0))
	require.NotNil(t, ValidateAttachmentSize(-1))
}

func TestValidateAttachmentType(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		mimeType string
		wantErr  bool
	}{
		{name: "jpeg", fileName: "photo.jpg", mimeType: "image/jpeg", wantErr: false},
		{name: "jpeg alt extension", fileName: "photo.jpeg", mimeType: "image/jpeg", wantErr: false},
		{name: "png", fileName: "shot.png", mimeType: "image/png", wantErr: false},
		{name: "uppercase mime", fileName: "shot.png", mimeType: "IMAGE/PNG", wantErr: false},
		{name: "gif", fileName: "loop.gif", mimeType: "image/gif", wantErr: false},
		{name: "webp", fileName: "pic.webp", mimeType: "image/webp", wantErr: false},
		{name: "mime not allowed", fileName: "doc.pdf", mimeType: "application/pdf", wantErr: true},
		{name: "extension mime mismatch", fileName: "photo.png", mimeType: "image/jpeg", wantErr: true},
		{name: "no extension", fileName: "photo", mimeType: "image/jpeg", wantErr: true},
		{name: "unknown extension", fileName: "photo.bmp", mimeType: "image/jpeg", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateAttachmentType(tc.fileName, tc.mimeType)
			if tc.wantErr {
				require.NotNil(t, err)
				require.Equal(t, errs.ErrAttachmentTypeInvalid, err.Code)
			} else {
				require.Nil(t, err)
			}
		})
	}
}

func TestValidAttachmentKey(t *testing.T) {
	require.True(t, ValidAttachmentKey("chat/abc.png"))
	require.False(t, ValidAttachmentKey("chat/"))
	require.False(t, ValidAttachmentKey(""))
	require.False(t, ValidAttachmentKey("avatars/abc.png"))
	require.False(t, ValidAttachmentKey("abc.png"))
}
