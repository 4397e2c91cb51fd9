package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dmchat/internal/pkg/errs"
)

func TestValidateFileSize(t *testing.T) {
	assert.Nil(t, ValidateFileSize(1024, MaxAvatarSize))
	assert.Nil(t, ValidateFileSize(MaxAvatarSize, MaxAvatarSize))

	err := ValidateFileSize(0, MaxAvatarSize)
	require.NotNil(t, err)
	assert.Equal(t, errs.ErrInvalidParams, err.Code)

	err = ValidateFileSize(-1, MaxAvatarSize)
	require.NotNil(t, err)
	assert.Equal(t, errs.ErrInvalidParams, err.Code)

	err = ValidateFileSize(MaxAvatarSize+1, MaxAvatarSize)
	require.NotNil(t, err)
	assert.Equal(t, errs.ErrFileSizeTooLarge, err.Code)
}

func TestValidateImageType(t *testing.T) {
	assert.Nil(t, ValidateImageType("me.png", "image/png"))
	assert.Nil(t, ValidateImageType("me.jpeg", "image/jpeg"))
	assert.Nil(t, ValidateImageType("me.jpg", "image/jpeg"))

	// MIME comparison is case-insensitive.
	assert.Nil(t, ValidateImageType("me.png", "IMAGE/PNG"))

	cases := []struct {
		name     string
		fileName string
		mimeType string
	}{
		{"disallowed mime", "report.pdf", "application/pdf"},
		{"no extension", "avatar", "image/png"},
		{"unknown extension", "me.tiff", "image/png"},
		{"extension mime mismatch", "me.gif", "image/png"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateImageType(tc.fileName, tc.mimeType)
			require.NotNil(t, err)
			assert.Equal(t, errs.ErrFileTypeInvalid, err.Code)
		})
	}
}
