package randx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeExt(t *testing.T) {
	assert.Equal(t, ".png", SafeExt("photo.png"))
	assert.Equal(t, ".jpeg", SafeExt("Photo.JPEG"))
	assert.Equal(t, ".pdf", SafeExt("archive.tar.pdf"))

	assert.Equal(t, "", SafeExt("no_extension"))
	assert.Equal(t, "", SafeExt("trailing."))
	assert.Equal(t, "", SafeExt("weird.p/ng"))
	assert.Equal(t, "", SafeExt("huge.thisextensionistoolong"))
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey(AvatarPrefix, "me.png")

	assert.True(t, strings.HasPrefix(key, AvatarPrefix+"/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	// Keys must be unique per call regardless of the input name.
	other := ObjectKey(AvatarPrefix, "me.png")
	assert.NotEqual(t, key, other)
}

func TestIsValidObjectKey(t *testing.T) {
	key := ObjectKey(AttachmentPrefix, "doc.pdf")
	assert.True(t, IsValidObjectKey(AttachmentPrefix, key))

	assert.False(t, IsValidObjectKey(AttachmentPrefix, ""))
	assert.False(t, IsValidObjectKey(AttachmentPrefix, "attachments/"))
	assert.False(t, IsValidObjectKey(AttachmentPrefix, "avatars/abc.png"))
	assert.False(t, IsValidObjectKey(AttachmentPrefix, "attachments/a/b.png"))
	assert.False(t, IsValidObjectKey(AttachmentPrefix, "attachments/../users.bson"))
}
