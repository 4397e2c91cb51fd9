/*
Package randx provides helpers for generating opaque blob object keys.

Uploaded binaries are stored under uuid-derived keys so storage location is
decoupled from user-supplied names; only the sanitized file extension of the
original name survives into the key.
*/
package randx

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Key prefixes for the two blob namespaces.
const (
	// AvatarPrefix is the object-key namespace for profile pictures.
	AvatarPrefix = "avatars"

	// AttachmentPrefix is the object-key namespace for message attachments.
	AttachmentPrefix = "attachments"
)

// extChars is the character set allowed in a sanitized file extension.
const extChars = "abcdefghijklmnopqrstuvwxyz0123456789"

// SafeExt extracts a lowercase, sanitized extension (including the leading
// dot) from the given file name. Anything suspicious collapses to "".
func SafeExt(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}

	for _, char := range ext[1:] {
		if !strings.ContainsRune(extChars, char) {
			return ""
		}
	}

	return ext
}

// ObjectKey builds a fresh uuid-keyed object key under the given prefix,
// preserving only the sanitized extension of the original file name.
func ObjectKey(prefix string, fileName string) string {
	return prefix + "/" + uuid.New().String() + SafeExt(fileName)
}

// IsValidObjectKey reports whether key is a well-formed key inside the given
// prefix namespace. It rejects empty keys, foreign prefixes, and any form of
// path traversal.
func IsValidObjectKey(prefix string, key string) bool {
	if !strings.HasPrefix(key, prefix+"/") {
		return false
	}

	rest := key[len(prefix)+1:]
	if rest == "" {
		return false
	}

	if strings.Contains(rest, "/") || strings.Contains(key, "..") {
		return false
	}

	return true
}
