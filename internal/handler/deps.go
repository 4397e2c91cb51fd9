package handler

import (
	"fmt"
	"strings"

	"dmchat/internal/app/chat"
	"dmchat/internal/app/message"
	"dmchat/internal/app/storage"
	"dmchat/internal/app/user"
	"dmchat/internal/configs"
	"dmchat/internal/pkg/randx"
)

// AppDeps bundles the dependencies every handler draws from.
type AppDeps struct {
	Gateway  *chat.Gateway
	Config   *configs.AppConfig
	Users    user.Store
	Messages message.Store
	Storage  storage.StorageService
}

// FullAssetURL builds the stable public URL for a stored object key.
// Keys that already look like absolute URLs pass through untouched.
func (d *AppDeps) FullAssetURL(key string) string {
	if key == "" {
		return ""
	}

	if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key
	}

	return d.Config.S3PublicBaseURL + "/" + key
}

// NormalizeAssetKey reduces a client-supplied avatar value (URL or bare key)
// to the stored object key. Keys outside the avatar namespace are rejected.
func (d *AppDeps) NormalizeAssetKey(value string) (string, error) {
	if value == "" {
		return "", nil
	}

	key := strings.TrimPrefix(value, d.Config.S3PublicBaseURL+"/")

	if !randx.IsValidObjectKey(randx.AvatarPrefix, key) {
		return "", fmt.Errorf("asset key %q outside the avatar namespace", key)
	}

	return key, nil
}

// userSummary projects a user to its public summary with the avatar key
// expanded to a full URL.
func (d *AppDeps) userSummary(u *user.User) user.Summary {
	summary := u.Summary()
	summary.Avatar = d.FullAssetURL(summary.Avatar)
	return summary
}
