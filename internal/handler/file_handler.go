/*
Package handler provides HTTP handler functions for avatar and attachment uploads.

Uploaded binaries are streamed to blob storage under opaque uuid-derived keys;
the stable URL handed back is the only reference the data model keeps.
*/
package handler

import (
	"context"
	"net/http"
	"time"

	"dmchat/internal/app/storage"
	"dmchat/internal/pkg/auth/jwt"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/logx"
	"dmchat/internal/pkg/randx"
	"dmchat/internal/pkg/req"
	"dmchat/internal/pkg/resp"
)

// attachmentDownloadExpiry is how long a presigned attachment download URL stays valid.
const attachmentDownloadExpiry = 5 * time.Minute

// HandleUploadAvatar stores a new profile picture and points the account's
// avatar reference at it. The previous avatar blob is deleted out of band.
func HandleUploadAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if customErr := req.SetupMultipart(w, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		file, header, err := r.FormFile("avatar")
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileMissing))
			return
		}
		defer file.Close()

		if customErr := storage.ValidateFileSize(header.Size, storage.MaxAvatarSize); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		mimeType := header.Header.Get("Content-Type")
		if customErr := storage.ValidateImageType(header.Filename, mimeType); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		oldAccount, err := deps.Users.GetByID(r.Context(), identity.UserID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		key := randx.ObjectKey(randx.AvatarPrefix, header.Filename)

		if err := deps.Storage.Upload(r.Context(), key, mimeType, file); err != nil {
			logx.Error(err, "avatar upload: storage write failed", "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		if _, err := deps.Users.UpdateProfile(r.Context(), identity.UserID, "", key); err != nil {
			logx.Error(err, "avatar upload: store update failed", "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreFailure))
			return
		}

		if oldKey := oldAccount.Avatar; oldKey != "" && oldKey != key {
			go func(k string) {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = deps.Storage.Delete(ctx, k)
			}(oldKey)
		}

		resp.RespondSuccess(w, r, map[string]any{
			"url": deps.FullAssetURL(key),
		})
	}
}

// HandleUploadAttachment stores a message attachment and returns its stable
// reference. It does not create a Message; that is a separate call carrying
// the returned reference.
func HandleUploadAttachment(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if customErr := req.SetupMultipart(w, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileMissing))
			return
		}
		defer file.Close()

		if customErr := storage.ValidateFileSize(header.Size, storage.MaxAttachmentSize); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		mimeType := header.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}

		key := randx.ObjectKey(randx.AttachmentPrefix, header.Filename)

		if err := deps.Storage.Upload(r.Context(), key, mimeType, file); err != nil {
			logx.Error(err, "attachment upload: storage write failed", "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"url":  deps.FullAssetURL(key),
			"name": header.Filename,
		})
	}
}

// HandleDownloadAttachment redirects to a time-limited presigned URL for the
// attachment key given in the "k" query parameter.
func HandleDownloadAttachment(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		key := r.URL.Query().Get("k")
		if !randx.IsValidObjectKey(randx.AttachmentPrefix, key) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		url, err := deps.Storage.PresignDownload(r.Context(), key, attachmentDownloadExpiry)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		http.Redirect(w, r, url, http.StatusFound)
	}
}
