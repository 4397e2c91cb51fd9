/*
Package handler provides HTTP handler functions for user authentication and management.
*/
package handler

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"dmchat/internal/app/user"
	"dmchat/internal/pkg/auth/jwt"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/logx"
	"dmchat/internal/pkg/req"
	"dmchat/internal/pkg/resp"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_ .-]{2,32}$`)
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister processes the request to create a new account. Only the
// salted bcrypt hash of the password is ever stored.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input RegisterInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !usernameRegex.MatchString(input.Username) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidUsername))
			return
		}

		if !emailRegex.MatchString(input.Email) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidEmail))
			return
		}

		passwordLen := utf8.RuneCountInString(input.Password)
		if passwordLen < 6 || passwordLen > 50 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		_, err = deps.Users.Create(r.Context(), &user.User{
			Username:     input.Username,
			Email:        input.Email,
			PasswordHash: string(hashedPassword),
		})

		if err != nil {
			if errors.Is(err, user.ErrDuplicateEmail) {
				logx.Warn("registration conflict: email already exists")
				resp.RespondError(w, r, errs.NewError(errs.ErrDuplicateEmail))
				return
			}

			logx.Error(err, "failed to create user in store")
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreFailure))
			return
		}

		resp.RespondCreated(w, r, nil)
	}
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and issues a signed identity token.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LoginInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		account, err := deps.Users.GetByEmail(r.Context(), input.Email)
		if err != nil {
			if !errors.Is(err, user.ErrNotFound) {
				logx.Error(err, "login: user fetch failed")
				resp.RespondError(w, r, errs.NewError(errs.ErrStoreFailure))
				return
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if account.PasswordHash == "" {
			// Federated account with no password; same opaque failure.
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
			logx.Warn("login: password mismatch", "user_id", account.ID.Hex())
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		token, err := jwt.GenerateToken(account.ID.Hex(), deps.Config.JWTSecret, jwt.UserIdentityExpiration)
		if err != nil {
			logx.Error(err, "login: jwt generation failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"token": token,
			"user":  deps.userSummary(account),
		})
	}
}

// HandleGetProfile returns the authenticated account's public projection.
func HandleGetProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		account, err := deps.Users.GetByID(r.Context(), identity.UserID)
		if err != nil {
			logx.Warn("get_profile: account not found", "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user": deps.userSummary(account),
		})
	}
}

type UpdateProfileInput struct {
	Username string `json:"username,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// HandleUpdateProfile applies a partial update of username and/or avatar.
// Email is immutable through this path. A replaced avatar blob is deleted
// out of band.
func HandleUpdateProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input UpdateProfileInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Username != "" && !usernameRegex.MatchString(input.Username) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidUsername))
			return
		}

		avatarKey, err := deps.NormalizeAssetKey(input.Avatar)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		oldAccount, err := deps.Users.GetByID(r.Context(), identity.UserID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		updated, err := deps.Users.UpdateProfile(r.Context(), identity.UserID, input.Username, avatarKey)
		if err != nil {
			logx.Error(err, "update_profile: store update failed", "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreFailure))
			return
		}

		oldKey := oldAccount.Avatar
		if avatarKey != "" && oldKey != "" && oldKey != avatarKey {
			go func(k string) {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = deps.Storage.Delete(ctx, k)
			}(oldKey)
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user": deps.userSummary(updated),
		})
	}
}

// HandleListUsers returns every registered account except the requester's,
// projected to public fields only.
func HandleListUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		others, err := deps.Users.ListOthers(r.Context(), identity.UserID)
		if err != nil {
			logx.Error(err, "list_users: store query failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreFailure))
			return
		}

		summaries := make([]user.Summary, 0, len(others))
		for i := range others {
			summaries = append(summaries, deps.userSummary(&others[i]))
		}

		resp.RespondSuccess(w, r, map[string]any{
			"users": summaries,
		})
	}
}
