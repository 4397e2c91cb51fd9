/*
Package handler provides HTTP handler functions for the durable chat API:
conversation history retrieval and message submission.
*/
package handler

import (
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"dmchat/internal/app/chat"
	"dmchat/internal/app/message"
	"dmchat/internal/app/user"
	"dmchat/internal/pkg/auth/jwt"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/logx"
	"dmchat/internal/pkg/req"
	"dmchat/internal/pkg/resp"
)

// HandleListMessages returns the conversation between the requester and the
// user named in the userId query parameter, ascending by creation time, with
// every message's sender identity expanded.
func HandleListMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		otherID := r.URL.Query().Get("userId")
		if otherID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		other, err := deps.Users.GetByID(r.Context(), otherID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
				return
			}
			logx.Error(err, "list_messages: user fetch failed", "other_id", otherID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreFailure))
			return
		}

		requester, err := deps.Users.GetByID(r.Context(), identity.UserID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		messages, err := deps.Messages.ListConversation(r.Context(), identity.UserID, otherID)
		if err != nil {
			logx.Error(err, "list_messages: conversation query failed", "other_id", otherID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreFailure))
			return
		}

		// Only two senders are possible in a pair-wise conversation.
		summaries := map[string]user.Summary{
			requester.ID.Hex(): deps.userSummary(requester),
			other.ID.Hex():     deps.userSummary(other),
		}

		views := make([]message.View, 0, len(messages))
		for i := range messages {
			m := &messages[i]
			views = append(views, message.NewView(m, summaries[m.Sender.Hex()]))
		}

		resp.RespondSuccess(w, r, map[string]any{
			"messages": views,
		})
	}
}

type PostMessageInput struct {
	Receiver string              `json:"receiver"`
	Content  string              `json:"content,omitempty"`
	File     *message.Attachment `json:"file,omitempty"`
}

// HandlePostMessage is the durable write path. The message is persisted first;
// only then is a best-effort relay handed to the gateway, so persistence never
// depends on live delivery succeeding.
func HandlePostMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input PostMessageInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Content == "" && input.File == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrMessageEmpty))
			return
		}

		if len(input.Content) > chat.MaxContentBytes {
			resp.RespondError(w, r, errs.NewError(errs.ErrMessageContentTooLong))
			return
		}

		receiver, err := deps.Users.GetByID(r.Context(), input.Receiver)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrReceiverNotFound))
				return
			}
			logx.Error(err, "post_message: receiver fetch failed", "receiver_id", input.Receiver)
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreFailure))
			return
		}

		sender, err := deps.Users.GetByID(r.Context(), identity.UserID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		senderOID, err := primitive.ObjectIDFromHex(identity.UserID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		stored, err := deps.Messages.Insert(r.Context(), &message.Message{
			Sender:   senderOID,
			Receiver: receiver.ID,
			Content:  input.Content,
			File:     input.File,
		})
		if err != nil {
			logx.Error(err, "post_message: insert failed", "receiver_id", input.Receiver)
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreFailure))
			return
		}

		view := message.NewView(stored, deps.userSummary(sender))

		// Best-effort live delivery after the durable write.
		deps.Gateway.Relay(identity.UserID, view)

		resp.RespondCreated(w, r, map[string]any{
			"message": view,
		})
	}
}
