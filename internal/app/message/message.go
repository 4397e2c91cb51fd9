/*
Package message contains the chat message data model and its MongoDB-backed store.

A Message belongs to exactly one sender and one receiver, carries optional text
content and/or an optional attachment reference, and is immutable after insert.
Conversation retrieval is the symmetric pair-wise history sorted ascending by
creation time.
*/
package message

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"dmchat/internal/app/user"
)

// Attachment is a stable pointer to out-of-band binary content: the declared
// file name plus the location reference returned by the blob storage.
type Attachment struct {
	Name string `bson:"name" json:"name"`
	URL  string `bson:"url" json:"url"`
}

// Message represents one document in the messages collection.
// CreatedAt is assigned by the server at write time, never by the client.
type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Sender    primitive.ObjectID `bson:"sender"`
	Receiver  primitive.ObjectID `bson:"receiver"`
	Content   string             `bson:"content,omitempty"`
	File      *Attachment        `bson:"file,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
}

// View is the client-facing projection of a Message with the sender identity
// expanded for immediate rendering.
type View struct {
	ID        string       `json:"id"`
	Sender    user.Summary `json:"sender"`
	Receiver  string       `json:"receiver"`
	Content   string       `json:"content,omitempty"`
	File      *Attachment  `json:"file,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

// NewView denormalizes a stored Message with its sender's public summary.
func NewView(m *Message, sender user.Summary) View {
	return View{
		ID:        m.ID.Hex(),
		Sender:    sender,
		Receiver:  m.Receiver.Hex(),
		Content:   m.Content,
		File:      m.File,
		CreatedAt: m.CreatedAt,
	}
}
