package message

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dmchat/internal/app/db"
)

// ErrInvalidID indicates a malformed sender or receiver id.
var ErrInvalidID = errors.New("invalid user id")

// Store is the persistence interface for messages. Handlers depend on this
// interface so tests can substitute an in-memory implementation.
type Store interface {
	// Insert persists the message with a server-assigned timestamp and
	// returns the stored record.
	Insert(ctx context.Context, m *Message) (*Message, error)

	// ListConversation returns all messages exchanged between the two users
	// (in either direction), sorted ascending by creation time.
	ListConversation(ctx context.Context, userA string, userB string) ([]Message, error)
}

// MongoStore is the MongoDB-backed Store over the messages collection.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore constructs a MongoStore bound to the messages collection.
func NewMongoStore(mdb *mongo.Database) *MongoStore {
	return &MongoStore{coll: mdb.Collection(db.MessagesCollection)}
}

// Insert persists the message. The creation timestamp is always assigned here;
// whatever the caller set is overwritten.
func (s *MongoStore) Insert(ctx context.Context, m *Message) (*Message, error) {
	m.CreatedAt = time.Now().UTC()

	res, err := s.coll.InsertOne(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		m.ID = oid
	}

	return m, nil
}

// ListConversation returns the symmetric pair-wise history between userA and
// userB. The sort is explicit: store-write completion order across senders is
// not a delivery-order guarantee.
func (s *MongoStore) ListConversation(ctx context.Context, userA string, userB string) ([]Message, error) {
	a, err := primitive.ObjectIDFromHex(userA)
	if err != nil {
		return nil, ErrInvalidID
	}
	b, err := primitive.ObjectIDFromHex(userB)
	if err != nil {
		return nil, ErrInvalidID
	}

	filter := bson.M{
		"$or": bson.A{
			bson.M{"sender": a, "receiver": b},
			bson.M{"sender": b, "receiver": a},
		},
	}

	cursor, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("decode conversation: %w", err)
	}
	return messages, nil
}
