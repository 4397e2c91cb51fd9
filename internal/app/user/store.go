package user

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

// Sentinel errors returned by Store implementations.
var (
	// ErrDuplicateEmail indicates the email address is already registered.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrNotFound indicates no account matched the query.
	ErrNotFound = errors.New("user not found")
)

// Store is the persistence interface for accounts. Handlers depend on this
// interface so tests can substitute an in-memory implementation.
type Store interface {
	// Create inserts a new account and returns the stored record.
	Create(ctx context.Context, u *User) (*User, error)

	// GetByEmail fetches the account registered under the given email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByID fetches the account with the given hex id.
	GetByID(ctx context.Context, id string) (*User, error)

	// ListOthers returns every account except the requester's.
	ListOthers(ctx context.Context, requesterID string) ([]User, error)

	// UpdateProfile applies a partial update of username and/or avatar.
	// Empty fields are left unchanged; email is immutable through this path.
	UpdateProfile(ctx context.Context, id string, username string, avatar string) (*User, error)
}

// MongoStore is the MongoDB-backed Store over the users collection.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore constructs a MongoStore bound to the users collection.
func NewMongoStore(mdb *mongo.Database) *MongoStore {
	return &MongoStore{coll: mdb.Collection(db.UsersCollection)}
}

// Create inserts the account. A unique-index conflict on email surfaces as
// ErrDuplicateEmail.
func (s *MongoStore) Create(ctx context.Context, u *User) (*User, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	res, err := s.coll.InsertOne(ctx, u)
	if err != nil {
		if db.IsDuplicateKey(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}

	return u, nil
}

func (s *MongoStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	if err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &u, nil
}

func (s *MongoStore) GetByID(ctx context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var u User
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&u); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &u, nil
}

// ListOthers returns all accounts except the requester's, matching the chat
// sidebar listing. An unknown requester id simply excludes nothing valid.
func (s *MongoStore) ListOthers(ctx context.Context, requesterID string) ([]User, error) {
	filter := bson.M{}
	if oid, err := primitive.ObjectIDFromHex(requesterID); err == nil {
		filter["_id"] = bson.M{"$ne": oid}
	}

	cursor, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// UpdateProfile applies a partial update of username and/or avatar and returns
// the updated record.
func (s *MongoStore) UpdateProfile(ctx context.Context, id string, username string, avatar string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	set := bson.M{}
	if username != "" {
		set["username"] = username
	}
	if avatar != "" {
		set["avatar"] = avatar
	}

	if len(set) == 0 {
		return s.GetByID(ctx, id)
	}

	var updated User
	err = s.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)

	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update user profile: %w", err)
	}

	return &updated, nil
}
