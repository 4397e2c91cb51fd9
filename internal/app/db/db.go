/*
Package db manages the MongoDB connection shared by the credential and message stores.

It establishes the client, verifies connectivity with a ping, and bootstraps the
indexes the data model relies on (most importantly the unique index on user
email addresses, which is what enforces email uniqueness at write time).
*/
package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 15 * time.Second

// Collection names for the two persisted collections.
const (
	UsersCollection    = "users"
	MessagesCollection = "messages"
)

// Connect establishes a MongoDB client, verifies connectivity, and ensures the
// required indexes exist. It returns the client and the selected database.
func Connect(ctx context.Context, uri string, database string) (*mongo.Client, *mongo.Database, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	mdb := client.Database(database)

	if err := ensureIndexes(connectCtx, mdb); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, err
	}

	return client, mdb, nil
}

// ensureIndexes creates the indexes the stores depend on. Index creation is
// idempotent, so this runs on every startup.
func ensureIndexes(ctx context.Context, mdb *mongo.Database) error {
	_, err := mdb.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create unique email index: %w", err)
	}

	// Conversation listings filter on the (sender, receiver) pair and sort by
	// creation time; a compound index keeps that query off a collection scan.
	_, err = mdb.Collection(MessagesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "sender", Value: 1},
			{Key: "receiver", Value: 1},
			{Key: "created_at", Value: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create message conversation index: %w", err)
	}

	return nil
}
