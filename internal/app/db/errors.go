package db

import (
	"go.mongodb.org/mongo-driver/mongo"
)

// IsDuplicateKey checks if the error is a MongoDB duplicate key violation
// (unique index conflict, e.g. an already-registered email address).
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// IsNotFound checks if the error indicates that no document matched the query.
func IsNotFound(err error) bool {
	return err == mongo.ErrNoDocuments
}
