/*
Package user contains the identity data model and its MongoDB-backed store.

A User is an account record in the users collection. The Summary type is the
public projection handed to clients; it never carries the password hash.
*/
package user

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents one account document in the users collection.
// PasswordHash is absent for federated-login accounts, and FederatedID is
// absent for password accounts; the store does not hard-enforce exclusivity.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash,omitempty"`
	Avatar       string             `bson:"avatar,omitempty"`
	FederatedID  string             `bson:"federated_id,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
}

// Summary is the public projection of a User, safe to return to any
// authenticated client.
type Summary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
}

// Summary projects the account to its public fields.
func (u *User) Summary() Summary {
	return Summary{
		ID:       u.ID.Hex(),
		Username: u.Username,
		Email:    u.Email,
		Avatar:   u.Avatar,
	}
}
