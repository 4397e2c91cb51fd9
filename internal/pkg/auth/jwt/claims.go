package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the structure of the JSON Web Token (JWT) claims for dmchat.
// It carries the standard claims required by the JWT specification plus the
// single custom claim the server needs: the authenticated user's id.
type Payload struct {
	// StandardClaims embeds the necessary JWT standard fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer). These are crucial for token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// UserID is the identifier of the account this token was minted for. Every
	// REST request and every real-time connection resolves to exactly this id.
	UserID string `json:"id"`
}
