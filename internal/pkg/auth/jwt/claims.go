package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the JWT claims issued to authenticated users.
type Payload struct {
	// StandardClaims embeds the JWT standard fields such as Exp, Iat and Iss,
	// required for token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// UserID is the identifier of the user the token was issued to.
	UserID int64 `json:"user_id"`

	// Nickname is the user's display name at issue time.
	Nickname string `json:"nickname,omitempty"`

	// Avatar is the user's avatar URL at issue time.
	Avatar string `json:"avatar,omitempty"`
}
