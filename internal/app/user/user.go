/*
Package user contains the user data model and the directory that owns the
mapping from users to their live connection handles.

A user is online iff their connection handle (socket_id) is non-null. The
directory is the single authoritative owner of that mapping; presence is always
derived from it, never cached elsewhere.
*/
package user

import "time"

// User represents a registered chat participant.
type User struct {
	// ID is the stable unique identifier of the user.
	ID int64 `json:"id"`

	// Email is unique per user and used as the login credential.
	Email string `json:"email"`

	// Nickname is the unique display name shown in the chat.
	Nickname string `json:"nickname"`

	// Avatar is the URL of the user's avatar image.
	Avatar string `json:"avatar"`

	// SocketID is the connection handle of the user's live session;
	// nil means the user is offline.
	SocketID *string `json:"socketId"`

	// PasswordHash is the bcrypt hash of the user's password. Never serialized.
	PasswordHash string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Online reports whether the user currently holds a connection handle.
func (u User) Online() bool {
	return u.SocketID != nil
}
