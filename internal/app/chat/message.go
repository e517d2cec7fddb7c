/*
Package chat contains the presence-and-broadcast coordinator: the hub that
tracks which users are connected, the per-connection client sessions, and the
message store for the chat history.

This file defines the wire protocol of the realtime channel and the Message
model. Every frame is a JSON envelope `{event, data}`; inbound payloads are
strictly decoded and validated before they reach a handler, so a malformed
frame is dropped at the edge instead of failing mid-handler.
*/
package chat

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"

	"uchat/internal/app/user"
)

// Inbound event names accepted from clients.
const (
	EventJoin          = "join"
	EventChat          = "chat"
	EventWriting       = "writing"
	EventCancelWriting = "cancelWriting"
	EventLeft          = "left"
)

// Outbound event names broadcast to every connected session.
const (
	EventOnline = "online"
	// EventWriting and EventChat are reused verbatim on the outbound side.
)

// MaxMessageRunes caps the body length of a single chat message.
const MaxMessageRunes = 5000

// Message is one persisted chat message. Reply holds the fully resolved target
// message when ReplyID is set; it stays null otherwise. Author is resolved into
// User before a message is broadcast or listed.
type Message struct {
	ID         int64      `json:"id"`
	Body       string     `json:"message"`
	Attachment *string    `json:"attachment"`
	UserID     int64      `json:"userId"`
	User       *user.User `json:"user,omitempty"`
	ReplyID    *int64     `json:"replyId"`
	Reply      *Message   `json:"reply"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Envelope frames every message on the realtime channel.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JoinPayload identifies the user for join, writing, cancelWriting and left
// events. The server trusts the client-supplied user id; the realtime channel
// carries no authentication.
type JoinPayload struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
}

// ChatPayload carries one inbound chat message.
type ChatPayload struct {
	Message    string  `json:"message" validate:"required,max=5000"`
	UserID     int64   `json:"userId" validate:"required,gt=0"`
	Attachment *string `json:"attachment,omitempty" validate:"omitempty,min=1,max=512"`
	ReplyID    *int64  `json:"replyId,omitempty" validate:"omitempty,gt=0"`
}

// OnlinePayload carries the current connected-user count.
type OnlinePayload struct {
	Online int64 `json:"online"`
}

// WritingPayload carries the typing status line; empty means cleared.
type WritingPayload struct {
	Msg string `json:"msg"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodePayload strictly unmarshals raw into T and validates it. Unknown
// fields, trailing content and constraint violations all fail the decode.
func decodePayload[T any](raw json.RawMessage) (T, error) {
	var payload T

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&payload); err != nil {
		return payload, err
	}

	if err := validate.Struct(&payload); err != nil {
		return payload, err
	}

	return payload, nil
}

// encodeEvent marshals an outbound envelope for broadcast.
func encodeEvent(event string, data any) ([]byte, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Envelope{Event: event, Data: dataBytes})
}
