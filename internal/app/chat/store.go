/*
Package chat contains the presence-and-broadcast coordinator.

This file defines the message store: a durable, append-only record of chat
messages with optional reply linkage. Messages are immutable once written;
history is read newest first with the reply target and author resolved.
*/
package chat

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"uchat/internal/app/db"
	"uchat/internal/app/user"
)

// PageSize is the fixed number of messages per history page.
const PageSize = 100

// NewMessage carries the fields required to persist one chat message.
type NewMessage struct {
	Body       string
	Attachment *string
	UserID     int64
	ReplyID    *int64
}

// MessageStore is the persistence boundary the hub depends on.
type MessageStore interface {
	// Create appends a new message and returns it as stored.
	Create(ctx context.Context, m NewMessage) (Message, error)

	// GetByID fetches one message, resolving its author and, when withReply
	// is set, the full reply target. Returns db.ErrNotFound on a miss.
	GetByID(ctx context.Context, id int64, withReply bool) (Message, error)

	// ListPage returns one history page, newest first, with replies resolved.
	// Pages are numbered from 1.
	ListPage(ctx context.Context, page int) ([]Message, error)
}

// Store is the PostgreSQL implementation of MessageStore.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store on top of the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Create(ctx context.Context, m NewMessage) (Message, error) {
	var created Message
	err := s.pool.QueryRow(ctx, `
		INSERT INTO chats (message, attachment, user_id, reply_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, message, attachment, user_id, reply_id, created_at, updated_at
	`, m.Body, m.Attachment, m.UserID, m.ReplyID).Scan(
		&created.ID, &created.Body, &created.Attachment,
		&created.UserID, &created.ReplyID, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		return Message{}, err
	}
	return created, nil
}

const messageSelect = `
	SELECT c.id, c.message, c.attachment, c.user_id, c.reply_id, c.created_at, c.updated_at,
	       u.id, u.email, u.nickname, u.avatar, u.socket_id, u.created_at, u.updated_at,
	       r.id, r.message, r.attachment, r.user_id, r.reply_id, r.created_at, r.updated_at
	FROM chats c
	JOIN users u ON u.id = c.user_id
	LEFT JOIN chats r ON r.id = c.reply_id`

func (s *Store) GetByID(ctx context.Context, id int64, withReply bool) (Message, error) {
	row := s.pool.QueryRow(ctx, messageSelect+` WHERE c.id = $1`, id)

	msg, err := scanMessage(row)
	if err != nil {
		return Message{}, db.WrapNotFound(err)
	}

	if !withReply {
		msg.Reply = nil
	}
	return msg, nil
}

func (s *Store) ListPage(ctx context.Context, page int) ([]Message, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * PageSize

	rows, err := s.pool.Query(ctx,
		messageSelect+` ORDER BY c.id DESC LIMIT $1 OFFSET $2`,
		PageSize, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]Message, 0, PageSize)
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// scanMessage reads one joined row: the message, its author, and the nullable
// reply target (one level deep, matching what clients render).
func scanMessage(row pgx.Row) (Message, error) {
	var (
		msg    Message
		author user.User

		replyID         *int64
		replyBody       *string
		replyAttachment *string
		replyUserID     *int64
		replyReplyID    *int64
		replyCreatedAt  *time.Time
		replyUpdatedAt  *time.Time
	)

	err := row.Scan(
		&msg.ID, &msg.Body, &msg.Attachment, &msg.UserID, &msg.ReplyID,
		&msg.CreatedAt, &msg.UpdatedAt,
		&author.ID, &author.Email, &author.Nickname, &author.Avatar,
		&author.SocketID, &author.CreatedAt, &author.UpdatedAt,
		&replyID, &replyBody, &replyAttachment, &replyUserID, &replyReplyID,
		&replyCreatedAt, &replyUpdatedAt,
	)
	if err != nil {
		return Message{}, err
	}

	msg.User = &author

	if replyID != nil {
		msg.Reply = &Message{
			ID:         *replyID,
			Body:       *replyBody,
			Attachment: replyAttachment,
			UserID:     *replyUserID,
			ReplyID:    replyReplyID,
			CreatedAt:  *replyCreatedAt,
			UpdatedAt:  *replyUpdatedAt,
		}
	}

	return msg, nil
}
