package user

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"uchat/internal/app/db"
)

const userColumns = `id, email, nickname, avatar, password_hash, socket_id, created_at, updated_at`

// Directory is the PostgreSQL-backed user directory. It owns all reads and
// writes of user rows, including the connection handle used for presence.
type Directory struct {
	pool *pgxpool.Pool
}

// NewDirectory constructs a Directory on top of the given connection pool.
func NewDirectory(pool *pgxpool.Pool) *Directory {
	return &Directory{pool: pool}
}

// CreateParams carries the fields required to register a new user.
type CreateParams struct {
	Email        string
	Nickname     string
	Avatar       string
	PasswordHash string
}

// Create inserts a new user row and returns it.
func (d *Directory) Create(ctx context.Context, p CreateParams) (User, error) {
	row := d.pool.QueryRow(ctx, `
		INSERT INTO users (email, nickname, avatar, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		p.Email, p.Nickname, p.Avatar, p.PasswordHash,
	)
	return scanUser(row)
}

// GetByID fetches a user by id. Returns db.ErrNotFound when no row matches.
func (d *Directory) GetByID(ctx context.Context, id int64) (User, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail fetches a user by email.
func (d *Directory) GetByEmail(ctx context.Context, email string) (User, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// GetByNickname fetches a user by display name.
func (d *Directory) GetByNickname(ctx context.Context, nickname string) (User, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE nickname = $1`, nickname)
	return scanUser(row)
}

// List returns all registered users ordered by id.
func (d *Directory) List(ctx context.Context) ([]User, error) {
	rows, err := d.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateParams carries the mutable profile fields for an update. Nil fields
// keep their current value.
type UpdateParams struct {
	ID           int64
	Email        *string
	Nickname     *string
	PasswordHash *string
}

// Update applies a partial update to the user's profile and returns the
// updated row.
func (d *Directory) Update(ctx context.Context, p UpdateParams) (User, error) {
	row := d.pool.QueryRow(ctx, `
		UPDATE users
		SET email = COALESCE($2, email),
		    nickname = COALESCE($3, nickname),
		    password_hash = COALESCE($4, password_hash),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		p.ID, p.Email, p.Nickname, p.PasswordHash,
	)
	return scanUser(row)
}

// Delete removes a user row. Returns db.ErrNotFound when no row matched.
func (d *Directory) Delete(ctx context.Context, id int64) error {
	ct, err := d.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

// SetConnection binds the connection handle to the user, marking them online.
// At most one handle per user: a second bind overwrites the first.
func (d *Directory) SetConnection(ctx context.Context, id int64, handle string) error {
	_, err := d.pool.Exec(ctx,
		`UPDATE users SET socket_id = $2, updated_at = now() WHERE id = $1`,
		id, handle,
	)
	return err
}

// ClearConnection removes the user's connection handle, marking them offline.
func (d *Directory) ClearConnection(ctx context.Context, id int64) error {
	_, err := d.pool.Exec(ctx,
		`UPDATE users SET socket_id = NULL, updated_at = now() WHERE id = $1`,
		id,
	)
	return err
}

// ResetConnections clears every connection handle. Run at startup so a crashed
// process never leaves phantom online users behind.
func (d *Directory) ResetConnections(ctx context.Context) error {
	_, err := d.pool.Exec(ctx, `UPDATE users SET socket_id = NULL WHERE socket_id IS NOT NULL`)
	return err
}

// CountOnline returns the number of users currently holding a connection handle.
func (d *Directory) CountOnline(ctx context.Context) (int64, error) {
	var count int64
	err := d.pool.QueryRow(ctx, `SELECT count(*) FROM users WHERE socket_id IS NOT NULL`).Scan(&count)
	return count, err
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.Nickname, &u.Avatar,
		&u.PasswordHash, &u.SocketID, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return User{}, db.WrapNotFound(err)
	}
	return u, nil
}
