package chat

import (
	"context"

	"uchat/internal/app/user"
)

// UserDirectory is the slice of the user directory the coordinator depends on.
// *user.Directory satisfies it.
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
	SetConnection(ctx context.Context, id int64, handle string) error
	ClearConnection(ctx context.Context, id int64) error
	CountOnline(ctx context.Context) (int64, error)
}

// Tracker derives the online-user count from the directory. The count is
// recomputed on every join and left, never cached: the directory row is the
// single source of truth for who is online.
type Tracker struct {
	directory UserDirectory
}

// NewTracker constructs a Tracker over the given directory.
func NewTracker(directory UserDirectory) *Tracker {
	return &Tracker{directory: directory}
}

// Recompute counts the users whose connection handle is currently set.
func (t *Tracker) Recompute(ctx context.Context) (int64, error) {
	return t.directory.CountOnline(ctx)
}
