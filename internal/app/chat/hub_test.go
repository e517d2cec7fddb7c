package chat

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"uchat/internal/app/db"
	"uchat/internal/app/user"
)

// fakeDirectory is an in-memory UserDirectory.
type fakeDirectory struct {
	mu    sync.Mutex
	users map[int64]user.User
}

func newFakeDirectory(users ...user.User) *fakeDirectory {
	d := &fakeDirectory{users: make(map[int64]user.User)}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *fakeDirectory) GetByID(_ context.Context, id int64) (user.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[id]
	if !ok {
		return user.User{}, db.ErrNotFound
	}
	return u, nil
}

func (d *fakeDirectory) SetConnection(_ context.Context, id int64, handle string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[id]
	if !ok {
		return db.ErrNotFound
	}
	u.SocketID = &handle
	d.users[id] = u
	return nil
}

func (d *fakeDirectory) ClearConnection(_ context.Context, id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[id]
	if !ok {
		return db.ErrNotFound
	}
	u.SocketID = nil
	d.users[id] = u
	return nil
}

func (d *fakeDirectory) CountOnline(_ context.Context) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var n int64
	for _, u := range d.users {
		if u.SocketID != nil {
			n++
		}
	}
	return n, nil
}

func (d *fakeDirectory) handleOf(t *testing.T, id int64) *string {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[id]
	require.True(t, ok)
	return u.SocketID
}

// fakeStore is an in-memory MessageStore that resolves authors and replies
// from a fakeDirectory.
type fakeStore struct {
	mu        sync.Mutex
	nextID    int64
	messages  map[int64]Message
	directory *fakeDirectory
}

func newFakeStore(directory *fakeDirectory) *fakeStore {
	return &fakeStore{messages: make(map[int64]Message), directory: directory}
}

func (s *fakeStore) Create(_ context.Context, m NewMessage) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	msg := Message{
		ID:         s.nextID,
		Body:       m.Body,
		Attachment: m.Attachment,
		UserID:     m.UserID,
		ReplyID:    m.ReplyID,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	s.messages[msg.ID] = msg
	return msg, nil
}

func (s *fakeStore) GetByID(ctx context.Context, id int64, withReply bool) (Message, error) {
	s.mu.Lock()
	msg, ok := s.messages[id]
	s.mu.Unlock()
	if !ok {
		return Message{}, db.ErrNotFound
	}

	author, err := s.directory.GetByID(ctx, msg.UserID)
	if err == nil {
		msg.User = &author
	}

	if withReply && msg.ReplyID != nil {
		s.mu.Lock()
		target, ok := s.messages[*msg.ReplyID]
		s.mu.Unlock()
		if ok {
			if replyAuthor, err := s.directory.GetByID(ctx, target.UserID); err == nil {
				target.User = &replyAuthor
			}
			msg.Reply = &target
		}
	}

	return msg, nil
}

func (s *fakeStore) ListPage(ctx context.Context, page int) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Message
	for id := s.nextID; id >= 1; id-- {
		if msg, ok := s.messages[id]; ok {
			out = append(out, msg)
		}
	}
	return out, nil
}

// newTestSession builds a Client without a live websocket connection; tests
// read broadcast frames straight from the send queue.
func newTestSession(h *Hub) *Client {
	return &Client{
		hub:    h,
		handle: uuid.NewString(),
		send:   make(chan []byte, sendQueueSize),
		logger: zerolog.Nop(),
	}
}

func nextFrame(t *testing.T, c *Client) Envelope {
	t.Helper()

	select {
	case frame, ok := <-c.send:
		require.True(t, ok, "send queue closed while waiting for a frame")
		var env Envelope
		require.NoError(t, json.Unmarshal(frame, &env))
		return env
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a frame")
		return Envelope{}
	}
}

func requireOnline(t *testing.T, c *Client, want int64) {
	t.Helper()

	env := nextFrame(t, c)
	require.Equal(t, EventOnline, env.Event)

	var p OnlinePayload
	require.NoError(t, json.Unmarshal(env.Data, &p))
	require.Equal(t, want, p.Online)
}

func requireWriting(t *testing.T, c *Client, want string) {
	t.Helper()

	env := nextFrame(t, c)
	require.Equal(t, EventWriting, env.Event)

	var p WritingPayload
	require.NoError(t, json.Unmarshal(env.Data, &p))
	require.Equal(t, want, p.Msg)
}

func requireClosed(t *testing.T, c *Client) {
	t.Helper()

	select {
	case _, ok := <-c.send:
		require.False(t, ok, "expected send queue to be closed")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for send queue to close")
	}
}

func testUser(id int64, nickname string) user.User {
	return user.User{ID: id, Email: nickname + "@example.com", Nickname: nickname}
}

func TestHubJoinAnnouncesPresence(t *testing.T) {
	directory := newFakeDirectory(testUser(1, "alice"), testUser(2, "bob"))
	h := NewHub(directory, newFakeStore(directory))
	defer h.Shutdown()

	a := newTestSession(h)
	b := newTestSession(h)
	h.Register(a)
	h.Register(b)

	h.Dispatch(inboundEvent{origin: a, name: EventJoin, userID: 1})

	// Every connected session sees the new count, joined or not.
	requireOnline(t, a, 1)
	requireWriting(t, a, "")
	requireOnline(t, b, 1)
	requireWriting(t, b, "")

	h.Dispatch(inboundEvent{origin: b, name: EventJoin, userID: 2})

	requireOnline(t, a, 2)
	requireWriting(t, a, "")
	requireOnline(t, b, 2)
	requireWriting(t, b, "")

	require.NotNil(t, directory.handleOf(t, 1))
	require.Equal(t, a.handle, *directory.handleOf(t, 1))
	require.NotNil(t, directory.handleOf(t, 2))
	require.Equal(t, b.handle, *directory.handleOf(t, 2))
}

func TestHubJoinUnknownUserIgnored(t *testing.T) {
	directory := newFakeDirectory(testUser(1, "alice"))
	h := NewHub(directory, newFakeStore(directory))
	defer h.Shutdown()

	a := newTestSession(h)
	h.Register(a)

	h.Dispatch(inboundEvent{origin: a, name: EventJoin, userID: 99})
	h.Dispatch(inboundEvent{origin: a, name: EventJoin, userID: 1})

	// The unknown join produced no frames: the first thing the session sees
	// is the count from the valid join.
	requireOnline(t, a, 1)
	requireWriting(t, a, "")
}

func TestHubChatBroadcastsStoredMessage(t *testing.T) {
	directory := newFakeDirectory(testUser(1, "alice"), testUser(2, "bob"))
	store := newFakeStore(directory)
	h := NewHub(directory, store)
	defer h.Shutdown()

	a := newTestSession(h)
	b := newTestSession(h)
	h.Register(a)
	h.Register(b)

	h.Dispatch(inboundEvent{origin: a, name: EventJoin, userID: 1})
	requireOnline(t, a, 1)
	requireWriting(t, a, "")
	requireOnline(t, b, 1)
	requireWriting(t, b, "")

	h.Dispatch(inboundEvent{origin: a, name: EventChat, userID: 1, chat: &ChatPayload{
		Message: "hello there",
		UserID:  1,
	}})

	for _, c := range []*Client{a, b} {
		env := nextFrame(t, c)
		require.Equal(t, EventChat, env.Event)

		var msg Message
		require.NoError(t, json.Unmarshal(env.Data, &msg))
		require.Equal(t, int64(1), msg.ID)
		require.Equal(t, "hello there", msg.Body)
		require.NotNil(t, msg.User)
		require.Equal(t, "alice", msg.User.Nickname)
		require.Nil(t, msg.Reply)

		// A broadcast message always clears the typing line.
		requireWriting(t, c, "")
	}
}

func TestHubChatResolvesReply(t *testing.T) {
	directory := newFakeDirectory(testUser(1, "alice"), testUser(2, "bob"))
	store := newFakeStore(directory)
	h := NewHub(directory, store)
	defer h.Shutdown()

	original, err := store.Create(context.Background(), NewMessage{Body: "first", UserID: 1})
	require.NoError(t, err)

	a := newTestSession(h)
	h.Register(a)

	replyID := original.ID
	h.Dispatch(inboundEvent{origin: a, name: EventChat, userID: 2, chat: &ChatPayload{
		Message: "answering",
		UserID:  2,
		ReplyID: &replyID,
	}})

	env := nextFrame(t, a)
	require.Equal(t, EventChat, env.Event)

	var msg Message
	require.NoError(t, json.Unmarshal(env.Data, &msg))
	require.Equal(t, "answering", msg.Body)
	require.NotNil(t, msg.ReplyID)
	require.NotNil(t, msg.Reply)
	require.Equal(t, original.ID, msg.Reply.ID)
	require.Equal(t, "first", msg.Reply.Body)
	require.NotNil(t, msg.Reply.User)
	require.Equal(t, "alice", msg.Reply.User.Nickname)

	requireWriting(t, a, "")
}

func TestHubChatUnknownUserDropped(t *testing.T) {
	directory := newFakeDirectory(testUser(1, "alice"))
	store := newFakeStore(directory)
	h := NewHub(directory, store)
	defer h.Shutdown()

	a := newTestSession(h)
	h.Register(a)

	h.Dispatch(inboundEvent{origin: a, name: EventChat, userID: 42, chat: &ChatPayload{
		Message: "ghost",
		UserID:  42,
	}})
	h.Dispatch(inboundEvent{origin: a, name: EventWriting, userID: 1})

	// Nothing was persisted and nothing broadcast for the unknown sender.
	requireWriting(t, a, "alice is writing...")

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Empty(t, store.messages)
}

func TestHubWritingLifecycle(t *testing.T) {
	directory := newFakeDirectory(testUser(1, "alice"))
	h := NewHub(directory, newFakeStore(directory))
	defer h.Shutdown()

	a := newTestSession(h)
	h.Register(a)

	h.Dispatch(inboundEvent{origin: a, name: EventWriting, userID: 1})
	requireWriting(t, a, "alice is writing...")

	h.Dispatch(inboundEvent{origin: a, name: EventCancelWriting, userID: 1})
	requireWriting(t, a, "")

	// Repeated cancels are harmless: typing has no persisted state, so each
	// one just re-broadcasts the cleared line.
	h.Dispatch(inboundEvent{origin: a, name: EventCancelWriting, userID: 1})
	h.Dispatch(inboundEvent{origin: a, name: EventCancelWriting, userID: 1})
	requireWriting(t, a, "")
	requireWriting(t, a, "")

	// Cancel for an unknown user produces nothing.
	h.Dispatch(inboundEvent{origin: a, name: EventCancelWriting, userID: 7})
	h.Dispatch(inboundEvent{origin: a, name: EventWriting, userID: 1})
	requireWriting(t, a, "alice is writing...")
}

func TestHubTwoUserConversation(t *testing.T) {
	directory := newFakeDirectory(testUser(1, "alice"), testUser(2, "bob"))
	store := newFakeStore(directory)
	h := NewHub(directory, store)
	defer h.Shutdown()

	a := newTestSession(h)
	b := newTestSession(h)
	h.Register(a)
	h.Register(b)

	h.Dispatch(inboundEvent{origin: a, name: EventJoin, userID: 1})
	requireOnline(t, a, 1)
	requireWriting(t, a, "")
	requireOnline(t, b, 1)
	requireWriting(t, b, "")

	h.Dispatch(inboundEvent{origin: b, name: EventJoin, userID: 2})
	requireOnline(t, a, 2)
	requireWriting(t, a, "")
	requireOnline(t, b, 2)
	requireWriting(t, b, "")

	h.Dispatch(inboundEvent{origin: a, name: EventChat, userID: 1, chat: &ChatPayload{
		Message: "hi",
		UserID:  1,
	}})

	var first Message
	for _, c := range []*Client{a, b} {
		env := nextFrame(t, c)
		require.Equal(t, EventChat, env.Event)
		require.NoError(t, json.Unmarshal(env.Data, &first))
		require.Equal(t, "hi", first.Body)
		require.Equal(t, int64(1), first.UserID)
		require.Nil(t, first.Reply)
		requireWriting(t, c, "")
	}

	replyID := first.ID
	h.Dispatch(inboundEvent{origin: b, name: EventChat, userID: 2, chat: &ChatPayload{
		Message: "hello",
		UserID:  2,
		ReplyID: &replyID,
	}})

	for _, c := range []*Client{a, b} {
		env := nextFrame(t, c)
		require.Equal(t, EventChat, env.Event)

		var second Message
		require.NoError(t, json.Unmarshal(env.Data, &second))
		require.Equal(t, "hello", second.Body)
		require.Equal(t, int64(2), second.UserID)
		require.NotNil(t, second.Reply)
		require.Equal(t, first.ID, second.Reply.ID)
		require.Equal(t, "hi", second.Reply.Body)
		requireWriting(t, c, "")
	}

	// History sees both messages, newest first, exactly as broadcast.
	page, err := store.ListPage(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "hello", page[0].Body)
	require.Equal(t, "hi", page[1].Body)
	require.NotNil(t, page[0].ReplyID)
	require.Equal(t, first.ID, *page[0].ReplyID)
}

func TestHubExplicitLeft(t *testing.T) {
	directory := newFakeDirectory(testUser(1, "alice"))
	h := NewHub(directory, newFakeStore(directory))
	defer h.Shutdown()

	a := newTestSession(h)
	spectator := newTestSession(h)
	h.Register(a)
	h.Register(spectator)

	h.Dispatch(inboundEvent{origin: a, name: EventJoin, userID: 1})
	requireOnline(t, a, 1)
	requireWriting(t, a, "")
	requireOnline(t, spectator, 1)
	requireWriting(t, spectator, "")

	h.Dispatch(inboundEvent{origin: a, name: EventLeft, userID: 1})
	requireOnline(t, a, 0)
	requireWriting(t, a, "")
	requireOnline(t, spectator, 0)
	requireWriting(t, spectator, "")

	require.Nil(t, directory.handleOf(t, 1))

	// An explicit left unbinds the session: the later disconnect must not
	// announce the departure a second time.
	h.Unregister(a)
	requireClosed(t, a)

	h.Dispatch(inboundEvent{origin: spectator, name: EventJoin, userID: 1})
	requireOnline(t, spectator, 1)
	requireWriting(t, spectator, "")
}

func TestHubDisconnectActsAsLeft(t *testing.T) {
	directory := newFakeDirectory(testUser(1, "alice"), testUser(2, "bob"))
	h := NewHub(directory, newFakeStore(directory))
	defer h.Shutdown()

	a := newTestSession(h)
	b := newTestSession(h)
	h.Register(a)
	h.Register(b)

	h.Dispatch(inboundEvent{origin: a, name: EventJoin, userID: 1})
	requireOnline(t, a, 1)
	requireWriting(t, a, "")
	requireOnline(t, b, 1)
	requireWriting(t, b, "")

	h.Dispatch(inboundEvent{origin: b, name: EventJoin, userID: 2})
	requireOnline(t, a, 2)
	requireWriting(t, a, "")
	requireOnline(t, b, 2)
	requireWriting(t, b, "")

	// Session a drops without sending left.
	h.Unregister(a)
	requireClosed(t, a)

	requireOnline(t, b, 1)
	requireWriting(t, b, "")
	require.Nil(t, directory.handleOf(t, 1))
	require.NotNil(t, directory.handleOf(t, 2))
}

func TestHubUnjoinedDisconnectIsSilent(t *testing.T) {
	directory := newFakeDirectory(testUser(1, "alice"))
	h := NewHub(directory, newFakeStore(directory))
	defer h.Shutdown()

	a := newTestSession(h)
	spectator := newTestSession(h)
	h.Register(a)
	h.Register(spectator)

	// A session that never joined disconnects: no presence traffic at all.
	h.Unregister(a)
	requireClosed(t, a)

	h.Dispatch(inboundEvent{origin: spectator, name: EventJoin, userID: 1})
	requireOnline(t, spectator, 1)
	requireWriting(t, spectator, "")
}

func TestHubShutdownClosesSessions(t *testing.T) {
	directory := newFakeDirectory(testUser(1, "alice"))
	h := NewHub(directory, newFakeStore(directory))

	a := newTestSession(h)
	h.Register(a)

	h.Shutdown()
	requireClosed(t, a)
}
