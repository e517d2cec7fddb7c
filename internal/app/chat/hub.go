/*
Package chat contains the presence-and-broadcast coordinator.

This file defines the Hub, the single owner of all presence state transitions.
Every inbound event and every session register/unregister flows through the
Run loop, so directory lookup, mutation and presence recompute execute as one
serialized step per event. Handlers never surface errors to clients: a failed
lookup or store write is logged and the event is absorbed.
*/
package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"uchat/internal/app/db"
	"uchat/internal/pkg/logx"
)

const eventChannelBuffer = 1024

// inboundEvent is one parsed, validated client event queued for the Run loop.
type inboundEvent struct {
	// origin is the session the event arrived on.
	origin *Client

	// name is the wire event name (join, chat, writing, cancelWriting, left).
	name string

	// userID identifies the acting user for every event kind except chat.
	userID int64

	// chat is set only for chat events.
	chat *ChatPayload
}

// Hub coordinates all connected sessions: it serializes presence transitions
// against the user directory and fans events out to every session.
type Hub struct {
	directory UserDirectory
	store     MessageStore
	presence  *Tracker

	// clients holds every connected session, joined or not.
	clients map[*Client]struct{}

	// register queues sessions that have completed the websocket upgrade.
	register chan *Client

	// unregister queues sessions whose read loop has terminated.
	unregister chan *Client

	// events queues parsed inbound client events.
	events chan inboundEvent

	// stop terminates the Run loop.
	stop chan struct{}

	// wg tracks the Run loop for Shutdown.
	wg sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	logger zerolog.Logger
}

// NewHub constructs a Hub over the given directory and message store and
// starts its run loop.
func NewHub(directory UserDirectory, store MessageStore) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		directory:  directory,
		store:      store,
		presence:   NewTracker(directory),
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client, eventChannelBuffer),
		events:     make(chan inboundEvent, eventChannelBuffer),
		stop:       make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
		logger:     logx.Logger().With().Str("component", "hub").Logger(),
	}

	h.wg.Add(1)
	go h.run()

	return h
}

// run is the hub's event loop. All session and directory state is owned by
// this goroutine; nothing else touches it.
func (h *Hub) run() {
	defer h.wg.Done()

	h.logger.Info().Msg("Hub run loop started.")

	for {
		select {
		case client := <-h.register:
			// A raw connect mutates nothing in the directory; presence
			// changes only on an explicit join event.
			h.clients[client] = struct{}{}
			h.logger.Info().
				Str("handle", client.handle).
				Int("total_sessions", len(h.clients)).
				Msg("Session connected.")

		case client := <-h.unregister:
			h.dropSession(client)

		case ev := <-h.events:
			h.handleEvent(ev)

		case <-h.stop:
			h.logger.Info().Msg("Hub run loop stopping.")
			for client := range h.clients {
				client.closeSend()
			}
			h.clients = make(map[*Client]struct{})
			return
		}
	}
}

// Shutdown stops the Run loop and waits for it to exit.
func (h *Hub) Shutdown() {
	h.cancel()

	select {
	case <-h.stop:
	default:
		close(h.stop)
	}

	h.wg.Wait()
	h.logger.Info().Msg("Hub shutdown complete.")
}

// Register queues a session for registration.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.stop:
	}
}

// Unregister queues a session for removal. Called from the session's read
// loop exactly once, whether or not the client ever sent a left event.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	default:
		h.logger.Warn().Str("handle", c.handle).Msg("Unregister channel full, session cleanup skipped.")
	}
}

// Dispatch queues a parsed inbound event for the Run loop.
func (h *Hub) Dispatch(ev inboundEvent) {
	select {
	case h.events <- ev:
	default:
		h.logger.Warn().Str("event", ev.name).Msg("Event channel full, inbound event dropped.")
	}
}

// dropSession removes a session and, when the session had announced a user,
// runs the left logic for that user so presence never leaks on an unclean
// disconnect.
func (h *Hub) dropSession(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	c.closeSend()

	h.logger.Info().
		Str("handle", c.handle).
		Int("total_sessions", len(h.clients)).
		Msg("Session disconnected.")

	if c.bound != 0 {
		userID := c.bound
		c.bound = 0
		h.onLeft(nil, userID)
	}
}

func (h *Hub) handleEvent(ev inboundEvent) {
	switch ev.name {
	case EventJoin:
		h.onJoin(ev.origin, ev.userID)
	case EventChat:
		h.onChat(ev.origin, ev.chat)
	case EventWriting:
		h.onWriting(ev.userID)
	case EventCancelWriting:
		h.onCancelWriting(ev.userID)
	case EventLeft:
		h.onLeft(ev.origin, ev.userID)
	default:
		h.logger.Warn().Str("event", ev.name).Msg("Unsupported event reached the hub.")
	}
}

// onJoin binds the session's connection handle to the user and announces the
// new presence count. An unknown user id is absorbed silently.
func (h *Hub) onJoin(c *Client, userID int64) {
	u, err := h.directory.GetByID(h.ctx, userID)
	if err != nil {
		h.logLookupMiss("join", userID, err)
		return
	}

	if err := h.directory.SetConnection(h.ctx, u.ID, c.handle); err != nil {
		h.logger.Error().Err(err).Int64("user_id", u.ID).Msg("Failed to bind connection handle.")
		return
	}
	c.bound = u.ID

	h.logger.Info().Str("nickname", u.Nickname).Int64("user_id", u.ID).Msg("User joined.")

	h.broadcastOnline()
	h.broadcastWriting("")
}

// onChat persists the message, re-reads it with its reply and author resolved,
// and broadcasts the materialized message followed by a typing-cleared event.
func (h *Hub) onChat(c *Client, p *ChatPayload) {
	u, err := h.directory.GetByID(h.ctx, p.UserID)
	if err != nil {
		h.logLookupMiss("chat", p.UserID, err)
		return
	}

	created, err := h.store.Create(h.ctx, NewMessage{
		Body:       p.Message,
		Attachment: p.Attachment,
		UserID:     u.ID,
		ReplyID:    p.ReplyID,
	})
	if err != nil {
		// Store failures stay server-side; the client sees silence.
		h.logger.Error().Err(err).Int64("user_id", u.ID).Msg("Failed to persist chat message.")
		return
	}

	full, err := h.store.GetByID(h.ctx, created.ID, true)
	if err != nil {
		h.logger.Error().Err(err).Int64("message_id", created.ID).Msg("Failed to re-read persisted message.")
		return
	}

	h.logger.Info().Str("nickname", u.Nickname).Int64("message_id", full.ID).Msg("Message sent.")

	h.broadcast(EventChat, full)
	h.broadcastWriting("")
}

// onWriting announces that the user is typing.
func (h *Hub) onWriting(userID int64) {
	u, err := h.directory.GetByID(h.ctx, userID)
	if err != nil {
		h.logLookupMiss("writing", userID, err)
		return
	}

	h.broadcastWriting(fmt.Sprintf("%s is writing...", u.Nickname))
}

// onCancelWriting clears the typing status. Typing has no persisted state, so
// repeated cancels simply produce repeated empty broadcasts.
func (h *Hub) onCancelWriting(userID int64) {
	u, err := h.directory.GetByID(h.ctx, userID)
	if err != nil {
		h.logLookupMiss("cancelWriting", userID, err)
		return
	}

	h.logger.Debug().Str("nickname", u.Nickname).Msg("User cancelled writing.")
	h.broadcastWriting("")
}

// onLeft clears the user's connection handle and announces the new presence
// count. origin is nil when invoked from disconnect cleanup.
func (h *Hub) onLeft(origin *Client, userID int64) {
	u, err := h.directory.GetByID(h.ctx, userID)
	if err != nil {
		h.logLookupMiss("left", userID, err)
		return
	}

	if err := h.directory.ClearConnection(h.ctx, u.ID); err != nil {
		h.logger.Error().Err(err).Int64("user_id", u.ID).Msg("Failed to clear connection handle.")
		return
	}

	if origin != nil && origin.bound == u.ID {
		origin.bound = 0
	}

	h.logger.Info().Str("nickname", u.Nickname).Int64("user_id", u.ID).Msg("User left.")

	h.broadcastOnline()
	h.broadcastWriting("")
}

// broadcastOnline recomputes the presence count and fans it out.
func (h *Hub) broadcastOnline() {
	online, err := h.presence.Recompute(h.ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("Presence recompute failed, online broadcast skipped.")
		return
	}

	h.broadcast(EventOnline, OnlinePayload{Online: online})
}

func (h *Hub) broadcastWriting(msg string) {
	h.broadcast(EventWriting, WritingPayload{Msg: msg})
}

// broadcast fans one event out to every connected session. Delivery is
// fire-and-forget: a session whose send queue is full misses the event.
func (h *Hub) broadcast(event string, data any) {
	frame, err := encodeEvent(event, data)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("Error marshaling event for broadcast.")
		return
	}

	for client := range h.clients {
		select {
		case client.send <- frame:
		default:
			h.logger.Warn().
				Str("handle", client.handle).
				Str("event", event).
				Msg("Session send queue full, event dropped.")
		}
	}
}

// logLookupMiss records a failed user lookup. Unknown users are expected noise
// on this protocol and logged quietly; real directory failures are errors.
func (h *Hub) logLookupMiss(event string, userID int64, err error) {
	if db.IsNotFound(err) {
		h.logger.Debug().Str("event", event).Int64("user_id", userID).Msg("Event ignored: unknown user.")
		return
	}
	h.logger.Error().Err(err).Str("event", event).Int64("user_id", userID).Msg("Directory lookup failed.")
}
