/*
Package chat contains the presence-and-broadcast coordinator.

This file defines the Client struct, one per live websocket connection. It owns
the connection handle, runs the read and write pumps, and parses inbound frames
into validated events before handing them to the hub. Sessions are ephemeral
and in-memory only; they hold a user id as a lookup key, never user data.
*/
package chat

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"uchat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the websocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxFrameSize = 8192

	// sendQueueSize bounds the per-session outbound queue.
	sendQueueSize = 256
)

// Client represents one live websocket session.
type Client struct {
	// hub the session reports to.
	hub *Hub

	// underlying websocket connection.
	conn *websocket.Conn

	// handle is the opaque connection identifier assigned on connect.
	handle string

	// bound is the id of the user this session announced via join, zero
	// before any join. Owned exclusively by the hub run loop.
	bound int64

	// send queues frames waiting to be written to the client.
	send chan []byte

	// closeOnce guards the send channel against double close.
	closeOnce sync.Once

	// structured logger with session context.
	logger zerolog.Logger
}

// NewClient constructs a Client for an upgraded websocket connection and
// assigns it a fresh connection handle.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	handle := uuid.NewString()

	return &Client{
		hub:    hub,
		conn:   conn,
		handle: handle,
		send:   make(chan []byte, sendQueueSize),
		logger: logx.Logger().With().Str("handle", handle).Logger(),
	}
}

// Handle returns the session's connection handle.
func (c *Client) Handle() string {
	return c.handle
}

// closeSend closes the outbound queue exactly once.
func (c *Client) closeSend() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// ReadPump reads frames from the websocket until the connection drops, keeping
// the heartbeat alive and dispatching parsed events to the hub. It always ends
// by unregistering the session, which doubles as the implicit left for clients
// that disconnect without saying so.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxFrameSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frameBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading frame (client close/going away)")
			}
			break
		}

		c.processInboundFrame(frameBytes)
	}
}

// cleanupOnDisconnect unregisters the session and closes the connection.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Session cleanup starting.")

	c.hub.Unregister(c)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Session connection close error")
	}
}

// processInboundFrame parses one raw frame into a validated event and queues
// it on the hub. Anything malformed is dropped here; handler code never sees
// an unvalidated payload.
func (c *Client) processInboundFrame(frameBytes []byte) {
	var envelope Envelope
	if err := json.Unmarshal(frameBytes, &envelope); err != nil {
		c.logger.Warn().Err(err).Bytes("frame", frameBytes).Msg("Client sent invalid JSON")
		return
	}

	switch envelope.Event {
	case EventJoin, EventWriting, EventCancelWriting, EventLeft:
		payload, err := decodePayload[JoinPayload](envelope.Data)
		if err != nil {
			c.logger.Warn().Err(err).Str("event", envelope.Event).Msg("Client sent invalid payload, event dropped")
			return
		}
		c.hub.Dispatch(inboundEvent{origin: c, name: envelope.Event, userID: payload.UserID})

	case EventChat:
		payload, err := decodePayload[ChatPayload](envelope.Data)
		if err != nil {
			c.logger.Warn().Err(err).Str("event", envelope.Event).Msg("Client sent invalid payload, event dropped")
			return
		}
		c.hub.Dispatch(inboundEvent{origin: c, name: envelope.Event, userID: payload.UserID, chat: &payload})

	default:
		c.logger.Warn().Str("event", envelope.Event).Msg("Client sent unsupported event")
	}
}

// WritePump writes queued frames to the websocket and keeps the heartbeat
// going. It exits when the send queue closes or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Session connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !c.writeQueuedFrame(frame, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePing() {
				return
			}
		}
	}
}

// writeQueuedFrame writes one frame pulled from the send queue. Returns false
// when the write loop should terminate.
func (c *Client) writeQueuedFrame(frame []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Error().Err(err).Msg("Error writing frame")
		return false
	}

	return true
}

// writePing sends a periodic Ping to keep the connection heartbeat alive.
func (c *Client) writePing() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
