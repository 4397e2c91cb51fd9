/*
Package chat contains the real-time gateway: live connection management and
best-effort message relay between authenticated clients.

This file defines the Client struct, representing one admitted WebSocket
connection. A Client is bound to exactly one verified user id for its entire
lifetime; there is no re-authentication mid-connection.
*/
package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"dmchat/internal/app/message"
	"dmchat/internal/app/user"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 8192

	// MaxContentBytes is the maximum allowed size (in bytes) for text message content.
	MaxContentBytes = 5000

	// WsCloseCodeSessionKicked is a custom WebSocket Close Code (4000-4999 range)
	// used to signal the client that the session was replaced by a new connection.
	WsCloseCodeSessionKicked = 4001
)

// Client represents an active WebSocket connection and its authenticated user.
type Client struct {
	// the gateway that owns this connection.
	gateway *Gateway

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// the verified identity the connection is bound to.
	user user.Summary

	// a buffered channel used to queue frames waiting to be sent to the client.
	send chan []byte

	// structured logger with client context.
	logger zerolog.Logger
}

// NewClient constructs and returns a new Client instance for an admitted connection.
func NewClient(gateway *Gateway, wsConn *websocket.Conn, identity user.Summary) *Client {
	clientLogger := logx.Logger().With().
		Str("component", "ws").
		Str("user_id", identity.ID).
		Logger()

	return &Client{
		gateway: gateway,
		conn:    wsConn,
		user:    identity,
		send:    make(chan []byte, 256),
		logger:  clientLogger,
	}
}

// User returns the identity this connection is bound to.
func (c *Client) User() user.Summary {
	return c.user
}

// ReadPump handles reading frames from the WebSocket connection.
// It handles heartbeats (Pong), frame parsing, and performs cleanup upon connection closure.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

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

// cleanupOnDisconnect handles the necessary cleanup steps when the client's ReadPump terminates.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	// notify the gateway to unregister the client
	select {
	case c.gateway.unregister <- c:
	default:
		c.logger.Warn().Msg("Gateway unregister channel blocked. Connection cleanup still proceeding.")
	}

	if err := c.conn.Close(); err != nil {
		c.logger.Error().Err(err).Msg("Client connection close error")
	}
}

// processInboundFrame handles raw byte frames received from the client.
func (c *Client) processInboundFrame(frameBytes []byte) {
	var inbound struct {
		Type    EventType       `json:"type"`
		Payload json.RawMessage `json:"payload,omitempty"`
	}

	if err := json.Unmarshal(frameBytes, &inbound); err != nil {
		c.logger.Warn().Err(err).
			Bytes("frame_bytes", frameBytes).
			Msg("Client sent invalid JSON")
		return
	}

	switch inbound.Type {
	case TypeMessage:
		c.handleMessage(inbound.Payload)

	default:
		c.logger.Warn().Str("event_type", string(inbound.Type)).Msg("Client sent unsupported event type")
	}
}

// handleMessage processes an inbound relay request from the client.
// Relay is best effort and independent of the durable REST write; nothing is
// persisted here.
func (c *Client) handleMessage(payloadBytes json.RawMessage) {
	var payload InboundMessagePayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid MESSAGE payload")
		return
	}

	if payload.Receiver == "" {
		c.SendError(errs.NewError(errs.ErrInvalidParams))
		return
	}

	if payload.Content == "" && payload.File == nil {
		c.SendError(errs.NewError(errs.ErrMessageEmpty))
		return
	}

	if len(payload.Content) > MaxContentBytes {
		c.SendError(errs.NewError(errs.ErrMessageContentTooLong))
		return
	}

	view := message.View{
		Sender:    c.user,
		Receiver:  payload.Receiver,
		Content:   payload.Content,
		File:      payload.File,
		CreatedAt: time.Now().UTC(),
	}

	c.gateway.Relay(c.user.ID, view)
}

// WritePump handles writing frames from the Client.send channel to the WebSocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit
		if err := c.conn.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !c.writeQueuedFrame(frame, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedFrame handles frames pulled from the send channel, writing them to the WebSocket.
// Returns true if the WritePump loop should continue, false if it should terminate.
func (c *Client) writeQueuedFrame(frame []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Error().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Error().Err(err).Msg("Error writing frame")
		return false
	}

	return true
}

// writePingMessage sends a periodic WebSocket Ping message to maintain the connection heartbeat.
// Returns false if the WritePump loop should terminate due to write failure.
func (c *Client) writePingMessage() bool {
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

// sendEvent marshals the event and attempts to queue it on the client's send channel.
// A full queue drops the frame; relay is best effort by design.
func (c *Client) sendEvent(event Event) error {
	frameBytes, err := json.Marshal(event)
	if err != nil {
		c.logger.Error().Err(err).Msg("Error marshaling event for client")
		return err
	}

	select {
	case c.send <- frameBytes:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping frame")
		return fmt.Errorf("client send queue full")
	}
}

// SendError constructs and sends a TypeError event to the client.
func (c *Client) SendError(err error) {
	var code int
	var msg string

	var customErr *errs.CustomError
	if errors.As(err, &customErr) {
		code = customErr.Code
		msg = customErr.Message
	} else {
		code = errs.ErrUnknown
		msg = "Internal server error."
	}

	errorEvent := NewEvent(TypeError, ErrorPayload{
		Code:    code,
		Message: msg,
	})

	if err := c.sendEvent(errorEvent); err != nil {
		c.logger.Error().Err(err).Msg("Failed to queue error event")
	}
}

// SendInit constructs and sends the TypeInit event with the initial gateway state.
func (c *Client) SendInit(payload InitPayload) error {
	if err := c.sendEvent(NewEvent(TypeInit, payload)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to send INIT event.")
		return err
	}

	return nil
}

// Kick gracefully closes the client's connection by sending a custom WebSocket
// Close Frame (Code 4001) indicating that the session was replaced.
func (c *Client) Kick(reason string) {
	c.logger.Warn().
		Int("close_code", WsCloseCodeSessionKicked).
		Str("reason", reason).
		Msg("Sending WS Kick message and closing connection.")

	closeMessage := websocket.FormatCloseMessage(
		WsCloseCodeSessionKicked,
		reason,
	)

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(websocket.CloseMessage, closeMessage); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to send WS 4001 Close Message.")
	}

	select {
	case <-c.send:
	default:
		close(c.send)
	}
}
