/*
Package chat contains the real-time gateway: live connection management and
best-effort message relay between authenticated clients.

This file defines the Gateway struct, the single owner of all admitted
connections. One event loop serializes registration, deregistration, and relay
fan-out; there is no per-user queueing for offline recipients — undelivered
relays are dropped and durability comes solely from the REST write path.
*/
package chat

import (
	"sync"

	"github.com/rs/zerolog"

	"dmchat/internal/app/message"
	"dmchat/internal/configs"
	"dmchat/internal/pkg/logx"
)

const relayChannelBuffer = 1024

// relayRequest is an internal unit of fan-out work for the gateway loop.
type relayRequest struct {
	senderID string
	view     message.View
}

// Gateway coordinates every admitted real-time connection, keyed by user id.
type Gateway struct {
	// clients maps a verified user id to its single live connection.
	clients map[string]*Client

	// relayPolicy selects targeted or broadcast fan-out (configs.Relay*).
	relayPolicy string

	// a channel for admitted clients joining the gateway.
	register chan *Client

	// a channel for clients leaving the gateway.
	unregister chan *Client

	// a buffered channel of relay requests from connections and the REST path.
	relay chan relayRequest

	// used to signal the Gateway to stop its run loop immediately.
	stop chan struct{}

	// mu protects access to the clients map for readers outside the run loop.
	mu sync.RWMutex

	// wg is used to wait for the run loop to finish during shutdown.
	wg sync.WaitGroup

	// structured logger with Gateway context.
	logger zerolog.Logger
}

// NewGateway constructs a Gateway with the given relay policy and starts its run loop.
func NewGateway(relayPolicy string) *Gateway {
	gatewayLogger := logx.Logger().With().
		Str("component", "Gateway").
		Str("relay_policy", relayPolicy).
		Logger()

	g := &Gateway{
		clients:     make(map[string]*Client),
		relayPolicy: relayPolicy,
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		relay:       make(chan relayRequest, relayChannelBuffer),
		stop:        make(chan struct{}),
		logger:      gatewayLogger,
	}

	g.wg.Add(1)
	go g.run()

	return g
}

// run is the main event loop for the Gateway. It is the only writer of the
// clients map.
func (g *Gateway) run() {
	defer g.wg.Done()

	g.logger.Info().Msg("Gateway loop started.")

	for {
		select {
		case client := <-g.register:
			g.admitClient(client)

		case client := <-g.unregister:
			g.removeClient(client)

		case req := <-g.relay:
			g.fanOut(req)

		case <-g.stop:
			g.logger.Info().Msg("Gateway stop initiated.")
			g.closeAllClients()
			return
		}
	}
}

// admitClient binds the client's connection to its user id. A previous
// connection for the same user id is kicked and replaced.
func (g *Gateway) admitClient(client *Client) {
	userID := client.user.ID

	g.mu.Lock()

	if existing, ok := g.clients[userID]; ok {
		g.logger.Warn().
			Str("user_id", userID).
			Msg("User already connected. Closing old connection for replacement.")

		existing.Kick("Session replaced by new connection. Check other tabs.")
	}

	g.clients[userID] = client

	onlineIDs := make([]string, 0, len(g.clients))
	for id := range g.clients {
		onlineIDs = append(onlineIDs, id)
	}

	total := len(g.clients)
	g.mu.Unlock()

	g.logger.Info().
		Str("user_id", userID).
		Int("total_connections", total).
		Msg("Client admitted.")

	if err := client.SendInit(InitPayload{User: client.user, OnlineUserIDs: onlineIDs}); err != nil {
		g.removeClient(client)
		return
	}

	g.fanOutPresence(NewEvent(TypeUserOnline, PresencePayload{UserID: userID}), userID)
}

// removeClient unbinds the client if it is still the current connection for
// its user id. Stale connections (already replaced) are ignored.
func (g *Gateway) removeClient(client *Client) {
	userID := client.user.ID

	g.mu.Lock()

	current, ok := g.clients[userID]
	if ok && current == client {
		delete(g.clients, userID)

		select {
		case <-client.send:
		default:
			close(client.send)
		}

		total := len(g.clients)
		g.mu.Unlock()

		g.logger.Info().
			Str("user_id", userID).
			Int("total_connections", total).
			Msg("Client left gateway.")

		g.fanOutPresence(NewEvent(TypeUserOffline, PresencePayload{UserID: userID}), userID)
		return
	}

	g.mu.Unlock()

	if ok {
		g.logger.Info().
			Str("stale_user_id", userID).
			Msg("Ignoring unregister for stale connection.")
	} else {
		g.logger.Warn().
			Str("user_id", userID).
			Msg("Unregister for unknown/already removed client.")
	}
}

// fanOut delivers a relayed message according to the configured policy.
// Delivery is best effort: offline receivers and full send queues drop frames.
func (g *Gateway) fanOut(req relayRequest) {
	event := NewEvent(TypeMessage, req.view)

	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.relayPolicy == configs.RelayBroadcast {
		for id, client := range g.clients {
			if id == req.senderID {
				continue
			}
			if err := client.sendEvent(event); err != nil {
				g.logger.Warn().Str("user_id", id).Msg("Dropped broadcast relay frame.")
			}
		}
		return
	}

	// targeted: deliver only to the connection bound to the named receiver id.
	receiver, ok := g.clients[req.view.Receiver]
	if !ok {
		g.logger.Debug().
			Str("receiver_id", req.view.Receiver).
			Msg("Relay receiver offline, dropping frame.")
		return
	}

	if err := receiver.sendEvent(event); err != nil {
		g.logger.Warn().Str("user_id", req.view.Receiver).Msg("Dropped targeted relay frame.")
	}
}

// fanOutPresence sends a presence event to every connection except excludeID.
func (g *Gateway) fanOutPresence(event Event, excludeID string) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for id, client := range g.clients {
		if id == excludeID {
			continue
		}
		if err := client.sendEvent(event); err != nil {
			g.logger.Warn().Str("user_id", id).Msg("Dropped presence frame.")
		}
	}
}

// closeAllClients closes every connection's send channel during shutdown.
func (g *Gateway) closeAllClients() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, client := range g.clients {
		select {
		case <-client.send:
		default:
			close(client.send)
		}
	}
	g.clients = make(map[string]*Client)
}

// RegisterClient queues an admitted client for registration.
func (g *Gateway) RegisterClient(client *Client) {
	select {
	case g.register <- client:
	case <-g.stop:
		client.logger.Warn().Msg("Gateway stopped, rejecting registration.")
	}
}

// Relay queues a message view for fan-out. Used both by connections (inbound
// MESSAGE events) and by the Chat API after a durable write.
func (g *Gateway) Relay(senderID string, view message.View) {
	select {
	case g.relay <- relayRequest{senderID: senderID, view: view}:
	default:
		g.logger.Warn().Msg("Relay channel full, dropping frame.")
	}
}

// IsOnline reports whether the given user id currently has a live connection.
func (g *Gateway) IsOnline(userID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, ok := g.clients[userID]
	return ok
}

// OnlineUserIDs returns the ids of all currently connected users.
func (g *Gateway) OnlineUserIDs() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ids := make([]string, 0, len(g.clients))
	for id := range g.clients {
		ids = append(ids, id)
	}
	return ids
}

// Shutdown stops the gateway loop and closes every connection.
func (g *Gateway) Shutdown() {
	g.logger.Info().Msg("Shutting down Gateway...")

	select {
	case <-g.stop:
	default:
		close(g.stop)
	}

	g.wg.Wait()

	g.logger.Info().Msg("Gateway shutdown complete.")
}
