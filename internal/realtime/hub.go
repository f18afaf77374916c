// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package realtime pushes live dashboard updates to connected admin
// clients over WebSocket.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// UpdateMessage is the envelope broadcast to every dashboard client
// after a successful mutation.
type UpdateMessage struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
}

// Hub maintains active WebSocket connections and broadcasts messages.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound messages to all clients
	broadcast chan []byte

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	mu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates a new hub. Call Run in a goroutine to start it.
func NewHub(ctx context.Context) *Hub {
	hubCtx, cancel := context.WithCancel(ctx)
	return &Hub{
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		ctx:        hubCtx,
		cancel:     cancel,
	}
}

// Run processes register, unregister, and broadcast events until the
// hub is stopped.
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client buffer full, drop the connection
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Stop shuts down the hub and disconnects all clients.
func (h *Hub) Stop() {
	h.cancel()
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

// Publish broadcasts a dashboard update for an entity mutation.
// Fire-and-forget: a full broadcast queue or stopped hub drops the
// message rather than slowing down the write path.
func (h *Hub) Publish(entity, action string) {
	msg := UpdateMessage{
		Type:      "dashboard-update",
		Timestamp: time.Now().UTC(),
		Entity:    entity,
		Action:    action,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshaling dashboard update", "error", err)
		return
	}

	select {
	case h.broadcast <- data:
	case <-h.ctx.Done():
	default:
		slog.Warn("dashboard update dropped, broadcast queue full", "entity", entity, "action", action)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
