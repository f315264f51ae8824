// Package ws repassa os anúncios de liquidação para clientes websocket.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/radieske/esports-bet-bot/pkg/contracts/events"
)

// ClientMsg é a única mensagem aceita do cliente.
type ClientMsg struct {
	Type string `json:"type"` // ping
}

// Hub gerencia as conexões abertas. Toda escrita passa por writeMu,
// já que uma conexão gorilla aceita um único escritor por vez.
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	conns    map[*websocket.Conn]struct{}
	writeMu  sync.Mutex
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		conns:    make(map[*websocket.Conn]struct{}),
	}
}

// HandleWS mantém a conexão registrada até o cliente desconectar.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		if msg.Type == "ping" {
			h.writeMu.Lock()
			_ = conn.WriteJSON(map[string]string{"type": "pong"})
			h.writeMu.Unlock()
		}
	}

	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
}

// Len retorna quantos clientes estão conectados.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Broadcast envia o anúncio a todos os clientes conectados.
func (h *Hub) Broadcast(a events.Announcement) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	if len(conns) == 0 {
		return
	}

	b, _ := json.Marshal(a)
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	for _, c := range conns {
		_ = c.WriteMessage(websocket.TextMessage, b)
	}
}

// Announce permite usar o hub diretamente como bot.Announcer quando não há Redis.
func (h *Hub) Announce(_ context.Context, text string) error {
	h.Broadcast(events.Announcement{Type: "settlement", Text: text, TsUnixMs: time.Now().UnixMilli()})
	return nil
}
