// Package server exposes matches over WebSocket and a gRPC health endpoint.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tavernforge/tavern-server-go/internal/config"
	"github.com/tavernforge/tavern-server-go/internal/game"
	"github.com/tavernforge/tavern-server-go/internal/game/cards"
	"github.com/tavernforge/tavern-server-go/internal/match"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const sendBufferSize = 256

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type delivery struct {
	matchID string
	payload []byte
}

// Client is one WebSocket connection. It follows at most one match.
type Client struct {
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter

	mu      sync.Mutex
	matchID string
}

func (c *Client) setMatch(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.matchID = id
}

func (c *Client) match() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.matchID
}

// Hub routes client messages to the match manager and pushes notifications
// to the clients following a match.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	deliver    chan delivery
	done       chan struct{}

	manager *match.Manager
	cfg     config.WebSocketConfig
	logger  *zap.Logger
}

// NewHub creates a hub and installs itself as the manager's notification
// handler.
func NewHub(manager *match.Manager, cfg config.WebSocketConfig, logger *zap.Logger) *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, sendBufferSize),
		done:       make(chan struct{}),
		manager:    manager,
		cfg:        cfg,
		logger:     logger,
	}
	manager.SetNotificationHandler(h.notify)
	return h
}

// Run owns the client set until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				client.conn.Close()
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			if h.logger != nil {
				h.logger.Debug("client registered", zap.String("remote", client.conn.RemoteAddr().String()))
			}

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				if h.logger != nil {
					h.logger.Debug("client unregistered", zap.String("match_id", client.match()))
				}
			}

		case d := <-h.deliver:
			for client := range h.clients {
				if client.match() != d.matchID {
					continue
				}
				select {
				case client.send <- d.payload:
				default:
					if h.logger != nil {
						h.logger.Warn("client send buffer full, dropping message", zap.String("match_id", d.matchID))
					}
				}
			}
		}
	}
}

// notify forwards a match notification to the clients following the match.
func (h *Hub) notify(n match.Notification) {
	msgType := MsgCardDrawn
	if n.Type == "GAME_OVER" {
		msgType = MsgGameOver
	}
	payload, err := encode(msgType, n.MatchID, n.Data)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to encode notification", zap.Error(err))
		}
		return
	}
	select {
	case h.deliver <- delivery{matchID: n.MatchID, payload: payload}:
	case <-h.done:
	}
}

// ServeHTTP upgrades the connection and starts the client pumps.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("websocket upgrade failed", zap.Error(err))
		}
		return
	}
	if h.cfg.ReadLimit > 0 {
		conn.SetReadLimit(h.cfg.ReadLimit)
	}

	client := &Client{
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		limiter: rate.NewLimiter(rate.Limit(h.cfg.RatePerSec), h.cfg.Burst),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writePump(client)
	go h.readPump(client)
}

func (h *Hub) readPump(c *Client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && h.logger != nil {
				h.logger.Debug("websocket read failed", zap.Error(err))
			}
			return
		}

		if !c.limiter.Allow() {
			h.reply(c, MsgError, c.match(), ErrorData{Message: "rate limit exceeded"})
			continue
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			h.reply(c, MsgError, "", ErrorData{Message: "malformed message"})
			continue
		}
		if err := h.handleMessage(c, msg); err != nil {
			h.reply(c, MsgError, msg.MatchID, ErrorData{Message: err.Error()})
		}
	}
}

func (h *Hub) writePump(c *Client) {
	interval := h.cfg.PingInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			h.setWriteDeadline(c)
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			h.setWriteDeadline(c)
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) setWriteDeadline(c *Client) {
	if h.cfg.WriteTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
	}
}

// reply is only called from the client's read pump, before unregister.
func (h *Hub) reply(c *Client, msgType, matchID string, data interface{}) {
	payload, err := encode(msgType, matchID, data)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to encode reply", zap.Error(err))
		}
		return
	}
	select {
	case c.send <- payload:
	default:
		if h.logger != nil {
			h.logger.Warn("client send buffer full, dropping reply", zap.String("type", msgType))
		}
	}
}

func (h *Hub) handleMessage(c *Client, msg Message) error {
	if msg.Type == MsgCreateMatch {
		var data createMatchData
		if err := decodeData(msg, &data); err != nil {
			return err
		}
		if data.PlayerDeck != nil {
			if err := cards.DeckListFromIDs("client", data.PlayerDeck).Validate(); err != nil {
				return fmt.Errorf("invalid deck: %w", err)
			}
		}
		m, err := h.manager.CreateMatch(match.Options{Seed: data.Seed, PlayerDeck: data.PlayerDeck})
		if err != nil {
			return err
		}
		c.setMatch(m.ID)
		h.reply(c, MsgMatchState, m.ID, StateData{Applied: true, View: m.View(), Events: m.Drain(), Stats: m.Stats()})
		return nil
	}

	matchID := msg.MatchID
	if matchID == "" {
		matchID = c.match()
	}
	if matchID == "" {
		return errors.New("no match selected")
	}
	m, err := h.manager.GetMatch(matchID)
	if err != nil {
		return err
	}
	c.setMatch(m.ID)

	view, applied, err := h.dispatch(m, msg)
	if err != nil {
		return err
	}

	if h.logger != nil {
		h.logger.Debug("websocket action",
			zap.String("match_id", m.ID),
			zap.String("type", msg.Type),
			zap.Bool("applied", applied),
		)
	}
	h.reply(c, MsgMatchState, m.ID, StateData{Applied: applied, View: view, Events: m.Drain(), Stats: m.Stats()})
	return nil
}

func (h *Hub) dispatch(m *match.Match, msg Message) (game.View, bool, error) {
	switch msg.Type {
	case MsgMulligan:
		var data mulliganData
		if err := decodeData(msg, &data); err != nil {
			return game.View{}, false, err
		}
		view, applied := m.PerformMulligan(data.Indices)
		return view, applied, nil

	case MsgPlayCard:
		var data playCardData
		if err := decodeData(msg, &data); err != nil {
			return game.View{}, false, err
		}
		view, applied := m.PlayCard(data.HandIndex)
		return view, applied, nil

	case MsgCastSpell:
		var data castSpellData
		if err := decodeData(msg, &data); err != nil {
			return game.View{}, false, err
		}
		target, err := data.Target.toTarget()
		if err != nil {
			return game.View{}, false, err
		}
		view, applied := m.PlaySpellAt(data.HandIndex, target)
		return view, applied, nil

	case MsgAttack:
		var data attackData
		if err := decodeData(msg, &data); err != nil {
			return game.View{}, false, err
		}
		target, err := data.Target.toTarget()
		if err != nil {
			return game.View{}, false, err
		}
		view, applied := m.DeclareAttack(data.AttackerID, target)
		return view, applied, nil

	case MsgHeroPower:
		view, applied := m.UseHeroPower()
		return view, applied, nil

	case MsgEndTurn:
		view, applied := m.EndTurn()
		return view, applied, nil

	case MsgLethal:
		return m.View(), false, nil

	default:
		return game.View{}, false, fmt.Errorf("unknown message type %q", msg.Type)
	}
}
