package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tavernforge/tavern-server-go/internal/config"
	"github.com/tavernforge/tavern-server-go/internal/game/cards"
	"github.com/tavernforge/tavern-server-go/internal/match"
	"go.uber.org/zap/zaptest"
)

type hubHarness struct {
	t       *testing.T
	manager *match.Manager
	server  *httptest.Server
	conn    *websocket.Conn
	pending []Message
}

func newHubHarness(t *testing.T, cfg config.WebSocketConfig) *hubHarness {
	t.Helper()
	logger := zaptest.NewLogger(t)
	manager := match.NewManager(logger, nil)
	hub := NewHub(manager, cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(hub)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		srv.Close()
		cancel()
	})
	return &hubHarness{t: t, manager: manager, server: srv, conn: conn}
}

func defaultWSConfig() config.WebSocketConfig {
	return config.WebSocketConfig{ReadLimit: 4096, RatePerSec: 100, Burst: 100, WriteTimeout: time.Second}
}

func (h *hubHarness) send(msgType string, data interface{}) {
	h.t.Helper()
	msg := map[string]interface{}{"type": msgType}
	if data != nil {
		msg["data"] = data
	}
	require.NoError(h.t, h.conn.WriteJSON(msg))
}

// next returns the first message of msgType, buffering the others since
// notifications and replies can interleave.
func (h *hubHarness) next(msgType string) Message {
	h.t.Helper()
	for i, msg := range h.pending {
		if msg.Type == msgType {
			h.pending = append(h.pending[:i], h.pending[i+1:]...)
			return msg
		}
	}
	deadline := time.Now().Add(5 * time.Second)
	for {
		require.NoError(h.t, h.conn.SetReadDeadline(deadline))
		var msg Message
		require.NoError(h.t, h.conn.ReadJSON(&msg))
		if msg.Type == msgType {
			return msg
		}
		h.pending = append(h.pending, msg)
	}
}

func (h *hubHarness) state() StateData {
	h.t.Helper()
	msg := h.next(MsgMatchState)
	var data StateData
	require.NoError(h.t, json.Unmarshal(msg.Data, &data))
	return data
}

func (h *hubHarness) errorMessage() string {
	h.t.Helper()
	msg := h.next(MsgError)
	var data ErrorData
	require.NoError(h.t, json.Unmarshal(msg.Data, &data))
	return data.Message
}

func TestHubMatchFlow(t *testing.T) {
	h := newHubHarness(t, defaultWSConfig())

	h.send(MsgCreateMatch, map[string]interface{}{"seed": 5})
	created := h.state()
	assert.True(t, created.Applied)
	assert.Equal(t, "MULLIGAN", created.View.Phase)
	assert.Equal(t, 3, created.Stats.Player.CardsDrawn)
	require.NotEmpty(t, created.View.MatchID)
	assert.Equal(t, 1, h.manager.GetActiveMatchCount())

	h.send(MsgEndTurn, nil)
	assert.False(t, h.state().Applied, "end turn waits for the mulligan")

	h.send(MsgMulligan, map[string]interface{}{"indices": []int{}})
	st := h.state()
	assert.True(t, st.Applied)
	assert.Equal(t, "PLAYER_TURN", st.View.Phase)

	h.send(MsgEndTurn, nil)
	st = h.state()
	assert.True(t, st.Applied)
	assert.Equal(t, 2, st.View.Player.MaxMana)
	assert.NotEmpty(t, st.Events)
	assert.Equal(t, 1, st.Stats.Opponent.CardsDrawn)
	assert.GreaterOrEqual(t, st.Stats.Player.CardsDrawn, 4)

	drawn := h.next(MsgCardDrawn)
	assert.Equal(t, created.View.MatchID, drawn.MatchID)

	h.send(MsgLethal, nil)
	st = h.state()
	assert.False(t, st.Applied)
	assert.False(t, st.View.Lethal)

	h.send(MsgHeroPower, nil)
	st = h.state()
	assert.True(t, st.Applied)
	assert.True(t, st.View.Player.HeroPowerUsed)
}

func TestHubRejectsBadInput(t *testing.T) {
	h := newHubHarness(t, defaultWSConfig())

	h.send(MsgEndTurn, nil)
	assert.Equal(t, "no match selected", h.errorMessage())

	require.NoError(t, h.conn.WriteMessage(websocket.TextMessage, []byte("{nope")))
	assert.Equal(t, "malformed message", h.errorMessage())

	h.send(MsgCreateMatch, map[string]interface{}{"player_deck": []string{"c_missing"}})
	assert.Contains(t, h.errorMessage(), "unknown card")

	h.send(MsgCreateMatch, nil)
	h.state()

	h.send("teleport", nil)
	assert.Contains(t, h.errorMessage(), "unknown message type")

	h.send(MsgAttack, map[string]interface{}{"attacker_id": "m1", "target": map[string]string{"side": "nobody"}})
	assert.Contains(t, h.errorMessage(), "invalid target")

	h.send(MsgPlayCard, "not an object")
	assert.Contains(t, h.errorMessage(), "malformed play_card data")

	require.NoError(t, h.conn.WriteJSON(Message{Type: MsgEndTurn, MatchID: "missing"}))
	assert.Contains(t, h.errorMessage(), "match not found")
}

func TestHubEnforcesDeckLimits(t *testing.T) {
	h := newHubHarness(t, defaultWSConfig())

	h.send(MsgCreateMatch, map[string]interface{}{"player_deck": []string{cards.YoungWarrior, cards.Berserker, cards.Fireball}})
	assert.Contains(t, h.errorMessage(), "deck size 3 outside")

	tooMany := cards.BaseDeck()
	tooMany = append(tooMany, cards.Fireball)
	h.send(MsgCreateMatch, map[string]interface{}{"player_deck": tooMany})
	assert.Contains(t, h.errorMessage(), "at most 2 copies")
	assert.Equal(t, 0, h.manager.GetActiveMatchCount())

	h.send(MsgCreateMatch, map[string]interface{}{"player_deck": cards.BaseDeck()})
	assert.True(t, h.state().Applied)
	assert.Equal(t, 1, h.manager.GetActiveMatchCount())
}

func TestHubRateLimit(t *testing.T) {
	cfg := defaultWSConfig()
	cfg.RatePerSec = 0.01
	cfg.Burst = 1
	h := newHubHarness(t, cfg)

	h.send(MsgLethal, nil)
	assert.Equal(t, "no match selected", h.errorMessage())
	h.send(MsgLethal, nil)
	assert.Equal(t, "rate limit exceeded", h.errorMessage())
}

func TestTargetData(t *testing.T) {
	target, err := TargetData{MinionID: "m7"}.toTarget()
	require.NoError(t, err)
	assert.Equal(t, "minion m7", target.String())

	target, err = TargetData{Side: "opponent"}.toTarget()
	require.NoError(t, err)
	assert.Equal(t, "opponent hero", target.String())

	_, err = TargetData{}.toTarget()
	assert.Error(t, err)
}
