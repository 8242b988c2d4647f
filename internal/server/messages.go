package server

import (
	"encoding/json"
	"fmt"

	"github.com/tavernforge/tavern-server-go/internal/game"
	"github.com/tavernforge/tavern-server-go/internal/game/rules"
	"github.com/tavernforge/tavern-server-go/internal/game/watchers"
)

// Client message types.
const (
	MsgCreateMatch = "create_match"
	MsgMulligan    = "mulligan"
	MsgPlayCard    = "play_card"
	MsgCastSpell   = "cast_spell"
	MsgAttack      = "attack"
	MsgHeroPower   = "hero_power"
	MsgEndTurn     = "end_turn"
	MsgLethal      = "lethal"
)

// Server message types.
const (
	MsgMatchState = "match_state"
	MsgCardDrawn  = "card_drawn"
	MsgGameOver   = "game_over"
	MsgError      = "error"
)

// Message is the envelope for both directions.
type Message struct {
	Type    string          `json:"type"`
	MatchID string          `json:"match_id,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type createMatchData struct {
	Seed       int64    `json:"seed"`
	PlayerDeck []string `json:"player_deck"`
}

type mulliganData struct {
	Indices []int `json:"indices"`
}

type playCardData struct {
	HandIndex int `json:"hand_index"`
}

// TargetData names a hero by side or a minion by instance id.
type TargetData struct {
	Side     string `json:"side,omitempty"`
	MinionID string `json:"minion_id,omitempty"`
}

func (t TargetData) toTarget() (game.Target, error) {
	if t.MinionID != "" {
		return game.MinionTarget(t.MinionID), nil
	}
	side, err := game.ParseSide(t.Side)
	if err != nil {
		return game.Target{}, fmt.Errorf("invalid target: %w", err)
	}
	return game.HeroTarget(side), nil
}

type castSpellData struct {
	HandIndex int        `json:"hand_index"`
	Target    TargetData `json:"target"`
}

type attackData struct {
	AttackerID string     `json:"attacker_id"`
	Target     TargetData `json:"target"`
}

// StateData is the payload of match_state.
type StateData struct {
	Applied bool           `json:"applied"`
	View    game.View      `json:"view"`
	Events  []rules.Event  `json:"events,omitempty"`
	Stats   watchers.Stats `json:"stats"`
}

// ErrorData is the payload of error.
type ErrorData struct {
	Message string `json:"message"`
}

func encode(msgType, matchID string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", msgType, err)
	}
	return json.Marshal(Message{Type: msgType, MatchID: matchID, Data: raw})
}

func decodeData(msg Message, v interface{}) error {
	if len(msg.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		return fmt.Errorf("malformed %s data: %w", msg.Type, err)
	}
	return nil
}
