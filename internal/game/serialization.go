package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"strings"
)

// Checksum returns a SHA-256 over a canonical text form of the state. Two
// states with equal checksums are rule-equivalent; replays and simulation
// reproducibility checks compare them.
func (gs *GameState) Checksum() string {
	sum := sha256.Sum256([]byte(gs.canonical()))
	return hex.EncodeToString(sum[:])
}

func (gs *GameState) canonical() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "GAME:%s|%s|%d|%s|%t|%d\n",
		gs.MatchID, gs.Turn, gs.TurnNumber, gs.Winner, gs.MulliganDone, gs.Seq)

	for _, side := range []Side{SidePlayer, SideOpponent} {
		p := gs.For(side)
		if p == nil {
			fmt.Fprintf(&buf, "SIDE:%s|nil\n", side)
			continue
		}
		fmt.Fprintf(&buf, "SIDE:%s|%d|%d|%d|%t|%d\n",
			side, p.HeroHealth, p.Mana, p.MaxMana, p.HeroPowerUsed, p.Fatigue)
		fmt.Fprintf(&buf, "  DECK:%s\n", strings.Join(p.Deck, ","))
		fmt.Fprintf(&buf, "  HAND:%s\n", strings.Join(p.Hand, ","))
		for _, m := range p.Board {
			fmt.Fprintf(&buf, "  MINION:%s|%s|%d|%d|%t|%t|%t\n",
				m.ID, m.CardID, m.Attack, m.Health, m.CanAttack, m.JustSummoned, m.DivineShield)
		}
	}

	fmt.Fprintf(&buf, "LOG:%d\n", len(gs.Log))
	for _, line := range gs.Log {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return buf.String()
}

// SerializeToBytes encodes the state with gob.
func (gs *GameState) SerializeToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(gs); err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return buf.Bytes(), nil
}

// DeserializeFromBytes decodes a state written by SerializeToBytes.
func DeserializeFromBytes(data []byte) (*GameState, error) {
	var gs GameState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&gs); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	return &gs, nil
}

// ValidateSerializationRoundtrip checks that a state survives encoding with
// its checksum intact.
func ValidateSerializationRoundtrip(gs *GameState) error {
	data, err := gs.SerializeToBytes()
	if err != nil {
		return err
	}
	decoded, err := DeserializeFromBytes(data)
	if err != nil {
		return err
	}
	if want, got := gs.Checksum(), decoded.Checksum(); want != got {
		return fmt.Errorf("checksum mismatch after roundtrip: %s != %s", want, got)
	}
	return nil
}
