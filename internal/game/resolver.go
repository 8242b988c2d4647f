package game

import (
	"math/rand/v2"

	"github.com/tavernforge/tavern-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// Resolver applies rule transitions to game states. Every exported method
// takes a snapshot and returns either a modified clone or, when the action is
// rejected, the very snapshot it was given.
type Resolver struct {
	logger *zap.Logger
	sink   rules.EventSink
}

// NewResolver creates a resolver. Both arguments may be nil.
func NewResolver(logger *zap.Logger, sink rules.EventSink) *Resolver {
	if sink == nil {
		sink = rules.DiscardSink{}
	}
	return &Resolver{
		logger: logger,
		sink:   sink,
	}
}

// NewRNG returns a seedable random source for shuffling.
func NewRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// NewGame shuffles both decks, deals the starting hand to the player and
// leaves the match in the mulligan phase. The opponent starts with an empty
// hand and draws on each of its upkeeps.
func (r *Resolver) NewGame(matchID string, playerDeck, opponentDeck []string, rng *rand.Rand) *GameState {
	if rng == nil {
		rng = NewRNG(1)
	}

	gs := &GameState{
		MatchID:    matchID,
		Player:     newPlayerState(cloneStrings(playerDeck)),
		Opponent:   newPlayerState(cloneStrings(opponentDeck)),
		Turn:       SidePlayer,
		TurnNumber: 1,
	}
	shuffle(rng, gs.Player.Deck)
	shuffle(rng, gs.Opponent.Deck)

	gs.addLog("Match started")
	r.publish(gs, rules.Event{Type: rules.EventGameStarted})
	r.drawCards(gs, SidePlayer, StartingHandSize)

	if r.logger != nil {
		r.logger.Info("game created",
			zap.String("match_id", matchID),
			zap.Int("player_deck", len(playerDeck)),
			zap.Int("opponent_deck", len(opponentDeck)),
		)
	}
	return gs
}

func shuffle(rng *rand.Rand, deck []string) {
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}

// canAct returns a rejection reason when side may not take a turn action.
func canAct(gs *GameState, side Side) (string, bool) {
	switch {
	case gs.IsOver():
		return "game is over", false
	case !gs.MulliganDone:
		return "mulligan pending", false
	case gs.Turn != side:
		return "not your turn", false
	}
	return "", true
}

func (r *Resolver) reject(gs *GameState, action string, side Side, reason string) *GameState {
	if r.logger != nil {
		r.logger.Debug("action rejected",
			zap.String("match_id", gs.MatchID),
			zap.String("action", action),
			zap.String("side", side.String()),
			zap.String("reason", reason),
		)
	}
	return gs
}

func (r *Resolver) publish(gs *GameState, event rules.Event) {
	event.MatchID = gs.MatchID
	event.Turn = gs.TurnNumber
	r.sink.Publish(event)
}

// checkWinner sets the winner once a hero has fallen. Both heroes falling in
// the same step is a draw.
func (r *Resolver) checkWinner(gs *GameState) {
	if gs.IsOver() {
		return
	}
	playerDead := gs.Player.HeroHealth <= 0
	opponentDead := gs.Opponent.HeroHealth <= 0
	switch {
	case playerDead && opponentDead:
		gs.Winner = WinnerDraw
		gs.addLog("Both heroes fall: the match is a draw")
	case playerDead:
		gs.Winner = WinnerOpponent
		gs.addLog("The opponent wins")
	case opponentDead:
		gs.Winner = WinnerPlayer
		gs.addLog("The player wins")
	default:
		return
	}

	r.publish(gs, rules.Event{Type: rules.EventGameOver, Description: gs.Winner.String()})
	if r.logger != nil {
		r.logger.Info("game over",
			zap.String("match_id", gs.MatchID),
			zap.String("winner", gs.Winner.String()),
			zap.Int("turn", gs.TurnNumber),
		)
	}
}
