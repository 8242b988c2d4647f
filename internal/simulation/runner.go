package simulation

import (
	"context"
	"fmt"
	"runtime"

	"github.com/tavernforge/tavern-server-go/internal/game"
	"github.com/tavernforge/tavern-server-go/internal/game/ai"
	"github.com/tavernforge/tavern-server-go/internal/game/cards"
	"github.com/tavernforge/tavern-server-go/internal/game/rules"
	"github.com/tavernforge/tavern-server-go/internal/game/watchers"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config controls a simulation batch.
type Config struct {
	Games        int      `json:"games"`
	Workers      int      `json:"workers"`
	Seed         int64    `json:"seed"`
	MaxTurns     int      `json:"max_turns"`
	PlayerDeck   []string `json:"player_deck,omitempty"`
	OpponentDeck []string `json:"opponent_deck,omitempty"`
}

// DefaultMaxTurns caps a single simulated game.
const DefaultMaxTurns = 30

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.MaxTurns <= 0 {
		c.MaxTurns = DefaultMaxTurns
	}
	if c.PlayerDeck == nil {
		c.PlayerDeck = cards.BaseDeck()
	}
	if c.OpponentDeck == nil {
		c.OpponentDeck = cards.BaseDeck()
	}
	return c
}

// Runner plays greedy self-play games against the planner.
type Runner struct {
	cfg      Config
	logger   *zap.Logger
	progress func(done int)
}

// NewRunner creates a runner.
func NewRunner(cfg Config, logger *zap.Logger) *Runner {
	return &Runner{
		cfg:    cfg.withDefaults(),
		logger: logger,
	}
}

// OnProgress registers a callback invoked after every finished game. It may
// be called from several goroutines.
func (r *Runner) OnProgress(fn func(done int)) {
	r.progress = fn
}

// Run plays cfg.Games games with at most cfg.Workers in flight. Game i uses
// seed cfg.Seed+i, so the report does not depend on scheduling.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if r.cfg.Games <= 0 {
		return nil, fmt.Errorf("games must be positive, got %d", r.cfg.Games)
	}
	collector := NewCollector(r.cfg)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for i := 0; i < r.cfg.Games; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result := PlayGame(i, r.cfg.Seed+int64(i), r.cfg)
			done := collector.Record(result)
			if r.progress != nil {
				r.progress(done)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("simulation aborted: %w", err)
	}

	report := collector.Finalize()
	if r.logger != nil {
		r.logger.Info("simulation finished",
			zap.Int("games", report.Games),
			zap.Int("player_wins", report.PlayerWins),
			zap.Int("opponent_wins", report.OpponentWins),
			zap.Int("draws", report.Draws),
			zap.Int("unfinished", report.Unfinished),
			zap.Float64("avg_turns", report.AvgTurns),
		)
	}
	return report, nil
}

// PlayGame runs one game to completion or the turn cap. It is deterministic
// for a given seed and config.
func PlayGame(index int, seed int64, cfg Config) GameResult {
	cfg = cfg.withDefaults()

	registry := rules.NewWatcherRegistry()
	drawn := map[game.Side]*watchers.CardsDrawnWatcher{
		game.SidePlayer:   watchers.NewCardsDrawnWatcher(game.SidePlayer.String()),
		game.SideOpponent: watchers.NewCardsDrawnWatcher(game.SideOpponent.String()),
	}
	died := watchers.NewMinionsDiedWatcher()
	spells := watchers.NewSpellsCastWatcher()
	keywords := watchers.NewKeywordWatcher()
	for _, w := range []rules.Watcher{drawn[game.SidePlayer], drawn[game.SideOpponent], died, spells, keywords} {
		registry.AddWatcher(w)
	}

	resolver := game.NewResolver(nil, registry)
	rng := game.NewRNG(seed)
	policies := map[game.Side]ai.Policy{
		game.SidePlayer:   ai.NewGreedyPolicy(resolver, game.SidePlayer, rng, nil),
		game.SideOpponent: ai.NewPlanner(resolver, nil),
	}

	matchID := fmt.Sprintf("sim-%d", index)
	gs := resolver.NewGame(matchID, cfg.PlayerDeck, cfg.OpponentDeck, rng)
	gs = resolver.PerformMulligan(gs, game.SidePlayer, ai.MulliganPicks(gs.Player.Hand), rng)

	for !gs.IsOver() && gs.TurnNumber <= cfg.MaxTurns {
		next := policies[gs.Turn].PlayTurn(gs)
		if next == gs {
			break
		}
		gs = next
	}

	return GameResult{
		Index:          index,
		Seed:           seed,
		Winner:         gs.Winner.String(),
		Turns:          gs.TurnNumber,
		PlayerHealth:   gs.Player.HeroHealth,
		OpponentHealth: gs.Opponent.HeroHealth,
		MinionsDied:    died.GetTotalAmount(),
		SpellsCast:     spells.GetCount(game.SidePlayer.String()) + spells.GetCount(game.SideOpponent.String()),
		CardsBurned:    drawn[game.SidePlayer].GetBurned() + drawn[game.SideOpponent].GetBurned(),
		FatigueDamage:  drawn[game.SidePlayer].GetFatigueDamage() + drawn[game.SideOpponent].GetFatigueDamage(),
		Keywords:       keywords.Counts(),
		Checksum:       gs.Checksum(),
	}
}
