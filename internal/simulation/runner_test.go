package simulation

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tavernforge/tavern-server-go/internal/game/cards"
	"go.uber.org/zap/zaptest"
)

func TestPlayGameIsDeterministic(t *testing.T) {
	cfg := Config{MaxTurns: 60}
	a := PlayGame(0, 42, cfg)
	b := PlayGame(0, 42, cfg)

	assert.Equal(t, a, b)
	assert.NotEqual(t, "none", a.Winner, "fatigue ends every game within the cap")
	assert.Greater(t, a.Turns, 1)
}

func TestPlayGameRespectsTurnCap(t *testing.T) {
	result := PlayGame(3, 7, Config{MaxTurns: 2})

	assert.LessOrEqual(t, result.Turns, 3)
	assert.Equal(t, "none", result.Winner)
}

func TestRunnerAggregates(t *testing.T) {
	runner := NewRunner(Config{Games: 12, Workers: 4, Seed: 100, MaxTurns: 60}, zaptest.NewLogger(t))
	var calls atomic.Int32
	runner.OnProgress(func(done int) { calls.Add(1) })

	report, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 12, report.Games)
	assert.Equal(t, int32(12), calls.Load())
	assert.Equal(t, 12, report.PlayerWins+report.OpponentWins+report.Draws+report.Unfinished)
	require.Len(t, report.Results, 12)
	for i, r := range report.Results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, int64(100+i), r.Seed)
	}
	assert.Greater(t, report.AvgTurns, 0.0)
}

func TestRunnerIsReproducibleAcrossWorkerCounts(t *testing.T) {
	serial, err := NewRunner(Config{Games: 6, Workers: 1, Seed: 9}, nil).Run(context.Background())
	require.NoError(t, err)
	parallel, err := NewRunner(Config{Games: 6, Workers: 6, Seed: 9}, nil).Run(context.Background())
	require.NoError(t, err)

	for i := range serial.Results {
		assert.Equal(t, serial.Results[i].Checksum, parallel.Results[i].Checksum)
	}
}

func TestRunnerRejectsEmptyBatch(t *testing.T) {
	_, err := NewRunner(Config{}, nil).Run(context.Background())
	assert.Error(t, err)
}

func TestRunnerHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(Config{Games: 50, Workers: 1}, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCustomDecks(t *testing.T) {
	deck := make([]string, 0, 20)
	for i := 0; i < 10; i++ {
		deck = append(deck, cards.YoungWarrior, cards.ArcaneBolt)
	}
	result := PlayGame(0, 5, Config{PlayerDeck: deck, MaxTurns: 60})
	assert.NotEmpty(t, result.Checksum)
}

func TestCollectorFinalize(t *testing.T) {
	c := NewCollector(Config{Games: 3})
	c.Record(GameResult{Index: 2, Winner: "draw", Turns: 10, Keywords: map[string]int{"POISON_KILL": 1}})
	c.Record(GameResult{Index: 0, Winner: "player", Turns: 20})
	c.Record(GameResult{Index: 1, Winner: "opponent", Turns: 30, Keywords: map[string]int{"POISON_KILL": 2}})

	r := c.Finalize()

	assert.Equal(t, 1, r.PlayerWins)
	assert.Equal(t, 1, r.OpponentWins)
	assert.Equal(t, 1, r.Draws)
	assert.Equal(t, 20.0, r.AvgTurns)
	assert.Equal(t, 3, r.Keywords["POISON_KILL"])
	assert.Equal(t, 0, r.Results[0].Index)
	assert.InDelta(t, 1.0/3.0, r.PlayerWinRate(), 1e-9)
}
