package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tavernforge/tavern-server-go/internal/game/cards"
	"go.uber.org/zap/zaptest"
)

func recordedGame(t *testing.T, replay *Replay) *GameState {
	t.Helper()
	r := NewResolver(zaptest.NewLogger(t), nil)
	gs := r.NewGame(replay.MatchID, cards.BaseDeck(), cards.BaseDeck(), NewRNG(11))
	replay.RecordState(gs)
	gs = r.PerformMulligan(gs, SidePlayer, nil, NewRNG(12))
	replay.RecordState(gs)
	for i := 0; i < 4; i++ {
		gs = r.EndTurn(gs)
		replay.RecordState(gs)
	}
	return gs
}

func TestNewReplay(t *testing.T) {
	replay := NewReplay("match-123")
	assert.Equal(t, "match-123", replay.MatchID)
	assert.Equal(t, 0, replay.Position())
	assert.Equal(t, 0, replay.Size())
	assert.Nil(t, replay.Last())
	assert.Nil(t, replay.Seek(3))
	assert.Nil(t, replay.Step(1))
}

func TestReplayRecordStateCopies(t *testing.T) {
	h := newGameHarness(t)
	gs := h.emptyGame()
	replay := NewReplay(gs.MatchID)

	replay.RecordState(gs)
	gs.Player.HeroHealth = 1

	require.Equal(t, 1, replay.Size())
	assert.Equal(t, StartingHeroHealth, replay.GetStateAt(0).Player.HeroHealth)
}

func TestReplayNavigation(t *testing.T) {
	replay := NewReplay("match-nav")
	final := recordedGame(t, replay)
	require.Equal(t, 6, replay.Size())

	first := replay.Seek(0)
	require.NotNil(t, first)
	assert.False(t, first.MulliganDone)

	second := replay.Step(1)
	assert.True(t, second.MulliganDone)
	assert.Equal(t, 1, replay.Position())

	assert.Same(t, replay.GetStateAt(3), replay.Step(2))
	assert.Same(t, replay.GetStateAt(1), replay.Step(-2))

	assert.Nil(t, replay.Step(5), "stepping past the end")
	assert.Equal(t, 1, replay.Position(), "a failed step keeps the cursor")
	assert.Nil(t, replay.Step(-2))

	assert.Same(t, replay.GetStateAt(5), replay.Seek(100), "seek clamps to the last state")
	assert.Same(t, replay.GetStateAt(0), replay.Seek(-100))
	assert.Nil(t, replay.GetStateAt(6))
	assert.Nil(t, replay.GetStateAt(-1))

	assert.Equal(t, final.Checksum(), replay.Last().Checksum())
}

func TestReplaySaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	replay := NewReplay("match-save")
	recordedGame(t, replay)

	require.NoError(t, replay.SaveToFile(dir))
	_, err := os.Stat(filepath.Join(dir, "match-save.replay"))
	require.NoError(t, err)

	loaded, err := LoadReplayFromFile(dir, "match-save")
	require.NoError(t, err)
	assert.Equal(t, replay.MatchID, loaded.MatchID)
	require.Equal(t, replay.Size(), loaded.Size())
	for i := 0; i < replay.Size(); i++ {
		assert.Equal(t, replay.GetStateAt(i).Checksum(), loaded.GetStateAt(i).Checksum(), "state %d", i)
	}
}

func TestLoadReplayErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadReplayFromFile(dir, "missing")
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "garbage.replay"), []byte("not gzip"), 0644))
	_, err = LoadReplayFromFile(dir, "garbage")
	assert.Error(t, err)
}

func TestReplayRecorder(t *testing.T) {
	dir := t.TempDir()
	rec := NewReplayRecorder(zaptest.NewLogger(t), dir)
	h := newGameHarness(t)
	gs := h.emptyGame()

	rec.RecordState(gs)
	assert.Error(t, rec.SaveReplay(gs.MatchID), "nothing is kept before recording starts")

	rec.StartRecording(gs.MatchID)
	rec.RecordState(gs)
	rec.RecordState(h.resolver.UseHeroPower(gs, SidePlayer))

	require.NoError(t, rec.SaveReplay(gs.MatchID))
	assert.Error(t, rec.SaveReplay(gs.MatchID), "saved replays leave memory")

	rec.RecordState(gs)
	loaded, err := LoadReplayFromFile(dir, gs.MatchID)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Size())
	assert.True(t, loaded.Last().Player.HeroPowerUsed)
}

func TestReplayRecorderClear(t *testing.T) {
	dir := t.TempDir()
	rec := NewReplayRecorder(nil, dir)
	rec.StartRecording("m")
	rec.ClearReplay("m")

	assert.Error(t, rec.SaveReplay("m"))
	_, err := os.Stat(filepath.Join(dir, "m.replay"))
	assert.True(t, os.IsNotExist(err))
}
