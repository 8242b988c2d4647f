package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tavernforge/tavern-server-go/internal/game/cards"
	"github.com/tavernforge/tavern-server-go/internal/simulation"
	"go.uber.org/zap/zaptest"
)

func sampleReport(at time.Time, games int) *simulation.Report {
	return &simulation.Report{
		GeneratedAt:  at,
		Config:       simulation.Config{Games: games, Workers: 2, Seed: 4, MaxTurns: 30},
		Games:        games,
		PlayerWins:   games / 2,
		OpponentWins: games - games/2,
		AvgTurns:     14.5,
		Keywords:     map[string]int{"POISON_KILL": 3},
		Results:      []simulation.GameResult{{Index: 0, Seed: 4, Winner: "player", Turns: 15, Checksum: "abc"}},
	}
}

func TestSQLiteStoreReports(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(ctx, ":memory:", zaptest.NewLogger(t))
	require.NoError(t, err)
	defer store.Close()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	firstID, err := store.SaveReport(ctx, sampleReport(base, 10))
	require.NoError(t, err)
	secondID, err := store.SaveReport(ctx, sampleReport(base.Add(time.Hour), 20))
	require.NoError(t, err)

	list, err := store.ListReports(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, secondID, list[0].ID, "newest first")
	assert.Equal(t, firstID, list[1].ID)
	assert.Equal(t, 20, list[0].Games)
	assert.True(t, list[1].GeneratedAt.Equal(base))

	got, err := store.GetReport(ctx, firstID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Keywords["POISON_KILL"])
	require.Len(t, got.Results, 1)
	assert.Equal(t, "abc", got.Results[0].Checksum)

	_, err = store.GetReport(ctx, "nope")
	assert.True(t, errors.Is(err, ErrReportNotFound))

	limited, err := store.ListReports(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteStoreDecks(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(ctx, ":memory:", nil)
	require.NoError(t, err)
	defer store.Close()

	deck := cards.BaseDeckList()
	require.NoError(t, store.SaveDeck(ctx, deck))

	got, err := store.LoadDeck(ctx, "base")
	require.NoError(t, err)
	assert.Equal(t, deck, got)

	deck.Cards = deck.Cards[:5]
	require.NoError(t, store.SaveDeck(ctx, deck), "saving again replaces the deck")
	got, err = store.LoadDeck(ctx, "base")
	require.NoError(t, err)
	assert.Len(t, got.Cards, 5)

	_, err = store.LoadDeck(ctx, "missing")
	assert.True(t, errors.Is(err, ErrDeckNotFound))

	bad := &cards.DeckList{Name: "bad", Cards: []cards.DeckEntry{{ID: "c_missing", Count: 1}}}
	err = store.SaveDeck(ctx, bad)
	assert.True(t, errors.Is(err, cards.ErrUnknownCard))
}

func TestCatalogRow(t *testing.T) {
	for _, c := range cards.All() {
		row := catalogRow(c)
		assert.Equal(t, c.ID, row.id)
		if c.IsMinion() {
			require.NotNil(t, row.attack)
			assert.Equal(t, c.Minion.Attack, *row.attack)
		} else {
			assert.Nil(t, row.health)
			assert.Empty(t, row.keywords)
		}
	}
	shield := catalogRow(cards.MustLookup(cards.ShieldBearer))
	assert.Equal(t, "taunt,divine_shield", shield.keywords)
}
