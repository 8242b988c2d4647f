package watchers

import (
	"github.com/tavernforge/tavern-server-go/internal/game/rules"
)

var sides = []string{"player", "opponent"}

// SpellsCastWatcher tracks spells cast by each side.
type SpellsCastWatcher struct {
	*rules.BaseWatcher
	spellsCast map[string][]string // side -> card ids
}

// NewSpellsCastWatcher creates a new spells cast watcher.
func NewSpellsCastWatcher() *SpellsCastWatcher {
	w := &SpellsCastWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame),
		spellsCast:  make(map[string][]string),
	}
	w.SetKey("SpellsCastWatcher")
	return w
}

// Watch implements the Watcher interface.
func (w *SpellsCastWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventSpellCast || event.Side == "" || event.CardID == "" {
		return
	}
	w.spellsCast[event.Side] = append(w.spellsCast[event.Side], event.CardID)
}

// GetCount returns the number of spells a side cast.
func (w *SpellsCastWatcher) GetCount(side string) int {
	return len(w.spellsCast[side])
}

// MinionsDiedWatcher counts minion deaths per owning side.
type MinionsDiedWatcher struct {
	*rules.BaseWatcher
	died map[string]int
}

// NewMinionsDiedWatcher creates a new minions died watcher.
func NewMinionsDiedWatcher() *MinionsDiedWatcher {
	w := &MinionsDiedWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame),
		died:        make(map[string]int),
	}
	w.SetKey("MinionsDiedWatcher")
	return w
}

// Watch implements the Watcher interface.
func (w *MinionsDiedWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventMinionDied || event.Side == "" {
		return
	}
	w.died[event.Side]++
}

// GetAmount returns the number of minions a side lost.
func (w *MinionsDiedWatcher) GetAmount(side string) int {
	return w.died[side]
}

// GetTotalAmount returns the number of minions that died on both boards.
func (w *MinionsDiedWatcher) GetTotalAmount() int {
	total := 0
	for _, count := range w.died {
		total += count
	}
	return total
}

// CardsDrawnWatcher tracks draws, burns and fatigue for one side.
type CardsDrawnWatcher struct {
	*rules.BaseWatcher
	drawn         int
	burned        int
	fatigueDamage int
}

// NewCardsDrawnWatcher creates a draw watcher that follows side.
func NewCardsDrawnWatcher(side string) *CardsDrawnWatcher {
	w := &CardsDrawnWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeSide),
	}
	w.SetSide(side)
	w.SetKey("CardsDrawnWatcher/" + side)
	return w
}

// Watch implements the Watcher interface.
func (w *CardsDrawnWatcher) Watch(event rules.Event) {
	if !w.Applies(event) {
		return
	}
	switch event.Type {
	case rules.EventCardDrawn:
		w.drawn++
	case rules.EventCardBurned:
		w.burned++
	case rules.EventFatigue:
		w.fatigueDamage += event.Amount
	}
}

// GetDrawn returns the number of cards that reached the hand.
func (w *CardsDrawnWatcher) GetDrawn() int { return w.drawn }

// GetBurned returns the number of cards lost to the hand limit.
func (w *CardsDrawnWatcher) GetBurned() int { return w.burned }

// GetFatigueDamage returns the total fatigue damage taken.
func (w *CardsDrawnWatcher) GetFatigueDamage() int { return w.fatigueDamage }

// MinionsPlayedWatcher tracks minions summoned by each side.
type MinionsPlayedWatcher struct {
	*rules.BaseWatcher
	played map[string][]string // side -> card ids
}

// NewMinionsPlayedWatcher creates a new minions played watcher.
func NewMinionsPlayedWatcher() *MinionsPlayedWatcher {
	w := &MinionsPlayedWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame),
		played:      make(map[string][]string),
	}
	w.SetKey("MinionsPlayedWatcher")
	return w
}

// Watch implements the Watcher interface.
func (w *MinionsPlayedWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventMinionPlayed || event.Side == "" || event.CardID == "" {
		return
	}
	w.played[event.Side] = append(w.played[event.Side], event.CardID)
}

// GetMinionsPlayed returns the card ids a side summoned, in order.
func (w *MinionsPlayedWatcher) GetMinionsPlayed(side string) []string {
	return w.played[side]
}

// KeywordWatcher counts keyword triggers across the match.
type KeywordWatcher struct {
	*rules.BaseWatcher
	counts map[rules.EventType]int
}

var keywordEvents = map[rules.EventType]bool{
	rules.EventShieldConsumed: true,
	rules.EventPoisonKill:     true,
	rules.EventDeathrattle:    true,
	rules.EventBoardFull:      true,
}

// NewKeywordWatcher creates a new keyword watcher.
func NewKeywordWatcher() *KeywordWatcher {
	w := &KeywordWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame),
		counts:      make(map[rules.EventType]int),
	}
	w.SetKey("KeywordWatcher")
	return w
}

// Watch implements the Watcher interface.
func (w *KeywordWatcher) Watch(event rules.Event) {
	if !keywordEvents[event.Type] {
		return
	}
	w.counts[event.Type]++
}

// Counts returns a copy of all tallies keyed by event type name.
func (w *KeywordWatcher) Counts() map[string]int {
	out := make(map[string]int, len(w.counts))
	for k, v := range w.counts {
		out[string(k)] = v
	}
	return out
}

// Standard returns the watcher set registered for every match.
func Standard() []rules.Watcher {
	return []rules.Watcher{
		NewSpellsCastWatcher(),
		NewMinionsDiedWatcher(),
		NewMinionsPlayedWatcher(),
		NewKeywordWatcher(),
		NewCardsDrawnWatcher("player"),
		NewCardsDrawnWatcher("opponent"),
	}
}

// SideStats are the per-side tallies of a match.
type SideStats struct {
	SpellsCast    int `json:"spells_cast"`
	MinionsPlayed int `json:"minions_played"`
	MinionsDied   int `json:"minions_died"`
	CardsDrawn    int `json:"cards_drawn"`
	CardsBurned   int `json:"cards_burned"`
	FatigueDamage int `json:"fatigue_damage"`
}

// Stats summarizes the watchers of one match.
type Stats struct {
	Player   SideStats      `json:"player"`
	Opponent SideStats      `json:"opponent"`
	Keywords map[string]int `json:"keywords,omitempty"`
}

func (s *Stats) side(name string) *SideStats {
	if name == "opponent" {
		return &s.Opponent
	}
	return &s.Player
}

// Summarize reads the known watchers of a registry into Stats. Callers must
// not publish to the registry concurrently.
func Summarize(registry *rules.WatcherRegistry) Stats {
	var stats Stats
	for _, w := range registry.GetAllWatchers() {
		switch w := w.(type) {
		case *SpellsCastWatcher:
			for _, side := range sides {
				stats.side(side).SpellsCast = w.GetCount(side)
			}
		case *MinionsPlayedWatcher:
			for _, side := range sides {
				stats.side(side).MinionsPlayed = len(w.GetMinionsPlayed(side))
			}
		case *MinionsDiedWatcher:
			for _, side := range sides {
				stats.side(side).MinionsDied = w.GetAmount(side)
			}
		case *CardsDrawnWatcher:
			s := stats.side(w.GetSide())
			s.CardsDrawn = w.GetDrawn()
			s.CardsBurned = w.GetBurned()
			s.FatigueDamage = w.GetFatigueDamage()
		case *KeywordWatcher:
			stats.Keywords = w.Counts()
		}
	}
	return stats
}
