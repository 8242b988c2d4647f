package rules

import (
	"testing"
)

func TestWatcherRegistry(t *testing.T) {
	registry := NewWatcherRegistry()

	second := &testWatcherImpl{BaseWatcher: NewBaseWatcher(WatcherScopeGame)}
	second.SetKey("b_TestWatcher")
	first := &testWatcherImpl{BaseWatcher: NewBaseWatcher(WatcherScopeGame)}
	first.SetKey("a_TestWatcher")
	registry.AddWatcher(second)
	registry.AddWatcher(first)

	all := registry.GetAllWatchers()
	if len(all) != 2 || all[0].GetKey() != "a_TestWatcher" {
		t.Fatalf("expected watchers ordered by key, got %v", all)
	}

	registry.NotifyWatchers(Event{Type: EventSpellCast, Side: "player"})
	registry.NotifyWatchers(Event{Type: EventAttack, Side: "player"})
	if first.seen != 1 || second.seen != 1 {
		t.Fatalf("expected one spell each, got %d and %d", first.seen, second.seen)
	}

	replacement := &testWatcherImpl{BaseWatcher: NewBaseWatcher(WatcherScopeGame)}
	replacement.SetKey("a_TestWatcher")
	registry.AddWatcher(replacement)
	if n := len(registry.GetAllWatchers()); n != 2 {
		t.Fatalf("expected same-key watcher to be replaced, got %d watchers", n)
	}
}

func TestWatcherRegistryIgnoresUnkeyed(t *testing.T) {
	registry := NewWatcherRegistry()
	registry.AddWatcher(&testWatcherImpl{BaseWatcher: NewBaseWatcher(WatcherScopeGame)})
	registry.AddWatcher(nil)
	if n := len(registry.GetAllWatchers()); n != 0 {
		t.Fatalf("expected no watchers, got %d", n)
	}
}

func TestSideScopedWatcher(t *testing.T) {
	registry := NewWatcherRegistry()

	w := &testWatcherImpl{BaseWatcher: NewBaseWatcher(WatcherScopeSide)}
	w.SetKey("opponent_TestWatcher")
	w.SetSide("opponent")
	registry.AddWatcher(w)

	var sink EventSink = registry
	sink.Publish(Event{Type: EventSpellCast, Side: "player", CardID: "c_spell_fireball"})
	if w.seen != 0 {
		t.Fatal("side watcher should ignore the other side")
	}

	sink.Publish(Event{Type: EventSpellCast, Side: "opponent", CardID: "c_spell_fireball"})
	if w.seen != 1 {
		t.Fatal("side watcher should see its own side")
	}
}

type testWatcherImpl struct {
	*BaseWatcher
	seen int
}

func (t *testWatcherImpl) Watch(event Event) {
	if event.Type == EventSpellCast && t.Applies(event) {
		t.seen++
	}
}
