package rules

import (
	"sort"
	"sync"
)

// WatcherScope defines the scope of a watcher's tracking.
type WatcherScope int

const (
	// WatcherScopeGame tracks events for the entire match.
	WatcherScopeGame WatcherScope = iota
	// WatcherScopeSide tracks events for one side only.
	WatcherScopeSide
)

// Watcher observes events and accumulates whatever it tracks.
type Watcher interface {
	// Watch is called for every published event.
	Watch(event Event)

	// GetKey returns a unique key for this watcher instance.
	GetKey() string
}

// BaseWatcher provides the bookkeeping shared by all watchers.
type BaseWatcher struct {
	scope WatcherScope
	side  string
	key   string
}

// NewBaseWatcher creates a new base watcher with the specified scope.
func NewBaseWatcher(scope WatcherScope) *BaseWatcher {
	return &BaseWatcher{scope: scope}
}

// SetSide restricts a side-scoped watcher to one side.
func (bw *BaseWatcher) SetSide(side string) {
	bw.side = side
}

// GetSide returns the side a side-scoped watcher follows.
func (bw *BaseWatcher) GetSide() string {
	return bw.side
}

// Applies reports whether an event is in scope for this watcher.
func (bw *BaseWatcher) Applies(event Event) bool {
	return bw.scope == WatcherScopeGame || bw.side == "" || bw.side == event.Side
}

// GetKey returns the unique key for this watcher.
func (bw *BaseWatcher) GetKey() string {
	return bw.key
}

// SetKey sets the unique key for this watcher.
func (bw *BaseWatcher) SetKey(key string) {
	bw.key = key
}

// WatcherRegistry manages the watchers of one match.
type WatcherRegistry struct {
	mu       sync.RWMutex
	watchers map[string]Watcher
}

// NewWatcherRegistry creates a new watcher registry.
func NewWatcherRegistry() *WatcherRegistry {
	return &WatcherRegistry{
		watchers: make(map[string]Watcher),
	}
}

// AddWatcher adds a watcher to the registry, replacing any watcher with the
// same key. Watchers without a key are ignored.
func (wr *WatcherRegistry) AddWatcher(watcher Watcher) {
	if watcher == nil || watcher.GetKey() == "" {
		return
	}
	wr.mu.Lock()
	defer wr.mu.Unlock()
	wr.watchers[watcher.GetKey()] = watcher
}

// GetAllWatchers returns all registered watchers ordered by key.
func (wr *WatcherRegistry) GetAllWatchers() []Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	keys := make([]string, 0, len(wr.watchers))
	for key := range wr.watchers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	result := make([]Watcher, 0, len(keys))
	for _, key := range keys {
		result = append(result, wr.watchers[key])
	}
	return result
}

// NotifyWatchers notifies all watchers of an event. Watchers filter internally.
func (wr *WatcherRegistry) NotifyWatchers(event Event) {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	for _, watcher := range wr.watchers {
		watcher.Watch(event)
	}
}

// Publish lets a registry be used directly as an EventSink.
func (wr *WatcherRegistry) Publish(event Event) {
	wr.NotifyWatchers(event)
}
