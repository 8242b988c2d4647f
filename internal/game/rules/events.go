package rules

import (
	"sync"
	"time"
)

// EventType indicates the category of a rules event.
type EventType string

const (
	// Turn structure
	EventGameStarted  EventType = "GAME_STARTED"
	EventMulliganDone EventType = "MULLIGAN_DONE"
	EventTurnStarted  EventType = "TURN_STARTED"
	EventTurnEnded    EventType = "TURN_ENDED"
	EventGameOver     EventType = "GAME_OVER"

	// Cards
	EventCardDrawn    EventType = "CARD_DRAWN"
	EventCardBurned   EventType = "CARD_BURNED"
	EventFatigue      EventType = "FATIGUE"
	EventMinionPlayed EventType = "MINION_PLAYED"
	EventSpellCast    EventType = "SPELL_CAST"
	EventBoardFull    EventType = "BOARD_FULL"

	// Combat and damage
	EventAttack         EventType = "ATTACK"
	EventHeroPower      EventType = "HERO_POWER"
	EventHeroDamaged    EventType = "HERO_DAMAGED"
	EventMinionDamaged  EventType = "MINION_DAMAGED"
	EventShieldConsumed EventType = "SHIELD_CONSUMED"
	EventPoisonKill     EventType = "POISON_KILL"
	EventMinionDied     EventType = "MINION_DIED"
	EventDeathrattle    EventType = "DEATHRATTLE"
)

// Event represents a state change that other subsystems may react to.
type Event struct {
	Type        EventType
	MatchID     string
	Side        string // acting or affected side
	SourceID    string // minion instance or card id that caused the event
	TargetID    string // minion instance id, or empty for heroes
	CardID      string
	Amount      int
	Turn        int
	Timestamp   time.Time
	Description string
}

// EventSink receives events from the resolvers. Implementations must not
// call back into the resolver that published the event.
type EventSink interface {
	Publish(event Event)
}

// DiscardSink drops every event.
type DiscardSink struct{}

// Publish implements EventSink.
func (DiscardSink) Publish(Event) {}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

// EventBus provides a synchronous publish/subscribe implementation with type filtering.
type EventBus struct {
	mu        sync.RWMutex
	listeners []Listener
	typed     map[EventType][]Listener
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		typed: make(map[EventType][]Listener),
	}
}

// Subscribe registers a listener for all events. Listeners are called in
// subscription order, before any typed listener.
func (bus *EventBus) Subscribe(listener Listener) {
	if listener == nil {
		return
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.listeners = append(bus.listeners, listener)
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, listener Listener) {
	if listener == nil {
		return
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.typed[eventType] = append(bus.typed[eventType], listener)
}

// Publish delivers the event to all registered listeners synchronously.
func (bus *EventBus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	bus.mu.RLock()
	defer bus.mu.RUnlock()

	for _, listener := range bus.listeners {
		listener(event)
	}
	for _, listener := range bus.typed[event.Type] {
		listener(event)
	}
}
