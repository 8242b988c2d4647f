package rules

import (
	"testing"
)

func TestEventBusSubscribeTyped(t *testing.T) {
	bus := NewEventBus()

	drawCount := 0
	fatigue := 0

	bus.SubscribeTyped(EventCardDrawn, func(e Event) {
		drawCount++
	})
	bus.SubscribeTyped(EventFatigue, func(e Event) {
		fatigue += e.Amount
	})

	bus.Publish(Event{Type: EventCardDrawn, Side: "player"})
	if drawCount != 1 {
		t.Fatalf("expected draw count 1, got %d", drawCount)
	}
	if fatigue != 0 {
		t.Fatalf("expected no fatigue, got %d", fatigue)
	}

	bus.Publish(Event{Type: EventFatigue, Side: "player", Amount: 2})
	if fatigue != 2 {
		t.Fatalf("expected fatigue 2, got %d", fatigue)
	}
	if drawCount != 1 {
		t.Fatalf("typed listener saw another event type, count %d", drawCount)
	}
}

func TestEventBusSubscribeOrder(t *testing.T) {
	bus := NewEventBus()

	var order []int
	for i := 0; i < 5; i++ {
		bus.Subscribe(func(Event) { order = append(order, i) })
	}
	bus.SubscribeTyped(EventAttack, func(Event) { order = append(order, 5) })

	bus.Publish(Event{Type: EventAttack})
	if len(order) != 6 {
		t.Fatalf("expected 6 calls, got %v", order)
	}
	for i, got := range order {
		if got != i {
			t.Fatalf("listener %d called out of order: %v", i, order)
		}
	}
}

func TestEventBusStampsTimestamp(t *testing.T) {
	bus := NewEventBus()

	var received Event
	bus.Subscribe(func(e Event) { received = e })
	bus.Publish(Event{Type: EventHeroPower})

	if received.Timestamp.IsZero() {
		t.Fatal("expected publish to stamp a timestamp")
	}
}

func TestEventBusIgnoresNilListeners(t *testing.T) {
	bus := NewEventBus()
	bus.Subscribe(nil)
	bus.SubscribeTyped(EventAttack, nil)

	bus.Publish(Event{Type: EventAttack})
}

func TestDiscardSink(t *testing.T) {
	var sink EventSink = DiscardSink{}
	sink.Publish(Event{Type: EventGameOver})
}
