package event

import (
	"sync"
	"testing"
)

func TestSubscribePublish(t *testing.T) {
	bus := NewBus()

	var got []string
	bus.Subscribe("goal.claimed", func(ev Event) {
		got = append(got, ev.EventType())
	})

	bus.Publish(NewGoalClaimedEvent("g1", "w1"))
	bus.Publish(NewGoalRemovedEvent("g1")) // different type, not delivered

	if len(got) != 1 || got[0] != "goal.claimed" {
		t.Errorf("delivered = %v, want [goal.claimed]", got)
	}
}

func TestSubscribeAll(t *testing.T) {
	bus := NewBus()

	var n int
	bus.SubscribeAll(func(Event) { n++ })

	bus.Publish(NewGoalClaimedEvent("g1", "w1"))
	bus.Publish(NewReadyChangedEvent(3))

	if n != 2 {
		t.Errorf("wildcard handler called %d times, want 2", n)
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus()

	var n int
	id := bus.Subscribe("goal.added", func(Event) { n++ })

	bus.Publish(NewGoalsAddedEvent([]string{"a"}))
	if !bus.Unsubscribe(id) {
		t.Fatal("Unsubscribe returned false for live subscription")
	}
	bus.Publish(NewGoalsAddedEvent([]string{"b"}))

	if n != 1 {
		t.Errorf("handler called %d times, want 1", n)
	}
	if bus.Unsubscribe(id) {
		t.Error("double unsubscribe returned true")
	}
}

func TestPanicInHandlerDoesNotStopDelivery(t *testing.T) {
	bus := NewBus()

	var delivered bool
	bus.Subscribe("goal.added", func(Event) { panic("handler bug") })
	bus.Subscribe("goal.added", func(Event) { delivered = true })

	bus.Publish(NewGoalsAddedEvent([]string{"a"}))

	if !delivered {
		t.Error("panic in one handler suppressed the next")
	}
}

func TestConcurrentPublishAndSubscribe(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	n := 0
	bus.Subscribe("goal.released", func(Event) {
		mu.Lock()
		n++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				bus.Publish(NewGoalReleasedEvent("g", "w", "success"))
			}
		}()
	}
	wg.Wait()

	if n != 1000 {
		t.Errorf("delivered %d events, want 1000", n)
	}
}
