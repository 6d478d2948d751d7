package app

import (
	"testing"

	"trivia-admin-service/internal/domain"
)

func TestHubDeliversToSubscribers(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.Publish(domain.Event{Name: domain.EventUserJoined, Payload: "u1"})

	event := <-ch
	if event.Name != domain.EventUserJoined {
		t.Fatalf("unexpected event %+v", event)
	}
}

func TestHubDropsOldestForSlowSubscriber(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe()
	defer cancel()

	for i := 0; i < 20; i++ {
		hub.Publish(domain.Event{Name: domain.EventScoreUpdated, Payload: i})
	}

	var last domain.Event
	for {
		select {
		case event := <-ch:
			last = event
		default:
			if last.Payload != 19 {
				t.Fatalf("expected latest event retained, got %+v", last)
			}
			return
		}
	}
}

func TestHubCancelStopsDelivery(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe()
	cancel()
	// Cancel twice is fine; publishing after cancel must not panic.
	cancel()
	hub.Publish(domain.Event{Name: domain.EventUserJoined})

	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel after cancel")
	}
}

func TestNopBroadcaster(t *testing.T) {
	NopBroadcaster{}.Publish(domain.Event{Name: domain.EventUserUpdate})
}
