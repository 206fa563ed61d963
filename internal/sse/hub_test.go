package sse

import (
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/conceptgraph-backend/internal/pkg/logger"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return NewHub(log)
}

func TestHubPublishRoutesByUser(t *testing.T) {
	hub := newTestHub(t)
	alice := uuid.New()
	bob := uuid.New()

	aliceClient := hub.Subscribe(alice)
	bobClient := hub.Subscribe(bob)
	defer hub.Unsubscribe(aliceClient)
	defer hub.Unsubscribe(bobClient)

	hub.Publish(Message{UserID: alice, Event: EventReviewSessionCreated})

	select {
	case msg := <-aliceClient.Outbound:
		if msg.Event != EventReviewSessionCreated {
			t.Fatalf("unexpected event %q", msg.Event)
		}
	default:
		t.Fatalf("alice should have received the event")
	}
	select {
	case msg := <-bobClient.Outbound:
		t.Fatalf("bob should not receive alice's event, got %q", msg.Event)
	default:
	}
}

func TestHubUnsubscribeClosesOutbound(t *testing.T) {
	hub := newTestHub(t)
	userID := uuid.New()

	c := hub.Subscribe(userID)
	hub.Unsubscribe(c)
	if _, open := <-c.Outbound; open {
		t.Fatalf("outbound channel should be closed")
	}

	// Repeat unsubscribe must not panic on the closed channel.
	hub.Unsubscribe(c)

	// Publishing to a user with no clients is a no-op.
	hub.Publish(Message{UserID: userID, Event: EventReviewSessionCancelled})
}

func TestHubDropsForSlowClients(t *testing.T) {
	hub := newTestHub(t)
	userID := uuid.New()

	c := hub.Subscribe(userID)
	defer hub.Unsubscribe(c)

	for i := 0; i < cap(c.Outbound)+5; i++ {
		hub.Publish(Message{UserID: userID, Event: EventReviewSessionApproved})
	}
	if len(c.Outbound) != cap(c.Outbound) {
		t.Fatalf("expected buffer full, not blocked: %d", len(c.Outbound))
	}
}
