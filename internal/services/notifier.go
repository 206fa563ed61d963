package services

import (
	"context"

	"github.com/google/uuid"

	redisclient "github.com/yungbote/conceptgraph-backend/internal/clients/redis"
	"github.com/yungbote/conceptgraph-backend/internal/pkg/logger"
	"github.com/yungbote/conceptgraph-backend/internal/sse"
)

// ReviewNotifier fans review lifecycle events out to connected clients.
// Delivery is best-effort: a notification failure never fails the
// operation that triggered it.
type ReviewNotifier interface {
	SessionCreated(ctx context.Context, userID, sessionID uuid.UUID, conceptCount, conflictCount int)
	SessionApproved(ctx context.Context, userID, sessionID uuid.UUID, conceptsCreated, relationshipsCreated int)
	SessionCancelled(ctx context.Context, userID, sessionID uuid.UUID)
}

type reviewNotifier struct {
	log *logger.Logger
	bus redisclient.ReviewBus
	hub *sse.Hub
}

// NewReviewNotifier publishes through the Redis bus when one is
// configured (so every instance's hub sees the event) and falls back to
// the local hub otherwise.
func NewReviewNotifier(baseLog *logger.Logger, bus redisclient.ReviewBus, hub *sse.Hub) ReviewNotifier {
	return &reviewNotifier{
		log: baseLog.With("service", "ReviewNotifier"),
		bus: bus,
		hub: hub,
	}
}

func (n *reviewNotifier) publish(ctx context.Context, msg sse.Message) {
	if n.bus != nil {
		if err := n.bus.Publish(ctx, msg); err == nil {
			return
		} else {
			n.log.Warn("review event publish failed, delivering locally", "event", msg.Event, "error", err)
		}
	}
	if n.hub != nil {
		n.hub.Publish(msg)
	}
}

func (n *reviewNotifier) SessionCreated(ctx context.Context, userID, sessionID uuid.UUID, conceptCount, conflictCount int) {
	n.publish(ctx, sse.Message{
		UserID: userID,
		Event:  sse.EventReviewSessionCreated,
		Data: map[string]any{
			"session_id":     sessionID.String(),
			"concept_count":  conceptCount,
			"conflict_count": conflictCount,
		},
	})
}

func (n *reviewNotifier) SessionApproved(ctx context.Context, userID, sessionID uuid.UUID, conceptsCreated, relationshipsCreated int) {
	n.publish(ctx, sse.Message{
		UserID: userID,
		Event:  sse.EventReviewSessionApproved,
		Data: map[string]any{
			"session_id":            sessionID.String(),
			"concepts_created":      conceptsCreated,
			"relationships_created": relationshipsCreated,
		},
	})
}

func (n *reviewNotifier) SessionCancelled(ctx context.Context, userID, sessionID uuid.UUID) {
	n.publish(ctx, sse.Message{
		UserID: userID,
		Event:  sse.EventReviewSessionCancelled,
		Data:   map[string]any{"session_id": sessionID.String()},
	})
}
