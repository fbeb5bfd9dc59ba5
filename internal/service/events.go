package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/google/uuid"
)

const publishTimeout = 5 * time.Second

// publish emits a domain event after the change it describes is committed.
// Delivery failures are logged; the committed change stands.
func publish(ctx context.Context, p mykafka.Publisher, topic string, ev mykafka.Event) {
	if p == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.PublishEvent(pubCtx, topic, ev.UserID.String(), ev); err != nil {
		logging.FromContext(ctx).Error("publish_event_failed",
			"topic", topic, "type", ev.Type, "entity_id", ev.EntityID, "error", err)
	}
}

func event(typ string, userID, entityID uuid.UUID, data map[string]any) mykafka.Event {
	return mykafka.NewEvent(typ, userID, entityID, data)
}
