package notifier

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/stokku/inventory-service/pkg/broker"
)

// alertEvent is the envelope published to the alert topic. Downstream
// transports (email, push) consume it and own delivery semantics.
type alertEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   Notification `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type KafkaNotifier struct {
	producer *broker.Producer
}

func NewKafkaNotifier(producer *broker.Producer) *KafkaNotifier {
	return &KafkaNotifier{producer: producer}
}

func (n *KafkaNotifier) Notify(ctx context.Context, notification Notification) error {
	event := alertEvent{
		EventID:   uuid.New().String(),
		EventType: "InventoryAlertRaised",
		Payload:   notification,
		Timestamp: time.Now().UTC(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal alert event")
	}

	return n.producer.Publish(ctx, notification.StoreID, value)
}
