package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"

	"stayhub/internal/app/commands"
	listinghandlers "stayhub/internal/app/handlers/listings"
)

// Deduper remembers processed message ids.
type Deduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
}

// ListingSync applies property snapshots from the listings topic. Payloads
// are either a bare snapshot or a CloudEvents envelope carrying it in data.
type ListingSync struct {
	Bus    commands.Bus
	Inbox  Deduper
	Logger *slog.Logger
}

type envelope struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

func (s *ListingSync) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	snapshot, eventID, err := decodeSnapshot(msg)
	if err != nil {
		return err
	}
	if s.Inbox != nil {
		seen, err := s.Inbox.Seen(ctx, eventID)
		if err != nil {
			return err
		}
		if seen {
			s.logger().DebugContext(ctx, "listing snapshot already applied", "event_id", eventID)
			return nil
		}
	}
	res, err := commands.Dispatch[listinghandlers.SyncListingCommand, listinghandlers.SyncListingResult](ctx, s.Bus, listinghandlers.SyncListingCommand{Snapshot: snapshot})
	if err != nil {
		return fmt.Errorf("sync listing %s: %w", snapshot.ID, err)
	}
	s.logger().InfoContext(ctx, "listing snapshot applied", "listing_id", res.ListingID, "created", res.Created, "event_id", eventID)
	return nil
}

// decodeSnapshot falls back to topic/partition/offset as the message id when
// the producer sent no CloudEvents id.
func decodeSnapshot(msg *sarama.ConsumerMessage) (listinghandlers.ListingSnapshot, string, error) {
	var snap listinghandlers.ListingSnapshot
	eventID := ""
	body := msg.Value
	var env envelope
	if err := json.Unmarshal(msg.Value, &env); err == nil && len(env.Data) > 0 {
		eventID = env.ID
		body = env.Data
	}
	if err := json.Unmarshal(body, &snap); err != nil {
		return snap, "", fmt.Errorf("decode listing snapshot: %w", err)
	}
	if eventID == "" {
		eventID = headerValue(msg, "ce_id")
	}
	if eventID == "" {
		eventID = fmt.Sprintf("%s/%d/%d", msg.Topic, msg.Partition, msg.Offset)
	}
	return snap, eventID, nil
}

func headerValue(msg *sarama.ConsumerMessage, key string) string {
	for _, h := range msg.Headers {
		if h != nil && string(h.Key) == key {
			return string(h.Value)
		}
	}
	return ""
}

func (s *ListingSync) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

var _ MessageHandler = (*ListingSync)(nil)
