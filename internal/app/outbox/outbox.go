package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"stayhub/internal/domain/shared/events"
)

// EventRecord is a domain event serialized for the outbox.
type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

type EventEncoder interface {
	Encode(ev events.DomainEvent) (EventRecord, error)
}

// JSONEventEncoder marshals events with encoding/json and assigns uuid ids.
type JSONEventEncoder struct {
	IDGenerator func() string
	Source      string
}

func (e JSONEventEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, err
	}
	idGen := e.IDGenerator
	if idGen == nil {
		idGen = uuid.NewString
	}
	headers := map[string]string{"content-type": "application/json"}
	if e.Source != "" {
		headers["source"] = e.Source
	}
	return EventRecord{
		ID:         idGen(),
		Name:       ev.EventName(),
		Payload:    payload,
		OccurredAt: ev.OccurredAt().UTC(),
		Aggregate:  ev.AggregateID(),
		Headers:    headers,
	}, nil
}

// RecordDomainEvents encodes evs and appends them to box in order.
func RecordDomainEvents(ctx context.Context, box Outbox, encoder EventEncoder, evs []events.DomainEvent) error {
	if box == nil || len(evs) == 0 {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, ev := range evs {
		rec, err := encoder.Encode(ev)
		if err != nil {
			return err
		}
		if err := box.Add(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// EventSource is implemented by aggregates that buffer domain events.
type EventSource interface {
	PendingEvents() []events.DomainEvent
	ClearEvents()
}

// Drain moves the pending events of every source into box.
func Drain(ctx context.Context, box Outbox, encoder EventEncoder, sources ...EventSource) error {
	for _, src := range sources {
		if src == nil {
			continue
		}
		if err := RecordDomainEvents(ctx, box, encoder, src.PendingEvents()); err != nil {
			return err
		}
		src.ClearEvents()
	}
	return nil
}
