package memory

import (
	"context"
	"log/slog"
	"sync"

	appoutbox "stayhub/internal/app/outbox"
)

// Outbox keeps staged events until Flush, then logs and retains them as
// published. It stands in for the Mongo outbox when no broker is configured.
type Outbox struct {
	mu        sync.Mutex
	staged    []appoutbox.EventRecord
	published []appoutbox.EventRecord
	logger    *slog.Logger
}

func NewOutbox(logger *slog.Logger) *Outbox {
	return &Outbox{logger: logger}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.staged = append(o.staged, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, rec := range o.staged {
		if o.logger != nil {
			o.logger.DebugContext(ctx, "event published", "event_id", rec.ID, "name", rec.Name, "aggregate", rec.Aggregate)
		}
	}
	o.published = append(o.published, o.staged...)
	o.staged = nil
	return nil
}

// Published returns the events flushed so far.
func (o *Outbox) Published() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]appoutbox.EventRecord(nil), o.published...)
}

var _ appoutbox.Outbox = (*Outbox)(nil)
