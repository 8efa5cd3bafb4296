package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type fakeQueue struct {
	pending []*EventDocument
	sent    []string
	failed  map[string]time.Time
}

func (q *fakeQueue) Claim(context.Context, string) (*EventDocument, error) {
	if len(q.pending) == 0 {
		return nil, nil
	}
	doc := q.pending[0]
	q.pending = q.pending[1:]
	return doc, nil
}

func (q *fakeQueue) MarkSent(_ context.Context, id string) error {
	q.sent = append(q.sent, id)
	return nil
}

func (q *fakeQueue) MarkFailed(_ context.Context, id string, next time.Time, _ string) error {
	if q.failed == nil {
		q.failed = map[string]time.Time{}
	}
	q.failed[id] = next
	return nil
}

type published struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type fakeProducer struct {
	msgs []published
	err  error
}

func (p *fakeProducer) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, published{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

func TestWorkerRelaysCloudEvents(t *testing.T) {
	occurred := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	queue := &fakeQueue{pending: []*EventDocument{{
		ID:         "evt-1",
		Name:       "booking.confirmed",
		Payload:    []byte(`{"booking_id":"bkg-1"}`),
		OccurredAt: occurred,
		Aggregate:  "bkg-1",
		Headers:    map[string]string{"source": "stayhub"},
	}}}
	producer := &fakeProducer{}
	w := &Worker{Store: queue, Producer: producer, TopicPrefix: "dev.", ID: "w-1"}

	n, err := w.ProcessBatch(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("process: n=%d err=%v", n, err)
	}
	if len(producer.msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(producer.msgs))
	}
	msg := producer.msgs[0]
	if msg.topic != "dev.booking.events.v1" || msg.key != "bkg-1" {
		t.Fatalf("unexpected routing %s/%s", msg.topic, msg.key)
	}
	if msg.headers["content-type"] != "application/cloudevents+json" || msg.headers["source"] != "stayhub" {
		t.Fatalf("unexpected headers %v", msg.headers)
	}
	var evt struct {
		ID   string         `json:"id"`
		Type string         `json:"type"`
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(msg.payload, &evt); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if evt.ID != "evt-1" || evt.Type != "booking.confirmed.v1" || evt.Data["booking_id"] != "bkg-1" {
		t.Fatalf("unexpected envelope %+v", evt)
	}
	if len(queue.sent) != 1 || queue.sent[0] != "evt-1" {
		t.Fatalf("sent: %v", queue.sent)
	}
}

func TestWorkerReschedulesFailedPublish(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	queue := &fakeQueue{pending: []*EventDocument{{ID: "evt-1", Name: "booking.requested", Payload: []byte(`{}`), Attempts: 1}}}
	w := &Worker{
		Store:    queue,
		Producer: &fakeProducer{err: errors.New("broker down")},
		Backoff:  []time.Duration{time.Second, 5 * time.Second},
		Now:      func() time.Time { return now },
	}
	if _, err := w.ProcessBatch(context.Background()); err != nil {
		t.Fatalf("publish failures must not stop the worker: %v", err)
	}
	if got := queue.failed["evt-1"]; !got.Equal(now.Add(5 * time.Second)) {
		t.Fatalf("next attempt: got %v", got)
	}
	if len(queue.sent) != 0 {
		t.Fatal("failed record must not be marked sent")
	}
}

func TestWorkerStopsAtBatchSize(t *testing.T) {
	queue := &fakeQueue{}
	for _, id := range []string{"a", "b", "c"} {
		queue.pending = append(queue.pending, &EventDocument{ID: id, Name: "booking.requested", Payload: []byte(`{}`)})
	}
	w := &Worker{Store: queue, Producer: &fakeProducer{}, BatchSize: 2}
	n, err := w.ProcessBatch(context.Background())
	if err != nil || n != 2 || len(queue.pending) != 1 {
		t.Fatalf("n=%d err=%v left=%d", n, err, len(queue.pending))
	}
}

func TestWorkerRequiresDependencies(t *testing.T) {
	if err := (&Worker{}).Run(context.Background()); !errors.Is(err, ErrWorkerNotConfigured) {
		t.Fatalf("got %v", err)
	}
}
