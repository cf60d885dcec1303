package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestPublishEncodesJSON(t *testing.T) {
	w := &recordingWriter{}
	p := NewProducerWithWriter(w, "forecasts", "snappy")

	err := p.Publish(context.Background(), []byte("Bitcoin"), map[string]any{"horizon": 3})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("want 1 message, got %d", len(w.msgs))
	}
	var body map[string]int
	if err := json.Unmarshal(w.msgs[0].Value, &body); err != nil || body["horizon"] != 3 {
		t.Fatalf("unexpected value %s (%v)", w.msgs[0].Value, err)
	}
	if string(w.msgs[0].Key) != "Bitcoin" {
		t.Fatalf("key = %q", w.msgs[0].Key)
	}

	_ = p.Publish(context.Background(), nil, "raw")
	if string(w.msgs[1].Value) != "raw" {
		t.Fatalf("string values must pass through, got %q", w.msgs[1].Value)
	}
}

func TestPublishWrapsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := NewProducerWithWriter(&recordingWriter{err: boom}, "forecasts", "")
	if err := p.Publish(context.Background(), nil, []byte("x")); !errors.Is(err, boom) {
		t.Fatalf("want wrapped broker error, got %v", err)
	}
}

func TestNewProducerValidates(t *testing.T) {
	if _, err := NewProducer(WithTopic("t")); err == nil {
		t.Fatalf("expected error without brokers")
	}
	if _, err := NewProducer(WithBrokers([]string{"localhost:9092"})); err == nil {
		t.Fatalf("expected error without topic")
	}
	p, err := NewProducer(WithBrokers([]string{"localhost:9092"}), WithTopic("t"), WithCompression("zstd"))
	if err != nil {
		t.Fatalf("new producer: %v", err)
	}
	_ = p.Close()
}
