package kafka

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

type job struct {
	ID      string `json:"id"`
	Support string `json:"support"`
}

func TestEncodeDecodeJSON(t *testing.T) {
	msg, err := Encode(Event{Key: "job-1", Value: job{ID: "job-1", Support: "5%"}})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(msg.Key) != "job-1" {
		t.Errorf("key = %q", msg.Key)
	}
	if string(msg.Value) != `{"id":"job-1","support":"5%"}` {
		t.Errorf("value = %s", msg.Value)
	}
	got, err := DecodeJSON[job](msg.Value)
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if got.ID != "job-1" || got.Support != "5%" {
		t.Errorf("decoded = %+v", got)
	}
}

func TestEncodeRejectsUnmarshalable(t *testing.T) {
	if _, err := Encode(Event{Key: "k", Value: make(chan int)}); err == nil {
		t.Fatal("expected marshal error")
	}
}

func TestDecodeJSONError(t *testing.T) {
	if _, err := DecodeJSON[job]([]byte("{not json")); err == nil {
		t.Fatal("expected decode error")
	}
}

type fakeReader struct {
	msgs      []kafka.Message
	fetchErrs []error
	committed []int64
	closed    bool
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(f.fetchErrs) > 0 {
		err := f.fetchErrs[0]
		f.fetchErrs = f.fetchErrs[1:]
		return kafka.Message{}, err
	}
	if len(f.msgs) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	m := f.msgs[0]
	f.msgs = f.msgs[1:]
	return m, nil
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	return nil
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

func TestConsumerCommitsProcessedMessages(t *testing.T) {
	r := &fakeReader{
		msgs:      []kafka.Message{{Offset: 1, Value: []byte("a")}, {Offset: 2, Value: []byte("b")}},
		fetchErrs: []error{errors.New("broker unavailable")},
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var seen []string
	c := newConsumer(r, "jobs", func(_ context.Context, _, value []byte) error {
		seen = append(seen, string(value))
		if len(seen) == 2 {
			cancel()
		}
		return nil
	})
	c.fetchBackoff = time.Millisecond

	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(seen) != 2 {
		t.Errorf("handled %v, want both messages", seen)
	}
	if len(r.committed) < 1 || r.committed[0] != 1 {
		t.Errorf("committed = %v", r.committed)
	}
	if !r.closed {
		t.Error("reader not closed")
	}
}

func TestConsumerStopsOnHandlerError(t *testing.T) {
	r := &fakeReader{msgs: []kafka.Message{{Offset: 7}, {Offset: 8}}}
	boom := errors.New("publish failed")
	c := newConsumer(r, "jobs", func(context.Context, []byte, []byte) error { return boom })

	err := c.Start(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Start err = %v, want %v", err, boom)
	}
	if len(r.committed) != 0 {
		t.Errorf("committed = %v, want nothing", r.committed)
	}
	if len(r.msgs) != 1 {
		t.Errorf("consumer moved past the failed message")
	}
}

func TestConsumerReaderClosed(t *testing.T) {
	r := &fakeReader{fetchErrs: []error{io.EOF}}
	c := newConsumer(r, "jobs", func(context.Context, []byte, []byte) error { return nil })
	if err := c.Start(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("Start err = %v, want io.EOF", err)
	}
}
