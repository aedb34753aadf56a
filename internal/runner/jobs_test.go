package runner

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/repfinder/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/repfinder/pkg/resilience"
)

type fakePublisher struct {
	mu       sync.Mutex
	events   []kafka.Event
	failures int
	calls    int
}

func (p *fakePublisher) Publish(_ context.Context, event kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.failures > 0 {
		p.failures--
		return errors.New("broker unavailable")
	}
	p.events = append(p.events, event)
	return nil
}

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func encodeJob(t *testing.T, job Job) []byte {
	t.Helper()
	data, err := json.Marshal(job)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestHandleJobPublishesCompletion(t *testing.T) {
	r, err := New(Options{Workers: 2}, Deps{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pub := &fakePublisher{}
	handler := HandleJob(r, pub, fastRetry())

	job := Job{ID: "job-1", CorpusPath: writeCorpus(t, scenarioCorpus), Support: "2"}
	if err := handler(context.Background(), []byte(job.ID), encodeJob(t, job)); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(pub.events) != 1 {
		t.Fatalf("events = %d, want 1", len(pub.events))
	}
	event := pub.events[0]
	if event.Key != "job-1" {
		t.Errorf("key = %q", event.Key)
	}
	done, ok := event.Value.(RunCompleted)
	if !ok {
		t.Fatalf("value type = %T", event.Value)
	}
	if done.Status != StatusCompleted || done.JobID != "job-1" || done.RunID == "" {
		t.Errorf("event = %+v", done)
	}
	if done.Patterns != 5 || done.Rounds != 2 || done.Threshold != 2 {
		t.Errorf("event = %+v", done)
	}
}

func TestHandleJobPublishesFailure(t *testing.T) {
	r, _ := New(Options{}, Deps{})
	pub := &fakePublisher{}
	handler := HandleJob(r, pub, fastRetry())

	job := Job{ID: "job-2", CorpusPath: writeCorpus(t, scenarioCorpus), Support: "x%"}
	if err := handler(context.Background(), nil, encodeJob(t, job)); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(pub.events) != 1 {
		t.Fatalf("events = %d, want 1", len(pub.events))
	}
	done := pub.events[0].Value.(RunCompleted)
	if done.Status != StatusFailed || done.Error == "" || done.RunID != "" {
		t.Errorf("event = %+v", done)
	}
}

func TestHandleJobSkipsMalformedMessages(t *testing.T) {
	r, _ := New(Options{}, Deps{})
	pub := &fakePublisher{}
	handler := HandleJob(r, pub, fastRetry())

	for _, value := range [][]byte{[]byte("{not json"), []byte(`{"id":"job-3"}`)} {
		if err := handler(context.Background(), nil, value); err != nil {
			t.Errorf("handler(%s) = %v, want nil", value, err)
		}
	}
	if pub.calls != 0 {
		t.Errorf("publish calls = %d, want 0", pub.calls)
	}
}

func TestHandleJobRetriesPublish(t *testing.T) {
	r, _ := New(Options{}, Deps{})
	pub := &fakePublisher{failures: 2}
	handler := HandleJob(r, pub, fastRetry())

	job := Job{ID: "job-4", CorpusPath: writeCorpus(t, scenarioCorpus)}
	if err := handler(context.Background(), nil, encodeJob(t, job)); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if pub.calls != 3 || len(pub.events) != 1 {
		t.Errorf("calls = %d events = %d", pub.calls, len(pub.events))
	}
}

func TestHandleJobReturnsErrorWhenPublishKeepsFailing(t *testing.T) {
	r, _ := New(Options{}, Deps{})
	pub := &fakePublisher{failures: 10}
	handler := HandleJob(r, pub, fastRetry())

	job := Job{ID: "job-5", CorpusPath: writeCorpus(t, scenarioCorpus)}
	if err := handler(context.Background(), nil, encodeJob(t, job)); err == nil {
		t.Fatal("expected publish error")
	}
	if pub.calls != 3 {
		t.Errorf("calls = %d, want 3", pub.calls)
	}
}
