package api

import (
	"testing"
	"time"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker()
	jobID := "job1"
	ch := b.Subscribe(jobID)

	evt := SSEEvent{Type: "experiment.progress", Data: map[string]any{"run": 1}}
	b.Publish(jobID, evt)

	select {
	case got := <-ch:
		if got.Type != evt.Type {
			t.Fatalf("got type %s, want %s", got.Type, evt.Type)
		}
		if got.Data["run"].(int) != 1 {
			t.Fatalf("bad payload: %+v", got.Data)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}

	b.Unsubscribe(jobID, ch)
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("channel should be closed after unsubscribe")
		}
	case <-time.After(50 * time.Millisecond):
		// acceptable if already drained and closed
	}
}

func TestBrokerIsolatesJobs(t *testing.T) {
	b := NewBroker()
	a := b.Subscribe("job-a")
	other := b.Subscribe("job-b")
	defer b.Unsubscribe("job-a", a)
	defer b.Unsubscribe("job-b", other)

	b.Publish("job-a", SSEEvent{Type: "experiment.completed"})

	select {
	case <-a:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("subscriber on job-a got nothing")
	}
	select {
	case evt := <-other:
		t.Fatalf("subscriber on job-b got %+v", evt)
	default:
	}
}

func TestBrokerDropsWhenSubscriberFull(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("job1")
	defer b.Unsubscribe("job1", ch)

	// Channel capacity is 8; overfilling must not block the publisher.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			b.Publish("job1", SSEEvent{Type: "experiment.progress"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}
