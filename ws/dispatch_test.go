package ws

import (
	"log/slog"
	"sync"
	"testing"
	"time"
)

func TestDispatchQueueDelivers(t *testing.T) {
	var mu sync.Mutex
	var got []EventType

	q := newDispatchQueue(8, HandlerFunc(func(ev Event) {
		mu.Lock()
		got = append(got, ev.Type)
		mu.Unlock()
	}), slog.Default())

	q.push(Event{Type: EventSubscribed})
	q.push(Event{Type: EventData})
	q.push(Event{Type: EventUnsubscribed})
	q.close()

	mu.Lock()
	defer mu.Unlock()
	want := []EventType{EventSubscribed, EventData, EventUnsubscribed}
	if len(got) != len(want) {
		t.Fatalf("delivered %d events, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDispatchQueueDropsOldest(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	var seen []int

	started := make(chan struct{})
	var once sync.Once
	q := newDispatchQueue(2, HandlerFunc(func(ev Event) {
		once.Do(func() { close(started) })
		<-release
		mu.Lock()
		seen = append(seen, ev.Payload.(int))
		mu.Unlock()
	}), slog.Default())

	// First event occupies the handler, next two fill the queue.
	q.push(Event{Type: EventData, Payload: 0})
	<-started
	q.push(Event{Type: EventData, Payload: 1})
	q.push(Event{Type: EventData, Payload: 2})

	// Queue full: this must evict 1, not block.
	done := make(chan struct{})
	go func() {
		q.push(Event{Type: EventData, Payload: 3})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("push blocked on a full queue")
	}

	close(release)
	q.close()

	mu.Lock()
	defer mu.Unlock()
	for _, v := range seen {
		if v == 1 {
			t.Errorf("oldest queued event survived eviction: %v", seen)
		}
	}
	if seen[len(seen)-1] != 3 {
		t.Errorf("newest event missing: %v", seen)
	}
}

func TestDispatchQueueCloseWaitsForHandler(t *testing.T) {
	var mu sync.Mutex
	handled := 0

	q := newDispatchQueue(8, HandlerFunc(func(Event) {
		time.Sleep(10 * time.Millisecond)
		mu.Lock()
		handled++
		mu.Unlock()
	}), slog.Default())

	q.push(Event{Type: EventData})
	q.push(Event{Type: EventData})
	q.close()

	mu.Lock()
	defer mu.Unlock()
	if handled != 2 {
		t.Errorf("close returned before the queue drained: handled = %d", handled)
	}
}
