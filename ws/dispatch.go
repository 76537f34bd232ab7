package ws

import (
	"log/slog"
)

// dispatchQueue decouples one subscription's handler from the read
// loop: a bounded ring fed by the manager goroutine and drained by a
// dedicated goroutine. When the handler falls behind, the oldest
// queued events are dropped so the reader never blocks.
type dispatchQueue struct {
	ch     chan Event
	done   chan struct{}
	logger *slog.Logger
}

func newDispatchQueue(size int, handler Handler, logger *slog.Logger) *dispatchQueue {
	if size <= 0 {
		size = 1
	}
	q := &dispatchQueue{
		ch:     make(chan Event, size),
		done:   make(chan struct{}),
		logger: logger,
	}
	go func() {
		defer close(q.done)
		for ev := range q.ch {
			handler.HandleEvent(ev)
		}
	}()
	return q
}

// push enqueues an event, evicting the oldest entry if the queue is
// full. Called only from the manager goroutine, so the evict-then-push
// sequence has a single producer and cannot race.
func (q *dispatchQueue) push(ev Event) {
	for {
		select {
		case q.ch <- ev:
			return
		default:
		}
		select {
		case dropped := <-q.ch:
			q.logger.Warn("handler backlog full, dropping oldest event",
				"channel", dropped.Channel.Name(),
				"type", dropped.Type.String(),
			)
		default:
		}
	}
}

// shut stops accepting events; the drain goroutine exits once the
// queue empties.
func (q *dispatchQueue) shut() {
	close(q.ch)
}

// wait blocks until the handler has finished its last event.
func (q *dispatchQueue) wait() {
	<-q.done
}

// close stops the drain goroutine after the queue empties and waits
// for the handler to finish its last event.
func (q *dispatchQueue) close() {
	q.shut()
	q.wait()
}
