package ws

import (
	"github.com/rickgao/paradex-data/paradex"
)

// subscription is one registered subscriber. State transitions happen
// only on the manager's owner goroutine, so no locking here.
type subscription struct {
	handle  Handle
	channel paradex.Channel
	handler Handler
	queue   *dispatchQueue

	// confirmed closes when the venue acknowledges the subscription.
	// Replaced with a fresh channel when a reconnect marks the
	// subscription pending again.
	confirmed chan struct{}
	acked     bool
}

func (s *subscription) markPending() {
	if s.acked {
		s.acked = false
		s.confirmed = make(chan struct{})
	}
}

func (s *subscription) markConfirmed() {
	if !s.acked {
		s.acked = true
		close(s.confirmed)
	}
}

// registry tracks subscriptions by handle and by channel name. It is
// owned by the manager goroutine and must not be shared.
type registry struct {
	byHandle map[Handle]*subscription
	byName   map[string][]*subscription
}

func newRegistry() *registry {
	return &registry{
		byHandle: make(map[Handle]*subscription),
		byName:   make(map[string][]*subscription),
	}
}

// add registers a subscription and reports whether it is the first
// subscriber for its channel name. Only the first needs a wire
// subscribe; later subscribers share the stream.
func (r *registry) add(sub *subscription) (first bool) {
	name := sub.channel.Name()
	r.byHandle[sub.handle] = sub
	r.byName[name] = append(r.byName[name], sub)
	return len(r.byName[name]) == 1
}

// remove deregisters a handle and reports whether it was the last
// subscriber for its channel name. Only the last triggers a wire
// unsubscribe.
func (r *registry) remove(h Handle) (sub *subscription, last bool, ok bool) {
	sub, ok = r.byHandle[h]
	if !ok {
		return nil, false, false
	}
	delete(r.byHandle, h)

	name := sub.channel.Name()
	subs := r.byName[name]
	for i, s := range subs {
		if s.handle == h {
			subs = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(subs) == 0 {
		delete(r.byName, name)
		return sub, true, true
	}
	r.byName[name] = subs
	return sub, false, true
}

// get returns the subscription for a handle.
func (r *registry) get(h Handle) (*subscription, bool) {
	sub, ok := r.byHandle[h]
	return sub, ok
}

// forName returns the subscribers sharing a channel name.
func (r *registry) forName(name string) []*subscription {
	return r.byName[name]
}

// names returns the distinct channel names with at least one
// subscriber, the set replayed after a reconnect.
func (r *registry) names() []string {
	out := make([]string, 0, len(r.byName))
	for name := range r.byName {
		out = append(out, name)
	}
	return out
}

// channelFor returns the Channel value for a registered name.
func (r *registry) channelFor(name string) (paradex.Channel, bool) {
	subs := r.byName[name]
	if len(subs) == 0 {
		return paradex.Channel{}, false
	}
	return subs[0].channel, true
}

// markAllPending resets every subscription to unconfirmed, done when
// the connection drops.
func (r *registry) markAllPending() {
	for _, sub := range r.byHandle {
		sub.markPending()
	}
}

// all returns every registered subscription.
func (r *registry) all() []*subscription {
	out := make([]*subscription, 0, len(r.byHandle))
	for _, sub := range r.byHandle {
		out = append(out, sub)
	}
	return out
}

func (r *registry) len() int { return len(r.byHandle) }
