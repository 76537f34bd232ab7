package ws

import (
	"log/slog"
	"testing"

	"github.com/rickgao/paradex-data/paradex"
)

func newTestSub(ch paradex.Channel) *subscription {
	return &subscription{
		handle:    newHandle(),
		channel:   ch,
		handler:   HandlerFunc(func(Event) {}),
		queue:     newDispatchQueue(8, HandlerFunc(func(Event) {}), slog.Default()),
		confirmed: make(chan struct{}),
	}
}

func TestRegistryAddRemove(t *testing.T) {
	reg := newRegistry()
	ch := paradex.BBOChannel("BTC-USD-PERP")

	a := newTestSub(ch)
	b := newTestSub(ch)

	if first := reg.add(a); !first {
		t.Error("first subscriber must report first=true")
	}
	if first := reg.add(b); first {
		t.Error("second subscriber for the same channel must report first=false")
	}
	if reg.len() != 2 {
		t.Errorf("len = %d, want 2", reg.len())
	}
	if len(reg.names()) != 1 {
		t.Errorf("names = %v, want one entry", reg.names())
	}

	if _, last, ok := reg.remove(a.handle); !ok || last {
		t.Errorf("removing first of two: last=%v ok=%v", last, ok)
	}
	if _, last, ok := reg.remove(b.handle); !ok || !last {
		t.Errorf("removing final subscriber: last=%v ok=%v", last, ok)
	}
	if _, _, ok := reg.remove(b.handle); ok {
		t.Error("double remove must report ok=false")
	}
	if len(reg.names()) != 0 {
		t.Errorf("names after removal = %v", reg.names())
	}
}

func TestRegistryChannelFor(t *testing.T) {
	reg := newRegistry()
	ch := paradex.TradesChannel("ETH-USD-PERP")
	reg.add(newTestSub(ch))

	got, ok := reg.channelFor(ch.Name())
	if !ok || got.Name() != ch.Name() {
		t.Errorf("channelFor = %v, %v", got, ok)
	}
	if _, ok := reg.channelFor("bbo.ETH-USD-PERP"); ok {
		t.Error("channelFor must miss for unregistered names")
	}
}

func TestRegistryPendingConfirm(t *testing.T) {
	reg := newRegistry()
	sub := newTestSub(paradex.BBOChannel("BTC-USD-PERP"))
	reg.add(sub)

	sub.markConfirmed()
	select {
	case <-sub.confirmed:
	default:
		t.Fatal("confirmed channel not closed after markConfirmed")
	}

	// Confirming twice must not panic on a closed channel.
	sub.markConfirmed()

	reg.markAllPending()
	select {
	case <-sub.confirmed:
		t.Fatal("confirmed channel must be fresh after markAllPending")
	default:
	}

	sub.markConfirmed()
	select {
	case <-sub.confirmed:
	default:
		t.Fatal("reconfirmation after replay must close the new channel")
	}
}
