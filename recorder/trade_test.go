package recorder

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/paradex-data/paradex"
	"github.com/rickgao/paradex-data/ws"
)

func TestTradeWriter_Transform(t *testing.T) {
	w := NewTradeWriter(DefaultWriterConfig(), nil, nil)

	receivedAt := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	trade := &paradex.Trade{
		ID:        "t-123",
		Market:    "BTC-USD-PERP",
		Side:      paradex.Sell,
		Price:     decimal.RequireFromString("98123.5"),
		Size:      decimal.RequireFromString("0.25"),
		TradeType: paradex.TradeFill,
		CreatedAt: 1768478400000,
	}

	row := w.transform(trade, receivedAt)

	if row.ID != "t-123" {
		t.Errorf("ID = %s, want t-123", row.ID)
	}
	if row.Price != "98123.5" {
		t.Errorf("Price = %s, want 98123.5", row.Price)
	}
	if row.Side != "SELL" {
		t.Errorf("Side = %s, want SELL", row.Side)
	}
	if row.ExchangeTs != 1768478400000 {
		t.Errorf("ExchangeTs = %d", row.ExchangeTs)
	}
	if row.ReceivedAt != receivedAt.UnixMicro() {
		t.Errorf("ReceivedAt = %d, want %d", row.ReceivedAt, receivedAt.UnixMicro())
	}
}

func TestTradeWriter_HandlerFiltersEvents(t *testing.T) {
	w := NewTradeWriter(DefaultWriterConfig(), nil, nil)
	h := w.Handler()

	trade := &paradex.Trade{ID: "t-1", Market: "BTC-USD-PERP"}
	h.HandleEvent(ws.Event{Type: ws.EventData, Payload: trade, ReceivedAt: time.Now()})
	h.HandleEvent(ws.Event{Type: ws.EventSubscribed})
	h.HandleEvent(ws.Event{Type: ws.EventData, Payload: &paradex.BBO{}})

	if n := len(w.input); n != 1 {
		t.Errorf("queued rows = %d, want 1 (only trade data events)", n)
	}
}

func TestTradeWriter_Lifecycle(t *testing.T) {
	cfg := WriterConfig{
		BatchSize:     10,
		FlushInterval: 100 * time.Millisecond,
		BufferSize:    10,
	}

	// No database: tests the goroutine lifecycle only.
	w := NewTradeWriter(cfg, nil, nil)

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := w.Stop(stopCtx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestTradeWriter_AddRowBatches(t *testing.T) {
	cfg := WriterConfig{
		BatchSize:     100, // large batch so no auto-flush
		FlushInterval: time.Hour,
		BufferSize:    10,
	}
	w := NewTradeWriter(cfg, nil, nil)

	w.addRow(tradeRow{ID: "t-1"})

	w.batchMu.Lock()
	batchLen := len(w.batch)
	w.batchMu.Unlock()

	if batchLen != 1 {
		t.Errorf("batch length = %d, want 1", batchLen)
	}
}

func TestBBOWriter_Transform(t *testing.T) {
	w := NewBBOWriter(DefaultWriterConfig(), nil, nil)

	receivedAt := time.Now()
	bbo := &paradex.BBO{
		Market:        "ETH-USD-PERP",
		Bid:           decimal.RequireFromString("3301.25"),
		BidSize:       decimal.RequireFromString("2"),
		Ask:           decimal.RequireFromString("3301.5"),
		AskSize:       decimal.RequireFromString("0.7"),
		LastUpdatedAt: 1768478400000,
		SeqNo:         42,
	}

	row := w.transform(bbo, receivedAt)

	if row.Market != "ETH-USD-PERP" || row.SeqNo != 42 {
		t.Errorf("row key = %s/%d", row.Market, row.SeqNo)
	}
	if row.Bid != "3301.25" || row.Ask != "3301.5" {
		t.Errorf("row quotes = %s/%s", row.Bid, row.Ask)
	}
}

func TestBBOWriter_Stats(t *testing.T) {
	w := NewBBOWriter(DefaultWriterConfig(), nil, nil)
	stats := w.Stats()
	if stats.Inserts != 0 || stats.Errors != 0 {
		t.Errorf("fresh writer has nonzero metrics: %+v", stats)
	}
}
