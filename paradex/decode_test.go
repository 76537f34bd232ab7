package paradex

import (
	"testing"

	"github.com/shopspring/decimal"
)

// Fixtures mirror captured venue frames: decimals arrive as strings.

func TestDecodeBBO(t *testing.T) {
	data := []byte(`{
		"market": "BTC-USD-PERP",
		"bid": "98123.5",
		"bid_size": "0.522",
		"ask": "98124.0",
		"ask_size": "1.03",
		"last_updated_at": 1737473412000,
		"seq_no": 8123
	}`)

	v, err := DecodePayload(ChannelBBO, data)
	if err != nil {
		t.Fatalf("DecodePayload failed: %v", err)
	}

	bbo, ok := v.(*BBO)
	if !ok {
		t.Fatalf("payload type = %T, want *BBO", v)
	}
	if bbo.Market != "BTC-USD-PERP" {
		t.Errorf("Market = %q", bbo.Market)
	}
	if !bbo.Bid.Equal(decimal.RequireFromString("98123.5")) {
		t.Errorf("Bid = %s, want 98123.5", bbo.Bid)
	}
	if !bbo.AskSize.Equal(decimal.RequireFromString("1.03")) {
		t.Errorf("AskSize = %s, want 1.03", bbo.AskSize)
	}
	if bbo.SeqNo != 8123 {
		t.Errorf("SeqNo = %d, want 8123", bbo.SeqNo)
	}
}

func TestDecodeTrade(t *testing.T) {
	data := []byte(`{
		"id": "t-1",
		"market": "ETH-USD-PERP",
		"side": "SELL",
		"price": "3301.25",
		"size": "2",
		"trade_type": "FILL",
		"created_at": 1737473412123
	}`)

	v, err := DecodePayload(ChannelTrades, data)
	if err != nil {
		t.Fatalf("DecodePayload failed: %v", err)
	}
	trade := v.(*Trade)
	if trade.Side != Sell {
		t.Errorf("Side = %q, want SELL", trade.Side)
	}
	if trade.TradeType != TradeFill {
		t.Errorf("TradeType = %q, want FILL", trade.TradeType)
	}
	if !trade.Price.Equal(decimal.RequireFromString("3301.25")) {
		t.Errorf("Price = %s", trade.Price)
	}
}

func TestDecodeOrderBookDeltas(t *testing.T) {
	data := []byte(`{
		"market": "BTC-USD-PERP",
		"seq_no": 42,
		"last_updated_at": 1737473412000,
		"update_type": "d",
		"deletes": [{"side": "BUY", "price": "98000", "size": "0"}],
		"inserts": [{"side": "SELL", "price": "98200.5", "size": "0.25"}],
		"updates": []
	}`)

	v, err := DecodePayload(ChannelOrderBookDeltas, data)
	if err != nil {
		t.Fatalf("DecodePayload failed: %v", err)
	}
	book := v.(*OrderBook)
	if book.UpdateType != OrderBookDelta {
		t.Errorf("UpdateType = %q, want d", book.UpdateType)
	}
	if len(book.Deletes) != 1 || len(book.Inserts) != 1 {
		t.Fatalf("levels = %d deletes, %d inserts", len(book.Deletes), len(book.Inserts))
	}
	if book.Inserts[0].Side != Sell {
		t.Errorf("insert side = %q", book.Inserts[0].Side)
	}
}

func TestDecodePayloadMalformed(t *testing.T) {
	if _, err := DecodePayload(ChannelBBO, []byte(`{"bid": [`)); err == nil {
		t.Error("malformed payload must fail to decode")
	}
	if _, err := DecodePayload(ChannelUnknown, []byte(`{}`)); err == nil {
		t.Error("unknown kind must fail to decode")
	}
}

func TestCatalog(t *testing.T) {
	cat := NewCatalog([]Market{
		{Symbol: "BTC-USD-PERP", OrderSizeIncrement: decimal.RequireFromString("0.001")},
		{Symbol: "ETH-USD-PERP"},
	})

	if !cat.Has("BTC-USD-PERP") {
		t.Error("expected BTC-USD-PERP in catalog")
	}
	if cat.Has("DOGE-USD-PERP") {
		t.Error("unexpected DOGE-USD-PERP in catalog")
	}

	m, ok := cat.Lookup("BTC-USD-PERP")
	if !ok || !m.OrderSizeIncrement.Equal(decimal.RequireFromString("0.001")) {
		t.Errorf("Lookup = %+v, %v", m, ok)
	}

	cat.Replace([]Market{{Symbol: "SOL-USD-PERP"}})
	if cat.Has("BTC-USD-PERP") || !cat.Has("SOL-USD-PERP") {
		t.Error("Replace did not swap catalog contents")
	}
	if n := len(cat.Symbols()); n != 1 {
		t.Errorf("Symbols() len = %d, want 1", n)
	}
}
