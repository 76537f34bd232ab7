package paradex

import (
	"github.com/shopspring/decimal"
)

// The venue serializes every decimal quantity as a JSON string.
// shopspring/decimal marshals to a quoted string and accepts both
// quoted and bare numbers on unmarshal, so wire round-trips are exact.

// MarketSummary is one markets_summary update.
type MarketSummary struct {
	Symbol          string          `json:"symbol"`
	MarkPrice       decimal.Decimal `json:"mark_price"`
	LastTradedPrice decimal.Decimal `json:"last_traded_price"`
	Bid             decimal.Decimal `json:"bid"`
	Ask             decimal.Decimal `json:"ask"`
	Volume24h       decimal.Decimal `json:"volume_24h"`
	TotalVolume     decimal.Decimal `json:"total_volume"`
	UnderlyingPrice decimal.Decimal `json:"underlying_price"`
	OpenInterest    decimal.Decimal `json:"open_interest"`
	FundingRate     decimal.Decimal `json:"funding_rate"`
	PriceChangeRate decimal.Decimal `json:"price_change_rate_24h"`
	CreatedAt       int64           `json:"created_at"`
}

// BBO is a best bid/offer update for one market.
type BBO struct {
	Market        string          `json:"market"`
	Bid           decimal.Decimal `json:"bid"`
	BidSize       decimal.Decimal `json:"bid_size"`
	Ask           decimal.Decimal `json:"ask"`
	AskSize       decimal.Decimal `json:"ask_size"`
	LastUpdatedAt int64           `json:"last_updated_at"`
	SeqNo         uint64          `json:"seq_no"`
}

// TradeType classifies how a trade came to be.
type TradeType string

const (
	TradeFill         TradeType = "FILL"
	TradeLiquidation  TradeType = "LIQUIDATION"
	TradeRPI          TradeType = "RPI"
	TradeTransfer     TradeType = "TRANSFER"
	TradeSettleMarket TradeType = "SETTLE_MARKET"
	TradeBlockTrade   TradeType = "BLOCK_TRADE"
)

// Trade is one public trade print.
type Trade struct {
	ID        string          `json:"id"`
	Market    string          `json:"market"`
	Side      Side            `json:"side"`
	Price     decimal.Decimal `json:"price"`
	Size      decimal.Decimal `json:"size"`
	TradeType TradeType       `json:"trade_type"`
	CreatedAt int64           `json:"created_at"`
}

// OrderBookLevel is a single price level in an order-book message.
type OrderBookLevel struct {
	Side  Side            `json:"side"`
	Price decimal.Decimal `json:"price"`
	Size  decimal.Decimal `json:"size"`
}

// OrderBookUpdateType distinguishes snapshots from deltas.
type OrderBookUpdateType string

const (
	OrderBookSnapshot OrderBookUpdateType = "s"
	OrderBookDelta    OrderBookUpdateType = "d"
)

// OrderBook is an order-book snapshot or delta frame.
type OrderBook struct {
	Market        string              `json:"market"`
	SeqNo         uint64              `json:"seq_no"`
	LastUpdatedAt int64               `json:"last_updated_at"`
	UpdateType    OrderBookUpdateType `json:"update_type"`
	Deletes       []OrderBookLevel    `json:"deletes"`
	Inserts       []OrderBookLevel    `json:"inserts"`
	Updates       []OrderBookLevel    `json:"updates"`
}

// FundingData is a funding index/premium/rate update.
type FundingData struct {
	Market         string          `json:"market"`
	FundingIndex   decimal.Decimal `json:"funding_index"`
	FundingPremium decimal.Decimal `json:"funding_premium"`
	FundingRate    decimal.Decimal `json:"funding_rate"`
	CreatedAt      int64           `json:"created_at"`
}

// OrderStatus is the venue-side lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusNew         OrderStatus = "NEW"
	OrderStatusUntriggered OrderStatus = "UNTRIGGERED"
	OrderStatusOpen        OrderStatus = "OPEN"
	OrderStatusClosed      OrderStatus = "CLOSED"
)

// OrderUpdate is a private order lifecycle update.
type OrderUpdate struct {
	ID            string          `json:"id"`
	ClientID      string          `json:"client_id"`
	Market        string          `json:"market"`
	Side          Side            `json:"side"`
	Type          OrderType       `json:"type"`
	Status        OrderStatus     `json:"status"`
	Size          decimal.Decimal `json:"size"`
	RemainingSize decimal.Decimal `json:"remaining_size"`
	Price         decimal.Decimal `json:"price"`
	AvgFillPrice  decimal.Decimal `json:"avg_fill_price"`
	CancelReason  string          `json:"cancel_reason"`
	CreatedAt     int64           `json:"created_at"`
	LastUpdatedAt int64           `json:"last_updated_at"`
}

// Fill is a private fill report.
type Fill struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"order_id"`
	ClientID    string          `json:"client_id"`
	Market      string          `json:"market"`
	Side        Side            `json:"side"`
	Price       decimal.Decimal `json:"price"`
	Size        decimal.Decimal `json:"size"`
	Fee         decimal.Decimal `json:"fee"`
	FeeCurrency string          `json:"fee_currency"`
	Liquidity   string          `json:"liquidity"`
	CreatedAt   int64           `json:"created_at"`
}

// Position is a private position update.
type Position struct {
	ID                 string          `json:"id"`
	Market             string          `json:"market"`
	Side               string          `json:"side"`
	Size               decimal.Decimal `json:"size"`
	AverageEntryPrice  decimal.Decimal `json:"average_entry_price"`
	UnrealizedPnl      decimal.Decimal `json:"unrealized_pnl"`
	CostUSD            decimal.Decimal `json:"cost_usd"`
	CachedFundingIndex decimal.Decimal `json:"cached_funding_index"`
	LastUpdatedAt      int64           `json:"last_updated_at"`
}

// AccountInformation is a private account state update.
type AccountInformation struct {
	Account              string          `json:"account"`
	AccountValue         decimal.Decimal `json:"account_value"`
	FreeCollateral       decimal.Decimal `json:"free_collateral"`
	InitialMarginReq     decimal.Decimal `json:"initial_margin_requirement"`
	MaintenanceMarginReq decimal.Decimal `json:"maintenance_margin_requirement"`
	TotalCollateral      decimal.Decimal `json:"total_collateral"`
	Status               string          `json:"status"`
	UpdatedAt            int64           `json:"updated_at"`
}

// BalanceEvent is a private balance change event.
type BalanceEvent struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Token     string          `json:"token"`
	Amount    decimal.Decimal `json:"amount"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt int64           `json:"created_at"`
}

// FundingPayment is a private funding payment record.
type FundingPayment struct {
	ID        string          `json:"id"`
	Market    string          `json:"market"`
	Payment   decimal.Decimal `json:"payment"`
	Index     decimal.Decimal `json:"index"`
	FillID    string          `json:"fill_id"`
	CreatedAt int64           `json:"created_at"`
}
