package paradex

import (
	"errors"
	"fmt"
)

// ChannelKind identifies a logical stream type on the venue.
type ChannelKind int

const (
	ChannelUnknown ChannelKind = iota

	// Public channels
	ChannelMarketSummary
	ChannelBBO
	ChannelTrades
	ChannelOrderBook
	ChannelOrderBookDeltas
	ChannelFundingData

	// Private channels (require an authenticated session)
	ChannelOrders
	ChannelFills
	ChannelPositions
	ChannelAccount
	ChannelBalanceEvents
	ChannelFundingPayments
)

// String returns the kind's base channel name.
func (k ChannelKind) String() string {
	switch k {
	case ChannelMarketSummary:
		return "markets_summary"
	case ChannelBBO:
		return "bbo"
	case ChannelTrades:
		return "trades"
	case ChannelOrderBook:
		return "order_book"
	case ChannelOrderBookDeltas:
		return "order_book_deltas"
	case ChannelFundingData:
		return "funding_data"
	case ChannelOrders:
		return "orders"
	case ChannelFills:
		return "fills"
	case ChannelPositions:
		return "positions"
	case ChannelAccount:
		return "account"
	case ChannelBalanceEvents:
		return "balance_events"
	case ChannelFundingPayments:
		return "funding_payments"
	default:
		return "unknown"
	}
}

// DefaultRefreshRate is the order-book snapshot refresh rate used when
// the caller does not specify one.
const DefaultRefreshRate = "50ms"

// Channel describes one logical, independently subscribable stream.
// It is an immutable value type: two channels are the same logical
// stream exactly when the struct values are equal.
type Channel struct {
	Kind   ChannelKind
	Market string // empty means "all markets" where the venue supports it

	// Order-book snapshot parameters (ChannelOrderBook only).
	RefreshRate string
	PriceTick   string
}

// MarketSummaryChannel streams summary updates for every market.
func MarketSummaryChannel() Channel {
	return Channel{Kind: ChannelMarketSummary}
}

// BBOChannel streams best bid/offer updates for one market.
func BBOChannel(market string) Channel {
	return Channel{Kind: ChannelBBO, Market: market}
}

// TradesChannel streams trades for one market.
func TradesChannel(market string) Channel {
	return Channel{Kind: ChannelTrades, Market: market}
}

// OrderBookChannel streams periodic order-book snapshots for one
// market. An empty refreshRate selects DefaultRefreshRate.
func OrderBookChannel(market, refreshRate string) Channel {
	if refreshRate == "" {
		refreshRate = DefaultRefreshRate
	}
	return Channel{Kind: ChannelOrderBook, Market: market, RefreshRate: refreshRate}
}

// OrderBookChannelWithTick is OrderBookChannel with price aggregation
// at the given tick.
func OrderBookChannelWithTick(market, refreshRate, priceTick string) Channel {
	ch := OrderBookChannel(market, refreshRate)
	ch.PriceTick = priceTick
	return ch
}

// OrderBookDeltasChannel streams incremental order-book updates for
// one market.
func OrderBookDeltasChannel(market string) Channel {
	return Channel{Kind: ChannelOrderBookDeltas, Market: market}
}

// FundingDataChannel streams funding updates. An empty market streams
// all markets.
func FundingDataChannel(market string) Channel {
	return Channel{Kind: ChannelFundingData, Market: market}
}

// OrdersChannel streams the account's order updates. An empty market
// streams all markets.
func OrdersChannel(market string) Channel {
	return Channel{Kind: ChannelOrders, Market: market}
}

// FillsChannel streams the account's fills. An empty market streams
// all markets.
func FillsChannel(market string) Channel {
	return Channel{Kind: ChannelFills, Market: market}
}

// PositionsChannel streams position updates for the account.
func PositionsChannel() Channel {
	return Channel{Kind: ChannelPositions}
}

// AccountChannel streams account state updates.
func AccountChannel() Channel {
	return Channel{Kind: ChannelAccount}
}

// BalanceEventsChannel streams balance change events for the account.
func BalanceEventsChannel() Channel {
	return Channel{Kind: ChannelBalanceEvents}
}

// FundingPaymentsChannel streams the account's funding payments. An
// empty market streams all markets.
func FundingPaymentsChannel(market string) Channel {
	return Channel{Kind: ChannelFundingPayments, Market: market}
}

// Name renders the venue's channel key for this descriptor. Name is
// the subscription identity on the wire: inbound frames carry it back
// verbatim.
func (c Channel) Name() string {
	switch c.Kind {
	case ChannelMarketSummary:
		return "markets_summary"
	case ChannelBBO:
		return "bbo." + c.Market
	case ChannelTrades:
		return "trades." + c.Market
	case ChannelOrderBook:
		name := fmt.Sprintf("order_book.%s.snapshot@15@%s", c.Market, c.RefreshRate)
		if c.PriceTick != "" {
			name += "@" + c.PriceTick
		}
		return name
	case ChannelOrderBookDeltas:
		return "order_book." + c.Market + ".deltas"
	case ChannelFundingData:
		return "funding_data." + marketOrAll(c.Market)
	case ChannelOrders:
		return "orders." + marketOrAll(c.Market)
	case ChannelFills:
		return "fills." + marketOrAll(c.Market)
	case ChannelPositions:
		return "positions"
	case ChannelAccount:
		return "account"
	case ChannelBalanceEvents:
		return "balance_events"
	case ChannelFundingPayments:
		return "funding_payments." + marketOrAll(c.Market)
	default:
		return ""
	}
}

// Private reports whether the channel requires an authenticated
// session.
func (c Channel) Private() bool {
	switch c.Kind {
	case ChannelOrders, ChannelFills, ChannelPositions, ChannelAccount,
		ChannelBalanceEvents, ChannelFundingPayments:
		return true
	}
	return false
}

// Validate checks that the descriptor is well formed.
func (c Channel) Validate() error {
	switch c.Kind {
	case ChannelMarketSummary, ChannelPositions, ChannelAccount, ChannelBalanceEvents:
		if c.Market != "" {
			return fmt.Errorf("channel %s takes no market, got %q", c.Kind, c.Market)
		}
	case ChannelBBO, ChannelTrades, ChannelOrderBookDeltas:
		if c.Market == "" {
			return fmt.Errorf("channel %s requires a market", c.Kind)
		}
	case ChannelOrderBook:
		if c.Market == "" {
			return errors.New("channel order_book requires a market")
		}
		if c.RefreshRate == "" {
			return errors.New("channel order_book requires a refresh rate")
		}
	case ChannelFundingData, ChannelOrders, ChannelFills, ChannelFundingPayments:
		// market optional
	default:
		return fmt.Errorf("unknown channel kind %d", int(c.Kind))
	}
	return nil
}

func marketOrAll(market string) string {
	if market == "" {
		return "ALL"
	}
	return market
}
