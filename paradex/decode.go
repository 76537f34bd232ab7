package paradex

import (
	"fmt"

	"github.com/goccy/go-json"
)

// DecodePayload unmarshals a channel-data payload into the typed
// struct for the channel kind. The returned value is a pointer to the
// payload type (*BBO, *Trade, ...), never nil on success.
func DecodePayload(kind ChannelKind, data []byte) (any, error) {
	var (
		v   any
		err error
	)
	switch kind {
	case ChannelMarketSummary:
		v, err = decodeInto[MarketSummary](data)
	case ChannelBBO:
		v, err = decodeInto[BBO](data)
	case ChannelTrades:
		v, err = decodeInto[Trade](data)
	case ChannelOrderBook, ChannelOrderBookDeltas:
		v, err = decodeInto[OrderBook](data)
	case ChannelFundingData:
		v, err = decodeInto[FundingData](data)
	case ChannelOrders:
		v, err = decodeInto[OrderUpdate](data)
	case ChannelFills:
		v, err = decodeInto[Fill](data)
	case ChannelPositions:
		v, err = decodeInto[Position](data)
	case ChannelAccount:
		v, err = decodeInto[AccountInformation](data)
	case ChannelBalanceEvents:
		v, err = decodeInto[BalanceEvent](data)
	case ChannelFundingPayments:
		v, err = decodeInto[FundingPayment](data)
	default:
		return nil, fmt.Errorf("no payload type for channel kind %d", int(kind))
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", kind, err)
	}
	return v, nil
}

func decodeInto[T any](data []byte) (*T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
