package paradex

import (
	"github.com/shopspring/decimal"
)

// Side is the order or trade direction.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// OrderType selects the venue's order matching behavior.
type OrderType string

const (
	OrderMarket           OrderType = "MARKET"
	OrderLimit            OrderType = "LIMIT"
	OrderStopMarket       OrderType = "STOP_MARKET"
	OrderStopLimit        OrderType = "STOP_LIMIT"
	OrderTakeProfitLimit  OrderType = "TAKE_PROFIT_LIMIT"
	OrderTakeProfitMarket OrderType = "TAKE_PROFIT_MARKET"
	OrderStopLossMarket   OrderType = "STOP_LOSS_MARKET"
	OrderStopLossLimit    OrderType = "STOP_LOSS_LIMIT"
)

// RequiresPrice reports whether the type carries a limit price.
func (t OrderType) RequiresPrice() bool {
	switch t {
	case OrderLimit, OrderStopLimit, OrderTakeProfitLimit, OrderStopLossLimit:
		return true
	}
	return false
}

// Valid reports whether the type is one the venue accepts.
func (t OrderType) Valid() bool {
	switch t {
	case OrderMarket, OrderLimit, OrderStopMarket, OrderStopLimit,
		OrderTakeProfitLimit, OrderTakeProfitMarket,
		OrderStopLossMarket, OrderStopLossLimit:
		return true
	}
	return false
}

// OrderInstruction is the time-in-force.
type OrderInstruction string

const (
	GTC      OrderInstruction = "GTC"
	IOC      OrderInstruction = "IOC"
	PostOnly OrderInstruction = "POST_ONLY"
	RPI      OrderInstruction = "RPI"
)

// Valid reports whether the instruction is one the venue accepts.
func (i OrderInstruction) Valid() bool {
	switch i {
	case GTC, IOC, PostOnly, RPI:
		return true
	}
	return false
}

// OrderFlag modifies order behavior.
type OrderFlag string

const (
	ReduceOnly         OrderFlag = "REDUCE_ONLY"
	StopConditionBelow OrderFlag = "STOP_CONDITION_BELOW_TRIGGER"
	StopConditionAbove OrderFlag = "STOP_CONDITION_ABOVE_TRIGGER"
)

// Self-trade-prevention modes for OrderRequest.STP.
const (
	STPExpireMaker = "EXPIRE_MAKER"
	STPExpireTaker = "EXPIRE_TAKER"
	STPExpireBoth  = "EXPIRE_BOTH"
)

// OrderRequest is the caller-facing order input. It is immutable once
// handed to the signing pipeline.
type OrderRequest struct {
	Market       string           `json:"market"`
	Side         Side             `json:"side"`
	Type         OrderType        `json:"type"`
	Instruction  OrderInstruction `json:"instruction"`
	Size         decimal.Decimal  `json:"size"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	TriggerPrice *decimal.Decimal `json:"trigger_price,omitempty"`
	ClientID     string           `json:"client_id,omitempty"`
	Flags        []OrderFlag      `json:"flags,omitempty"`
	RecvWindow   uint64           `json:"recv_window,omitempty"`
	STP          string           `json:"stp,omitempty"`
}

// ModifyOrderRequest amends an existing order identified by ID.
type ModifyOrderRequest struct {
	ID      string `json:"id"`
	Request OrderRequest
}

// Order is the wire form accepted by the create-order endpoint: the
// request plus the client-side signature. The signature field is a
// JSON string holding the two-element hex array, matching the venue's
// schema.
type Order struct {
	Market             string           `json:"market"`
	Side               Side             `json:"side"`
	Type               OrderType        `json:"type"`
	Instruction        OrderInstruction `json:"instruction"`
	Size               decimal.Decimal  `json:"size"`
	Price              *decimal.Decimal `json:"price,omitempty"`
	TriggerPrice       *decimal.Decimal `json:"trigger_price,omitempty"`
	ClientID           string           `json:"client_id,omitempty"`
	Flags              []OrderFlag      `json:"flags,omitempty"`
	RecvWindow         uint64           `json:"recv_window,omitempty"`
	STP                string           `json:"stp,omitempty"`
	Signature          string           `json:"signature"`
	SignatureTimestamp uint64           `json:"signature_timestamp"`
}

// WireOrder builds the signed wire form of a request.
func (r OrderRequest) WireOrder(signature string, signatureTimestampMs uint64) Order {
	return Order{
		Market:             r.Market,
		Side:               r.Side,
		Type:               r.Type,
		Instruction:        r.Instruction,
		Size:               r.Size,
		Price:              r.Price,
		TriggerPrice:       r.TriggerPrice,
		ClientID:           r.ClientID,
		Flags:              r.Flags,
		RecvWindow:         r.RecvWindow,
		STP:                r.STP,
		Signature:          signature,
		SignatureTimestamp: signatureTimestampMs,
	}
}
