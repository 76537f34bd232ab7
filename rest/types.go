package rest

import (
	"github.com/shopspring/decimal"

	"github.com/rickgao/paradex-data/paradex"
)

// SystemConfig is the venue's chain and contract configuration,
// needed for signing and account-address derivation.
type SystemConfig struct {
	StarknetChainID           string          `json:"starknet_chain_id"`
	StarknetGateway           string          `json:"starknet_gateway_url"`
	ParaclearAddress          string          `json:"paraclear_address"`
	ParaclearDecimals         int             `json:"paraclear_decimals"`
	ParaclearAccountProxyHash string          `json:"paraclear_account_proxy_hash"`
	ParaclearAccountHash      string          `json:"paraclear_account_hash"`
	BridgedTokens             []BridgedToken  `json:"bridged_tokens"`
	OracleAddress             string          `json:"oracle_address"`
	LiquidationFee            decimal.Decimal `json:"liquidation_fee"`
}

// BridgedToken describes a collateral token bridged to the venue chain.
type BridgedToken struct {
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	Decimals        int    `json:"decimals"`
	L1TokenAddress  string `json:"l1_token_address"`
	L1BridgeAddress string `json:"l1_bridge_address"`
	L2TokenAddress  string `json:"l2_token_address"`
	L2BridgeAddress string `json:"l2_bridge_address"`
}

// Balance is one token balance on the account.
type Balance struct {
	Token         string          `json:"token"`
	Size          decimal.Decimal `json:"size"`
	LastUpdatedAt int64           `json:"last_updated_at"`
}

// resultsEnvelope is the venue's standard list response shape.
type resultsEnvelope[T any] struct {
	Results []T    `json:"results"`
	Next    string `json:"next"`
}

// OrderResult is the venue's view of an order after create or modify.
type OrderResult = paradex.OrderUpdate
