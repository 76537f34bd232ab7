package paradex

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Market is the static metadata for one tradable market, as returned
// by the REST markets endpoint.
type Market struct {
	Symbol             string          `json:"symbol"`
	BaseCurrency       string          `json:"base_currency"`
	QuoteCurrency      string          `json:"quote_currency"`
	SettlementCurrency string          `json:"settlement_currency"`
	AssetKind          string          `json:"asset_kind"`
	OrderSizeIncrement decimal.Decimal `json:"order_size_increment"`
	PriceTickSize      decimal.Decimal `json:"price_tick_size"`
	MinNotional        decimal.Decimal `json:"min_notional"`
	MaxOrderSize       decimal.Decimal `json:"max_order_size"`
	PositionLimit      decimal.Decimal `json:"position_limit"`
	FundingPeriodHours uint16          `json:"funding_period_hours"`
	ExpiryAt           int64           `json:"expiry_at"`
	OpenAt             int64           `json:"open_at"`
}

// Catalog indexes market metadata by symbol. It is safe for
// concurrent use: lookups far outnumber refreshes.
type Catalog struct {
	mu       sync.RWMutex
	bySymbol map[string]Market
}

// NewCatalog builds a catalog from a market list.
func NewCatalog(markets []Market) *Catalog {
	c := &Catalog{bySymbol: make(map[string]Market, len(markets))}
	for _, m := range markets {
		c.bySymbol[m.Symbol] = m
	}
	return c
}

// Lookup returns the metadata for a symbol.
func (c *Catalog) Lookup(symbol string) (Market, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.bySymbol[symbol]
	return m, ok
}

// Has reports whether the symbol is a known market.
func (c *Catalog) Has(symbol string) bool {
	_, ok := c.Lookup(symbol)
	return ok
}

// Symbols returns all known market symbols.
func (c *Catalog) Symbols() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.bySymbol))
	for s := range c.bySymbol {
		out = append(out, s)
	}
	return out
}

// Replace swaps the catalog contents, used after a metadata refresh.
func (c *Catalog) Replace(markets []Market) {
	next := make(map[string]Market, len(markets))
	for _, m := range markets {
		next[m.Symbol] = m
	}
	c.mu.Lock()
	c.bySymbol = next
	c.mu.Unlock()
}
