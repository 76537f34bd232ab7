package rest

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rickgao/paradex-data/paradex"
	"github.com/rickgao/paradex-data/sign"
)

// SystemConfig fetches the venue's chain configuration.
func (c *Client) SystemConfig(ctx context.Context) (SystemConfig, error) {
	var cfg SystemConfig
	if err := c.get(ctx, "/v1/system/config", nil, false, &cfg); err != nil {
		return SystemConfig{}, err
	}
	return cfg, nil
}

// Markets fetches metadata for all tradable markets.
func (c *Client) Markets(ctx context.Context) ([]paradex.Market, error) {
	var env resultsEnvelope[paradex.Market]
	if err := c.get(ctx, "/v1/markets", nil, false, &env); err != nil {
		return nil, err
	}
	return env.Results, nil
}

// Catalog fetches all markets into a lookup catalog.
func (c *Client) Catalog(ctx context.Context) (*paradex.Catalog, error) {
	markets, err := c.Markets(ctx)
	if err != nil {
		return nil, err
	}
	return paradex.NewCatalog(markets), nil
}

// BBO fetches the current best bid/offer for a market.
func (c *Client) BBO(ctx context.Context, market string) (paradex.BBO, error) {
	var bbo paradex.BBO
	if err := c.get(ctx, "/v1/bbo/"+url.PathEscape(market), nil, false, &bbo); err != nil {
		return paradex.BBO{}, err
	}
	return bbo, nil
}

// Account fetches the account summary.
func (c *Client) Account(ctx context.Context) (paradex.AccountInformation, error) {
	var acct paradex.AccountInformation
	if err := c.get(ctx, "/v1/account", nil, true, &acct); err != nil {
		return paradex.AccountInformation{}, err
	}
	return acct, nil
}

// Balances fetches token balances.
func (c *Client) Balances(ctx context.Context) ([]Balance, error) {
	var env resultsEnvelope[Balance]
	if err := c.get(ctx, "/v1/balance", nil, true, &env); err != nil {
		return nil, err
	}
	return env.Results, nil
}

// Positions fetches open positions.
func (c *Client) Positions(ctx context.Context) ([]paradex.Position, error) {
	var env resultsEnvelope[paradex.Position]
	if err := c.get(ctx, "/v1/positions", nil, true, &env); err != nil {
		return nil, err
	}
	return env.Results, nil
}

// OpenOrders fetches the account's open orders, optionally filtered
// by market.
func (c *Client) OpenOrders(ctx context.Context, market string) ([]paradex.OrderUpdate, error) {
	query := url.Values{}
	if market != "" {
		query.Set("market", market)
	}
	var env resultsEnvelope[paradex.OrderUpdate]
	if err := c.get(ctx, "/v1/orders", query, true, &env); err != nil {
		return nil, err
	}
	return env.Results, nil
}

// Fills fetches recent fills, optionally filtered by market.
func (c *Client) Fills(ctx context.Context, market string) ([]paradex.Fill, error) {
	query := url.Values{}
	if market != "" {
		query.Set("market", market)
	}
	var env resultsEnvelope[paradex.Fill]
	if err := c.get(ctx, "/v1/fills", query, true, &env); err != nil {
		return nil, err
	}
	return env.Results, nil
}

// CreateOrder submits a signed order.
func (c *Client) CreateOrder(ctx context.Context, signed sign.SignedOrder) (OrderResult, error) {
	var result OrderResult
	if err := c.post(ctx, "/v1/orders", signed.Order, &result); err != nil {
		return OrderResult{}, fmt.Errorf("create order: %w", err)
	}
	return result, nil
}

// ModifyOrder amends an existing order with a signed replacement.
func (c *Client) ModifyOrder(ctx context.Context, orderID string, signed sign.SignedOrder) (OrderResult, error) {
	var result OrderResult
	if err := c.put(ctx, "/v1/orders/"+url.PathEscape(orderID), signed.Order, &result); err != nil {
		return OrderResult{}, fmt.Errorf("modify order %s: %w", orderID, err)
	}
	return result, nil
}

// CancelOrder cancels one order by venue id.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	if err := c.del(ctx, "/v1/orders/"+url.PathEscape(orderID), nil); err != nil {
		return fmt.Errorf("cancel order %s: %w", orderID, err)
	}
	return nil
}

// CancelOrderByClientID cancels one order by client id.
func (c *Client) CancelOrderByClientID(ctx context.Context, clientID string) error {
	if err := c.del(ctx, "/v1/orders/by_client_id/"+url.PathEscape(clientID), nil); err != nil {
		return fmt.Errorf("cancel order by client id %s: %w", clientID, err)
	}
	return nil
}

// CancelAll cancels every open order, optionally scoped to a market.
func (c *Client) CancelAll(ctx context.Context, market string) error {
	query := url.Values{}
	if market != "" {
		query.Set("market", market)
	}
	if err := c.del(ctx, "/v1/orders", query); err != nil {
		return fmt.Errorf("cancel all: %w", err)
	}
	return nil
}
