// Package rest is the HTTP client for the venue's REST API: market
// metadata and account state reads, signed order placement, and the
// JWT auth flow that also feeds private WebSocket subscriptions.
package rest
