// Package paradex defines the wire-level types shared by the WebSocket
// and REST clients: channel descriptors, market-data payloads, order
// requests, and the market catalog.
package paradex
