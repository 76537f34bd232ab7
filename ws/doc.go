// Package ws maintains WebSocket subscriptions to the venue's
// real-time feed: a channel registry, a supervised connection that
// reconnects with exponential backoff and replays subscriptions, and a
// dispatch loop that decodes frames and fans them out to per-channel
// handlers without blocking the reader.
package ws
