// Package recorder persists feed data to TimescaleDB. Writers batch
// rows and flush on size or interval, insert-only with conflict
// skipping so replayed frames after a reconnect never duplicate rows.
package recorder
