package recorder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/paradex-data/config"
	"github.com/rickgao/paradex-data/ws"
)

// Recorder owns the database pool and the per-channel writers.
type Recorder struct {
	pool   *pgxpool.Pool
	trades *TradeWriter
	bbo    *BBOWriter
	logger *slog.Logger
}

// New connects to the database and builds the writers.
func New(ctx context.Context, cfg config.RecorderConfig, logger *slog.Logger) (*Recorder, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := Connect(ctx, cfg.Timescale)
	if err != nil {
		return nil, fmt.Errorf("connect timescale: %w", err)
	}

	wcfg := WriterConfig{
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.FlushInterval,
		BufferSize:    cfg.BufferSize,
	}

	return &Recorder{
		pool:   pool,
		trades: NewTradeWriter(wcfg, pool, logger),
		bbo:    NewBBOWriter(wcfg, pool, logger),
		logger: logger,
	}, nil
}

// Start launches all writers.
func (r *Recorder) Start(ctx context.Context) error {
	if err := r.trades.Start(ctx); err != nil {
		return err
	}
	return r.bbo.Start(ctx)
}

// Stop flushes and shuts down all writers, then closes the pool.
func (r *Recorder) Stop(ctx context.Context) error {
	terr := r.trades.Stop(ctx)
	berr := r.bbo.Stop(ctx)
	r.pool.Close()
	if terr != nil {
		return terr
	}
	return berr
}

// Stats returns per-writer metrics keyed by stream name.
func (r *Recorder) Stats() map[string]WriterMetrics {
	return map[string]WriterMetrics{
		"trades": r.trades.Stats(),
		"bbo":    r.bbo.Stats(),
	}
}

// TradeHandler returns the subscription handler for trade channels.
func (r *Recorder) TradeHandler() ws.Handler { return r.trades.Handler() }

// BBOHandler returns the subscription handler for bbo channels.
func (r *Recorder) BBOHandler() ws.Handler { return r.bbo.Handler() }
