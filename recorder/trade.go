package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/paradex-data/paradex"
	"github.com/rickgao/paradex-data/ws"
)

// TradeWriter consumes trade events and writes to the trades table.
type TradeWriter struct {
	cfg    WriterConfig
	logger *slog.Logger

	input chan tradeRow
	db    *pgxpool.Pool

	batch       []tradeRow
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	metrics WriterMetrics
}

type tradeRow struct {
	ID         string
	Market     string
	Side       string
	Price      string
	Size       string
	TradeType  string
	ExchangeTs int64
	ReceivedAt int64
}

// NewTradeWriter creates a new TradeWriter.
func NewTradeWriter(cfg WriterConfig, db *pgxpool.Pool, logger *slog.Logger) *TradeWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &TradeWriter{
		cfg:    cfg,
		db:     db,
		logger: logger,
		input:  make(chan tradeRow, cfg.BufferSize),
		batch:  make([]tradeRow, 0, cfg.BatchSize),
	}
}

// Handler returns the subscription handler that feeds this writer.
// Non-data events are ignored; a full input buffer drops the row so
// the dispatch loop never blocks on the database.
func (w *TradeWriter) Handler() ws.Handler {
	return ws.HandlerFunc(func(ev ws.Event) {
		if ev.Type != ws.EventData {
			return
		}
		trade, ok := ev.Payload.(*paradex.Trade)
		if !ok {
			return
		}
		select {
		case w.input <- w.transform(trade, ev.ReceivedAt):
		default:
			w.batchMu.Lock()
			w.metrics.Dropped++
			w.batchMu.Unlock()
			w.logger.Warn("trade buffer full, dropping row", "market", trade.Market)
		}
	})
}

// Start begins consuming and writing.
func (w *TradeWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	w.wg.Add(1)
	go w.consumeLoop()

	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("trade writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop gracefully shuts down the writer.
func (w *TradeWriter) Stop(ctx context.Context) error {
	w.logger.Info("stopping trade writer")

	if w.cancel != nil {
		w.cancel()
	}
	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("trade writer stopped")
	case <-ctx.Done():
		w.logger.Warn("trade writer stop timed out")
	}

	w.flush()
	return nil
}

// Stats returns current metrics.
func (w *TradeWriter) Stats() WriterMetrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

func (w *TradeWriter) consumeLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case row := <-w.input:
			w.addRow(row)
		}
	}
}

func (w *TradeWriter) flushLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.flushTicker.C:
			w.flush()
		}
	}
}

func (w *TradeWriter) addRow(row tradeRow) {
	w.batchMu.Lock()
	w.batch = append(w.batch, row)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		w.flush()
	}
}

// transform converts a trade payload to its row form. Decimals go to
// the database as their exact string form.
func (w *TradeWriter) transform(t *paradex.Trade, receivedAt time.Time) tradeRow {
	return tradeRow{
		ID:         t.ID,
		Market:     t.Market,
		Side:       string(t.Side),
		Price:      t.Price.String(),
		Size:       t.Size.String(),
		TradeType:  string(t.TradeType),
		ExchangeTs: t.CreatedAt,
		ReceivedAt: receivedAt.UnixMicro(),
	}
}

func (w *TradeWriter) flush() {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}
	batch := w.batch
	w.batch = make([]tradeRow, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()

	conflicts, err := w.batchInsert(batch)
	if err != nil {
		w.logger.Error("batch insert failed", "error", err, "count", len(batch))
		w.batchMu.Lock()
		w.metrics.Errors++
		w.batchMu.Unlock()
		return
	}

	w.batchMu.Lock()
	w.metrics.Inserts += int64(len(batch) - conflicts)
	w.metrics.Conflicts += int64(conflicts)
	w.metrics.Flushes++
	w.batchMu.Unlock()

	w.logger.Debug("flushed trades",
		"count", len(batch),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
}

// batchInsert inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (w *TradeWriter) batchInsert(rows []tradeRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO trades (id, market, side, price, size, trade_type, exchange_ts, received_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO NOTHING
		`, r.ID, r.Market, r.Side, r.Price, r.Size, r.TradeType, r.ExchangeTs, r.ReceivedAt)
	}

	results := w.db.SendBatch(w.ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}
