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

// BBOWriter consumes best bid/offer events and writes to the bbo
// table. Same batching scheme as TradeWriter; rows are keyed by
// (market, seq_no) so replays are skipped.
type BBOWriter struct {
	cfg    WriterConfig
	logger *slog.Logger

	input chan bboRow
	db    *pgxpool.Pool

	batch       []bboRow
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	metrics WriterMetrics
}

type bboRow struct {
	Market     string
	SeqNo      uint64
	Bid        string
	BidSize    string
	Ask        string
	AskSize    string
	ExchangeTs int64
	ReceivedAt int64
}

// NewBBOWriter creates a new BBOWriter.
func NewBBOWriter(cfg WriterConfig, db *pgxpool.Pool, logger *slog.Logger) *BBOWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &BBOWriter{
		cfg:    cfg,
		db:     db,
		logger: logger,
		input:  make(chan bboRow, cfg.BufferSize),
		batch:  make([]bboRow, 0, cfg.BatchSize),
	}
}

// Handler returns the subscription handler that feeds this writer.
func (w *BBOWriter) Handler() ws.Handler {
	return ws.HandlerFunc(func(ev ws.Event) {
		if ev.Type != ws.EventData {
			return
		}
		bbo, ok := ev.Payload.(*paradex.BBO)
		if !ok {
			return
		}
		select {
		case w.input <- w.transform(bbo, ev.ReceivedAt):
		default:
			w.batchMu.Lock()
			w.metrics.Dropped++
			w.batchMu.Unlock()
			w.logger.Warn("bbo buffer full, dropping row", "market", bbo.Market)
		}
	})
}

// Start begins consuming and writing.
func (w *BBOWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	w.wg.Add(1)
	go w.consumeLoop()

	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("bbo writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop gracefully shuts down the writer.
func (w *BBOWriter) Stop(ctx context.Context) error {
	w.logger.Info("stopping bbo writer")

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
		w.logger.Info("bbo writer stopped")
	case <-ctx.Done():
		w.logger.Warn("bbo writer stop timed out")
	}

	w.flush()
	return nil
}

// Stats returns current metrics.
func (w *BBOWriter) Stats() WriterMetrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

func (w *BBOWriter) consumeLoop() {
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

func (w *BBOWriter) flushLoop() {
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

func (w *BBOWriter) addRow(row bboRow) {
	w.batchMu.Lock()
	w.batch = append(w.batch, row)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		w.flush()
	}
}

func (w *BBOWriter) transform(b *paradex.BBO, receivedAt time.Time) bboRow {
	return bboRow{
		Market:     b.Market,
		SeqNo:      b.SeqNo,
		Bid:        b.Bid.String(),
		BidSize:    b.BidSize.String(),
		Ask:        b.Ask.String(),
		AskSize:    b.AskSize.String(),
		ExchangeTs: b.LastUpdatedAt,
		ReceivedAt: receivedAt.UnixMicro(),
	}
}

func (w *BBOWriter) flush() {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}
	batch := w.batch
	w.batch = make([]bboRow, 0, w.cfg.BatchSize)
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

	w.logger.Debug("flushed bbo rows",
		"count", len(batch),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
}

func (w *BBOWriter) batchInsert(rows []bboRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO bbo (market, seq_no, bid, bid_size, ask, ask_size, exchange_ts, received_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (market, seq_no) DO NOTHING
		`, r.Market, r.SeqNo, r.Bid, r.BidSize, r.Ask, r.AskSize, r.ExchangeTs, r.ReceivedAt)
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
