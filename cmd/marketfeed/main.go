package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/paradex-data/config"
	"github.com/rickgao/paradex-data/internal/version"
	"github.com/rickgao/paradex-data/paradex"
	"github.com/rickgao/paradex-data/recorder"
	"github.com/rickgao/paradex-data/rest"
	"github.com/rickgao/paradex-data/sign"
	"github.com/rickgao/paradex-data/ws"
)

func main() {
	configPath := flag.String("config", "configs/marketfeed.local.yaml", "path to config file")
	healthPort := flag.Int("health-port", 8080, "health endpoint port, 0 disables")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting marketfeed",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"environment", cfg.Environment,
		"rest_url", cfg.API.RestURL,
		"ws_url", cfg.API.WSURL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Build the signing pipeline when account credentials are present.
	// Without credentials the instance runs public-data-only.
	var pipeline *sign.Pipeline
	if cfg.Credentials.Configured() {
		signer, err := loadSigner(cfg.Credentials)
		if err != nil {
			logger.Error("failed to load signing key", "error", err)
			os.Exit(1)
		}
		defer signer.Close()

		pipeline, err = sign.NewPipeline(signer, cfg.API.ChainID, cfg.Credentials.Account)
		if err != nil {
			logger.Error("failed to build signing pipeline", "error", err)
			os.Exit(1)
		}
		logger.Info("signing pipeline ready", "account", pipeline.AccountHex())
	} else {
		logger.Info("no credentials configured, running public-data-only")
	}

	// Create REST client
	restClient := rest.NewClient(
		cfg.API.RestURL,
		pipeline,
		rest.WithLogger(logger),
		rest.WithTimeout(cfg.API.Timeout),
		rest.WithRetries(cfg.API.MaxRetries, time.Second),
	)

	// Fetch venue config and the market catalog
	var (
		sysConfig rest.SystemConfig
		catalog   *paradex.Catalog
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sysConfig, err = restClient.SystemConfig(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		catalog, err = restClient.Catalog(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Error("failed to fetch venue state", "error", err)
		os.Exit(1)
	}

	if sysConfig.StarknetChainID != cfg.API.ChainID {
		logger.Error("chain id mismatch",
			"configured", cfg.API.ChainID,
			"venue", sysConfig.StarknetChainID,
		)
		os.Exit(1)
	}
	logger.Info("market catalog loaded",
		"markets", len(catalog.Symbols()),
		"chain_id", sysConfig.StarknetChainID,
	)

	for _, market := range cfg.WS.Markets {
		if !catalog.Has(market) {
			logger.Warn("configured market not in catalog", "market", market)
		}
	}

	// Create the subscription manager. Private channels need a token
	// source, which the REST client provides when credentialed.
	mcfg := ws.ManagerConfig{
		URL:                  cfg.API.WSURL,
		ReconnectBaseWait:    cfg.WS.ReconnectBaseDelay,
		ReconnectMaxWait:     cfg.WS.ReconnectMaxDelay,
		MaxReconnectAttempts: cfg.WS.MaxReconnectAttempts,
		DispatchBuffer:       cfg.WS.DispatchBuffer,
		PingTimeout:          cfg.WS.PingTimeout,
	}
	if pipeline != nil {
		mcfg.Tokens = restClient
	}

	manager := ws.NewManager(mcfg, logger)
	manager.Start(ctx)
	defer func() {
		manager.Stop()
		select {
		case <-manager.Done():
		case <-time.After(5 * time.Second):
			logger.Warn("handlers did not drain before deadline")
		}
	}()

	// Start the optional recorder
	var rec *recorder.Recorder
	if cfg.Recorder.Enabled {
		rec, err = recorder.New(ctx, cfg.Recorder, logger)
		if err != nil {
			logger.Error("failed to start recorder", "error", err)
			os.Exit(1)
		}
		if err := rec.Start(ctx); err != nil {
			logger.Error("failed to start recorder writers", "error", err)
			os.Exit(1)
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer stopCancel()
			if err := rec.Stop(stopCtx); err != nil {
				logger.Error("recorder stop failed", "error", err)
			}
		}()
		logger.Info("recorder started")
	}

	// Subscribe every configured channel kind for every configured
	// market
	channels := buildChannels(cfg.WS)
	for _, ch := range channels {
		handler := pickHandler(ch, rec, logger)
		if _, err := manager.Subscribe(ctx, ch, handler); err != nil {
			logger.Error("subscribe failed", "channel", ch.Name(), "error", err)
			os.Exit(1)
		}
		logger.Info("subscribed", "channel", ch.Name())
	}

	// Start health server
	var healthServer *http.Server
	if *healthPort > 0 {
		healthServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", *healthPort),
			Handler: createHealthHandler(manager, rec),
		}
		go func() {
			logger.Info("starting health server", "port", *healthPort)
			if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
				logger.Error("health server error", "error", err)
			}
		}()
	}

	logger.Info("marketfeed running",
		"environment", cfg.Environment,
		"subscriptions", len(channels),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	if healthServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		healthServer.Shutdown(shutdownCtx)
	}

	logger.Info("marketfeed stopped")
}

// loadSigner builds the Stark signer from an inline key or a key file.
func loadSigner(creds config.CredentialsConfig) (*sign.Signer, error) {
	if creds.PrivateKey != "" {
		return sign.NewSigner(creds.PrivateKey)
	}
	return sign.LoadSigner(creds.PrivateKeyPath)
}

// buildChannels expands the configured channel kinds across the
// configured markets. Account-wide kinds produce one channel
// regardless of the market list.
func buildChannels(cfg config.WSConfig) []paradex.Channel {
	var out []paradex.Channel
	for _, kind := range cfg.Channels {
		switch kind {
		case "markets_summary":
			out = append(out, paradex.MarketSummaryChannel())
		case "positions":
			out = append(out, paradex.PositionsChannel())
		case "account":
			out = append(out, paradex.AccountChannel())
		case "balance_events":
			out = append(out, paradex.BalanceEventsChannel())
		case "funding_payments":
			out = append(out, paradex.FundingPaymentsChannel(""))
		case "orders":
			out = append(out, paradex.OrdersChannel(""))
		case "fills":
			out = append(out, paradex.FillsChannel(""))
		default:
			for _, market := range cfg.Markets {
				switch kind {
				case "bbo":
					out = append(out, paradex.BBOChannel(market))
				case "trades":
					out = append(out, paradex.TradesChannel(market))
				case "order_book":
					out = append(out, paradex.OrderBookChannel(market, ""))
				case "order_book_deltas":
					out = append(out, paradex.OrderBookDeltasChannel(market))
				case "funding_data":
					out = append(out, paradex.FundingDataChannel(market))
				}
			}
		}
	}
	return out
}

// pickHandler routes trade and bbo streams into the recorder when it
// is running; everything else gets a logging handler.
func pickHandler(ch paradex.Channel, rec *recorder.Recorder, logger *slog.Logger) ws.Handler {
	if rec != nil {
		switch ch.Kind {
		case paradex.ChannelTrades:
			return rec.TradeHandler()
		case paradex.ChannelBBO:
			return rec.BBOHandler()
		}
	}
	return logHandler(logger)
}

func logHandler(logger *slog.Logger) ws.Handler {
	return ws.HandlerFunc(func(ev ws.Event) {
		switch ev.Type {
		case ws.EventData:
			logger.Debug("data", "channel", ev.Channel.Name())
		case ws.EventError:
			logger.Warn("stream error", "channel", ev.Channel.Name(), "error", ev.Err)
		default:
			logger.Info("stream event", "channel", ev.Channel.Name(), "event", ev.Type)
		}
	})
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(manager *ws.Manager, rec *recorder.Recorder) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		health := struct {
			Status     string         `json:"status"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]any),
		}

		stats := manager.Stats()
		health.Components["ws"] = map[string]any{
			"state":         stats.State.String(),
			"subscriptions": stats.Subscriptions,
			"channels":      stats.Channels,
		}
		switch stats.State {
		case ws.StateConnected:
		case ws.StateStopped:
			health.Status = "unhealthy"
		default:
			health.Status = "degraded"
		}

		if rec != nil {
			health.Components["recorder"] = rec.Stats()
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}
