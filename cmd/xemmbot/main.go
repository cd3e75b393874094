// xemmbot runs the cross-exchange market-making bot: it quotes on Pacifica
// and hedges fills on Hyperliquid, capturing the maker-rebate/taker-fee
// spread between the two venues on a single symbol.
//
// Architecture:
//
//	main.go                    — entry point: loads config, starts engine, waits for SIGINT/SIGTERM
//	engine/engine.go           — orchestrator: wires book feeds, evaluator, placer, monitor, hedge executor
//	evaluator/evaluator.go     — fee-aware XEMM opportunity arithmetic
//	botstate/state.go          — single-order lifecycle state machine
//	orderbook/feed.go          — local best-bid/ask mirror per venue, WS + REST seed
//	placer/placer.go           — single-consumer order placement with backoff/grace gating
//	monitor/monitor.go         — 1kHz age/profit-deviation cancel triggers
//	cancelhandler/handler.go   — drains cancel requests, re-snapshots before cancelling
//	filldetector/detector.go   — WS/REST/position triple-redundant fill detection with dedup
//	hedge/executor.go          — places the hedge IOC order and records the realized spread
//	reconcile/reconcile.go     — hedge-failure recovery: cancel-all, reset, cooldown
//	audit/log.go               — write-only JSONL record of realized hedges
//	pacifica/, hyperliquid/    — venue REST/WS clients and request signing
//
// Exit codes: 0 clean shutdown, 1 configuration/startup failure, 2 engine
// construction failure after config was valid (e.g. venue unreachable).
package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"polymarket-mm/internal/config"
	"polymarket-mm/internal/engine"
)

func main() {
	cfgPath := "configs/config.yaml"
	if p := os.Getenv("XEMM_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err, "path", cfgPath)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Logging.Level)}
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)

	eng, err := engine.New(*cfg, logger)
	if err != nil {
		logger.Error("failed to construct engine", "error", err)
		os.Exit(2)
	}

	if err := eng.Start(); err != nil {
		logger.Error("failed to start engine", "error", err)
		os.Exit(2)
	}

	if cfg.DryRun {
		logger.Warn("DRY-RUN MODE — no real orders will be placed")
	}

	logger.Info("xemmbot started",
		"symbol", cfg.Symbol,
		"order_notional_usd", cfg.Strategy.OrderNotionalUSD,
		"pacifica_maker_fee_bps", cfg.Strategy.PacificaMakerFeeBps,
		"hyperliquid_taker_fee_bps", cfg.Strategy.HyperliquidTakerFeeBps,
		"profit_rate_bps", cfg.Strategy.ProfitRateBps,
		"profit_cancel_threshold_bps", cfg.Strategy.ProfitCancelThresholdBps,
		"dry_run", cfg.DryRun,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig.String())

	eng.Stop()
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
