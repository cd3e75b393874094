// Package engine is the central orchestrator of the XEMM bot.
//
// It wires together every component for the single configured symbol:
//
//  1. Two OrderbookFeeds (maker + hedge venue) maintain best bid/ask.
//  2. The evaluation loop reacts to either feed's update notification,
//     evaluates both directions with Evaluator, and enqueues the better
//     opportunity with OrderPlacer.
//  3. OrderMonitor watches the resting order for age/profit-deviation
//     cancel triggers; CancelHandler drains and issues the cancels.
//  4. FillDetector's three channels (WS/REST/Position) deduplicate fills
//     and hand each one to HedgeExecutor, which hedges and resets BotState.
//
// Lifecycle: New() → Start() → [runs until SIGINT] → Stop()
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"polymarket-mm/internal/api"
	"polymarket-mm/internal/audit"
	"polymarket-mm/internal/botstate"
	"polymarket-mm/internal/cancelhandler"
	"polymarket-mm/internal/config"
	"polymarket-mm/internal/evaluator"
	"polymarket-mm/internal/filldetector"
	"polymarket-mm/internal/hedge"
	"polymarket-mm/internal/hyperliquid"
	"polymarket-mm/internal/monitor"
	"polymarket-mm/internal/orderbook"
	"polymarket-mm/internal/pacifica"
	"polymarket-mm/internal/placer"
	"polymarket-mm/internal/ratelimit"
	"polymarket-mm/internal/reconcile"
	"polymarket-mm/pkg/types"
)

// Engine owns the lifecycle of every goroutine in the bot.
type Engine struct {
	cfg    config.Config
	logger *slog.Logger

	// Per-goroutine-group venue clients: each call site that issues REST
	// requests at a different cadence/latency sensitivity owns its own
	// *pacifica.Client instance, so one goroutine's retry/backoff state
	// never bleeds into another's timing (see DESIGN.md).
	pacPlace     *pacifica.Client
	pacCancel    *pacifica.Client
	pacFill      *pacifica.Client
	pacReconcile *pacifica.Client
	hlClient     *hyperliquid.Client
	userStream   *pacifica.UserStream

	pacFeed *orderbook.Feed
	hlFeed  *orderbook.Feed

	eval       *evaluator.Evaluator
	state      *botstate.BotState
	backoff    *ratelimit.Backoff
	auditLog   *audit.Log
	reconciler *reconcile.Reconciler

	placer        *placer.Placer
	monitor       *monitor.Monitor
	cancelHandler *cancelhandler.Handler
	detector      *filldetector.Detector
	hedgeExecutor *hedge.Executor

	apiServer *api.Server

	cancelCh chan monitor.CancelRequest
	hedgeCh  chan types.HedgeEvent

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs and wires every engine component. It performs a startup
// reconciliation (cancel all resting orders on the maker venue) before
// returning, since BotState/ActiveOrder are never persisted across restarts.
func New(cfg config.Config, logger *slog.Logger) (*Engine, error) {
	ctx, cancel := context.WithCancel(context.Background())
	logger = logger.With("component", "engine")

	pacAuth := pacifica.NewAuth(cfg.Pacifica.ApiKey, cfg.Pacifica.Secret, cfg.Pacifica.Account)
	pacPlace := pacifica.NewClient(cfg.Pacifica.RestBaseURL, pacAuth, cfg.DryRun, logger)
	pacCancel := pacifica.NewClient(cfg.Pacifica.RestBaseURL, pacAuth, cfg.DryRun, logger)
	pacFill := pacifica.NewClient(cfg.Pacifica.RestBaseURL, pacAuth, cfg.DryRun, logger)
	pacReconcile := pacifica.NewClient(cfg.Pacifica.RestBaseURL, pacAuth, cfg.DryRun, logger)
	userStream := pacifica.NewUserStream(cfg.Pacifica.WSUserURL, cfg.Symbol, pacAuth, logger)

	hlSigner, err := hyperliquid.NewSigner(cfg.Hyperliquid.PrivateKey, cfg.Hyperliquid.ChainID)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("construct hyperliquid signer: %w", err)
	}
	hlClient := hyperliquid.NewClient(cfg.Hyperliquid.RestBaseURL, cfg.Hyperliquid.Coin, hlSigner, cfg.DryRun, logger)

	// Pre-fetch hedge-venue metadata so the hot hedge path never needs a
	// round trip for szDecimals.
	if _, err := hlClient.GetMeta(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("pre-fetch hyperliquid meta: %w", err)
	}

	// Startup reconciliation: never trust resting orders from a prior run.
	if _, err := pacPlace.CancelAllOrders(ctx, cfg.Symbol); err != nil {
		logger.Warn("startup cancel-all failed", "error", err)
	}

	marketInfo, err := pacPlace.GetMarketInfo(ctx, cfg.Symbol)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("get market info: %w", err)
	}

	eval := evaluator.New(
		cfg.Strategy.PacificaMakerFeeBps,
		cfg.Strategy.HyperliquidTakerFeeBps,
		cfg.Strategy.ProfitRateBps,
		marketInfo.TickSize,
	)

	state := botstate.New()
	backoff := ratelimit.NewBackoff()

	auditLog, err := audit.Open(cfg.AuditDir)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open audit log: %w", err)
	}

	reconciler := reconcile.New(pacReconcile, state, cfg.Symbol, cfg.Strategy.ReconcileCooldown, logger)

	pacFeed := orderbook.New(cfg.Pacifica.WSMarketURL, logger,
		pacifica.BookSubscribe(cfg.Symbol, cfg.Strategy.AggLevel),
		pacifica.BookOnMessage(cfg.Symbol))
	hlFeed := orderbook.New(cfg.Hyperliquid.WSURL, logger,
		hyperliquid.BookSubscribe(cfg.Hyperliquid.Coin),
		hyperliquid.BookOnMessage())

	if bid, ask, err := pacPlace.GetBestBidAskREST(ctx, cfg.Symbol); err != nil {
		logger.Warn("initial pacifica book snapshot failed", "error", err)
	} else {
		pacFeed.Seed(bid, ask)
	}
	if snap, err := hlClient.GetL2Snapshot(ctx, cfg.Hyperliquid.Coin); err != nil {
		logger.Warn("initial hyperliquid book snapshot failed", "error", err)
	} else if len(snap.Bids) > 0 && len(snap.Asks) > 0 {
		hlFeed.Seed(snap.Bids[0].Price, snap.Asks[0].Price)
	}

	cancelCh := make(chan monitor.CancelRequest, 64)
	hedgeCh := make(chan types.HedgeEvent, 1)

	pl := placer.New(pacPlace, state, backoff, cfg.Symbol, cfg.Strategy.CancelGracePeriodSecs, logger)
	mon := monitor.New(state, eval, hlFeed, cfg.Strategy.RefreshInterval, cfg.Strategy.ProfitCancelThresholdBps, cancelCh, logger)
	cancelHandler := cancelhandler.New(pacCancel, state, cfg.Symbol, cancelCh, logger)
	pollInterval := time.Duration(cfg.Strategy.PacificaRestPollIntervalSecs) * time.Second
	detector := filldetector.New(pacFill, state, cfg.Symbol, pollInterval, cfg.Strategy.MinHedgeNotionalUSD, hedgeCh, logger)
	hedgeExecutor := hedge.New(hlClient, state, reconciler, auditLog, cfg.Hyperliquid.Coin, cfg.Strategy.HyperliquidSlippage, hedgeCh, logger)

	e := &Engine{
		cfg:           cfg,
		logger:        logger,
		pacPlace:      pacPlace,
		pacCancel:     pacCancel,
		pacFill:       pacFill,
		pacReconcile:  pacReconcile,
		hlClient:      hlClient,
		userStream:    userStream,
		pacFeed:       pacFeed,
		hlFeed:        hlFeed,
		eval:          eval,
		state:         state,
		backoff:       backoff,
		auditLog:      auditLog,
		reconciler:    reconciler,
		placer:        pl,
		monitor:       mon,
		cancelHandler: cancelHandler,
		detector:      detector,
		hedgeExecutor: hedgeExecutor,
		cancelCh:      cancelCh,
		hedgeCh:       hedgeCh,
		ctx:           ctx,
		cancel:        cancel,
	}

	if cfg.Observer.Enabled {
		e.apiServer = api.NewServer(cfg.Observer.Port, e, logger)
	}

	return e, nil
}

// Start launches every component goroutine.
func (e *Engine) Start() error {
	e.spawn(func(ctx context.Context) { e.pacFeed.Run(ctx) })
	e.spawn(func(ctx context.Context) { e.hlFeed.Run(ctx) })
	e.spawn(func(ctx context.Context) { e.userStream.Run(ctx) })
	e.spawn(e.dispatchFillEvents)
	e.spawn(func(ctx context.Context) { e.detector.RunRESTPoll(ctx) })
	e.spawn(func(ctx context.Context) { e.detector.RunPositionPoll(ctx) })
	e.spawn(func(ctx context.Context) { e.placer.Run(ctx) })
	e.spawn(func(ctx context.Context) { e.monitor.Run(ctx) })
	e.spawn(func(ctx context.Context) { e.cancelHandler.Run(ctx) })
	e.spawn(func(ctx context.Context) { e.hedgeExecutor.Run(ctx) })
	e.spawn(e.runEvaluationLoop)

	if e.apiServer != nil {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			if err := e.apiServer.Start(); err != nil {
				e.logger.Error("observability server error", "error", err)
			}
		}()
	}

	return nil
}

// Stop cancels every goroutine, cancels all resting orders as a safety net,
// and waits for clean shutdown.
func (e *Engine) Stop() {
	e.logger.Info("shutting down")
	e.cancel()

	cancelCtx, cancelCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if _, err := e.pacPlace.CancelAllOrders(cancelCtx, e.cfg.Symbol); err != nil {
		e.logger.Error("failed to cancel all orders on shutdown", "error", err)
	}
	cancelCancel()

	e.wg.Wait()

	if e.apiServer != nil {
		if err := e.apiServer.Stop(); err != nil {
			e.logger.Error("failed to stop observability server", "error", err)
		}
	}

	e.logger.Info("shutdown complete")
}

func (e *Engine) spawn(fn func(ctx context.Context)) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		fn(e.ctx)
	}()
}

// dispatchFillEvents routes the maker venue's WS fill stream into the
// detector's WS-primary path.
func (e *Engine) dispatchFillEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-e.userStream.FillEvents():
			e.detector.HandleWSFill(evt)
		}
	}
}

// runEvaluationLoop re-evaluates the XEMM opportunity whenever either book
// feed reports fresh data, gated on BotState being idle and past the cancel
// grace period.
func (e *Engine) runEvaluationLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.pacFeed.Updates():
			e.tryEvaluate()
		case <-e.hlFeed.Updates():
			e.tryEvaluate()
		}
	}
}

func (e *Engine) tryEvaluate() {
	if !e.state.IsIdleFast() {
		return
	}
	if !e.state.GraceElapsed(e.cfg.Strategy.CancelGracePeriodSecs) {
		return
	}
	if e.reconciler.Halted() {
		return
	}

	hlBid, hlAsk, ok := e.hlFeed.BestBidAsk()
	if !ok {
		return
	}
	pacMid, ok := e.pacFeed.MidPrice()
	if !ok {
		return
	}

	now := time.Now()
	var buyOpp, sellOpp *evaluator.Opportunity
	if opp, ok := e.eval.EvaluateBuy(hlBid, e.cfg.Strategy.OrderNotionalUSD, now); ok {
		buyOpp = &opp
	}
	if opp, ok := e.eval.EvaluateSell(hlAsk, e.cfg.Strategy.OrderNotionalUSD, now); ok {
		sellOpp = &opp
	}

	best := evaluator.PickBest(buyOpp, sellOpp, pacMid)
	if best != nil {
		e.placer.Enqueue(*best)
	}
}

// Status implements api.StatusProvider: a single-symbol snapshot of the
// current bot state for the /status endpoint.
func (e *Engine) Status() api.StatusView {
	snap := e.state.Snapshot()

	view := api.StatusView{
		Symbol:          e.cfg.Symbol,
		Status:          snap.Status.String(),
		Position:        snap.Position,
		LastError:       e.state.LastError(),
		BackoffActive:   e.backoff.ShouldSkip(),
		ReconcileHalted: e.reconciler.Halted(),
	}

	if bid, ask, ok := e.pacFeed.BestBidAsk(); ok {
		view.PacificaBestBid, view.PacificaBestAsk = bid, ask
	}
	if bid, ask, ok := e.hlFeed.BestBidAsk(); ok {
		view.HyperliquidBestBid, view.HyperliquidBestAsk = bid, ask
	}

	if snap.ActiveOrder != nil {
		bid, ask, ok := e.hlFeed.BestBidAsk()
		var profitBps float64
		if ok {
			profitBps = e.eval.RecalculateProfitRaw(snap.ActiveOrder.Side, snap.ActiveOrder.Price, bid, ask)
		}
		view.ActiveOrder = &api.ActiveOrderView{
			ClientOrderID: snap.ActiveOrder.ClientOrderID,
			Side:          snap.ActiveOrder.Side.String(),
			Price:         snap.ActiveOrder.Price,
			Size:          snap.ActiveOrder.Size,
			ProfitBps:     profitBps,
			PlacedAt:      snap.ActiveOrder.PlacedAt,
		}
	}

	return view
}
