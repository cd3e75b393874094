// Package evaluator implements the fee-aware XEMM opportunity arithmetic:
// the ideal maker-venue quote price that, after fees on both venues, locks
// in the configured target profit once hedged on the taker venue.
//
// All fee factors are precomputed once at construction to keep the hot-path
// evaluation (called on every orderbook tick) allocation-free.
package evaluator

import (
	"math"
	"time"

	"polymarket-mm/pkg/types"
)

// Opportunity is a profitable quote candidate: place pacificaPrice on the
// maker venue in direction Direction, expecting to hedge at HyperliquidPrice.
type Opportunity struct {
	Direction        types.Side
	PacificaPrice    float64
	HyperliquidPrice float64
	Size             float64
	InitialProfitBps float64
	Timestamp        time.Time
}

type feeFactors struct {
	onePlusMaker    float64
	oneMinusMaker   float64
	onePlusTaker    float64
	oneMinusTaker   float64
	buyDenominator  float64
	sellDenominator float64
}

// Evaluator computes and re-evaluates XEMM opportunities for one symbol.
type Evaluator struct {
	makerFee    float64
	takerFee    float64
	profitRate  float64
	tickSize    float64
	invTickSize float64
	fees        feeFactors
}

// New constructs an Evaluator. Fee and profit rates are in basis points
// (e.g. 1.0 = 0.01%); tickSize is the maker venue's minimum price increment.
func New(makerFeeBps, takerFeeBps, profitRateBps, tickSize float64) *Evaluator {
	makerFee := makerFeeBps * 0.0001
	takerFee := takerFeeBps * 0.0001
	profitRate := profitRateBps * 0.0001

	return &Evaluator{
		makerFee:    makerFee,
		takerFee:    takerFee,
		profitRate:  profitRate,
		tickSize:    tickSize,
		invTickSize: 1.0 / tickSize,
		fees: feeFactors{
			onePlusMaker:    1.0 + makerFee,
			oneMinusMaker:   1.0 - makerFee,
			onePlusTaker:    1.0 + takerFee,
			oneMinusTaker:   1.0 - takerFee,
			buyDenominator:  1.0 + makerFee + profitRate,
			sellDenominator: 1.0 - makerFee - profitRate,
		},
	}
}

// EvaluateBuy considers BUY-on-Pacifica / SELL-on-Hyperliquid. Returns false
// if the rounded, fee-adjusted opportunity is not profitable.
func (e *Evaluator) EvaluateBuy(hlBid, notionalUSD float64, ts time.Time) (Opportunity, bool) {
	buyLimit := (hlBid * e.fees.oneMinusTaker) / e.fees.buyDenominator
	buyLimitRounded := e.roundDownToTick(buyLimit)
	size := notionalUSD / buyLimitRounded

	cost := buyLimitRounded * e.fees.onePlusMaker
	revenue := hlBid * e.fees.oneMinusTaker
	profitBps := (revenue - cost) / cost * 10000.0

	if profitBps <= 0 {
		return Opportunity{}, false
	}

	return Opportunity{
		Direction:        types.Buy,
		PacificaPrice:    buyLimitRounded,
		HyperliquidPrice: hlBid,
		Size:             size,
		InitialProfitBps: profitBps,
		Timestamp:        ts,
	}, true
}

// EvaluateSell considers SELL-on-Pacifica / BUY-on-Hyperliquid. Returns
// false if the rounded, fee-adjusted opportunity is not profitable.
func (e *Evaluator) EvaluateSell(hlAsk, notionalUSD float64, ts time.Time) (Opportunity, bool) {
	sellLimit := (hlAsk * e.fees.onePlusTaker) / e.fees.sellDenominator
	sellLimitRounded := e.roundUpToTick(sellLimit)
	size := notionalUSD / sellLimitRounded

	revenue := sellLimitRounded * e.fees.oneMinusMaker
	cost := hlAsk * e.fees.onePlusTaker
	profitBps := (revenue - cost) / cost * 10000.0

	if profitBps <= 0 {
		return Opportunity{}, false
	}

	return Opportunity{
		Direction:        types.Sell,
		PacificaPrice:    sellLimitRounded,
		HyperliquidPrice: hlAsk,
		Size:             size,
		InitialProfitBps: profitBps,
		Timestamp:        ts,
	}, true
}

// RecalculateProfitRaw recomputes current profit in basis points for a
// resting order without allocating an Opportunity. Used from the 1kHz
// order-monitor loop.
func (e *Evaluator) RecalculateProfitRaw(direction types.Side, pacificaPrice, currentHLBid, currentHLAsk float64) float64 {
	switch direction {
	case types.Buy:
		cost := pacificaPrice * e.fees.onePlusMaker
		revenue := currentHLBid * e.fees.oneMinusTaker
		return (revenue - cost) / cost * 10000.0
	default:
		revenue := pacificaPrice * e.fees.oneMinusMaker
		cost := currentHLAsk * e.fees.onePlusTaker
		return (revenue - cost) / cost * 10000.0
	}
}

// RecalculateProfit is the Opportunity-based convenience wrapper around
// RecalculateProfitRaw.
func (e *Evaluator) RecalculateProfit(opp Opportunity, currentHLBid, currentHLAsk float64) float64 {
	return e.RecalculateProfitRaw(opp.Direction, opp.PacificaPrice, currentHLBid, currentHLAsk)
}

// PickBest chooses between a candidate buy and sell opportunity: whichever
// price sits closer to the maker venue's mid price wins; ties break to the
// higher initial profit.
func PickBest(buy, sell *Opportunity, pacMid float64) *Opportunity {
	switch {
	case buy != nil && sell != nil:
		buyDist := math.Abs(pacMid - buy.PacificaPrice)
		sellDist := math.Abs(sell.PacificaPrice - pacMid)
		switch {
		case buyDist < sellDist:
			return buy
		case sellDist < buyDist:
			return sell
		case buy.InitialProfitBps > sell.InitialProfitBps:
			return buy
		default:
			return sell
		}
	case buy != nil:
		return buy
	case sell != nil:
		return sell
	default:
		return nil
	}
}

// roundDownToTick rounds a price down to the nearest tick. Conservative
// direction for BUY orders: never pay more than the ideal price implies.
func (e *Evaluator) roundDownToTick(price float64) float64 {
	return math.Floor(price*e.invTickSize) * e.tickSize
}

// roundUpToTick rounds a price up to the nearest tick. Conservative
// direction for SELL orders: never sell for less than the ideal price implies.
func (e *Evaluator) roundUpToTick(price float64) float64 {
	return math.Ceil(price*e.invTickSize) * e.tickSize
}
