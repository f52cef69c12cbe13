package matching

import (
	"time"

	"go.uber.org/zap"

	"github.com/abdoElHodaky/clobsim/internal/cerrors"
	"github.com/abdoElHodaky/clobsim/internal/clobtypes"
	"github.com/abdoElHodaky/clobsim/internal/eventbus"
	"github.com/abdoElHodaky/clobsim/internal/orderbook"
)

// SubmitOrder persists the request to the command log before applying it, so
// replay re-applies exactly what ran live, dispatches to the book, updates
// counters, fans out events, and appends the resulting event record.
//
// When req.ID is empty the book would otherwise mint one internally at
// apply time; since that mint is a fresh random draw, persisting the
// caller's un-resolved request would make a later cancel-by-id unreplayable
// (the replayed submit would mint a different id than the one a live cancel
// command actually targeted). To keep replay deterministic, an empty id is
// resolved here, once, and the same resolved request is both persisted and
// applied.
func (e *Engine) SubmitOrder(req *clobtypes.SubmitRequest, nowMs int64) (*clobtypes.SubmitResult, error) {
	start := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	book, ok := e.bookFor(req.Symbol)
	if !ok {
		return nil, cerrors.ErrSymbolNotFound
	}

	if req.ID == "" {
		resolved := *req
		resolved.ID = orderbook.NewOrderID()
		req = &resolved
	}

	var commandID string
	if e.cmdLog != nil {
		envelope := commandEnvelope{Kind: kindSubmitOrder, NowMs: nowMs, Submit: req}
		id, err := e.cmdLog.AppendCommand(nowMs, envelope)
		if err != nil {
			e.logger.Error("command log append failed", zap.Error(err))
		}
		commandID = id
	}

	result := book.SubmitOrder(req, nowMs)
	e.applySubmitSideEffects(req.Symbol, book, result, commandID, nowMs)

	e.recordLatency(time.Since(start))
	return result, nil
}

// applySubmitSideEffects updates counters, invalidates caches, fans out
// events, and persists the informational event record. Shared by live
// submission and replay; replay passes an empty commandID, and no event
// record is persisted for it, so replay writes nothing to the command log.
func (e *Engine) applySubmitSideEffects(symbol string, book bookSnapshotter, result *clobtypes.SubmitResult, commandID string, nowMs int64) {
	e.ordersSubmitted++
	switch result.Order.Status {
	case clobtypes.StatusRejected:
		e.rejectedOrders++
	case clobtypes.StatusExpired:
		e.expiredOrders++
	}
	e.tradesExecuted += uint64(len(result.Trades))

	if result.Order.Status == clobtypes.StatusNew || result.Order.Status == clobtypes.StatusPartiallyFilled {
		e.trackOrderSymbol(result.Order.ID, symbol)
	}

	if e.cache != nil {
		e.cache.InvalidateSymbol(symbol)
	}

	if e.bus != nil {
		for _, t := range result.Trades {
			e.bus.Publish(eventbus.TopicTrade, t)
		}
		snap := book.Snapshot(0)
		e.bus.Publish(eventbus.TopicOrderBook, orderbookEventPayload{Symbol: symbol, Snapshot: snap})
		e.bus.Publish(eventbus.TopicOrderResult, result)
	}

	if e.cmdLog != nil && commandID != "" {
		if err := e.cmdLog.AppendEvent(nowMs, commandID, result); err != nil {
			e.logger.Error("command log event append failed", zap.Error(err))
		}
	}
}

// bookSnapshotter is the minimal slice of *orderbook.OrderBook this file
// needs.
type bookSnapshotter interface {
	Snapshot(depth int) *clobtypes.BookSnapshot
}
