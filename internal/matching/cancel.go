package matching

import (
	"go.uber.org/zap"

	"github.com/abdoElHodaky/clobsim/internal/cerrors"
	"github.com/abdoElHodaky/clobsim/internal/clobtypes"
	"github.com/abdoElHodaky/clobsim/internal/eventbus"
)

// CancelOrder resolves symbol from the request or the secondary
// order-id-to-symbol map, then delegates to that book.
func (e *Engine) CancelOrder(req *clobtypes.CancelRequest, nowMs int64) (*clobtypes.CancelResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	symbol := ""
	if req.Symbol != nil {
		symbol = *req.Symbol
	} else if s, ok := e.orderSymbol[req.OrderID]; ok {
		symbol = s
	}
	if symbol == "" {
		return &clobtypes.CancelResult{Canceled: false, Reason: string(cerrors.ReasonOrderSymbolNotFound)}, nil
	}

	book, ok := e.bookFor(symbol)
	if !ok {
		return &clobtypes.CancelResult{Canceled: false, Reason: string(cerrors.ReasonOrderSymbolNotFound)}, nil
	}

	var commandID string
	if e.cmdLog != nil {
		envelope := commandEnvelope{Kind: kindCancelOrder, NowMs: nowMs, Cancel: req}
		id, err := e.cmdLog.AppendCommand(nowMs, envelope)
		if err != nil {
			e.logger.Error("command log append failed", zap.Error(err))
		}
		commandID = id
	}

	result := book.CancelOrder(req.OrderID, req.UserID, nowMs)
	if result.Canceled {
		e.ordersCanceled++
		delete(e.orderSymbol, req.OrderID)
		if e.cache != nil {
			e.cache.InvalidateSymbol(symbol)
		}
	}

	if e.bus != nil {
		e.bus.Publish(eventbus.TopicCancelResult, result)
	}
	if e.cmdLog != nil {
		if err := e.cmdLog.AppendEvent(nowMs, commandID, result); err != nil {
			e.logger.Error("command log event append failed", zap.Error(err))
		}
	}

	return result, nil
}

// trackOrderSymbol records the symbol a newly resting order belongs to, so
// a later CancelOrder without a symbol hint can resolve it. Called after a
// successful submit that left the order resting.
func (e *Engine) trackOrderSymbol(orderID, symbol string) {
	e.orderSymbol[orderID] = symbol
}
