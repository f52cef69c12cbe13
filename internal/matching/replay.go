package matching

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/abdoElHodaky/clobsim/internal/commandlog"
	"github.com/abdoElHodaky/clobsim/internal/eventbus"
)

// ReplayResult reports how many command-log entries applied cleanly versus
// were skipped.
type ReplayResult struct {
	Applied int
	Skipped int
}

// ReplayFromCommandLog reads path in log order and re-applies each command
// without re-persisting it (this Engine's own cmdLog, if any, is left
// untouched by the replay itself; callers typically construct a fresh
// Engine with no CommandLog dependency for replay verification). A failed
// command increments Skipped and does not halt replay.
func (e *Engine) ReplayFromCommandLog(path string) (ReplayResult, error) {
	entries, err := commandlog.ReadCommands(path)
	if err != nil {
		return ReplayResult{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var result ReplayResult
	for _, entry := range entries {
		var envelope commandEnvelope
		if err := json.Unmarshal(entry.Payload, &envelope); err != nil {
			result.Skipped++
			e.logger.Warn("replay: corrupt command payload skipped", zap.Error(err))
			continue
		}
		if !e.applyReplayedCommand(envelope) {
			result.Skipped++
			continue
		}
		result.Applied++
	}
	return result, nil
}

func (e *Engine) applyReplayedCommand(envelope commandEnvelope) bool {
	switch envelope.Kind {
	case kindSubmitOrder:
		if envelope.Submit == nil {
			return false
		}
		book, ok := e.bookFor(envelope.Submit.Symbol)
		if !ok {
			return false
		}
		result := book.SubmitOrder(envelope.Submit, envelope.NowMs)
		// Replay re-emits fan-out events so downstream snapshot consumers
		// stay consistent but never re-persists
		// to the command log.
		e.applySubmitSideEffects(envelope.Submit.Symbol, book, result, "", envelope.NowMs)
		return true
	case kindCancelOrder:
		if envelope.Cancel == nil {
			return false
		}
		symbol := ""
		if envelope.Cancel.Symbol != nil {
			symbol = *envelope.Cancel.Symbol
		} else if s, ok := e.orderSymbol[envelope.Cancel.OrderID]; ok {
			symbol = s
		}
		book, ok := e.bookFor(symbol)
		if !ok {
			return false
		}
		result := book.CancelOrder(envelope.Cancel.OrderID, envelope.Cancel.UserID, envelope.NowMs)
		if result.Canceled {
			e.ordersCanceled++
			delete(e.orderSymbol, envelope.Cancel.OrderID)
			if e.cache != nil {
				e.cache.InvalidateSymbol(symbol)
			}
		}
		if e.bus != nil {
			e.bus.Publish(eventbus.TopicCancelResult, result)
		}
		return true
	default:
		return false
	}
}
