package mempool

import (
	"go.uber.org/zap"

	"github.com/abdoElHodaky/clobsim/internal/cerrors"
)

// forcedConfirmationGrace is the extra depth past required_confirmations at
// which a transaction confirms unconditionally, independent of the PRNG
// draw.
const forcedConfirmationGrace = 5

// Tick advances the virtual chain by one block: include phase, then confirm
// phase. Callers are expected to invoke Tick on a timer cadence of
// block_interval_ms; Tick itself is reentrancy-guarded, so an overlapping
// call returns cerrors.ErrMempoolAlreadyTicking instead of running a second
// tick concurrently.
func (m *Mempool) Tick() (TickSummary, error) {
	m.mu.Lock()
	if m.ticking {
		m.mu.Unlock()
		return TickSummary{}, cerrors.ErrMempoolAlreadyTicking
	}
	m.ticking = true
	defer func() {
		m.mu.Lock()
		m.ticking = false
		m.mu.Unlock()
	}()
	m.mu.Unlock()

	m.mu.Lock()
	m.blockNumber++
	block := m.blockNumber

	m.sortPendingLocked()
	n := len(m.pending)
	if m.cfg.MaxTransactionsPerBlock > 0 && n > m.cfg.MaxTransactionsPerBlock {
		n = m.cfg.MaxTransactionsPerBlock
	}
	included := m.pending[:n]
	remainder := make([]*Tx, len(m.pending)-n)
	copy(remainder, m.pending[n:])
	m.pending = remainder

	for _, tx := range included {
		tx.Status = StatusIncluded
		blockCopy := block
		tx.IncludedBlockNumber = &blockCopy
		m.publishUpdateLocked(tx)
	}
	m.mu.Unlock()

	var failed int
	for _, tx := range included {
		result, err := m.execute(tx)
		m.mu.Lock()
		if err != nil {
			tx.Status = StatusFailed
			tx.Error = err.Error()
			m.resolveLocked(tx)
			failed++
		} else {
			tx.Result = result
		}
		m.publishUpdateLocked(tx)
		m.mu.Unlock()
	}

	var confirmed int
	m.mu.Lock()
	for _, txID := range m.order {
		tx := m.all[txID]
		if tx.Status != StatusIncluded {
			continue
		}
		elapsed := block - *tx.IncludedBlockNumber + 1
		if elapsed < tx.RequiredConfirmations {
			continue
		}
		// The draw happens every eligible tick regardless of the forced
		// floor below, so the PRNG stream's call count never depends on
		// which branch resolves a given transaction. Stream.Bool would
		// skip the draw entirely for p<=0 or p>=1, so Float64 is called
		// directly here instead.
		draw := m.rng.Float64()
		forced := elapsed >= tx.RequiredConfirmations+forcedConfirmationGrace
		if forced || draw < m.cfg.ConfirmationProbabilityPerBlock {
			tx.Status = StatusConfirmed
			blockCopy := block
			tx.ConfirmedBlockNumber = &blockCopy
			m.resolveLocked(tx)
			m.publishUpdateLocked(tx)
			confirmed++
		}
	}
	m.mu.Unlock()

	return TickSummary{
		BlockNumber: block,
		Included:    len(included),
		Confirmed:   confirmed,
		Failed:      failed,
	}, nil
}

// execute runs a single included transaction's payload against the
// matching engine, the mempool's only execution target.
func (m *Mempool) execute(tx *Tx) (interface{}, error) {
	switch tx.Payload.Kind {
	case PayloadSubmitOrder:
		if tx.Payload.Submit == nil {
			return nil, cerrors.ErrUnknownCommandKind
		}
		return m.engine.SubmitOrder(tx.Payload.Submit, tx.SubmittedAtMs)
	case PayloadCancelOrder:
		if tx.Payload.Cancel == nil {
			return nil, cerrors.ErrUnknownCommandKind
		}
		return m.engine.CancelOrder(tx.Payload.Cancel, tx.SubmittedAtMs)
	default:
		m.logger.Warn("mempool: unknown payload kind", zap.String("tx_id", tx.TxID))
		return nil, cerrors.ErrUnknownCommandKind
	}
}
