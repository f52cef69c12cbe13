package mempool

import (
	"context"
	"sort"
	"sync"

	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/abdoElHodaky/clobsim/internal/cerrors"
	"github.com/abdoElHodaky/clobsim/internal/eventbus"
	"github.com/abdoElHodaky/clobsim/internal/matching"
	"github.com/abdoElHodaky/clobsim/internal/netshim"
	"github.com/abdoElHodaky/clobsim/internal/prng"
)

// Config holds the mempool's block-cadence and confirmation parameters.
type Config struct {
	BlockIntervalMs                 int64   `mapstructure:"block_interval_ms"`
	MaxTransactionsPerBlock         int     `mapstructure:"max_transactions_per_block"`
	DefaultConfirmations            uint64  `mapstructure:"default_confirmations"`
	ConfirmationProbabilityPerBlock float64 `mapstructure:"confirmation_probability_per_block"`
}

// Mempool is the virtual, gas-priority-ordered transaction pool sitting in
// front of a matching.Engine. tx_id assignment uses
// github.com/segmentio/ksuid, chosen for its k-sortable layout, so a
// submission-ordered id scheme matches the mempool's own time-ordered
// nature.
type Mempool struct {
	mu sync.Mutex

	cfg    Config
	engine *matching.Engine
	rng    *prng.Stream
	bus    *eventbus.Bus
	shim   *netshim.Shim
	logger *zap.Logger

	blockNumber uint64
	ticking     bool

	pending []*Tx
	all     map[string]*Tx
	order   []string // tx ids newest-submitted-last, for List()

	futures map[string]chan struct{}
}

// New constructs a Mempool. rng must be derived independently from any
// other component's stream. shim is optional; when non-nil, every Submit
// is routed through it first, so a submission can be dropped, delayed, or
// breaker-tripped exactly as any other simulated network call would be.
func New(cfg Config, engine *matching.Engine, rng *prng.Stream, bus *eventbus.Bus, shim *netshim.Shim, logger *zap.Logger) (*Mempool, error) {
	if engine == nil {
		return nil, cerrors.ErrNilEngine
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mempool{
		cfg:     cfg,
		engine:  engine,
		rng:     rng,
		bus:     bus,
		shim:    shim,
		logger:  logger,
		all:     make(map[string]*Tx),
		futures: make(map[string]chan struct{}),
	}, nil
}

// Handle is returned from Submit; Wait blocks until the transaction reaches
// a terminal state (confirmed or failed), or ctx is canceled first.
type Handle struct {
	TxID string
	m    *Mempool
	done <-chan struct{}
}

// Wait blocks until the transaction resolves and returns its final
// snapshot.
func (h *Handle) Wait(ctx context.Context) (*Tx, error) {
	select {
	case <-h.done:
		return h.m.Get(h.TxID)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Submit assigns a tx_id, records the submission time, and stores the
// transaction pending. When the mempool was constructed with a netshim
// Shim, the admission itself is routed through it first; a dropped or
// breaker-rejected submission never reaches the pending pool and Submit
// returns cerrors.ErrTxNotDelivered.
func (m *Mempool) Submit(ctx context.Context, req SubmitTxRequest, nowMs int64) (*Handle, error) {
	admit := func(context.Context) (interface{}, error) {
		m.mu.Lock()
		defer m.mu.Unlock()

		required := m.cfg.DefaultConfirmations
		if req.Confirmations != nil {
			required = *req.Confirmations
		}

		tx := &Tx{
			TxID:                  ksuid.New().String(),
			Status:                StatusPending,
			Payload:               req.Payload,
			SubmittedAtMs:         nowMs,
			GasPrice:              req.GasPrice,
			MaxPriorityFeePerGas:  req.MaxPriorityFeePerGas,
			RequiredConfirmations: required,
		}

		m.all[tx.TxID] = tx
		m.order = append(m.order, tx.TxID)
		m.pending = append(m.pending, tx)
		done := make(chan struct{})
		m.futures[tx.TxID] = done

		m.publishUpdateLocked(tx)
		return &Handle{TxID: tx.TxID, m: m, done: done}, nil
	}

	if m.shim == nil {
		h, _ := admit(ctx)
		return h.(*Handle), nil
	}

	result := m.shim.Invoke(ctx, admit)
	if !result.Delivered {
		return nil, cerrors.ErrTxNotDelivered
	}
	return result.Result.(*Handle), nil
}

// Get returns an immutable clone of the named transaction's current state.
func (m *Mempool) Get(txID string) (*Tx, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.all[txID]
	if !ok {
		return nil, cerrors.ErrTxNotFound
	}
	return tx.clone(), nil
}

// List returns up to limit transactions, most-recently-submitted first. A
// non-positive limit returns everything.
func (m *Mempool) List(limit int) []*Tx {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.order)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]*Tx, 0, n)
	for i := len(m.order) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.all[m.order[i]].clone())
	}
	return out
}

// PendingCount returns the number of transactions still awaiting inclusion.
func (m *Mempool) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// BlockNumber returns the current virtual block height.
func (m *Mempool) BlockNumber() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blockNumber
}

// sortPendingLocked orders m.pending by effective gas descending, ties
// broken by earliest submitted_at_ms.
func (m *Mempool) sortPendingLocked() {
	sort.SliceStable(m.pending, func(i, j int) bool {
		a, b := m.pending[i], m.pending[j]
		cmp := a.EffectiveGas().Cmp(b.EffectiveGas())
		if cmp != 0 {
			return cmp > 0
		}
		return a.SubmittedAtMs < b.SubmittedAtMs
	})
}

func (m *Mempool) publishUpdateLocked(tx *Tx) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(eventbus.TopicTxUpdate, tx.clone())
}

// resolveLocked marks tx's future as complete. Safe to call at most once
// per tx (guarded by deleting the channel entry).
func (m *Mempool) resolveLocked(tx *Tx) {
	ch, ok := m.futures[tx.TxID]
	if !ok {
		return
	}
	close(ch)
	delete(m.futures, tx.TxID)
}
