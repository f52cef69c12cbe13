// Package matching implements the multi-symbol matching engine: book
// orchestration, cumulative stats, command-log persistence, and fan-out.
// Every mutating call updates counters and caches first, then fans events
// out, in that order.
package matching

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abdoElHodaky/clobsim/internal/cerrors"
	"github.com/abdoElHodaky/clobsim/internal/clobtypes"
	"github.com/abdoElHodaky/clobsim/internal/commandlog"
	"github.com/abdoElHodaky/clobsim/internal/eventbus"
	"github.com/abdoElHodaky/clobsim/internal/orderbook"
	"github.com/abdoElHodaky/clobsim/internal/prng"
	"github.com/abdoElHodaky/clobsim/internal/snapshotcache"
)

// latencyRingCapacity bounds the rolling latency window.
const latencyRingCapacity = 2000

// Engine orchestrates one book per configured symbol. All mutation is
// serialized behind mu, so every observer sees mutations as if they ran on
// one thread.
type Engine struct {
	mu sync.Mutex

	books       map[string]*orderbook.OrderBook
	orderSymbol map[string]string // order id -> symbol, for cancel-without-symbol

	cmdLog *commandlog.Log
	bus    *eventbus.Bus
	cache  *snapshotcache.Cache
	logger *zap.Logger

	ordersSubmitted uint64
	ordersCanceled  uint64
	tradesExecuted  uint64
	rejectedOrders  uint64
	expiredOrders   uint64

	latencies    [latencyRingCapacity]float64
	latencyCount int
	latencyNext  int
}

// Deps bundles the Engine's external collaborators, all optional except the
// book configs themselves.
type Deps struct {
	CommandLog *commandlog.Log
	Bus        *eventbus.Bus
	Cache      *snapshotcache.Cache
	Logger     *zap.Logger
	Seed       uint64
}

// New constructs an Engine with one book per entry in configs, keyed by
// Config.Symbol. The set of supported symbols is fixed at construction.
func New(configs []orderbook.Config, deps Deps) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	root := prng.New(deps.Seed)

	e := &Engine{
		books:       make(map[string]*orderbook.OrderBook, len(configs)),
		orderSymbol: make(map[string]string),
		cmdLog:      deps.CommandLog,
		bus:         deps.Bus,
		cache:       deps.Cache,
		logger:      logger,
	}
	for i, cfg := range configs {
		bookRNG := root.Derive(uint64(i) + 1)
		e.books[cfg.Symbol] = orderbook.New(cfg, bookRNG, logger)
	}
	return e
}

// SupportedSymbols returns the fixed set of symbols this engine was built
// with.
func (e *Engine) SupportedSymbols() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.books))
	for s := range e.books {
		out = append(out, s)
	}
	return out
}

func (e *Engine) bookFor(symbol string) (*orderbook.OrderBook, bool) {
	b, ok := e.books[symbol]
	return b, ok
}

func (e *Engine) recordLatency(d time.Duration) {
	e.latencies[e.latencyNext] = float64(d.Microseconds())
	e.latencyNext = (e.latencyNext + 1) % latencyRingCapacity
	if e.latencyCount < latencyRingCapacity {
		e.latencyCount++
	}
}

// Stats returns cumulative counters and the rolling avg/p95 latency.
func (e *Engine) Stats() clobtypes.EngineStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	avg, p95 := e.latencyPercentiles()
	return clobtypes.EngineStats{
		OrdersSubmitted: e.ordersSubmitted,
		OrdersCanceled:  e.ordersCanceled,
		TradesExecuted:  e.tradesExecuted,
		RejectedOrders:  e.rejectedOrders,
		ExpiredOrders:   e.expiredOrders,
		AvgLatencyUs:    avg,
		P95LatencyUs:    p95,
	}
}

func (e *Engine) latencyPercentiles() (avg, p95 float64) {
	if e.latencyCount == 0 {
		return 0, 0
	}
	sorted := make([]float64, e.latencyCount)
	copy(sorted, e.latencies[:e.latencyCount])
	var sum float64
	for _, v := range sorted {
		sum += v
	}
	avg = sum / float64(len(sorted))
	insertionSort(sorted)
	idx := int(float64(len(sorted))*0.95)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	p95 = sorted[idx]
	return avg, p95
}

func insertionSort(v []float64) {
	for i := 1; i < len(v); i++ {
		j := i
		for j > 0 && v[j-1] > v[j] {
			v[j-1], v[j] = v[j], v[j-1]
			j--
		}
	}
}

// Snapshot returns the depth-capped projection of symbol's book.
func (e *Engine) Snapshot(symbol string, depth int) (*clobtypes.BookSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked(symbol, depth)
}

func (e *Engine) snapshotLocked(symbol string, depth int) (*clobtypes.BookSnapshot, error) {
	if e.cache != nil {
		if v, ok := e.cache.Get(symbol, depth); ok {
			return v.(*clobtypes.BookSnapshot), nil
		}
	}
	b, ok := e.bookFor(symbol)
	if !ok {
		return nil, cerrors.ErrSymbolNotFound
	}
	snap := b.Snapshot(depth)
	if e.cache != nil {
		e.cache.Set(symbol, depth, snap)
	}
	return snap, nil
}

// Depth is an alias for Snapshot under the read surface's alternate name.
func (e *Engine) Depth(symbol string, depth int) (*clobtypes.BookSnapshot, error) {
	return e.Snapshot(symbol, depth)
}

// Trades returns up to limit recent trades for symbol.
func (e *Engine) Trades(symbol string, limit int) ([]*clobtypes.Trade, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.bookFor(symbol)
	if !ok {
		return nil, cerrors.ErrSymbolNotFound
	}
	return b.Trades(limit), nil
}
