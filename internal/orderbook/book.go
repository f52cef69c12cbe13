// Package orderbook implements the per-symbol two-sided limit order book:
// validation, the price-time-priority matching loop, iceberg replenishment,
// self-trade prevention, and time-in-force handling.
//
// The book is constructed with a *zap.Logger, keeps each side's resting
// orders in a skip list ordered by signed price, and maintains a
// back-reference map from order id to its resting location for O(1) cancel.
// Each price level is a doubly-linked FIFO queue of orders.
package orderbook

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abdoElHodaky/clobsim/internal/clobtypes"
	"github.com/abdoElHodaky/clobsim/internal/pricelevel"
	"github.com/abdoElHodaky/clobsim/internal/prng"
	"github.com/abdoElHodaky/clobsim/internal/skiplist"
)

// orderRef is the cross-index entry for one resting order: the level it
// sits on, its queue node within that level, and which side it rests on.
type orderRef struct {
	order *clobtypes.Order
	level *pricelevel.Level
	node  *pricelevel.Node
	side  clobtypes.Side
}

// OrderBook is one symbol's two-sided book.
type OrderBook struct {
	cfg Config

	bids *skiplist.SkipList // key = -price, so First() is the best bid
	asks *skiplist.SkipList // key = +price, so First() is the best ask

	ordersByID map[string]*orderRef

	trades *tradeRing
	events *tradeRing

	sequence uint64

	logger *zap.Logger
}

// New constructs an empty book for cfg.Symbol. rng seeds the two side
// indices' skip-list promotion draws; the two sides are given independently
// derived streams so neither side's promotion pattern leaks into the other.
func New(cfg Config, rng *prng.Stream, logger *zap.Logger) *OrderBook {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TickSize <= 0 {
		cfg.TickSize = 1
	}
	if cfg.LotSize <= 0 {
		cfg.LotSize = 1
	}
	return &OrderBook{
		cfg:        cfg,
		bids:       skiplist.New(rng.Derive(1)),
		asks:       skiplist.New(rng.Derive(2)),
		ordersByID: make(map[string]*orderRef),
		trades:     newRing(cfg.TradeRingCapacity),
		events:     newRing(cfg.EventRingCapacity),
		logger:     logger.With(zap.String("symbol", cfg.Symbol)),
	}
}

// Symbol returns the book's symbol.
func (b *OrderBook) Symbol() string { return b.cfg.Symbol }

// ActiveOrderCount returns the number of orders currently resting.
func (b *OrderBook) ActiveOrderCount() int { return len(b.ordersByID) }

func (b *OrderBook) nextSequence() uint64 {
	b.sequence++
	return b.sequence
}

// NewOrderID mints an opaque order id. Exported so a caller that needs to
// resolve an id before persisting a command (the matching engine, for
// replay determinism) can assign the same id the book would otherwise
// generate internally.
func NewOrderID() string {
	return "ord_" + uuid.NewString()
}

func newTradeID() string {
	return "trd_" + uuid.NewString()
}

func newEventID() string {
	return "evt_" + uuid.NewString()
}

func sideIndex(b *OrderBook, side clobtypes.Side) *skiplist.SkipList {
	if side == clobtypes.SideBuy {
		return b.bids
	}
	return b.asks
}

func oppositeIndex(b *OrderBook, side clobtypes.Side) *skiplist.SkipList {
	return sideIndex(b, side.Opposite())
}

func sortKey(side clobtypes.Side, price float64) float64 {
	if side == clobtypes.SideBuy {
		return -price
	}
	return price
}

func levelAt(idx *skiplist.SkipList, side clobtypes.Side, price float64) (*pricelevel.Level, bool) {
	v, ok := idx.Get(sortKey(side, price))
	if !ok {
		return nil, false
	}
	return v.(*pricelevel.Level), true
}

func (b *OrderBook) levelFor(side clobtypes.Side, price float64) *pricelevel.Level {
	idx := sideIndex(b, side)
	key := sortKey(side, price)
	if v, ok := idx.Get(key); ok {
		return v.(*pricelevel.Level)
	}
	lvl := pricelevel.NewLevel(price)
	idx.Upsert(key, lvl)
	return lvl
}

func (b *OrderBook) dropLevelIfEmpty(side clobtypes.Side, lvl *pricelevel.Level) {
	if lvl.IsEmpty() {
		sideIndex(b, side).Delete(sortKey(side, lvl.Price))
	}
}

func (b *OrderBook) emitEvent(order *clobtypes.Order, reason string, nowMs int64) *clobtypes.OrderEvent {
	ev := &clobtypes.OrderEvent{
		EventID:           newEventID(),
		OrderID:           order.ID,
		Status:            order.Status,
		Reason:            reason,
		RemainingQuantity: order.RemainingQuantity,
		TimestampMs:       nowMs,
		Sequence:          b.nextSequence(),
	}
	b.events.push(ev)
	return ev
}

func (b *OrderBook) recordTrade(t *clobtypes.Trade) {
	b.trades.push(t)
}
