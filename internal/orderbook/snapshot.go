package orderbook

import (
	"github.com/abdoElHodaky/clobsim/internal/clobtypes"
	"github.com/abdoElHodaky/clobsim/internal/pricelevel"
	"github.com/abdoElHodaky/clobsim/internal/skiplist"
)

// Snapshot returns a depth-capped two-sided projection. depth <= 0 means
// unbounded.
func (b *OrderBook) Snapshot(depth int) *clobtypes.BookSnapshot {
	return &clobtypes.BookSnapshot{
		Symbol: b.cfg.Symbol,
		Bids:   rowsFrom(b.bids, depth),
		Asks:   rowsFrom(b.asks, depth),
	}
}

// Depth is an alias read surface for Snapshot, kept as a distinct name so
// the engine can expose both without callers caring which one it is.
func (b *OrderBook) Depth(depth int) *clobtypes.BookSnapshot {
	return b.Snapshot(depth)
}

func rowsFrom(idx *skiplist.SkipList, depth int) []clobtypes.DepthRow {
	entries := idx.Entries(depth)
	rows := make([]clobtypes.DepthRow, 0, len(entries))
	for _, e := range entries {
		lvl := e.Value.(*pricelevel.Level)
		rows = append(rows, clobtypes.DepthRow{
			Price:      lvl.Price,
			Quantity:   lvl.TotalVisibleQuantity(),
			OrderCount: lvl.Count(),
		})
	}
	return rows
}

// Trades returns up to limit most recent trades, oldest first. limit <= 0
// returns everything currently retained in the ring.
func (b *OrderBook) Trades(limit int) []*clobtypes.Trade {
	raw := b.trades.last(limit)
	out := make([]*clobtypes.Trade, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.(*clobtypes.Trade))
	}
	return out
}

// Events returns up to limit most recent order events, oldest first.
func (b *OrderBook) Events(limit int) []*clobtypes.OrderEvent {
	raw := b.events.last(limit)
	out := make([]*clobtypes.OrderEvent, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.(*clobtypes.OrderEvent))
	}
	return out
}
