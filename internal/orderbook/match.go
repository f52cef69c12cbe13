package orderbook

import (
	"go.uber.org/zap"

	"github.com/abdoElHodaky/clobsim/internal/cerrors"
	"github.com/abdoElHodaky/clobsim/internal/clobtypes"
	"github.com/abdoElHodaky/clobsim/internal/pricelevel"
)

// SubmitOrder validates, matches, and (if any quantity remains under GTC)
// rests req. It never returns an error: every outcome, acceptance, partial
// fill, full fill, STP/TIF/FOK terminal states, and validation rejection,
// is expressed as the returned order's Status plus Reason.
func (b *OrderBook) SubmitOrder(req *clobtypes.SubmitRequest, nowMs int64) *clobtypes.SubmitResult {
	if reason, ok := b.validate(req); !ok {
		order := b.newRejectedOrder(req, reason, nowMs)
		ev := b.emitEvent(order, string(reason), nowMs)
		b.logger.Debug("order rejected", zap.String("order_id", order.ID), zap.String("reason", string(reason)))
		return &clobtypes.SubmitResult{Order: order, Events: []*clobtypes.OrderEvent{ev}}
	}

	tif := resolveTIF(req)
	stp := resolveSTP(req)
	displayQty := resolveDisplayQuantity(req)

	order := &clobtypes.Order{
		ID:                  idOrGenerate(req.ID),
		ClientOrderID:       req.ClientOrderID,
		Symbol:              req.Symbol,
		UserID:              req.UserID,
		Side:                req.Side,
		Kind:                req.Kind,
		TIF:                 tif,
		Status:              clobtypes.StatusNew,
		OriginalQuantity:    req.Quantity,
		RemainingQuantity:   req.Quantity,
		DisplayQuantity:     displayQty,
		MinQuantity:         minQtyOf(req),
		Price:               req.Price,
		SelfTradePrevention: stp,
		CreatedAtMs:         nowMs,
		UpdatedAtMs:         nowMs,
	}
	order.Sequence = b.nextSequence()

	if tif == clobtypes.TIFFOK {
		if !b.sufficientLiquidityForFOK(order.Side, order.Kind, order.Price, order.RemainingQuantity) {
			order.Status = clobtypes.StatusRejected
			order.Reason = string(cerrors.ReasonInsufficientLiquidityForFOK)
			order.UpdatedAtMs = nowMs
			ev := b.emitEvent(order, order.Reason, nowMs)
			return &clobtypes.SubmitResult{Order: order, Events: []*clobtypes.OrderEvent{ev}}
		}
	}

	var trades []*clobtypes.Trade
	var events []*clobtypes.OrderEvent
	filledAny := false

matchLoop:
	for order.RemainingQuantity > 0 {
		idx := oppositeIndex(b, order.Side)
		key, val, found := idx.First()
		if !found {
			break
		}
		lvl := val.(*pricelevel.Level)
		if order.Kind == clobtypes.KindLimit && !crosses(order.Side, *order.Price, lvl.Price) {
			break
		}
		headNode := lvl.Head()
		if headNode == nil {
			idx.Delete(key)
			continue
		}
		makerRef := b.ordersByID[headNode.OrderID]
		maker := makerRef.order

		if maker.UserID == order.UserID && stp != clobtypes.STPNone {
			switch stp {
			case clobtypes.STPCancelOldest:
				b.cancelResting(maker, cerrors.ReasonSTPCancelOldest, nowMs)
				continue matchLoop
			case clobtypes.STPCancelNewest:
				order.Status = clobtypes.StatusCanceled
				order.Reason = string(cerrors.ReasonSTPCancelNewest)
				order.UpdatedAtMs = nowMs
				events = append(events, b.emitEvent(order, order.Reason, nowMs))
				return &clobtypes.SubmitResult{Order: order, Trades: trades, Events: events}
			case clobtypes.STPCancelBoth:
				b.cancelResting(maker, cerrors.ReasonSTPCancelBoth, nowMs)
				order.Status = clobtypes.StatusCanceled
				order.Reason = string(cerrors.ReasonSTPCancelBoth)
				order.UpdatedAtMs = nowMs
				// The maker's CANCELED event goes only into the book's event
				// ring (see Events). It is not appended to the returned
				// payload, which carries only the taker's event, and the
				// engine does not publish it on the event bus.
				events = append(events, b.emitEvent(order, order.Reason, nowMs))
				return &clobtypes.SubmitResult{Order: order, Trades: trades, Events: events}
			}
		}

		executable := minf(order.RemainingQuantity, maker.DisplayedRemainingQuantity)
		if executable <= 0 {
			break
		}

		trade := b.buildTrade(order, maker, lvl.Price, executable, nowMs)
		b.recordTrade(trade)
		trades = append(trades, trade)
		filledAny = true

		order.RemainingQuantity -= executable
		maker.RemainingQuantity -= executable
		maker.DisplayedRemainingQuantity -= executable
		lvl.ReduceVisibleQuantity(executable)

		switch {
		case maker.RemainingQuantity <= 0:
			lvl.Remove(makerRef.node, 0)
			b.dropLevelIfEmpty(makerRef.side, lvl)
			delete(b.ordersByID, maker.ID)
			maker.Status = clobtypes.StatusFilled
			maker.UpdatedAtMs = nowMs
			b.emitEvent(maker, "", nowMs)
		case maker.DisplayedRemainingQuantity <= 0 && maker.ReserveRemainingQuantity > 0:
			refill := minf(maker.DisplayQuantity, maker.ReserveRemainingQuantity)
			maker.DisplayedRemainingQuantity = refill
			maker.ReserveRemainingQuantity -= refill
			lvl.IncreaseVisibleQuantity(refill)
			lvl.MoveToTail(makerRef.node)
			maker.Status = clobtypes.StatusPartiallyFilled
			maker.UpdatedAtMs = nowMs
			b.emitEvent(maker, "", nowMs)
		default:
			maker.Status = clobtypes.StatusPartiallyFilled
			maker.UpdatedAtMs = nowMs
			b.emitEvent(maker, "", nowMs)
		}
	}

	order.UpdatedAtMs = nowMs
	switch {
	case order.RemainingQuantity > 0 && order.Kind == clobtypes.KindLimit && order.TIF == clobtypes.TIFGTC:
		if filledAny {
			order.Status = clobtypes.StatusPartiallyFilled
		} else {
			order.Status = clobtypes.StatusNew
		}
		order.DisplayedRemainingQuantity = minf(order.DisplayQuantity, order.RemainingQuantity)
		order.ReserveRemainingQuantity = order.RemainingQuantity - order.DisplayedRemainingQuantity
		lvl := b.levelFor(order.Side, *order.Price)
		node := lvl.Append(order.ID, order.DisplayedRemainingQuantity)
		b.ordersByID[order.ID] = &orderRef{order: order, level: lvl, node: node, side: order.Side}
		events = append(events, b.emitEvent(order, "", nowMs))
	case order.RemainingQuantity > 0:
		order.Status = clobtypes.StatusExpired
		if order.Kind == clobtypes.KindMarket {
			order.Reason = string(cerrors.ReasonMarketOrderUnfilledRem)
		} else {
			order.Reason = string(cerrors.ReasonTIFUnfilledRemainder)
		}
		events = append(events, b.emitEvent(order, order.Reason, nowMs))
	default:
		order.Status = clobtypes.StatusFilled
		events = append(events, b.emitEvent(order, "", nowMs))
	}

	return &clobtypes.SubmitResult{Order: order, Trades: trades, Events: events}
}

func (b *OrderBook) buildTrade(taker, maker *clobtypes.Order, price, qty float64, nowMs int64) *clobtypes.Trade {
	t := &clobtypes.Trade{
		TradeID:      newTradeID(),
		Symbol:       b.cfg.Symbol,
		Price:        price,
		Quantity:     qty,
		TakerSide:    taker.Side,
		TakerOrderID: taker.ID,
		MakerOrderID: maker.ID,
		TimestampMs:  nowMs,
	}
	if taker.Side == clobtypes.SideBuy {
		t.BuyOrderID, t.SellOrderID = taker.ID, maker.ID
	} else {
		t.BuyOrderID, t.SellOrderID = maker.ID, taker.ID
	}
	t.Sequence = b.nextSequence()
	return t
}

// cancelResting removes a resting maker from the book as part of self-trade
// prevention, marking it CANCELED with reason.
func (b *OrderBook) cancelResting(maker *clobtypes.Order, reason cerrors.Reason, nowMs int64) {
	ref := b.ordersByID[maker.ID]
	if ref != nil {
		ref.level.Remove(ref.node, maker.DisplayedRemainingQuantity)
		b.dropLevelIfEmpty(ref.side, ref.level)
		delete(b.ordersByID, maker.ID)
	}
	maker.Status = clobtypes.StatusCanceled
	maker.Reason = string(reason)
	maker.UpdatedAtMs = nowMs
	b.emitEvent(maker, maker.Reason, nowMs)
}

func (b *OrderBook) newRejectedOrder(req *clobtypes.SubmitRequest, reason cerrors.Reason, nowMs int64) *clobtypes.Order {
	o := &clobtypes.Order{
		ID:                  idOrGenerate(req.ID),
		ClientOrderID:       req.ClientOrderID,
		Symbol:              req.Symbol,
		UserID:              req.UserID,
		Side:                req.Side,
		Kind:                req.Kind,
		TIF:                 resolveTIF(req),
		Status:              clobtypes.StatusRejected,
		Reason:              string(reason),
		OriginalQuantity:    req.Quantity,
		RemainingQuantity:   req.Quantity,
		Price:               req.Price,
		SelfTradePrevention: resolveSTP(req),
		CreatedAtMs:         nowMs,
		UpdatedAtMs:         nowMs,
	}
	o.Sequence = b.nextSequence()
	return o
}

func idOrGenerate(id string) string {
	if id != "" {
		return id
	}
	return NewOrderID()
}

func minQtyOf(req *clobtypes.SubmitRequest) float64 {
	if req.MinQuantity != nil {
		return *req.MinQuantity
	}
	return 0
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
