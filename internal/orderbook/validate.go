package orderbook

import (
	"math"

	"github.com/abdoElHodaky/clobsim/internal/cerrors"
	"github.com/abdoElHodaky/clobsim/internal/clobtypes"
	"github.com/abdoElHodaky/clobsim/internal/pricelevel"
)

// validate runs the ordered set of admission checks for an incoming order.
// The first failing check wins; its Reason is returned and validation stops
// there (no side effects beyond the caller emitting one REJECTED event).
func (b *OrderBook) validate(req *clobtypes.SubmitRequest) (reason cerrors.Reason, ok bool) {
	if req.Symbol != b.cfg.Symbol {
		return cerrors.ReasonSymbolMismatch, false
	}
	if req.UserID == "" {
		return cerrors.ReasonMissingUserID, false
	}
	if math.IsNaN(req.Quantity) || math.IsInf(req.Quantity, 0) || req.Quantity <= 0 {
		return cerrors.ReasonInvalidQuantity, false
	}
	if !isLotMultiple(req.Quantity, b.cfg.LotSize) {
		return cerrors.ReasonQuantityNotLotMultiple, false
	}
	minQty := b.cfg.MinOrderQuantity
	if minQty > 0 && req.Quantity < minQty {
		return cerrors.ReasonQuantityBelowMinimum, false
	}

	switch req.Kind {
	case clobtypes.KindLimit:
		if req.Price == nil || *req.Price <= 0 {
			return cerrors.ReasonInvalidLimitPrice, false
		}
		if !isLotMultiple(*req.Price, b.cfg.TickSize) {
			return cerrors.ReasonPriceNotTickMultiple, false
		}
	case clobtypes.KindMarket:
		if req.Price != nil {
			return cerrors.ReasonMarketOrderCannotHavePrice, false
		}
	}

	if req.MinQuantity != nil {
		mq := *req.MinQuantity
		if mq <= 0 || mq > req.Quantity {
			return cerrors.ReasonInvalidMinQuantity, false
		}
		if !isLotMultiple(mq, b.cfg.LotSize) {
			return cerrors.ReasonMinQuantityNotLotMultiple, false
		}
	}

	if req.IcebergDisplayQuantity != nil {
		if req.Kind != clobtypes.KindLimit {
			return cerrors.ReasonIcebergRequiresLimitOrder, false
		}
		disp := *req.IcebergDisplayQuantity
		if disp <= 0 || disp > req.Quantity {
			return cerrors.ReasonInvalidIcebergDisplayQuantity, false
		}
		if !isLotMultiple(disp, b.cfg.LotSize) {
			return cerrors.ReasonInvalidIcebergDisplayQuantity, false
		}
	}

	return "", true
}

// resolveTIF applies the default time-in-force: market -> IOC, limit -> GTC.
func resolveTIF(req *clobtypes.SubmitRequest) clobtypes.TimeInForce {
	if req.TimeInForce != nil {
		return *req.TimeInForce
	}
	if req.Kind == clobtypes.KindMarket {
		return clobtypes.TIFIOC
	}
	return clobtypes.TIFGTC
}

func resolveSTP(req *clobtypes.SubmitRequest) clobtypes.SelfTradePrevention {
	if req.SelfTradePrevention != nil {
		return *req.SelfTradePrevention
	}
	return clobtypes.STPNone
}

func resolveDisplayQuantity(req *clobtypes.SubmitRequest) float64 {
	if req.IcebergDisplayQuantity != nil {
		return *req.IcebergDisplayQuantity
	}
	return req.Quantity
}

// sufficientLiquidityForFOK checks, before any matching, whether the
// opposite side's total visible quantity across crossing levels meets
// remaining quantity. Hidden iceberg reserves are intentionally excluded
// from this check, since a fill-or-kill order should only see what is
// actually displayed on the book.
func (b *OrderBook) sufficientLiquidityForFOK(side clobtypes.Side, kind clobtypes.Kind, price *float64, remaining float64) bool {
	idx := oppositeIndex(b, side)
	var sum float64
	for _, e := range idx.Entries(0) {
		lvl := e.Value.(*pricelevel.Level)
		if kind == clobtypes.KindMarket || crosses(side, *price, lvl.Price) {
			sum += lvl.TotalVisibleQuantity()
		}
		if sum >= remaining {
			return true
		}
	}
	return sum >= remaining
}

// crosses reports whether a resting level at restingPrice on the opposite
// side crosses an incoming limit order on side at takerPrice.
func crosses(side clobtypes.Side, takerPrice, restingPrice float64) bool {
	if side == clobtypes.SideBuy {
		return restingPrice <= takerPrice
	}
	return restingPrice >= takerPrice
}
