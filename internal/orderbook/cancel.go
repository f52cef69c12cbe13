package orderbook

import (
	"github.com/abdoElHodaky/clobsim/internal/cerrors"
	"github.com/abdoElHodaky/clobsim/internal/clobtypes"
)

// CancelOrder cancels a resting order by id.
func (b *OrderBook) CancelOrder(orderID string, userID *string, nowMs int64) *clobtypes.CancelResult {
	ref, ok := b.ordersByID[orderID]
	if !ok {
		return &clobtypes.CancelResult{Canceled: false, Reason: string(cerrors.ReasonOrderNotFound)}
	}
	if userID != nil && ref.order.UserID != *userID {
		return &clobtypes.CancelResult{Canceled: false, Reason: string(cerrors.ReasonUserMismatch)}
	}

	order := ref.order
	ref.level.Remove(ref.node, order.DisplayedRemainingQuantity)
	b.dropLevelIfEmpty(ref.side, ref.level)
	delete(b.ordersByID, orderID)

	order.Status = clobtypes.StatusCanceled
	order.Reason = string(cerrors.ReasonCanceledByUser)
	order.UpdatedAtMs = nowMs
	ev := b.emitEvent(order, order.Reason, nowMs)

	return &clobtypes.CancelResult{Canceled: true, Order: order, Event: ev}
}
