// Package clobtypes holds the shared data model: orders, trades, order
// events, and the request/result shapes crossing the engine boundary.
package clobtypes

// Side is which side of the book an order rests on or aggresses against.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Kind is the order type.
type Kind string

const (
	KindLimit  Kind = "limit"
	KindMarket Kind = "market"
)

// TimeInForce governs how long an order may rest before it must cancel.
type TimeInForce string

const (
	TIFGTC TimeInForce = "GTC"
	TIFIOC TimeInForce = "IOC"
	TIFFOK TimeInForce = "FOK"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusNew             Status = "NEW"
	StatusPartiallyFilled Status = "PARTIALLY_FILLED"
	StatusFilled          Status = "FILLED"
	StatusCanceled        Status = "CANCELED"
	StatusRejected        Status = "REJECTED"
	StatusExpired         Status = "EXPIRED"
)

// IsTerminal reports whether status is one from which an order never
// transitions further.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusFilled, StatusCanceled, StatusRejected, StatusExpired:
		return true
	default:
		return false
	}
}

// SelfTradePrevention is the policy applied when an incoming order would
// trade against a resting order from the same user.
type SelfTradePrevention string

const (
	STPNone         SelfTradePrevention = "none"
	STPCancelNewest SelfTradePrevention = "cancel_newest"
	STPCancelOldest SelfTradePrevention = "cancel_oldest"
	STPCancelBoth   SelfTradePrevention = "cancel_both"
)

// Order is the mutable entity owned by its book. Quantities are float64
// values that validation requires to be multiples of the book's lot size;
// the book never introduces fractional lots, and float64 keeps arithmetic
// uniform with price, which may be any tick-aligned positive value.
type Order struct {
	ID            string `json:"id"`
	ClientOrderID string `json:"client_order_id,omitempty"`
	Sequence      uint64 `json:"sequence"`

	Symbol string      `json:"symbol"`
	UserID string      `json:"user_id"`
	Side   Side        `json:"side"`
	Kind   Kind        `json:"kind"`
	TIF    TimeInForce `json:"time_in_force"`

	Status Status  `json:"status"`
	Reason string  `json:"reason,omitempty"`

	OriginalQuantity            float64 `json:"original_quantity"`
	RemainingQuantity           float64 `json:"remaining_quantity"`
	DisplayQuantity             float64 `json:"display_quantity"`
	DisplayedRemainingQuantity  float64 `json:"displayed_remaining_quantity"`
	ReserveRemainingQuantity    float64 `json:"reserve_remaining_quantity"`
	MinQuantity                 float64 `json:"min_quantity,omitempty"`

	Price *float64 `json:"price,omitempty"`

	SelfTradePrevention SelfTradePrevention `json:"self_trade_prevention"`

	CreatedAtMs int64 `json:"created_at_ms"`
	UpdatedAtMs int64 `json:"updated_at_ms"`
}

// IsIceberg reports whether the order's display quantity is smaller than
// its original quantity.
func (o *Order) IsIceberg() bool {
	return o.DisplayQuantity > 0 && o.DisplayQuantity < o.OriginalQuantity
}

// Trade is an immutable execution record.
type Trade struct {
	TradeID      string  `json:"trade_id"`
	Symbol       string  `json:"symbol"`
	Price        float64 `json:"price"`
	Quantity     float64 `json:"quantity"`
	TakerSide    Side    `json:"taker_side"`
	TakerOrderID string  `json:"taker_order_id"`
	MakerOrderID string  `json:"maker_order_id"`
	BuyOrderID   string  `json:"buy_order_id"`
	SellOrderID  string  `json:"sell_order_id"`
	TimestampMs  int64   `json:"timestamp_ms"`
	Sequence     uint64  `json:"sequence"`
}

// OrderEvent is an immutable lifecycle notification emitted on every status
// change.
type OrderEvent struct {
	EventID           string  `json:"event_id"`
	OrderID           string  `json:"order_id"`
	Status            Status  `json:"status"`
	Reason            string  `json:"reason,omitempty"`
	RemainingQuantity float64 `json:"remaining_quantity"`
	TimestampMs       int64   `json:"timestamp_ms"`
	Sequence          uint64  `json:"sequence"`
}
