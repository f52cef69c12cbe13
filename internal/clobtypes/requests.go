package clobtypes

// SubmitRequest is the engine submit input contract. Pointer fields
// distinguish "absent" from "zero value" exactly where validation order
// depends on presence (Price, MinQuantity, IcebergDisplayQuantity,
// TimeInForce, SelfTradePrevention).
type SubmitRequest struct {
	ID                     string               `json:"id,omitempty"`
	ClientOrderID          string               `json:"client_order_id,omitempty"`
	Symbol                 string               `json:"symbol"`
	UserID                 string               `json:"user_id"`
	Side                   Side                 `json:"side"`
	Kind                   Kind                 `json:"kind"`
	Quantity               float64              `json:"quantity"`
	Price                  *float64             `json:"price,omitempty"`
	TimeInForce            *TimeInForce         `json:"time_in_force,omitempty"`
	MinQuantity            *float64             `json:"min_quantity,omitempty"`
	IcebergDisplayQuantity *float64             `json:"iceberg_display_quantity,omitempty"`
	SelfTradePrevention    *SelfTradePrevention `json:"self_trade_prevention,omitempty"`
}

// CancelRequest is the engine cancel input contract.
type CancelRequest struct {
	OrderID string  `json:"order_id"`
	UserID  *string `json:"user_id,omitempty"`
	Symbol  *string `json:"symbol,omitempty"`
}

// SubmitResult is the engine submit output contract.
type SubmitResult struct {
	Order  *Order        `json:"order"`
	Trades []*Trade      `json:"trades"`
	Events []*OrderEvent `json:"events"`
}

// CancelResult is the engine cancel output contract.
type CancelResult struct {
	Canceled bool        `json:"canceled"`
	Order    *Order      `json:"order,omitempty"`
	Reason   string      `json:"reason,omitempty"`
	Event    *OrderEvent `json:"event,omitempty"`
}

// DepthRow is one price/quantity/order-count row of a depth projection.
// Hidden iceberg reserve quantity never appears here.
type DepthRow struct {
	Price      float64 `json:"price"`
	Quantity   float64 `json:"quantity"`
	OrderCount int     `json:"order_count"`
}

// BookSnapshot is a depth-capped two-sided projection of one symbol's book.
type BookSnapshot struct {
	Symbol string     `json:"symbol"`
	Bids   []DepthRow `json:"bids"`
	Asks   []DepthRow `json:"asks"`
}

// EngineStats is the engine's cumulative counters and latency summary.
type EngineStats struct {
	OrdersSubmitted uint64  `json:"orders_submitted"`
	OrdersCanceled  uint64  `json:"orders_canceled"`
	TradesExecuted  uint64  `json:"trades_executed"`
	RejectedOrders  uint64  `json:"rejected_orders"`
	ExpiredOrders   uint64  `json:"expired_orders"`
	AvgLatencyUs    float64 `json:"avg_latency_us"`
	P95LatencyUs    float64 `json:"p95_latency_us"`
}
