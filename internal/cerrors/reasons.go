package cerrors

// Reason is a stable string attached to order events and results. Consumers
// match on the string, not on error identity.
type Reason string

const (
	ReasonSymbolMismatch              Reason = "symbol_mismatch"
	ReasonMissingUserID               Reason = "missing_user_id"
	ReasonInvalidQuantity             Reason = "invalid_quantity"
	ReasonQuantityNotLotMultiple      Reason = "quantity_not_lot_multiple"
	ReasonQuantityBelowMinimum        Reason = "quantity_below_minimum"
	ReasonInvalidLimitPrice           Reason = "invalid_limit_price"
	ReasonPriceNotTickMultiple        Reason = "price_not_tick_multiple"
	ReasonMarketOrderCannotHavePrice  Reason = "market_order_cannot_have_price"
	ReasonInvalidMinQuantity          Reason = "invalid_min_quantity"
	ReasonMinQuantityNotLotMultiple   Reason = "min_quantity_not_lot_multiple"
	ReasonIcebergRequiresLimitOrder   Reason = "iceberg_requires_limit_order"
	ReasonInvalidIcebergDisplayQuantity Reason = "invalid_iceberg_display_quantity"
	ReasonInsufficientLiquidityForFOK Reason = "insufficient_liquidity_for_fok"
	ReasonSTPCancelNewest             Reason = "self_trade_prevention_cancel_newest"
	ReasonSTPCancelOldest             Reason = "self_trade_prevention_cancel_oldest"
	ReasonSTPCancelBoth               Reason = "self_trade_prevention_cancel_both"
	ReasonMarketOrderUnfilledRem      Reason = "market_order_unfilled_remainder"
	ReasonTIFUnfilledRemainder        Reason = "time_in_force_unfilled_remainder"
	ReasonOrderNotFound               Reason = "order_not_found"
	ReasonUserMismatch                Reason = "user_mismatch"
	ReasonOrderSymbolNotFound         Reason = "order_symbol_not_found"
	ReasonCanceledByUser              Reason = "canceled_by_user"
)
