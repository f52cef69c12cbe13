// Package cerrors collects the sentinel errors and stable reason strings
// used across the simulator core.
//
// Two distinct disciplines apply here: the Err* sentinels below are for
// programmer-error and exceptional conditions (unknown symbol, nil
// dependency, corrupt log) and are returned as Go errors. Validation and
// matching-policy outcomes are never Go errors; they are stable reason
// strings attached to REJECTED/CANCELED/EXPIRED results, enumerated in
// reasons.go.
package cerrors

import "errors"

var (
	// ErrSymbolNotFound is returned by read paths (Snapshot, Depth, Trades)
	// when the requested symbol has no book. This is a typed error, not a
	// validation outcome.
	ErrSymbolNotFound = errors.New("cerrors: symbol not found")

	// ErrNilLogger names a missing-logger condition. No constructor in this
	// module returns it: each one substitutes zap.NewNop() for a nil logger.
	ErrNilLogger = errors.New("cerrors: logger must not be nil")

	// ErrNilEngine is returned when a dependent component is constructed
	// without the matching engine it needs to execute against.
	ErrNilEngine = errors.New("cerrors: engine must not be nil")

	// ErrMempoolAlreadyTicking guards the mempool's reentrancy-guarded tick.
	ErrMempoolAlreadyTicking = errors.New("cerrors: tick already in progress")

	// ErrUnknownCommandKind is returned when a mempool transaction's payload
	// carries a kind the engine does not recognize.
	ErrUnknownCommandKind = errors.New("cerrors: unknown command kind")

	// ErrTxNotFound is returned by mempool read paths for an unknown tx id.
	ErrTxNotFound = errors.New("cerrors: virtual transaction not found")

	// ErrTxNotDelivered is returned by Mempool.Submit when the submission
	// is routed through a netshim Shim and the shim drops it, times out on
	// its in-flight limiter, or is rejected by its circuit breaker.
	ErrTxNotDelivered = errors.New("cerrors: virtual transaction not delivered")
)
