package orderbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/abdoElHodaky/clobsim/internal/cerrors"
	"github.com/abdoElHodaky/clobsim/internal/clobtypes"
	"github.com/abdoElHodaky/clobsim/internal/prng"
)

func newTestBook(t *testing.T) *OrderBook {
	t.Helper()
	cfg := Config{
		Symbol:            "BTC-USD",
		TickSize:          1,
		LotSize:           1,
		MinOrderQuantity:  1,
		TradeRingCapacity: 64,
		EventRingCapacity: 64,
	}
	return New(cfg, prng.New(1), zaptest.NewLogger(t))
}

func f(v float64) *float64 { return &v }
func s(v string) *string   { return &v }
func tif(v clobtypes.TimeInForce) *clobtypes.TimeInForce { return &v }
func stp(v clobtypes.SelfTradePrevention) *clobtypes.SelfTradePrevention { return &v }

func TestValidateRejectsMissingUserID(t *testing.T) {
	b := newTestBook(t)
	res := b.SubmitOrder(&clobtypes.SubmitRequest{
		Symbol: "BTC-USD", Side: clobtypes.SideBuy, Kind: clobtypes.KindLimit,
		Quantity: 1, Price: f(100),
	}, 1)
	require.Equal(t, clobtypes.StatusRejected, res.Order.Status)
	assert.Equal(t, string(cerrors.ReasonMissingUserID), res.Order.Reason)
}

func TestValidateRejectsQuantityNotLotMultiple(t *testing.T) {
	b := newTestBook(t)
	b.cfg.LotSize = 0.5
	res := b.SubmitOrder(&clobtypes.SubmitRequest{
		Symbol: "BTC-USD", UserID: "u1", Side: clobtypes.SideBuy, Kind: clobtypes.KindLimit,
		Quantity: 1.3, Price: f(100),
	}, 1)
	require.Equal(t, clobtypes.StatusRejected, res.Order.Status)
	assert.Equal(t, string(cerrors.ReasonQuantityNotLotMultiple), res.Order.Reason)
}

func TestGTCRestsThenMatchesPriceTimePriority(t *testing.T) {
	b := newTestBook(t)

	r1 := b.SubmitOrder(&clobtypes.SubmitRequest{
		ID: "maker1", Symbol: "BTC-USD", UserID: "alice", Side: clobtypes.SideBuy,
		Kind: clobtypes.KindLimit, Quantity: 5, Price: f(100),
	}, 1)
	require.Equal(t, clobtypes.StatusNew, r1.Order.Status)

	r2 := b.SubmitOrder(&clobtypes.SubmitRequest{
		ID: "maker2", Symbol: "BTC-USD", UserID: "carol", Side: clobtypes.SideBuy,
		Kind: clobtypes.KindLimit, Quantity: 5, Price: f(100),
	}, 2)
	require.Equal(t, clobtypes.StatusNew, r2.Order.Status)

	// Incoming sell crosses both; price-time priority says maker1 fills first.
	r3 := b.SubmitOrder(&clobtypes.SubmitRequest{
		ID: "taker1", Symbol: "BTC-USD", UserID: "bob", Side: clobtypes.SideSell,
		Kind: clobtypes.KindLimit, Quantity: 5, Price: f(100),
	}, 3)

	require.Len(t, r3.Trades, 1)
	assert.Equal(t, "maker1", r3.Trades[0].MakerOrderID)
	assert.Equal(t, clobtypes.StatusFilled, r3.Order.Status)
}

func TestIcebergReplenishmentLosesTimePriority(t *testing.T) {
	b := newTestBook(t)

	r1 := b.SubmitOrder(&clobtypes.SubmitRequest{
		ID: "iceberg", Symbol: "BTC-USD", UserID: "alice", Side: clobtypes.SideSell,
		Kind: clobtypes.KindLimit, Quantity: 10, Price: f(100),
		IcebergDisplayQuantity: f(2),
	}, 1)
	require.Equal(t, clobtypes.StatusNew, r1.Order.Status)
	assert.Equal(t, 2.0, r1.Order.DisplayedRemainingQuantity)
	assert.Equal(t, 8.0, r1.Order.ReserveRemainingQuantity)

	other := b.SubmitOrder(&clobtypes.SubmitRequest{
		ID: "other-maker", Symbol: "BTC-USD", UserID: "dave", Side: clobtypes.SideSell,
		Kind: clobtypes.KindLimit, Quantity: 2, Price: f(100),
	}, 2)
	require.Equal(t, clobtypes.StatusNew, other.Order.Status)

	// Buy 2 eats the iceberg's displayed slice (it was first in queue).
	r2 := b.SubmitOrder(&clobtypes.SubmitRequest{
		ID: "taker", Symbol: "BTC-USD", UserID: "bob", Side: clobtypes.SideBuy,
		Kind: clobtypes.KindLimit, Quantity: 2, Price: f(100),
	}, 3)
	require.Len(t, r2.Trades, 1)
	assert.Equal(t, "iceberg", r2.Trades[0].MakerOrderID)

	// The iceberg replenished 2 more from reserve but moved to tail, so the
	// next taker should match other-maker first.
	r3 := b.SubmitOrder(&clobtypes.SubmitRequest{
		ID: "taker2", Symbol: "BTC-USD", UserID: "bob", Side: clobtypes.SideBuy,
		Kind: clobtypes.KindLimit, Quantity: 2, Price: f(100),
	}, 4)
	require.Len(t, r3.Trades, 1)
	assert.Equal(t, "other-maker", r3.Trades[0].MakerOrderID)
}

func TestSelfTradePreventionCancelNewest(t *testing.T) {
	b := newTestBook(t)
	b.SubmitOrder(&clobtypes.SubmitRequest{
		ID: "maker", Symbol: "BTC-USD", UserID: "alice", Side: clobtypes.SideBuy,
		Kind: clobtypes.KindLimit, Quantity: 5, Price: f(100),
	}, 1)

	res := b.SubmitOrder(&clobtypes.SubmitRequest{
		ID: "taker", Symbol: "BTC-USD", UserID: "alice", Side: clobtypes.SideSell,
		Kind: clobtypes.KindLimit, Quantity: 5, Price: f(100),
		SelfTradePrevention: stp(clobtypes.STPCancelNewest),
	}, 2)

	assert.Equal(t, clobtypes.StatusCanceled, res.Order.Status)
	assert.Equal(t, string(cerrors.ReasonSTPCancelNewest), res.Order.Reason)
	assert.Empty(t, res.Trades)
	assert.Equal(t, 1, b.ActiveOrderCount()) // maker is left resting untouched
}

func TestSelfTradePreventionCancelOldestLetsTakerContinue(t *testing.T) {
	b := newTestBook(t)
	b.SubmitOrder(&clobtypes.SubmitRequest{
		ID: "maker-self", Symbol: "BTC-USD", UserID: "alice", Side: clobtypes.SideBuy,
		Kind: clobtypes.KindLimit, Quantity: 5, Price: f(100),
	}, 1)
	b.SubmitOrder(&clobtypes.SubmitRequest{
		ID: "maker-other", Symbol: "BTC-USD", UserID: "carol", Side: clobtypes.SideBuy,
		Kind: clobtypes.KindLimit, Quantity: 5, Price: f(100),
	}, 2)

	res := b.SubmitOrder(&clobtypes.SubmitRequest{
		ID: "taker", Symbol: "BTC-USD", UserID: "alice", Side: clobtypes.SideSell,
		Kind: clobtypes.KindLimit, Quantity: 5, Price: f(100),
		SelfTradePrevention: stp(clobtypes.STPCancelOldest),
	}, 3)

	require.Len(t, res.Trades, 1)
	assert.Equal(t, "maker-other", res.Trades[0].MakerOrderID)
	assert.Equal(t, clobtypes.StatusFilled, res.Order.Status)
	assert.Equal(t, 0, b.ActiveOrderCount())
}

func TestFOKRejectsOnInsufficientLiquidity(t *testing.T) {
	b := newTestBook(t)
	b.SubmitOrder(&clobtypes.SubmitRequest{
		ID: "maker", Symbol: "BTC-USD", UserID: "alice", Side: clobtypes.SideSell,
		Kind: clobtypes.KindLimit, Quantity: 3, Price: f(100),
	}, 1)

	res := b.SubmitOrder(&clobtypes.SubmitRequest{
		ID: "taker", Symbol: "BTC-USD", UserID: "bob", Side: clobtypes.SideBuy,
		Kind: clobtypes.KindLimit, Quantity: 5, Price: f(100),
		TimeInForce: tif(clobtypes.TIFFOK),
	}, 2)

	assert.Equal(t, clobtypes.StatusRejected, res.Order.Status)
	assert.Equal(t, string(cerrors.ReasonInsufficientLiquidityForFOK), res.Order.Reason)
	assert.Equal(t, 1, b.ActiveOrderCount()) // the maker is untouched
}

func TestFOKFillsCompletelyWhenLiquiditySufficient(t *testing.T) {
	b := newTestBook(t)
	b.SubmitOrder(&clobtypes.SubmitRequest{
		ID: "maker", Symbol: "BTC-USD", UserID: "alice", Side: clobtypes.SideSell,
		Kind: clobtypes.KindLimit, Quantity: 10, Price: f(100),
	}, 1)

	res := b.SubmitOrder(&clobtypes.SubmitRequest{
		ID: "taker", Symbol: "BTC-USD", UserID: "bob", Side: clobtypes.SideBuy,
		Kind: clobtypes.KindLimit, Quantity: 5, Price: f(100),
		TimeInForce: tif(clobtypes.TIFFOK),
	}, 2)

	assert.Equal(t, clobtypes.StatusFilled, res.Order.Status)
	require.Len(t, res.Trades, 1)
}

func TestIOCExpiresUnfilledRemainder(t *testing.T) {
	b := newTestBook(t)
	b.SubmitOrder(&clobtypes.SubmitRequest{
		ID: "maker", Symbol: "BTC-USD", UserID: "alice", Side: clobtypes.SideSell,
		Kind: clobtypes.KindLimit, Quantity: 2, Price: f(100),
	}, 1)

	res := b.SubmitOrder(&clobtypes.SubmitRequest{
		ID: "taker", Symbol: "BTC-USD", UserID: "bob", Side: clobtypes.SideBuy,
		Kind: clobtypes.KindLimit, Quantity: 5, Price: f(100),
		TimeInForce: tif(clobtypes.TIFIOC),
	}, 2)

	assert.Equal(t, clobtypes.StatusExpired, res.Order.Status)
	assert.Equal(t, string(cerrors.ReasonTIFUnfilledRemainder), res.Order.Reason)
	require.Len(t, res.Trades, 1)
	assert.Equal(t, 3.0, res.Order.RemainingQuantity)
}

func TestCancelRoundTrip(t *testing.T) {
	b := newTestBook(t)
	r := b.SubmitOrder(&clobtypes.SubmitRequest{
		ID: "order1", Symbol: "BTC-USD", UserID: "alice", Side: clobtypes.SideBuy,
		Kind: clobtypes.KindLimit, Quantity: 5, Price: f(100),
	}, 1)
	require.Equal(t, clobtypes.StatusNew, r.Order.Status)

	cancel := b.CancelOrder("order1", nil, 2)
	assert.True(t, cancel.Canceled)
	assert.Equal(t, clobtypes.StatusCanceled, cancel.Order.Status)
	assert.Equal(t, 0, b.ActiveOrderCount())

	second := b.CancelOrder("order1", nil, 3)
	assert.False(t, second.Canceled)
	assert.Equal(t, string(cerrors.ReasonOrderNotFound), second.Reason)
}

func TestCancelRejectsUserMismatch(t *testing.T) {
	b := newTestBook(t)
	b.SubmitOrder(&clobtypes.SubmitRequest{
		ID: "order1", Symbol: "BTC-USD", UserID: "alice", Side: clobtypes.SideBuy,
		Kind: clobtypes.KindLimit, Quantity: 5, Price: f(100),
	}, 1)

	cancel := b.CancelOrder("order1", s("mallory"), 2)
	assert.False(t, cancel.Canceled)
	assert.Equal(t, string(cerrors.ReasonUserMismatch), cancel.Reason)
}

func TestSnapshotNeverExposesReserveQuantity(t *testing.T) {
	b := newTestBook(t)
	b.SubmitOrder(&clobtypes.SubmitRequest{
		ID: "iceberg", Symbol: "BTC-USD", UserID: "alice", Side: clobtypes.SideSell,
		Kind: clobtypes.KindLimit, Quantity: 10, Price: f(100),
		IcebergDisplayQuantity: f(2),
	}, 1)

	snap := b.Snapshot(0)
	require.Len(t, snap.Asks, 1)
	assert.Equal(t, 2.0, snap.Asks[0].Quantity)
}

func TestZeroFillPurityRejectedOrderProducesNoTrades(t *testing.T) {
	b := newTestBook(t)
	res := b.SubmitOrder(&clobtypes.SubmitRequest{
		Symbol: "BTC-USD", UserID: "alice", Side: clobtypes.SideBuy,
		Kind: clobtypes.KindLimit, Quantity: -1, Price: f(100),
	}, 1)
	assert.Equal(t, clobtypes.StatusRejected, res.Order.Status)
	assert.Empty(t, res.Trades)
	assert.Equal(t, 0, b.ActiveOrderCount())
}
