package mempool

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/abdoElHodaky/clobsim/internal/clobtypes"
	"github.com/abdoElHodaky/clobsim/internal/matching"
	"github.com/abdoElHodaky/clobsim/internal/orderbook"
	"github.com/abdoElHodaky/clobsim/internal/prng"
)

func f(v float64) *float64 { return &v }

func newTestEngine(t *testing.T) *matching.Engine {
	t.Helper()
	return matching.New([]orderbook.Config{{
		Symbol:            "BTC-USD",
		TickSize:          1,
		LotSize:           1,
		MinOrderQuantity:  1,
		TradeRingCapacity: 64,
		EventRingCapacity: 64,
	}}, matching.Deps{Logger: zaptest.NewLogger(t), Seed: 1})
}

func submitPayload(id, userID string, side clobtypes.Side, qty, price float64) Payload {
	return Payload{
		Kind: PayloadSubmitOrder,
		Submit: &clobtypes.SubmitRequest{
			ID: id, Symbol: "BTC-USD", UserID: userID, Side: side,
			Kind: clobtypes.KindLimit, Quantity: qty, Price: f(price),
		},
	}
}

func TestSubmitAssignsTxIDAndStoresPending(t *testing.T) {
	e := newTestEngine(t)
	m, err := New(Config{MaxTransactionsPerBlock: 10}, e, prng.New(1), nil, nil, zaptest.NewLogger(t))
	require.NoError(t, err)

	h, err := m.Submit(context.Background(), SubmitTxRequest{
		Payload:  submitPayload("o1", "alice", clobtypes.SideBuy, 5, 100),
		GasPrice: big.NewInt(10),
	}, 1000)
	require.NoError(t, err)
	assert.NotEmpty(t, h.TxID)
	assert.Equal(t, 1, m.PendingCount())

	tx, err := m.Get(h.TxID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, tx.Status)
}

func TestTickIncludesHighestEffectiveGasFirst(t *testing.T) {
	e := newTestEngine(t)
	m, err := New(Config{MaxTransactionsPerBlock: 1, DefaultConfirmations: 100}, e, prng.New(1), nil, nil, zaptest.NewLogger(t))
	require.NoError(t, err)

	lowGas, err := m.Submit(context.Background(), SubmitTxRequest{
		Payload:               submitPayload("low", "alice", clobtypes.SideBuy, 1, 100),
		GasPrice:              big.NewInt(1),
		MaxPriorityFeePerGas:  big.NewInt(0),
	}, 1000)
	require.NoError(t, err)

	highGas, err := m.Submit(context.Background(), SubmitTxRequest{
		Payload:               submitPayload("high", "bob", clobtypes.SideBuy, 1, 100),
		GasPrice:              big.NewInt(5),
		MaxPriorityFeePerGas:  big.NewInt(5),
	}, 1001)
	require.NoError(t, err)

	summary, err := m.Tick()
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Included)
	assert.Equal(t, 1, m.PendingCount()) // the loser stays pending for the next block

	highTx, err := m.Get(highGas.TxID)
	require.NoError(t, err)
	assert.Equal(t, StatusIncluded, highTx.Status)

	lowTx, err := m.Get(lowGas.TxID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, lowTx.Status)
}

func TestTickTiesBrokenBySubmittedAtAscending(t *testing.T) {
	e := newTestEngine(t)
	m, err := New(Config{MaxTransactionsPerBlock: 1, DefaultConfirmations: 100}, e, prng.New(1), nil, nil, zaptest.NewLogger(t))
	require.NoError(t, err)

	earlier, err := m.Submit(context.Background(), SubmitTxRequest{
		Payload:  submitPayload("earlier", "alice", clobtypes.SideBuy, 1, 100),
		GasPrice: big.NewInt(3),
	}, 1000)
	require.NoError(t, err)

	_, err = m.Submit(context.Background(), SubmitTxRequest{
		Payload:  submitPayload("later", "bob", clobtypes.SideBuy, 1, 100),
		GasPrice: big.NewInt(3),
	}, 2000)
	require.NoError(t, err)

	summary, err := m.Tick()
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Included)

	earlierTx, err := m.Get(earlier.TxID)
	require.NoError(t, err)
	assert.Equal(t, StatusIncluded, earlierTx.Status)
}

func TestTickConfirmsAfterForcedFloorRegardlessOfProbability(t *testing.T) {
	e := newTestEngine(t)
	// ConfirmationProbabilityPerBlock of 0 means confirmation only ever
	// happens via the forced floor, once elapsed reaches
	// required_confirmations + 5.
	m, err := New(Config{
		MaxTransactionsPerBlock:         10,
		DefaultConfirmations:            1,
		ConfirmationProbabilityPerBlock: 0,
	}, e, prng.New(1), nil, nil, zaptest.NewLogger(t))
	require.NoError(t, err)

	h, err := m.Submit(context.Background(), SubmitTxRequest{
		Payload:  submitPayload("o1", "alice", clobtypes.SideBuy, 1, 100),
		GasPrice: big.NewInt(1),
	}, 1000)
	require.NoError(t, err)

	// Block 1: include. required(1)+5=6 forces confirmation once elapsed
	// (block - included_block + 1) reaches 6, at the 6th tick overall; a 7th
	// tick is a no-op confirming the already-terminal state stays put.
	var last TickSummary
	for i := 0; i < 7; i++ {
		last, err = m.Tick()
		require.NoError(t, err)
	}

	tx, err := m.Get(h.TxID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, tx.Status)
	assert.GreaterOrEqual(t, last.Confirmed, 0)
}

func TestHandleWaitUnblocksOnForcedConfirmation(t *testing.T) {
	e := newTestEngine(t)
	m, err := New(Config{
		MaxTransactionsPerBlock:         10,
		DefaultConfirmations:            0,
		ConfirmationProbabilityPerBlock: 0,
	}, e, prng.New(1), nil, nil, zaptest.NewLogger(t))
	require.NoError(t, err)

	h, err := m.Submit(context.Background(), SubmitTxRequest{
		Payload:  submitPayload("o1", "alice", clobtypes.SideBuy, 1, 100),
		GasPrice: big.NewInt(1),
	}, 1000)
	require.NoError(t, err)

	done := make(chan *Tx, 1)
	go func() {
		tx, _ := h.Wait(context.Background())
		done <- tx
	}()

	for i := 0; i < 6; i++ {
		_, err := m.Tick()
		require.NoError(t, err)
	}

	select {
	case tx := <-done:
		require.NotNil(t, tx)
		assert.Equal(t, StatusConfirmed, tx.Status)
	case <-time.After(time.Second):
		t.Fatal("handle.Wait did not unblock after forced confirmation")
	}
}

func TestReentrantTickReturnsErrMempoolAlreadyTicking(t *testing.T) {
	e := newTestEngine(t)
	m, err := New(Config{MaxTransactionsPerBlock: 10}, e, prng.New(1), nil, nil, zaptest.NewLogger(t))
	require.NoError(t, err)

	m.mu.Lock()
	m.ticking = true
	m.mu.Unlock()

	_, err = m.Tick()
	assert.Error(t, err)

	m.mu.Lock()
	m.ticking = false
	m.mu.Unlock()
}

func TestListReturnsNewestFirstAndRespectsLimit(t *testing.T) {
	e := newTestEngine(t)
	m, err := New(Config{MaxTransactionsPerBlock: 10}, e, prng.New(1), nil, nil, zaptest.NewLogger(t))
	require.NoError(t, err)

	for i, id := range []string{"a", "b", "c"} {
		_, err := m.Submit(context.Background(), SubmitTxRequest{
			Payload:  submitPayload(id, "alice", clobtypes.SideBuy, 1, 100),
			GasPrice: big.NewInt(1),
		}, int64(1000+i))
		require.NoError(t, err)
	}

	list := m.List(2)
	require.Len(t, list, 2)
	assert.Equal(t, clobtypes.Side(clobtypes.SideBuy), list[0].Payload.Submit.Side)
	assert.Equal(t, "c", list[0].Payload.Submit.ID)
	assert.Equal(t, "b", list[1].Payload.Submit.ID)
}

func TestGetUnknownTxReturnsError(t *testing.T) {
	e := newTestEngine(t)
	m, err := New(Config{}, e, prng.New(1), nil, nil, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = m.Get("does-not-exist")
	assert.Error(t, err)
}
