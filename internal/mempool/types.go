// Package mempool implements the virtual mempool: a priority-ordered
// pending set that includes transactions at block boundaries and confirms
// them probabilistically after a minimum depth.
//
// Gas fields use math/big.Int so effective-gas arithmetic never narrows.
package mempool

import (
	"math/big"

	"github.com/abdoElHodaky/clobsim/internal/clobtypes"
)

// TxStatus is a virtual transaction's lifecycle state.
type TxStatus string

const (
	StatusPending   TxStatus = "pending"
	StatusIncluded  TxStatus = "included"
	StatusConfirmed TxStatus = "confirmed"
	StatusFailed    TxStatus = "failed"
)

// PayloadKind selects which engine operation a Tx's Payload carries.
type PayloadKind string

const (
	PayloadSubmitOrder PayloadKind = "submit_order"
	PayloadCancelOrder PayloadKind = "cancel_order"
)

// Payload is a virtual transaction's command body: either a submit_order
// or a cancel_order command.
type Payload struct {
	Kind   PayloadKind
	Submit *clobtypes.SubmitRequest
	Cancel *clobtypes.CancelRequest
}

// Tx is a virtual transaction.
type Tx struct {
	TxID    string
	Status  TxStatus
	Payload Payload

	SubmittedAtMs int64

	IncludedBlockNumber  *uint64
	ConfirmedBlockNumber *uint64

	GasPrice              *big.Int
	MaxPriorityFeePerGas  *big.Int
	RequiredConfirmations uint64

	Result interface{}
	Error  string
}

// EffectiveGas returns gas_price + max_priority_fee_per_gas, the mempool's
// inclusion-ordering key.
func (t *Tx) EffectiveGas() *big.Int {
	out := new(big.Int)
	if t.GasPrice != nil {
		out.Add(out, t.GasPrice)
	}
	if t.MaxPriorityFeePerGas != nil {
		out.Add(out, t.MaxPriorityFeePerGas)
	}
	return out
}

// clone returns an immutable copy safe to hand to callers.
func (t *Tx) clone() *Tx {
	cp := *t
	if t.GasPrice != nil {
		cp.GasPrice = new(big.Int).Set(t.GasPrice)
	}
	if t.MaxPriorityFeePerGas != nil {
		cp.MaxPriorityFeePerGas = new(big.Int).Set(t.MaxPriorityFeePerGas)
	}
	if t.IncludedBlockNumber != nil {
		v := *t.IncludedBlockNumber
		cp.IncludedBlockNumber = &v
	}
	if t.ConfirmedBlockNumber != nil {
		v := *t.ConfirmedBlockNumber
		cp.ConfirmedBlockNumber = &v
	}
	return &cp
}

// SubmitTxRequest is the mempool submit input contract.
type SubmitTxRequest struct {
	Payload               Payload
	GasPrice              *big.Int
	MaxPriorityFeePerGas  *big.Int
	Confirmations         *uint64
}

// TickSummary reports one Tick's outcome, useful for tests and logging.
type TickSummary struct {
	BlockNumber uint64
	Included    int
	Confirmed   int
	Failed      int
}
