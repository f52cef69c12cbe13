package matching

import "github.com/abdoElHodaky/clobsim/internal/clobtypes"

// commandKind tags a persisted command envelope so replay knows how to
// dispatch it.
type commandKind string

const (
	kindSubmitOrder commandKind = "submit_order"
	kindCancelOrder commandKind = "cancel_order"
)

// commandEnvelope is what gets JSON-encoded into the command log's payload
// field. Exactly one of Submit/Cancel is set, selected by Kind.
type commandEnvelope struct {
	Kind   commandKind              `json:"kind"`
	NowMs  int64                    `json:"now_ms"`
	Submit *clobtypes.SubmitRequest `json:"submit,omitempty"`
	Cancel *clobtypes.CancelRequest `json:"cancel,omitempty"`
}

// orderbookEventPayload is the "orderbook" fan-out event's payload shape.
type orderbookEventPayload struct {
	Symbol   string                  `json:"symbol"`
	Snapshot *clobtypes.BookSnapshot `json:"snapshot"`
}
