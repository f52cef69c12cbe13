// Package collaborators declares the contract boundaries for systems this
// simulator's core does not implement itself. Each interface here names a
// seam a host application wires in: a durable event sink, a metrics
// backend, a snapshot store, a config source, or a translator from
// simulated actions to a different execution venue. No core package
// imports a concrete implementation of any of these or holds one of these
// interfaces; they are declared here for a host application to implement.
package collaborators

import (
	"context"

	"github.com/abdoElHodaky/clobsim/internal/clobtypes"
)

// EventSink receives simulator events for durable delivery beyond the
// in-process eventbus. A durable implementation is out of scope for the
// core itself.
type EventSink interface {
	OnTrade(ctx context.Context, symbol string, trade *clobtypes.Trade) error
	OnOrderEvent(ctx context.Context, symbol string, event *clobtypes.OrderEvent) error
}

// MetricsSink receives operational counters and timings. The engine's own
// EngineStats is the in-process source of truth; a MetricsSink forwards
// that data to an external time-series backend.
type MetricsSink interface {
	ObserveLatencyUs(v float64)
	IncCounter(name string, delta uint64)
}

// SnapshotWriter persists periodic BookSnapshot captures somewhere durable,
// such as a file, object store, or database row, outside the in-memory
// ring buffers the core keeps.
type SnapshotWriter interface {
	WriteSnapshot(ctx context.Context, symbol string, snap *clobtypes.BookSnapshot) error
}

// ConfigSource supplies book and mempool configuration from outside the
// process (file, environment, remote config service). internal/config's
// viper loader (config.Load) fills this role for cmd/simulator but does not
// implement this interface; cmd/simulator calls config.Load directly.
type ConfigSource interface {
	Load(ctx context.Context, into interface{}) error
}

// ActionTranslator maps a simulated SubmitResult or CancelResult onto
// actions against a different execution venue: a real exchange API, a
// second simulator instance, a paper-trading account. The core always
// executes against its own in-memory book; translating its outcomes
// elsewhere is out of scope for the simulator itself.
type ActionTranslator interface {
	TranslateSubmit(ctx context.Context, result *clobtypes.SubmitResult) error
	TranslateCancel(ctx context.Context, result *clobtypes.CancelResult) error
}
