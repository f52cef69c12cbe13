// Package netshim implements the optional latency/jitter/drop stage in
// front of submission paths. Drop sampling and jitter draws come from a
// derived prng.Stream so repeated runs with the same seed reproduce the
// same delivered/dropped sequence.
//
// Two knobs go beyond plain latency/jitter/drop: a github.com/sony/gobreaker
// circuit breaker wraps the inner action invocation, so sustained action
// failures (not just sampled drops) trip `service_unavailable` faster than
// waiting for the next independent drop sample, and a golang.org/x/time/rate
// token bucket throttles invocations to MaxInFlight per second with a burst
// of MaxInFlight. The limiter bounds the rate of invocations; it does not
// bound how many actions are in flight at the same moment.
package netshim

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/abdoElHodaky/clobsim/internal/prng"
)

// Config holds the shim's three spec-named knobs plus the breaker/limiter
// enrichment parameters.
type Config struct {
	BaseLatencyMs    float64       `mapstructure:"base_latency_ms"`
	JitterMs         float64       `mapstructure:"jitter_ms"`
	PacketLossRate   float64       `mapstructure:"packet_loss_rate"`
	MaxInFlight      int           `mapstructure:"max_in_flight"` // rate.Limiter rate per second and burst; 0 disables throttling
	BreakerThreshold uint32        `mapstructure:"breaker_threshold"` // consecutive failures before the breaker opens
	BreakerCooldown  time.Duration `mapstructure:"breaker_cooldown"`
}

// Result is the shim's per-invocation outcome.
type Result struct {
	Delivered bool
	LatencyMs float64
	Result    interface{}
}

// Sleeper abstracts the shim's simulated-latency suspension point so tests
// can substitute an instant no-op instead of a real wall-clock sleep.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration)
}

type realSleeper struct{}

func (realSleeper) Sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// Shim is the latency/jitter/drop stage.
type Shim struct {
	cfg     Config
	rng     *prng.Stream
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	sleeper Sleeper
	logger  *zap.Logger
}

// New constructs a Shim. rng must be derived independently from any other
// component's stream, so drop/jitter sampling here never correlates with
// draws elsewhere in the simulator.
func New(cfg Config, rng *prng.Stream, logger *zap.Logger) *Shim {
	if logger == nil {
		logger = zap.NewNop()
	}
	var limiter *rate.Limiter
	if cfg.MaxInFlight > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.MaxInFlight), cfg.MaxInFlight)
	}
	threshold := cfg.BreakerThreshold
	if threshold == 0 {
		threshold = 5
	}
	cooldown := cfg.BreakerCooldown
	if cooldown == 0 {
		cooldown = time.Second
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "netshim",
		Timeout: cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	})
	return &Shim{cfg: cfg, rng: rng, limiter: limiter, breaker: breaker, sleeper: realSleeper{}, logger: logger}
}

// SetSleeper overrides the simulated-latency sleep mechanism, for tests.
func (s *Shim) SetSleeper(sl Sleeper) { s.sleeper = sl }

// Invoke samples a drop, optionally sleeps a jittered latency, and calls
// action. A dropped invocation never calls action at all.
func (s *Shim) Invoke(ctx context.Context, action func(ctx context.Context) (interface{}, error)) *Result {
	if s.rng.Bool(s.cfg.PacketLossRate) {
		s.logger.Debug("netshim: dropped")
		return &Result{Delivered: false}
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return &Result{Delivered: false}
		}
	}

	latency := s.cfg.BaseLatencyMs + s.rng.Range(-s.cfg.JitterMs, s.cfg.JitterMs)
	if latency < 0 {
		latency = 0
	}
	s.sleeper.Sleep(ctx, time.Duration(latency*float64(time.Millisecond)))

	out, err := s.breaker.Execute(func() (interface{}, error) {
		return action(ctx)
	})
	if err != nil {
		s.logger.Warn("netshim: action failed", zap.Error(err))
		return &Result{Delivered: false, LatencyMs: latency}
	}
	return &Result{Delivered: true, LatencyMs: latency, Result: out}
}
