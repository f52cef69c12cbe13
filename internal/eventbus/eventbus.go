// Package eventbus wraps a go-micro broker.Broker as the simulator's
// event fan-out. It keeps the default in-process broker rather than a
// pluggable nats/kafka switch, since the core has no external
// message-bus requirement.
package eventbus

import (
	"encoding/json"

	gobroker "go-micro.dev/v4/broker"
	"go.uber.org/zap"
)

// Topic names the engine and mempool publish on.
const (
	TopicTrade        = "trade"
	TopicOrderBook    = "orderbook"
	TopicOrderResult  = "order_result"
	TopicCancelResult = "cancel_result"
	TopicTxUpdate     = "tx_update"
)

// Bus is a thin, typed-publish wrapper around a broker.Broker. Order per
// symbol is guaranteed by the caller, since the matching engine serializes
// all mutation; Bus itself does not reorder.
type Bus struct {
	broker gobroker.Broker
	logger *zap.Logger
}

// New connects a default in-process broker and returns a Bus. Callers
// should defer Close to disconnect cleanly.
func New(logger *zap.Logger) (*Bus, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := gobroker.NewBroker()
	if err := b.Connect(); err != nil {
		return nil, err
	}
	logger.Info("event bus connected", zap.String("broker", b.String()))
	return &Bus{broker: b, logger: logger}, nil
}

// Close disconnects the underlying broker.
func (e *Bus) Close() error {
	return e.broker.Disconnect()
}

// Publish marshals payload as JSON and publishes it on topic. A marshal or
// transport failure is logged and swallowed; fan-out is best-effort and
// must never block or fail a submission.
func (e *Bus) Publish(topic string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		e.logger.Error("event payload marshal failed", zap.String("topic", topic), zap.Error(err))
		return
	}
	msg := &gobroker.Message{Body: body}
	if err := e.broker.Publish(topic, msg); err != nil {
		e.logger.Warn("event publish failed", zap.String("topic", topic), zap.Error(err))
	}
}

// Subscribe registers handler on topic; handler receives the raw JSON body
// and is responsible for unmarshaling into the type it expects.
func (e *Bus) Subscribe(topic string, handler func(body []byte)) (gobroker.Subscriber, error) {
	return e.broker.Subscribe(topic, func(ev gobroker.Event) error {
		handler(ev.Message().Body)
		return nil
	})
}
