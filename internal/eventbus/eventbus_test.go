package eventbus

import (
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

type samplePayload struct {
	Symbol string `json:"symbol"`
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	bus, err := New(zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer bus.Close()

	received := make(chan samplePayload, 1)
	sub, err := bus.Subscribe(TopicTrade, func(body []byte) {
		var p samplePayload
		if err := json.Unmarshal(body, &p); err != nil {
			t.Errorf("unmarshal: %v", err)
			return
		}
		received <- p
	})
	if err != nil {
		t.Fatalf("Subscribe() error: %v", err)
	}
	defer sub.Unsubscribe()

	bus.Publish(TopicTrade, samplePayload{Symbol: "BTC-USD"})

	select {
	case p := <-received:
		if p.Symbol != "BTC-USD" {
			t.Fatalf("received Symbol = %q, want BTC-USD", p.Symbol)
		}
	case <-time.After(time.Second):
		t.Fatal("did not receive published message in time")
	}
}
