package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/Checker-Finance/zeroex-adapter/pkg/model"
)

// --- mock types ---

// mockJetStream captures published messages for assertions.
type mockJetStream struct {
	published []*nats.Msg
	fail      bool
}

func (m *mockJetStream) PublishMsg(msg *nats.Msg, opts ...nats.PubOpt) (*nats.PubAck, error) {
	if m.fail {
		return nil, errors.New("mock publish error")
	}
	m.published = append(m.published, msg)
	return &nats.PubAck{Stream: "mock-stream"}, nil
}

func newTestPublisher(js jetStreamPublisher) *Publisher {
	return &Publisher{
		js:      js,
		subject: "evt.swap",
		service: "ZEROEX_EVENTS",
	}
}

// --- PublishEnvelope tests ---

func TestPublishEnvelope_Success(t *testing.T) {
	js := &mockJetStream{}
	p := newTestPublisher(js)

	env := &model.Envelope{
		ID:            uuid.New(),
		CorrelationID: uuid.New(),
		IntegratorID:  "intg-01",
		EventType:     "swap.quote_created",
		Version:       "1.0.0",
		Timestamp:     time.Now().UTC(),
	}

	if err := p.PublishEnvelope(context.Background(), "evt.swap.quote_created.v1.ZEROEX", env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(js.published) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(js.published))
	}

	msg := js.published[0]
	if msg.Subject != "evt.swap.quote_created.v1.ZEROEX" {
		t.Errorf("unexpected subject: %s", msg.Subject)
	}
	if got := msg.Header.Get("event_type"); got != "swap.quote_created" {
		t.Errorf("unexpected event_type header: %s", got)
	}
	if got := msg.Header.Get("integrator_id"); got != "intg-01" {
		t.Errorf("unexpected integrator_id header: %s", got)
	}

	var decoded model.Envelope
	if err := json.Unmarshal(msg.Data, &decoded); err != nil {
		t.Fatalf("payload not valid JSON: %v", err)
	}
	if decoded.EventType != env.EventType {
		t.Errorf("round-trip event_type mismatch: %s", decoded.EventType)
	}
}

func TestPublishEnvelope_EmptySubjectUsesDefault(t *testing.T) {
	js := &mockJetStream{}
	p := newTestPublisher(js)

	env := &model.Envelope{ID: uuid.New(), CorrelationID: uuid.New(), EventType: "swap.quote_created"}
	if err := p.PublishEnvelope(context.Background(), "", env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if js.published[0].Subject != "evt.swap" {
		t.Errorf("expected default subject, got %s", js.published[0].Subject)
	}
}

func TestPublishEnvelope_PublishFailure(t *testing.T) {
	js := &mockJetStream{fail: true}
	p := newTestPublisher(js)

	env := &model.Envelope{ID: uuid.New(), CorrelationID: uuid.New(), EventType: "swap.quote_created"}
	if err := p.PublishEnvelope(context.Background(), "evt.swap", env); err == nil {
		t.Fatal("expected error from failing JetStream")
	}
}

// --- event helper tests ---

func TestPublishQuoteCreated(t *testing.T) {
	js := &mockJetStream{}
	p := newTestPublisher(js)

	quote := &model.SwapQuote{
		ID:           "qt-001",
		IntegratorID: "intg-01",
		ChainID:      1,
		SellToken:    "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		BuyToken:     "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		SellAmount:   "100000000",
		BuyAmount:    "40000000000000000",
		Venue:        "ZEROEX",
	}

	if err := p.PublishQuoteCreated(context.Background(), quote, "tenantA"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := js.published[0]
	if msg.Subject != "evt.swap.quote_created.v1.ZEROEX" {
		t.Errorf("unexpected subject: %s", msg.Subject)
	}

	var env model.Envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		t.Fatalf("envelope not valid JSON: %v", err)
	}
	if env.Context.SellAmount != "100000000" {
		t.Errorf("expected context sell_amount, got %s", env.Context.SellAmount)
	}

	var payload model.SwapQuote
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		t.Fatalf("payload not valid JSON: %v", err)
	}
	if payload.ID != "qt-001" {
		t.Errorf("unexpected payload quote id: %s", payload.ID)
	}
}

func TestPublishFeeAccrued(t *testing.T) {
	js := &mockJetStream{}
	p := newTestPublisher(js)

	ev := model.FeeAccruedEvent{
		IntegratorID: "intg-01",
		QuoteID:      "qt-001",
		Amount:       "1000000",
		Token:        "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		Bps:          100,
		Timestamp:    time.Now().UTC(),
	}

	if err := p.PublishFeeAccrued(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if js.published[0].Subject != "evt.fee.accrued.v1.ZEROEX" {
		t.Errorf("unexpected subject: %s", js.published[0].Subject)
	}
}

func TestPublishSurplusSettled(t *testing.T) {
	js := &mockJetStream{}
	p := newTestPublisher(js)

	ts := model.TradeSurplus{
		QuoteID:          "qt-001",
		IntegratorID:     "intg-01",
		Recipient:        "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
		QuotedBuyAmount:  "1000000",
		SettledBuyAmount: "1001500",
		SurplusAmount:    "1500",
		SettledAt:        time.Now().UTC(),
	}

	if err := p.PublishSurplusSettled(context.Background(), ts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if js.published[0].Subject != "evt.swap.surplus_settled.v1.ZEROEX" {
		t.Errorf("unexpected subject: %s", js.published[0].Subject)
	}
}

func TestPublish_RawPayload(t *testing.T) {
	js := &mockJetStream{}
	p := newTestPublisher(js)

	payload := map[string]any{"quote_id": "qt-001", "status": "SETTLED"}
	if err := p.Publish(context.Background(), "evt.swap.status.v1.ZEROEX", payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := js.published[0].Header.Get("source"); got != "ZEROEX_EVENTS" {
		t.Errorf("unexpected source header: %s", got)
	}
}
