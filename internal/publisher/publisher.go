package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/Checker-Finance/zeroex-adapter/internal/metrics"
	"github.com/Checker-Finance/zeroex-adapter/pkg/logger"
	"github.com/Checker-Finance/zeroex-adapter/pkg/model"
)

// jetStreamPublisher is the slice of nats.JetStreamContext the publisher
// actually uses. Narrowed so tests can inject a fake.
type jetStreamPublisher interface {
	PublishMsg(msg *nats.Msg, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// Publisher wraps a NATS connection and provides helpers for publishing canonical events.
type Publisher struct {
	nc      *nats.Conn
	js      jetStreamPublisher
	subject string
	service string
}

// New creates a new Publisher with JetStream enabled if available.
func New(nc *nats.Conn, subject, service string) (*Publisher, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, err
	}
	return &Publisher{
		nc:      nc,
		js:      js,
		subject: subject,
		service: service,
	}, nil
}

// PublishEnvelope serializes and publishes a canonical event envelope to NATS.
func (p *Publisher) PublishEnvelope(ctx context.Context, subject string, env *model.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		logger.S().Errorw("publisher.marshal_failed",
			"subject", subject,
			"event_type", env.EventType,
			"error", err,
		)
		metrics.IncError("publisher", "marshal_failed")
		return err
	}

	if subject == "" {
		subject = p.subject
	}

	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"event_type":     []string{env.EventType},
			"correlation_id": []string{env.CorrelationID.String()},
			"service":        []string{p.service},
			"content_type":   []string{"application/json"},
			"tenant_id":      []string{env.TenantID},
			"integrator_id":  []string{env.IntegratorID},
		},
	}

	start := time.Now()
	_, err = p.js.PublishMsg(msg)
	metrics.ObserveDuration(metrics.NATSMessageLatency, start, subject)

	if err != nil {
		logger.S().Errorw("publisher.publish_failed",
			"subject", subject,
			"event_type", env.EventType,
			"integrator_id", env.IntegratorID,
			"error", err,
		)
		metrics.IncNATSMessage(subject, "error")
		return err
	}

	logger.S().Infow("publisher.publish_success",
		"subject", subject,
		"event_type", env.EventType,
		"integrator_id", env.IntegratorID,
	)

	metrics.IncNATSMessage(subject, "ok")
	return nil
}

// PublishQuoteCreated emits canonical swap.quote_created events.
func (p *Publisher) PublishQuoteCreated(ctx context.Context, quote *model.SwapQuote, tenantID string) error {
	env := &model.Envelope{
		ID:            uuid.New(),
		CorrelationID: uuid.New(),
		TenantID:      tenantID,
		IntegratorID:  quote.IntegratorID,
		Topic:         "evt.swap.quote_created.v1",
		EventType:     "swap.quote_created",
		Version:       "1.0.0",
		Timestamp:     time.Now().UTC(),
		Context: model.Context{
			ChainID:    quote.ChainID,
			SellToken:  quote.SellToken,
			BuyToken:   quote.BuyToken,
			SellAmount: quote.SellAmount,
		},
	}

	data, _ := json.Marshal(quote)
	env.Payload = data

	return p.PublishEnvelope(ctx, "evt.swap.quote_created.v1.ZEROEX", env)
}

// PublishFeeAccrued emits canonical fee.accrued events for quotes that carry
// an integrator fee.
func (p *Publisher) PublishFeeAccrued(ctx context.Context, ev model.FeeAccruedEvent) error {
	env := &model.Envelope{
		ID:            uuid.New(),
		CorrelationID: uuid.New(),
		IntegratorID:  ev.IntegratorID,
		Topic:         "evt.fee.accrued.v1",
		EventType:     "fee.accrued",
		Version:       "1.0.0",
		Timestamp:     time.Now().UTC(),
	}

	data, _ := json.Marshal(ev)
	env.Payload = data

	return p.PublishEnvelope(ctx, "evt.fee.accrued.v1.ZEROEX", env)
}

// PublishSurplusSettled emits canonical swap.surplus_settled events.
func (p *Publisher) PublishSurplusSettled(ctx context.Context, surplus model.TradeSurplus) error {
	env := &model.Envelope{
		ID:            uuid.New(),
		CorrelationID: uuid.New(),
		IntegratorID:  surplus.IntegratorID,
		Topic:         "evt.swap.surplus_settled.v1",
		EventType:     "swap.surplus_settled",
		Version:       "1.0.0",
		Timestamp:     time.Now().UTC(),
	}

	data, _ := json.Marshal(surplus)
	env.Payload = data

	return p.PublishEnvelope(ctx, "evt.swap.surplus_settled.v1.ZEROEX", env)
}

// Publish publishes raw JSON payloads (for non-canonical internal events).
func (p *Publisher) Publish(ctx context.Context, subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		metrics.IncError("publisher", "marshal_failed")
		return err
	}

	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header:  nats.Header{"source": []string{p.service}},
	}

	start := time.Now()
	_, err = p.js.PublishMsg(msg)
	metrics.ObserveDuration(metrics.NATSMessageLatency, start, subject)

	if err != nil {
		metrics.IncNATSMessage(subject, "error")
		return err
	}

	metrics.IncNATSMessage(subject, "ok")
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil && p.nc.IsConnected() {
		p.nc.Close()
	}
}
