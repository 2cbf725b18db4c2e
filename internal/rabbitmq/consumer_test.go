package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Checker-Finance/zeroex-adapter/internal/fee"
	"github.com/Checker-Finance/zeroex-adapter/internal/zeroex"
	"github.com/Checker-Finance/zeroex-adapter/pkg/model"
)

type ackRecord struct {
	acked   bool
	nacked  bool
	requeue bool
}

type fakeAcknowledger struct {
	records chan ackRecord
}

func (f *fakeAcknowledger) Ack(_ uint64, _ bool) error {
	f.records <- ackRecord{acked: true}
	return nil
}

func (f *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	f.records <- ackRecord{nacked: true, requeue: requeue}
	return nil
}

func (f *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	f.records <- ackRecord{nacked: true, requeue: requeue}
	return nil
}

type fakeSwapService struct {
	quoteErr      error
	settlementErr error
}

func (f *fakeSwapService) CreateQuote(_ context.Context, _ model.SwapQuoteRequest) (*model.SwapQuote, error) {
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	return &model.SwapQuote{}, nil
}

func (f *fakeSwapService) HandleSettlement(_ context.Context, _ model.SettlementReport) (*model.TradeSurplus, error) {
	if f.settlementErr != nil {
		return nil, f.settlementErr
	}
	return &model.TradeSurplus{}, nil
}

// deliverSettlement runs the settlement consumer over a single message and
// returns how it was acknowledged.
func deliverSettlement(t *testing.T, svc SwapService, body []byte) ackRecord {
	t.Helper()

	c := &Consumer{swapService: svc, logger: zap.NewNop(), done: make(chan struct{})}
	ack := &fakeAcknowledger{records: make(chan ackRecord, 1)}

	msgs := make(chan amqp.Delivery, 1)
	msgs <- amqp.Delivery{Acknowledger: ack, Body: body}
	close(msgs)

	done := make(chan struct{})
	go func() {
		c.consumeSettlements(context.Background(), msgs)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not drain the channel")
	}
	return <-ack.records
}

func settlementBody(t *testing.T) []byte {
	t.Helper()
	b, err := json.Marshal(model.SettlementReport{
		QuoteID:          "qt-001",
		TxHash:           "0xdeadbeef",
		SettledBuyAmount: "40000000000001500",
		SettledAt:        time.Now().UTC(),
	})
	require.NoError(t, err)
	return b
}

func TestConsumeSettlements_SuccessAcks(t *testing.T) {
	rec := deliverSettlement(t, &fakeSwapService{}, settlementBody(t))
	assert.True(t, rec.acked)
}

func TestConsumeSettlements_UnknownQuoteNotRequeued(t *testing.T) {
	svc := &fakeSwapService{
		settlementErr: fmt.Errorf("settle qt-001: %w", zeroex.ErrQuoteNotFound),
	}
	rec := deliverSettlement(t, svc, settlementBody(t))
	assert.True(t, rec.nacked)
	assert.False(t, rec.requeue, "unknown quote never succeeds on redelivery")
}

func TestConsumeSettlements_InvalidAmountNotRequeued(t *testing.T) {
	svc := &fakeSwapService{
		settlementErr: fmt.Errorf("settled amount: %w", fee.ErrInvalidParameter),
	}
	rec := deliverSettlement(t, svc, settlementBody(t))
	assert.True(t, rec.nacked)
	assert.False(t, rec.requeue)
}

func TestConsumeSettlements_TransientFailureRequeued(t *testing.T) {
	svc := &fakeSwapService{settlementErr: errors.New("pg down")}
	rec := deliverSettlement(t, svc, settlementBody(t))
	assert.True(t, rec.nacked)
	assert.True(t, rec.requeue)
}

func TestConsumeSettlements_MalformedBodyNotRequeued(t *testing.T) {
	rec := deliverSettlement(t, &fakeSwapService{}, []byte(`{not-json`))
	assert.True(t, rec.nacked)
	assert.False(t, rec.requeue)
}
