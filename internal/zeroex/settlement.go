package zeroex

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/zeroex-adapter/internal/fee"
	"github.com/Checker-Finance/zeroex-adapter/internal/metrics"
	"github.com/Checker-Finance/zeroex-adapter/pkg/model"
)

// ErrQuoteNotFound is returned when a settlement report references a quote
// the adapter never served or that has already aged out of storage.
var ErrQuoteNotFound = fmt.Errorf("quote not found")

// HandleSettlement reconciles an on-chain fill against the quote the adapter
// served: it computes the realized surplus, records the surplus event,
// finalizes fee attribution, and publishes canonical settlement events.
func (s *Service) HandleSettlement(ctx context.Context, report model.SettlementReport) (*model.TradeSurplus, error) {
	s.logger.Info("zeroex.settlement.start",
		zap.String("quote_id", report.QuoteID),
		zap.String("tx_hash", report.TxHash),
		zap.String("settled_buy_amount", report.SettledBuyAmount),
	)

	rec, err := s.store.GetQuoteRecord(ctx, report.QuoteID)
	if err != nil {
		s.logger.Error("zeroex.settlement.lookup_failed",
			zap.String("quote_id", report.QuoteID),
			zap.Error(err))
		return nil, fmt.Errorf("quote lookup for %q: %w", report.QuoteID, err)
	}
	if rec == nil {
		metrics.IncError("settlement", "quote_not_found")
		return nil, fmt.Errorf("%w: %s", ErrQuoteNotFound, report.QuoteID)
	}

	quoted, err := fee.ParseAmount(rec.BuyAmount)
	if err != nil {
		return nil, fmt.Errorf("quoted buy amount for %q: %w", report.QuoteID, err)
	}
	settled, err := fee.ParseAmount(report.SettledBuyAmount)
	if err != nil {
		return nil, fmt.Errorf("settled buy amount for %q: %w", report.QuoteID, err)
	}

	settledAt := report.SettledAt
	if settledAt.IsZero() {
		settledAt = time.Now().UTC()
	}

	surplus := model.TradeSurplus{
		QuoteID:          rec.QuoteID,
		IntegratorID:     rec.IntegratorID,
		Recipient:        rec.SurplusRecipient,
		QuotedBuyAmount:  rec.BuyAmount,
		SettledBuyAmount: report.SettledBuyAmount,
		SurplusAmount:    fee.RealizedSurplus(quoted, settled).String(),
		Token:            rec.BuyToken,
		TxHash:           report.TxHash,
		SettledAt:        settledAt,
	}

	if err := s.store.RecordSurplusEvent(ctx, surplus); err != nil {
		s.logger.Warn("zeroex.settlement.surplus_record_failed",
			zap.String("quote_id", rec.QuoteID),
			zap.Error(err))
		metrics.IncError("settlement", "surplus_record_failed")
	}

	if err := s.store.MarkQuoteStatus(ctx, rec.QuoteID, "SETTLED"); err != nil {
		s.logger.Warn("zeroex.settlement.status_update_failed",
			zap.String("quote_id", rec.QuoteID),
			zap.Error(err))
	}

	if s.feeWriter != nil {
		if err := s.feeWriter.SyncFeeUpsert(ctx, rec, &surplus, "SETTLED"); err != nil {
			metrics.IncError("settlement", "fee_attribution_failed")
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishSurplusSettled(ctx, surplus); err != nil {
			s.logger.Warn("zeroex.settlement.publish_failed",
				zap.String("quote_id", rec.QuoteID),
				zap.Error(err))
		}
	}

	metrics.SetLastSettlement("zeroex", settledAt)

	s.logger.Info("zeroex.settlement.complete",
		zap.String("quote_id", rec.QuoteID),
		zap.String("integrator", rec.IntegratorID),
		zap.String("surplus_amount", surplus.SurplusAmount),
		zap.String("recipient", surplus.Recipient),
	)

	return &surplus, nil
}
