package ledger

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Checker-Finance/zeroex-adapter/pkg/model"
)

// FeeSyncWriter writes per-quote fee attribution into ledger.fee_attribution.
// Rows are keyed by quote ID; a settlement upsert moves the row from QUOTED
// to SETTLED and fills in the realized surplus.
type FeeSyncWriter struct {
	db     *pgxpool.Pool
	logger *zap.Logger
	source string
}

// NewFeeSyncWriter constructs a writer for the fee attribution ledger.
// source identifies the service writing the record (e.g. "zeroex-adapter").
func NewFeeSyncWriter(db *pgxpool.Pool, logger *zap.Logger, source string) *FeeSyncWriter {
	return &FeeSyncWriter{
		db:     db,
		logger: logger,
		source: source,
	}
}

// SyncFeeUpsert inserts or updates the attribution row for a served quote.
// surplus may be nil before settlement.
func (w *FeeSyncWriter) SyncFeeUpsert(ctx context.Context, rec *model.QuoteRecord, surplus *model.TradeSurplus, status string) error {
	if w.db == nil || rec == nil {
		return nil
	}

	var (
		surplusAmount  any
		surplusToken   any
		surplusTo      any
		settledAt      any
	)
	if surplus != nil {
		surplusAmount = surplus.SurplusAmount
		surplusToken = surplus.Token
		surplusTo = surplus.Recipient
		settledAt = surplus.SettledAt
	}

	const query = `
		INSERT INTO ledger.fee_attribution (
			s_id_quote,
			s_id_integrator,
			n_chain_id,
			dec_fee_amount,
			s_fee_token,
			n_fee_bps,
			s_fee_recipient,
			dec_surplus_amount,
			s_surplus_token,
			s_surplus_recipient,
			s_status,
			s_source,
			dt_settled,
			dt_updated
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (s_id_quote)
		DO UPDATE SET
			s_status = EXCLUDED.s_status,
			dec_surplus_amount = EXCLUDED.dec_surplus_amount,
			s_surplus_token = EXCLUDED.s_surplus_token,
			s_surplus_recipient = EXCLUDED.s_surplus_recipient,
			dt_settled = EXCLUDED.dt_settled,
			dt_updated = EXCLUDED.dt_updated;
	`

	_, err := w.db.Exec(ctx, query,
		rec.QuoteID,
		rec.IntegratorID,
		rec.ChainID,
		rec.FeeAmount,
		rec.FeeToken,
		rec.FeeBps,
		rec.FeeRecipient,
		surplusAmount,
		surplusToken,
		surplusTo,
		status,
		w.source,
		settledAt,
		time.Now().UTC(),
	)
	if err != nil {
		w.logger.Error("ledger.fee_sync_failed",
			zap.String("quote_id", rec.QuoteID),
			zap.String("integrator", rec.IntegratorID),
			zap.Error(err),
		)
		return err
	}

	w.logger.Info("ledger.fee_sync_upsert",
		zap.String("quote_id", rec.QuoteID),
		zap.String("integrator", rec.IntegratorID),
		zap.String("status", status),
	)

	return nil
}
