package jobs

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/Checker-Finance/zeroex-adapter/internal/publisher"
)

// RevenueRefresher periodically triggers the Postgres fee revenue summary
// refresh and emits a NATS event indicating recalculation completion. The
// summary aggregates accrued affiliate fees and routed surplus per integrator.
type RevenueRefresher struct {
	logger    *zap.Logger
	nc        *nats.Conn
	db        DBExecutor // small interface wrapper over pgxpool.Pool
	publisher *publisher.Publisher
	interval  time.Duration
	stopCh    chan struct{}
}

// DBExecutor defines minimal subset of pgxpool.Pool needed for execution.
type DBExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// NewRevenueRefresher constructs a background job that runs periodically.
func NewRevenueRefresher(logger *zap.Logger, nc *nats.Conn, db DBExecutor, pub *publisher.Publisher, interval time.Duration) *RevenueRefresher {
	return &RevenueRefresher{
		logger:    logger,
		nc:        nc,
		db:        db,
		publisher: pub,
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

// Start runs the revenue refresh loop (typically every 24 h).
func (r *RevenueRefresher) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("revenue_refresher.started", zap.Duration("interval", r.interval))

	for {
		select {
		case <-ticker.C:
			r.runOnce(ctx)
		case <-r.stopCh:
			r.logger.Info("revenue_refresher.stopped (manual stop)")
			return
		case <-ctx.Done():
			r.logger.Info("revenue_refresher.stopped (context canceled)")
			return
		}
	}
}

// Stop gracefully halts the refresher.
func (r *RevenueRefresher) Stop() {
	close(r.stopCh)
}

// runOnce executes one refresh cycle.
func (r *RevenueRefresher) runOnce(ctx context.Context) {
	start := time.Now()
	r.logger.Info("revenue_refresher.running")

	_, err := r.db.Exec(ctx, `SELECT ledger.fn_refresh_fee_revenue_summary()`)
	if err != nil {
		r.logger.Error("revenue_refresher.refresh_failed", zap.Error(err))
		return
	}

	// Emit event for downstream analytics systems
	event := map[string]any{
		"event":       "evt.fee.summary.refreshed.v1",
		"timestamp":   time.Now().UTC(),
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err := r.publisher.Publish(ctx, "evt.fee.summary.refreshed.v1", event); err != nil {
		r.logger.Warn("revenue_refresher.nats_publish_failed", zap.Error(err))
	}

	r.logger.Info("revenue_refresher.success",
		zap.Duration("duration", time.Since(start)))
}
