package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Checker-Finance/zeroex-adapter/pkg/model"
)

// Store defines the contract for caching and persisting fee plans, quote
// records, and realized-surplus events.
type Store interface {
	GetFeePlan(ctx context.Context, integratorID string) (*model.FeePlan, error)
	UpsertFeePlan(ctx context.Context, plan model.FeePlan) error
	InsertQuoteRecord(ctx context.Context, rec model.QuoteRecord) error
	GetQuoteRecord(ctx context.Context, quoteID string) (*model.QuoteRecord, error)
	MarkQuoteStatus(ctx context.Context, quoteID, status string) error
	RecordSurplusEvent(ctx context.Context, surplus model.TradeSurplus) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) error
	HealthCheck(ctx context.Context) error
	Close() error
}

type HybridStore struct {
	redis    *redis.Client
	PG       *pgxpool.Pool
	logger   *zap.Logger
	planTTL  time.Duration
	quoteTTL time.Duration
}

type PGPoolConfig struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// NewHybrid creates a Redis-first, Postgres-backed store. planTTL bounds how
// long a cached fee plan may serve before the Postgres row is re-read.
func NewHybrid(redisAddr, redisPass string, redisDB int, pgURL string, pgPoolConfig PGPoolConfig, planTTL time.Duration, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if planTTL <= 0 {
		planTTL = 5 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPass,
		DB:       redisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	var pgPool *pgxpool.Pool
	if pgURL != "" {
		cfg, err := pgxpool.ParseConfig(pgURL)
		if err != nil {
			return nil, fmt.Errorf("invalid pg config: %w", err)
		}
		if pgPoolConfig.MaxConns > 0 {
			cfg.MaxConns = pgPoolConfig.MaxConns
		}
		if pgPoolConfig.MinConns > 0 {
			cfg.MinConns = pgPoolConfig.MinConns
		}
		if pgPoolConfig.MaxConnLifetime > 0 {
			cfg.MaxConnLifetime = pgPoolConfig.MaxConnLifetime
		}
		if pgPoolConfig.MaxConnIdleTime > 0 {
			cfg.MaxConnIdleTime = pgPoolConfig.MaxConnIdleTime
		}
		if pgPoolConfig.HealthCheckPeriod > 0 {
			cfg.HealthCheckPeriod = pgPoolConfig.HealthCheckPeriod
		}
		pgPool, err = pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
	}

	return &HybridStore{
		redis:    rdb,
		PG:       pgPool,
		logger:   logger,
		planTTL:  planTTL,
		quoteTTL: 24 * time.Hour,
	}, nil
}

func feePlanKey(integratorID string) string { return "feeplan:" + integratorID }
func quoteKey(quoteID string) string        { return "swapquote:" + quoteID }

// GetFeePlan returns the stored monetization plan for an integrator, or nil
// when none is configured (callers apply the default policy).
func (s *HybridStore) GetFeePlan(ctx context.Context, integratorID string) (*model.FeePlan, error) {
	var plan model.FeePlan
	err := s.GetJSON(ctx, feePlanKey(integratorID), &plan)
	if err == nil {
		return &plan, nil
	}
	if !errors.Is(err, redis.Nil) {
		s.logger.Warn("store.redis.feeplan_read_failed",
			zap.String("integrator", integratorID),
			zap.Error(err))
	}

	if s.PG == nil {
		return nil, nil
	}
	row := s.PG.QueryRow(ctx, `
		SELECT integrator_id, max_fee_bps, custom_cap, surplus_routing, updated_at
		FROM reference.integrator_fee_plan
		WHERE integrator_id = $1;
	`, integratorID)

	if err := row.Scan(&plan.IntegratorID, &plan.MaxFeeBps, &plan.CustomCap, &plan.SurplusRouting, &plan.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("GetFeePlan scan failed: %w", err)
	}

	if err := s.SetJSON(ctx, feePlanKey(integratorID), plan, s.planTTL); err != nil {
		s.logger.Warn("store.redis.feeplan_cache_failed", zap.Error(err))
	}
	return &plan, nil
}

// UpsertFeePlan writes the plan to Postgres and busts the Redis projection.
func (s *HybridStore) UpsertFeePlan(ctx context.Context, plan model.FeePlan) error {
	if s.PG == nil {
		return s.SetJSON(ctx, feePlanKey(plan.IntegratorID), plan, s.planTTL)
	}
	_, err := s.PG.Exec(ctx, `
		INSERT INTO reference.integrator_fee_plan (
			integrator_id, max_fee_bps, custom_cap, surplus_routing, updated_at
		)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (integrator_id)
		DO UPDATE SET
			max_fee_bps = EXCLUDED.max_fee_bps,
			custom_cap = EXCLUDED.custom_cap,
			surplus_routing = EXCLUDED.surplus_routing,
			updated_at = EXCLUDED.updated_at;
	`, plan.IntegratorID, plan.MaxFeeBps, plan.CustomCap, plan.SurplusRouting)
	if err != nil {
		s.logger.Error("store.pg.upsert_feeplan_failed", zap.Error(err))
		return err
	}
	return s.redis.Del(ctx, feePlanKey(plan.IntegratorID)).Err()
}

// InsertQuoteRecord persists a served quote and caches it for settlement
// reconciliation.
func (s *HybridStore) InsertQuoteRecord(ctx context.Context, rec model.QuoteRecord) error {
	if err := s.SetJSON(ctx, quoteKey(rec.QuoteID), rec, s.quoteTTL); err != nil {
		s.logger.Warn("store.redis.quote_cache_failed",
			zap.String("quote_id", rec.QuoteID),
			zap.Error(err))
	}

	if s.PG == nil {
		return nil
	}
	_, err := s.PG.Exec(ctx, `
		INSERT INTO activity.t_swap_quote (
			s_id_quote, s_id_integrator, n_chain_id,
			s_sell_token, s_buy_token, dec_sell_amount, dec_buy_amount,
			dec_fee_amount, s_fee_token, n_fee_bps, s_fee_recipient,
			s_surplus_recipient, s_taker, s_status, dt_created
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, rec.QuoteID, rec.IntegratorID, rec.ChainID,
		rec.SellToken, rec.BuyToken, rec.SellAmount, rec.BuyAmount,
		nullIfEmpty(rec.FeeAmount), nullIfEmpty(rec.FeeToken), rec.FeeBps, nullIfEmpty(rec.FeeRecipient),
		rec.SurplusRecipient, rec.Taker, rec.Status, rec.CreatedAt)
	if err != nil {
		s.logger.Error("store.pg.insert_quote_failed",
			zap.String("quote_id", rec.QuoteID),
			zap.Error(err))
	}
	return err
}

// GetQuoteRecord looks up a served quote, Redis-first.
func (s *HybridStore) GetQuoteRecord(ctx context.Context, quoteID string) (*model.QuoteRecord, error) {
	var rec model.QuoteRecord
	err := s.GetJSON(ctx, quoteKey(quoteID), &rec)
	if err == nil {
		return &rec, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, err
	}

	if s.PG == nil {
		return nil, nil
	}
	row := s.PG.QueryRow(ctx, `
		SELECT s_id_quote, s_id_integrator, n_chain_id,
		       s_sell_token, s_buy_token, dec_sell_amount, dec_buy_amount,
		       COALESCE(dec_fee_amount, ''), COALESCE(s_fee_token, ''), n_fee_bps, COALESCE(s_fee_recipient, ''),
		       s_surplus_recipient, s_taker, s_status, dt_created
		FROM activity.t_swap_quote
		WHERE s_id_quote = $1
		LIMIT 1;
	`, quoteID)
	if err := row.Scan(&rec.QuoteID, &rec.IntegratorID, &rec.ChainID,
		&rec.SellToken, &rec.BuyToken, &rec.SellAmount, &rec.BuyAmount,
		&rec.FeeAmount, &rec.FeeToken, &rec.FeeBps, &rec.FeeRecipient,
		&rec.SurplusRecipient, &rec.Taker, &rec.Status, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("GetQuoteRecord scan failed: %w", err)
	}
	return &rec, nil
}

// MarkQuoteStatus updates a quote's lifecycle status in both tiers.
func (s *HybridStore) MarkQuoteStatus(ctx context.Context, quoteID, status string) error {
	var rec model.QuoteRecord
	if err := s.GetJSON(ctx, quoteKey(quoteID), &rec); err == nil {
		rec.Status = status
		if err := s.SetJSON(ctx, quoteKey(quoteID), rec, s.quoteTTL); err != nil {
			s.logger.Warn("store.redis.quote_status_failed", zap.Error(err))
		}
	}

	if s.PG == nil {
		return nil
	}
	_, err := s.PG.Exec(ctx, `
		UPDATE activity.t_swap_quote
		SET s_status = $2
		WHERE s_id_quote = $1;
	`, quoteID, status)
	if err != nil {
		s.logger.Error("store.pg.quote_status_failed",
			zap.String("quote_id", quoteID),
			zap.Error(err))
	}
	return err
}

// RecordSurplusEvent inserts an immutable realized-surplus row into
// ledger.surplus_event.
func (s *HybridStore) RecordSurplusEvent(ctx context.Context, surplus model.TradeSurplus) error {
	if s.PG == nil {
		return nil
	}
	_, err := s.PG.Exec(ctx, `
		INSERT INTO ledger.surplus_event (
			s_id_quote, s_id_integrator, s_recipient,
			dec_quoted_buy_amount, dec_settled_buy_amount, dec_surplus_amount,
			s_token, s_tx_hash, dt_settled, dt_recorded
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	`, surplus.QuoteID, surplus.IntegratorID, surplus.Recipient,
		surplus.QuotedBuyAmount, surplus.SettledBuyAmount, surplus.SurplusAmount,
		surplus.Token, surplus.TxHash, surplus.SettledAt)
	if err != nil {
		s.logger.Error("store.pg.insert_surplus_failed", zap.Error(err))
	}
	return err
}

func (s *HybridStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key, data, ttl).Err()
}

func (s *HybridStore) GetJSON(ctx context.Context, key string, dest any) error {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (s *HybridStore) HealthCheck(ctx context.Context) error {
	if s.redis == nil {
		return fmt.Errorf("redis not initialized")
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	if s.PG != nil {
		if err := s.PG.Ping(ctx); err != nil {
			return fmt.Errorf("postgres ping failed: %w", err)
		}
	}
	return nil
}

func (s *HybridStore) Close() error {
	if s.PG != nil {
		s.PG.Close()
	}
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}

// nullIfEmpty maps "" to SQL NULL for optional text columns.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
