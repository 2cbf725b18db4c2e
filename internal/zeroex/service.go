package zeroex

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/Checker-Finance/zeroex-adapter/internal/fee"
	"github.com/Checker-Finance/zeroex-adapter/internal/ledger"
	"github.com/Checker-Finance/zeroex-adapter/internal/metrics"
	"github.com/Checker-Finance/zeroex-adapter/internal/publisher"
	"github.com/Checker-Finance/zeroex-adapter/internal/store"
	"github.com/Checker-Finance/zeroex-adapter/pkg/config"
	"github.com/Checker-Finance/zeroex-adapter/pkg/model"
)

// Service orchestrates 0x Swap API operations: indicative pricing, firm quote
// creation with affiliate-fee monetization, settlement reconciliation, and
// normalized event publishing to NATS.
type Service struct {
	ctx            context.Context
	cfg            config.Config
	logger         *zap.Logger
	nc             *nats.Conn
	client         *Client
	configResolver ConfigResolver
	publisher      *publisher.Publisher
	store          store.Store
	mapper         *Mapper
	feeWriter      *ledger.FeeSyncWriter
}

// NewService constructs a fully wired 0x adapter service.
func NewService(
	ctx context.Context,
	cfg config.Config,
	logger *zap.Logger,
	nc *nats.Conn,
	client *Client,
	resolver ConfigResolver,
	pub *publisher.Publisher,
	st store.Store,
	feeWriter *ledger.FeeSyncWriter,
) *Service {
	return &Service{
		ctx:            ctx,
		cfg:            cfg,
		logger:         logger,
		nc:             nc,
		client:         client,
		configResolver: resolver,
		publisher:      pub,
		store:          st,
		mapper:         NewMapper(),
		feeWriter:      feeWriter,
	}
}

// resolveConfig resolves the per-integrator 0x configuration, returning an error if not found.
func (s *Service) resolveConfig(ctx context.Context, integratorID string) (*IntegratorConfig, error) {
	cfg, err := s.configResolver.Resolve(ctx, integratorID)
	if err != nil {
		s.logger.Error("zeroex.resolve_config_failed",
			zap.String("integrator", integratorID),
			zap.Error(err))
		return nil, fmt.Errorf("resolve integrator config for %q: %w", integratorID, err)
	}
	return cfg, nil
}

// prepared carries everything validated up front for a price or quote call:
// the monetization plan, the resolved surplus recipient, and the parsed sell
// amount.
type prepared struct {
	venueCfg         *IntegratorConfig
	plan             model.FeePlan
	surplusRecipient string
	sellAmount       *big.Int
}

// prepare validates the request against the integrator's fee plan before any
// venue call. Fee parameter violations never reach 0x.
func (s *Service) prepare(ctx context.Context, req model.SwapQuoteRequest) (*prepared, error) {
	venueCfg, err := s.resolveConfig(ctx, req.IntegratorID)
	if err != nil {
		return nil, err
	}

	plan := fee.DefaultPlan(req.IntegratorID)
	if stored, err := s.store.GetFeePlan(ctx, req.IntegratorID); err != nil {
		s.logger.Warn("zeroex.fee_plan_lookup_failed",
			zap.String("integrator", req.IntegratorID),
			zap.Error(err))
	} else if stored != nil {
		plan = *stored
	}

	if err := fee.ValidateParams(req, plan); err != nil {
		s.logger.Warn("zeroex.fee_params_rejected",
			zap.String("integrator", req.IntegratorID),
			zap.Error(err))
		metrics.IncQuote(req.IntegratorID, "validate", "rejected")
		return nil, err
	}

	sellAmount, err := fee.ParseAmount(req.SellAmount)
	if err != nil {
		return nil, err
	}

	return &prepared{
		venueCfg:         venueCfg,
		plan:             plan,
		surplusRecipient: fee.ResolveSurplusRecipient(req.TradeSurplusRecipient, req.Taker, plan),
		sellAmount:       sellAmount,
	}, nil
}

// GetPrice fetches an indicative price from 0x. The fee leg on the returned
// quote is computed locally; no quote is persisted.
func (s *Service) GetPrice(ctx context.Context, req model.SwapQuoteRequest) (*model.SwapQuote, error) {
	s.logger.Info("zeroex.get_price.start",
		zap.String("integrator", req.IntegratorID),
		zap.Int64("chain_id", req.ChainID),
		zap.String("sell_token", req.SellToken),
		zap.String("buy_token", req.BuyToken),
		zap.String("sell_amount", req.SellAmount),
	)

	prep, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	query := s.mapper.ToSwapQuery(req, prep.surplusRecipient)
	resp, err := s.client.Price(ctx, prep.venueCfg, query)
	if err != nil {
		s.logger.Error("zeroex.get_price.failed",
			zap.String("integrator", req.IntegratorID),
			zap.Error(err))
		metrics.IncQuote(req.IntegratorID, "price", "error")
		return nil, fmt.Errorf("zeroex price fetch failed: %w", err)
	}

	feeLeg, err := s.feeLeg(req, resp, prep)
	if err != nil {
		return nil, err
	}

	quote := s.mapper.FromPriceResponse(resp, req, feeLeg, prep.surplusRecipient)
	metrics.IncQuote(req.IntegratorID, "price", "ok")

	s.logger.Info("zeroex.price_served",
		zap.String("integrator", req.IntegratorID),
		zap.String("buy_amount", quote.BuyAmount),
		zap.Bool("liquidity_available", quote.LiquidityAvailable),
	)

	return quote, nil
}

// CreateQuote fetches a firm quote from 0x, persists the quote record for
// settlement reconciliation, writes fee attribution, and publishes canonical
// events.
func (s *Service) CreateQuote(ctx context.Context, req model.SwapQuoteRequest) (*model.SwapQuote, error) {
	s.logger.Info("zeroex.create_quote.start",
		zap.String("integrator", req.IntegratorID),
		zap.Int64("chain_id", req.ChainID),
		zap.String("sell_token", req.SellToken),
		zap.String("buy_token", req.BuyToken),
		zap.String("sell_amount", req.SellAmount),
	)

	prep, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	query := s.mapper.ToSwapQuery(req, prep.surplusRecipient)
	resp, err := s.client.Quote(ctx, prep.venueCfg, query)
	if err != nil {
		s.logger.Error("zeroex.create_quote.failed",
			zap.String("integrator", req.IntegratorID),
			zap.Error(err))
		metrics.IncQuote(req.IntegratorID, "quote", "error")
		return nil, fmt.Errorf("zeroex quote creation failed: %w", err)
	}

	feeLeg, err := s.feeLeg(req, &resp.PriceResponse, prep)
	if err != nil {
		return nil, err
	}

	quote := s.mapper.FromQuoteResponse(resp, req, feeLeg, prep.surplusRecipient, s.cfg.QuoteValidity)
	metrics.IncQuote(req.IntegratorID, "quote", "ok")

	s.logger.Info("zeroex.quote_created",
		zap.String("integrator", req.IntegratorID),
		zap.String("quote_id", quote.ID),
		zap.String("buy_amount", quote.BuyAmount),
		zap.String("surplus_recipient", quote.SurplusRecipient),
	)

	s.persistAndPublish(ctx, quote, req)
	return quote, nil
}

// feeLeg computes the locally authoritative fee breakdown and cross-checks it
// against the venue's reported integratorFee. A mismatch is logged and
// counted, never fatal: attribution follows the local rule.
func (s *Service) feeLeg(req model.SwapQuoteRequest, resp *PriceResponse, prep *prepared) (*model.IntegratorFee, error) {
	// No executable route means nothing trades and no fee accrues; the
	// response passes through with liquidity_available=false.
	if !resp.LiquidityAvailable {
		return nil, nil
	}

	var buyAmount *big.Int
	if resp.BuyAmount != "" {
		v, err := fee.ParseAmount(resp.BuyAmount)
		if err == nil {
			buyAmount = v
		}
	}

	// A buy-side fee needs the venue's buyAmount as its base. If the venue
	// omitted it the fee cannot be attributed, but the quote itself is fine.
	if req.SwapFeeBps != nil && buyAmount == nil {
		if side, sideErr := fee.FeeSide(req.SwapFeeToken, req.SellToken, req.BuyToken); sideErr == nil && side == fee.SideBuy {
			s.logger.Warn("zeroex.fee_skipped",
				zap.String("integrator", req.IntegratorID),
				zap.String("reason", "buy_amount_absent"))
			return nil, nil
		}
	}

	feeLeg, err := fee.Breakdown(req, prep.sellAmount, buyAmount, prep.plan)
	if err != nil {
		return nil, err
	}
	if feeLeg == nil {
		return nil, nil
	}

	metrics.ObserveFeeBps(req.IntegratorID, feeLeg.Bps)

	if wire := resp.Fees.IntegratorFee; wire != nil && wire.Amount != feeLeg.Amount {
		s.logger.Warn("zeroex.fee_mismatch",
			zap.String("integrator", req.IntegratorID),
			zap.String("local_amount", feeLeg.Amount),
			zap.String("venue_amount", wire.Amount),
			zap.Int("bps", feeLeg.Bps),
		)
		metrics.IncFeeMismatch(req.IntegratorID)
	}

	return feeLeg, nil
}

// persistAndPublish stores the quote record and emits canonical events.
// Failures here are logged and counted but do not fail the served quote.
func (s *Service) persistAndPublish(ctx context.Context, quote *model.SwapQuote, req model.SwapQuoteRequest) {
	rec := s.mapper.ToQuoteRecord(quote, req)

	if err := s.store.InsertQuoteRecord(ctx, rec); err != nil {
		s.logger.Warn("zeroex.quote_persist_failed",
			zap.String("quote_id", quote.ID),
			zap.Error(err))
		metrics.IncError("service", "quote_persist_failed")
	}

	if s.feeWriter != nil {
		if err := s.feeWriter.SyncFeeUpsert(ctx, &rec, nil, "QUOTED"); err != nil {
			metrics.IncError("service", "fee_attribution_failed")
		}
	}

	if s.publisher == nil {
		return
	}

	if err := s.publisher.PublishQuoteCreated(ctx, quote, quote.TenantID); err != nil {
		s.logger.Warn("zeroex.publish_failed",
			zap.String("quote_id", quote.ID),
			zap.Error(err))
	}

	if quote.IntegratorFee != nil {
		ev := model.FeeAccruedEvent{
			IntegratorID: quote.IntegratorID,
			QuoteID:      quote.ID,
			Amount:       quote.IntegratorFee.Amount,
			Token:        quote.IntegratorFee.Token,
			Bps:          quote.IntegratorFee.Bps,
			Recipient:    req.SwapFeeRecipient,
			Timestamp:    time.Now().UTC(),
		}
		if err := s.publisher.PublishFeeAccrued(ctx, ev); err != nil {
			s.logger.Warn("zeroex.fee_accrued_publish_failed",
				zap.String("quote_id", quote.ID),
				zap.Error(err))
		}
	}
}

// GetQuote returns a previously served quote record.
func (s *Service) GetQuote(ctx context.Context, quoteID string) (*model.QuoteRecord, error) {
	return s.store.GetQuoteRecord(ctx, quoteID)
}

// Config returns the service configuration.
func (s *Service) Config() config.Config {
	return s.cfg
}
