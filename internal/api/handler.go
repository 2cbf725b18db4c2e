package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Checker-Finance/zeroex-adapter/internal/fee"
	"github.com/Checker-Finance/zeroex-adapter/internal/zeroex"
	"github.com/Checker-Finance/zeroex-adapter/pkg/model"
)

// SwapService defines the interface for swap operations needed by the handler.
type SwapService interface {
	GetPrice(ctx context.Context, req model.SwapQuoteRequest) (*model.SwapQuote, error)
	CreateQuote(ctx context.Context, req model.SwapQuoteRequest) (*model.SwapQuote, error)
	HandleSettlement(ctx context.Context, report model.SettlementReport) (*model.TradeSurplus, error)
	GetQuote(ctx context.Context, quoteID string) (*model.QuoteRecord, error)
}

// PlanStore is the slice of the store the plan endpoints use.
type PlanStore interface {
	GetFeePlan(ctx context.Context, integratorID string) (*model.FeePlan, error)
	UpsertFeePlan(ctx context.Context, plan model.FeePlan) error
}

// IntegratorValidator checks whether an integrator ID is configured and allowed.
type IntegratorValidator interface {
	IsKnownIntegrator(ctx context.Context, integratorID string) bool
}

// SwapHandler handles HTTP API requests for 0x swap operations.
type SwapHandler struct {
	logger    *zap.Logger
	service   SwapService
	plans     PlanStore
	validator IntegratorValidator
}

// NewSwapHandler creates a new SwapHandler.
// validator is optional — if nil, integrator validation is skipped.
func NewSwapHandler(logger *zap.Logger, service SwapService, plans PlanStore, validator IntegratorValidator) *SwapHandler {
	return &SwapHandler{
		logger:    logger,
		service:   service,
		plans:     plans,
		validator: validator,
	}
}

// PriceHandler serves indicative prices.
func (h *SwapHandler) PriceHandler(c *fiber.Ctx) error {
	return h.serveSwap(c, h.service.GetPrice, fiber.StatusOK)
}

// QuoteHandler serves firm quotes.
func (h *SwapHandler) QuoteHandler(c *fiber.Ctx) error {
	return h.serveSwap(c, h.service.CreateQuote, fiber.StatusCreated)
}

func (h *SwapHandler) serveSwap(c *fiber.Ctx, op func(context.Context, model.SwapQuoteRequest) (*model.SwapQuote, error), okStatus int) error {
	var req SwapRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if h.validator != nil && !h.validator.IsKnownIntegrator(c.Context(), req.IntegratorID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "unknown or unauthorized integratorId"})
	}

	quote, err := op(c.Context(), toSwapQuoteRequest(req))
	if err != nil {
		h.logger.Error("api.swap_request_failed",
			zap.String("integrator", req.IntegratorID),
			zap.Error(err))
		return c.Status(statusFor(err)).JSON(QuoteResponse{ErrorMsg: err.Error()})
	}

	return c.Status(okStatus).JSON(toQuoteResponse(quote))
}

// GetQuoteHandler returns a previously served quote record.
func (h *SwapHandler) GetQuoteHandler(c *fiber.Ctx) error {
	quoteID := c.Params("quote_id")
	if quoteID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "quote_id is required"})
	}

	rec, err := h.service.GetQuote(c.Context(), quoteID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if rec == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "quote not found"})
	}
	return c.Status(fiber.StatusOK).JSON(rec)
}

// SettlementHandler reconciles an on-chain fill against a served quote.
func (h *SwapHandler) SettlementHandler(c *fiber.Ctx) error {
	var req SettlementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	surplus, err := h.service.HandleSettlement(c.Context(), model.SettlementReport{
		QuoteID:          req.QuoteID,
		TxHash:           req.TxHash,
		SettledBuyAmount: req.SettledBuyAmount,
		SettledAt:        req.SettledAt,
	})
	if err != nil {
		h.logger.Error("api.settlement_failed",
			zap.String("quote_id", req.QuoteID),
			zap.Error(err))
		return c.Status(statusFor(err)).JSON(SettlementResponse{
			QuoteID:  req.QuoteID,
			ErrorMsg: err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(SettlementResponse{
		QuoteID:          surplus.QuoteID,
		IntegratorID:     surplus.IntegratorID,
		SurplusAmount:    surplus.SurplusAmount,
		SurplusToken:     surplus.Token,
		SurplusRecipient: surplus.Recipient,
		Status:           "SETTLED",
		SettledAt:        surplus.SettledAt,
	})
}

// GetFeePlanHandler returns the stored monetization plan for an integrator,
// or the default policy when none is configured.
func (h *SwapHandler) GetFeePlanHandler(c *fiber.Ctx) error {
	integratorID := c.Params("integrator_id")
	if integratorID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "integrator_id is required"})
	}

	plan, err := h.plans.GetFeePlan(c.Context(), integratorID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if plan == nil {
		def := fee.DefaultPlan(integratorID)
		return c.Status(fiber.StatusOK).JSON(def)
	}
	return c.Status(fiber.StatusOK).JSON(plan)
}

// UpsertFeePlanHandler creates or updates an integrator's monetization plan.
func (h *SwapHandler) UpsertFeePlanHandler(c *fiber.Ctx) error {
	var req FeePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	plan := model.FeePlan{
		IntegratorID:   req.IntegratorID,
		MaxFeeBps:      req.MaxFeeBps,
		CustomCap:      req.CustomCap,
		SurplusRouting: req.SurplusRouting,
	}
	if err := h.plans.UpsertFeePlan(c.Context(), plan); err != nil {
		h.logger.Error("api.fee_plan_upsert_failed",
			zap.String("integrator", req.IntegratorID),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(plan)
}

// statusFor maps service errors to HTTP status codes. Fee parameter
// violations are client errors; unknown quotes are 404; everything else is
// an upstream failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, fee.ErrInvalidParameter):
		return fiber.StatusBadRequest
	case errors.Is(err, zeroex.ErrQuoteNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusBadGateway
	}
}

// toSwapQuoteRequest converts an API request to a canonical SwapQuoteRequest.
func toSwapQuoteRequest(req SwapRequest) model.SwapQuoteRequest {
	return model.SwapQuoteRequest{
		IntegratorID:          req.IntegratorID,
		ChainID:               req.ChainID,
		SellToken:             req.SellToken,
		BuyToken:              req.BuyToken,
		SellAmount:            req.SellAmount,
		Taker:                 req.Taker,
		SwapFeeRecipient:      req.SwapFeeRecipient,
		SwapFeeBps:            req.SwapFeeBps,
		SwapFeeToken:          req.SwapFeeToken,
		TradeSurplusRecipient: req.TradeSurplusRecipient,
	}
}
