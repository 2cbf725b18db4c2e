package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Checker-Finance/zeroex-adapter/internal/fee"
	"github.com/Checker-Finance/zeroex-adapter/internal/zeroex"
	"github.com/Checker-Finance/zeroex-adapter/pkg/model"
)

// Consumer bridges legacy swap commands from RabbitMQ into the adapter.
// Older order-routing services still emit quote requests and settlement
// reports over AMQP; this consumer translates them into the same service
// calls the HTTP API uses.
type Consumer struct {
	conn        *amqp.Connection
	channel     *amqp.Channel
	swapService SwapService
	provider    string
	logger      *zap.Logger
	done        chan struct{}
}

// SwapService defines the swap service interface the consumer drives.
type SwapService interface {
	CreateQuote(ctx context.Context, req model.SwapQuoteRequest) (*model.SwapQuote, error)
	HandleSettlement(ctx context.Context, report model.SettlementReport) (*model.TradeSurplus, error)
}

// NewConsumer creates a new RabbitMQ consumer.
func NewConsumer(url, provider string, swapService SwapService, logger *zap.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	return &Consumer{
		conn:        conn,
		channel:     channel,
		swapService: swapService,
		provider:    provider,
		logger:      logger,
		done:        make(chan struct{}),
	}, nil
}

// Start declares the inbound queues and starts consuming.
func (c *Consumer) Start(ctx context.Context) error {
	quoteQueue := fmt.Sprintf("outbound.swaps.requested.%s", c.provider)
	settlementQueue := fmt.Sprintf("outbound.swaps.settled.%s", c.provider)

	if _, err := c.channel.QueueDeclare(quoteQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", quoteQueue, err)
	}

	if _, err := c.channel.QueueDeclare(settlementQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", settlementQueue, err)
	}

	quoteMsgs, err := c.channel.Consume(quoteQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume from %s: %w", quoteQueue, err)
	}

	settlementMsgs, err := c.channel.Consume(settlementQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume from %s: %w", settlementQueue, err)
	}

	c.logger.Info("Started consuming from RabbitMQ",
		zap.String("quoteQueue", quoteQueue),
		zap.String("settlementQueue", settlementQueue),
	)

	go c.consumeQuoteRequests(ctx, quoteMsgs)
	go c.consumeSettlements(ctx, settlementMsgs)

	return nil
}

func (c *Consumer) consumeQuoteRequests(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-c.done:
			return
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				c.logger.Warn("Quote request channel closed")
				return
			}

			c.logger.Debug("Received quote request message", zap.String("body", string(msg.Body)))

			var req model.SwapQuoteRequest
			if err := json.Unmarshal(msg.Body, &req); err != nil {
				c.logger.Error("Failed to unmarshal SwapQuoteRequest", zap.Error(err))
				msg.Nack(false, false)
				continue
			}

			if _, err := c.swapService.CreateQuote(ctx, req); err != nil {
				c.logger.Error("Failed to create quote",
					zap.String("integrator", req.IntegratorID),
					zap.Error(err))
				// Invalid fee params will never succeed; only requeue on other failures.
				msg.Nack(false, false)
				continue
			}

			msg.Ack(false)
		}
	}
}

func (c *Consumer) consumeSettlements(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-c.done:
			return
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				c.logger.Warn("Settlement channel closed")
				return
			}

			c.logger.Debug("Received settlement message", zap.String("body", string(msg.Body)))

			var report model.SettlementReport
			if err := json.Unmarshal(msg.Body, &report); err != nil {
				c.logger.Error("Failed to unmarshal SettlementReport", zap.Error(err))
				msg.Nack(false, false)
				continue
			}

			if _, err := c.swapService.HandleSettlement(ctx, report); err != nil {
				c.logger.Error("Failed to process settlement",
					zap.String("quote_id", report.QuoteID),
					zap.Error(err))
				// Unknown quotes and malformed amounts never succeed on
				// redelivery; only transient store/publish failures requeue.
				msg.Nack(false, !permanentSettlementErr(err))
				continue
			}

			msg.Ack(false)
		}
	}
}

// permanentSettlementErr reports whether a settlement failure can never
// succeed on redelivery.
func permanentSettlementErr(err error) bool {
	return errors.Is(err, zeroex.ErrQuoteNotFound) || errors.Is(err, fee.ErrInvalidParameter)
}

// Close closes the consumer.
func (c *Consumer) Close() error {
	close(c.done)

	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
