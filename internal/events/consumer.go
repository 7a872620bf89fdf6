package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/motohub/motohub-cart-service/internal/config"
	"github.com/motohub/motohub-cart-service/internal/models"
)

// PrefillSink stores an incoming prefill record for later one-shot
// consumption by the session's cart engine.
type PrefillSink interface {
	Put(ctx context.Context, sessionID string, record *models.PrefillRecord) error
}

// PrefillMessage is the wire format of an external prefill signal.
type PrefillMessage struct {
	SessionID  string             `json:"session_id"`
	Items      []models.CartItem  `json:"items"`
	CarDetails *models.CarDetails `json:"car_details,omitempty"`
}

// PrefillConsumer consumes prefill signals from Kafka and parks them in the
// prefill store until the session shows up.
type PrefillConsumer struct {
	reader *kafka.Reader
	sink   PrefillSink
	logger *zap.Logger
	stopCh chan struct{}
}

// NewPrefillConsumer creates a Kafka-based prefill consumer.
func NewPrefillConsumer(cfg config.KafkaConfig, sink PrefillSink, logger *zap.Logger) *PrefillConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.PrefillTopic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})

	return &PrefillConsumer{
		reader: reader,
		sink:   sink,
		logger: logger.Named("prefill-consumer"),
		stopCh: make(chan struct{}),
	}
}

// Start begins consuming prefill signals.
func (c *PrefillConsumer) Start(ctx context.Context) error {
	c.logger.Info("Starting prefill consumer")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			c.logger.Info("Prefill consumer stopped")
			return nil
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.logger.Error("Failed to read message", zap.Error(err))
				continue
			}

			c.handleMessage(ctx, msg)
		}
	}
}

// Stop stops the consumer.
func (c *PrefillConsumer) Stop() {
	close(c.stopCh)
	c.reader.Close()
}

func (c *PrefillConsumer) handleMessage(ctx context.Context, msg kafka.Message) {
	var prefill PrefillMessage
	if err := json.Unmarshal(msg.Value, &prefill); err != nil {
		c.logger.Error("Failed to unmarshal prefill message", zap.Error(err))
		return
	}
	if prefill.SessionID == "" {
		c.logger.Warn("Dropping prefill message without session id")
		return
	}

	record := &models.PrefillRecord{
		Items:      prefill.Items,
		CarDetails: prefill.CarDetails,
	}
	if err := c.sink.Put(ctx, prefill.SessionID, record); err != nil {
		c.logger.Error("Failed to store prefill record",
			zap.String("session_id", prefill.SessionID),
			zap.Error(err))
		return
	}

	c.logger.Info("Prefill record parked for session",
		zap.String("session_id", prefill.SessionID),
		zap.Int("items", len(prefill.Items)))
}
