package host

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wagslane/go-rabbitmq"

	"github.com/Nazarious-ucu/watchface-weather-relay/internal/models"
	"github.com/Nazarious-ucu/watchface-weather-relay/pkg/messaging"
)

type publisher interface {
	PublishWithContext(
		ctx context.Context,
		data []byte,
		routingKeys []string,
		optionFuncs ...func(*rabbitmq.PublishOptions),
	) error
}

// RabbitHost receives weather requests from the bus and publishes replies.
type RabbitHost struct {
	pub     publisher
	signals chan models.Signal
	closed  chan struct{}
	once    sync.Once
	logger  zerolog.Logger
	now     func() time.Time
}

func NewRabbitHost(pub publisher, logger zerolog.Logger) *RabbitHost {
	return &RabbitHost{
		pub:     pub,
		signals: make(chan models.Signal),
		closed:  make(chan struct{}),
		logger:  logger.With().Str("component", "RabbitHost").Logger(),
		now:     time.Now,
	}
}

// Receive is the consumer handler. The payload is logged but never interpreted.
func (h *RabbitHost) Receive(d rabbitmq.Delivery) rabbitmq.Action {
	sig := models.Signal{
		ID:         deliveryID(d),
		Source:     models.SourceHost,
		ReceivedAt: h.now(),
	}

	var evt messaging.WeatherRequestEvent
	if err := json.Unmarshal(d.Body, &evt); err != nil {
		h.logger.Debug().
			Err(err).
			Str("payload", string(d.Body)).
			Msg("request payload is not a weather request event")
	}

	h.logger.Debug().
		Str("signal_id", sig.ID).
		Str("watch_id", evt.WatchID).
		Msg("received weather request")

	select {
	case h.signals <- sig:
		return rabbitmq.Ack
	case <-h.closed:
		return rabbitmq.NackRequeue
	}
}

func (h *RabbitHost) Trigger(ctx context.Context) (models.Signal, error) {
	select {
	case <-ctx.Done():
		return models.Signal{}, ctx.Err()
	case <-h.closed:
		return models.Signal{}, ErrClosed
	case sig := <-h.signals:
		return sig, nil
	}
}

func (h *RabbitHost) Send(ctx context.Context, msg models.WatchMessage) error {
	body, err := json.Marshal(messaging.WeatherReplyEvent{
		Temperature: msg.Temperature,
		Low:         msg.Low,
		High:        msg.High,
		Conditions:  msg.Conditions,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to marshal reply")
		return err
	}

	correlationID := ""
	if sig, ok := models.SignalFrom(ctx); ok {
		correlationID = sig.ID
	}

	if err := h.pub.PublishWithContext(
		ctx,
		body,
		[]string{messaging.ReplyRoutingKey},
		rabbitmq.WithPublishOptionsContentType(messaging.ContentTypeJSON),
		rabbitmq.WithPublishOptionsExchange(messaging.ExchangeName),
		rabbitmq.WithPublishOptionsCorrelationID(correlationID),
		rabbitmq.WithPublishOptionsMessageID(uuid.NewString()),
		rabbitmq.WithPublishOptionsType(messaging.ReplyMessageType),
		rabbitmq.WithPublishOptionsAppID(messaging.RelayApplicationID),
		rabbitmq.WithPublishOptionsTimestamp(h.now()),
	); err != nil {
		h.logger.Error().
			Err(err).
			Str("correlation_id", correlationID).
			Msg("failed to publish reply")
		return err
	}

	h.logger.Debug().
		Str("correlation_id", correlationID).
		Str("routing_key", messaging.ReplyRoutingKey).
		Msg("reply published")
	return nil
}

// Close unblocks pending Receive and Trigger calls.
func (h *RabbitHost) Close() {
	h.once.Do(func() { close(h.closed) })
}

func deliveryID(d rabbitmq.Delivery) string {
	switch {
	case d.CorrelationId != "":
		return d.CorrelationId
	case d.MessageId != "":
		return d.MessageId
	default:
		return uuid.NewString()
	}
}
