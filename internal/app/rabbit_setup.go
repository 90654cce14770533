package app

import (
	"github.com/wagslane/go-rabbitmq"

	"github.com/Nazarious-ucu/watchface-weather-relay/pkg/messaging"
)

func (a *App) setupConn() (*rabbitmq.Conn, error) {
	conn, err := rabbitmq.NewConn(
		a.cfg.RabbitMQ.Address(),
		rabbitmq.WithConnectionOptionsLogging,
	)
	if err != nil {
		a.l.Error().Err(err).Msg("failed to connect to RabbitMQ")
		return nil, err
	}

	a.l.Info().
		Str("host", a.cfg.RabbitMQ.Host).
		Msg("connected to RabbitMQ")
	return conn, nil
}

// setupPublisher declares the exchange replies are published to.
func (a *App) setupPublisher(conn *rabbitmq.Conn) (*rabbitmq.Publisher, error) {
	publisher, err := rabbitmq.NewPublisher(
		conn,
		rabbitmq.WithPublisherOptionsExchangeName(messaging.ExchangeName),
		rabbitmq.WithPublisherOptionsExchangeDeclare,
		rabbitmq.WithPublisherOptionsExchangeDurable,
	)
	if err != nil {
		return nil, err
	}

	publisher.NotifyReturn(func(r rabbitmq.Return) {
		a.l.Warn().
			Str("routing_key", r.RoutingKey).
			Uint16("reply_code", r.ReplyCode).
			Str("correlation_id", r.CorrelationId).
			Msg("reply returned by broker")
	})

	return publisher, nil
}

// setupTriggerConsumer binds the weather request queue.
func (a *App) setupTriggerConsumer(conn *rabbitmq.Conn) (*rabbitmq.Consumer, error) {
	return rabbitmq.NewConsumer(
		conn,
		messaging.TriggerQueueName,
		rabbitmq.WithConsumerOptionsExchangeName(messaging.ExchangeName),
		rabbitmq.WithConsumerOptionsExchangeDeclare,
		rabbitmq.WithConsumerOptionsExchangeDurable,
		rabbitmq.WithConsumerOptionsRoutingKey(messaging.TriggerRoutingKey),
		rabbitmq.WithConsumerOptionsQueueDurable,
	)
}

func (a *App) closeConn(conn *rabbitmq.Conn) {
	if err := conn.Close(); err != nil {
		a.l.Error().Err(err).Msg("failed to close RabbitMQ connection")
	}
}
