package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"classroom-egress/config"
)

const exchangeName = "recording_events"

const (
	RoutingKeyStarted        = "recording.started"
	RoutingKeyStopped        = "recording.stopped"
	RoutingKeyAudioExtracted = "recording.audio_extracted"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any)
}

type publisher struct {
	conn *amqp.Connection
	cfg  *config.RabbitMQ
}

func NewPublisher(conn *amqp.Connection, cfg *config.RabbitMQ) Publisher {
	return &publisher{
		conn: conn,
		cfg:  cfg,
	}
}

// Publish is best-effort: a dropped event never fails the request that
// produced it. Failures are logged and swallowed.
func (p *publisher) Publish(ctx context.Context, routingKey string, event any) {
	if p.conn == nil || p.conn.IsClosed() {
		zerolog.Ctx(ctx).Warn().Str("routing_key", routingKey).Msg("rabbitmq unavailable, dropping event")
		return
	}

	ch, err := p.conn.Channel()
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to open channel")
		return
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchangeName, p.cfg.Kind, true, false, false, false, nil); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("exchange", exchangeName).Msg("failed to declare exchange")
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("routing_key", routingKey).Msg("failed to marshal event")
		return
	}

	err = ch.PublishWithContext(ctx, exchangeName, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("routing_key", routingKey).Msg("failed to publish event")
		return
	}

	zerolog.Ctx(ctx).Debug().Str("routing_key", routingKey).Msg("event published")
}
