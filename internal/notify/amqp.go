// Package notify publishes administrative events over RabbitMQ. Delivery is
// best effort: the ledger mutation an event describes has already committed
// by the time it is published.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rabbitmq/amqp091-go"

	"github.com/quizearn/quizearn/internal/services/withdraw"
)

const (
	routingKeyRequested = "withdrawal.requested"
	routingKeyReminder  = "withdrawal.reminder"
)

type Producer struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
}

func NewProducer(amqpURL, exchange string) (*Producer, error) {
	conn, err := amqp091.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Producer{conn: conn, channel: channel, exchange: exchange}, nil
}

func (p *Producer) WithdrawalRequested(ctx context.Context, notice withdraw.RequestNotice) error {
	return p.publish(ctx, routingKeyRequested, notice)
}

func (p *Producer) PendingReminder(ctx context.Context, pending int) error {
	return p.publish(ctx, routingKeyReminder, map[string]int{"pending": pending})
}

func (p *Producer) publish(ctx context.Context, routingKey string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Body:         payload,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	return nil
}

func (p *Producer) Close() error {
	if err := p.channel.Close(); err != nil {
		p.conn.Close()
		return fmt.Errorf("close channel: %w", err)
	}

	if err := p.conn.Close(); err != nil {
		return fmt.Errorf("close connection: %w", err)
	}

	return nil
}
