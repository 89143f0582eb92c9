package rabbit

import (
	"context"
	"encoding/json"

	"github.com/rabbitmq/amqp091-go"

	"github.com/Alixefin/kryptic-sub000/internal/dto"
)

const (
	ExchangeEmails = "storefront_emails"
	QueueOrder     = "order_confirmation_emails"
	QueueOtp       = "otp_emails"
	keyOrder       = "email.order"
	keyOtp         = "email.otp"
)

// Publisher encola las tareas de email. Implementa service.TaskPublisher.
type Publisher struct {
	ch *amqp091.Channel
}

func NewPublisher(ch *amqp091.Channel) (*Publisher, error) {
	if err := ch.ExchangeDeclare(
		ExchangeEmails,
		"direct",
		true,  // durable
		false, // auto-delete
		false,
		false,
		nil,
	); err != nil {
		return nil, err
	}
	return &Publisher{ch: ch}, nil
}

func (p *Publisher) PublishOrderEmail(ctx context.Context, task dto.OrderEmailTask) error {
	return p.publish(ctx, keyOrder, task.TaskID, task)
}

func (p *Publisher) PublishOtpEmail(ctx context.Context, task dto.OtpEmailTask) error {
	return p.publish(ctx, keyOtp, task.TaskID, task)
}

func (p *Publisher) publish(ctx context.Context, routingKey, taskID string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx,
		ExchangeEmails,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    taskID, // clave de idempotencia para el consumer
			Body:         body,
		},
	)
}
