// setup.go
package rabbit

import (
	"log"

	"github.com/rabbitmq/amqp091-go"
)

// SetupConsumers declara las colas de email, las bindea al exchange y deja
// los consumers corriendo en segundo plano.
func SetupConsumers(ch *amqp091.Channel, consumer *EmailConsumer) {
	consume(ch, QueueOrder, keyOrder, consumer.HandleOrderEmail)
	consume(ch, QueueOtp, keyOtp, consumer.HandleOtpEmail)

	log.Println("🐰 Suscrito a exchange", ExchangeEmails)
}

func consume(ch *amqp091.Channel, queue, routingKey string, handle func([]byte) error) {
	// 1. Declarar la queue
	q, err := ch.QueueDeclare(
		queue,
		true, // durable
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Println("❌ Error declarando queue:", err)
		return
	}

	// 2. Bindear al exchange
	if err := ch.QueueBind(
		q.Name,
		routingKey,
		ExchangeEmails,
		false,
		nil,
	); err != nil {
		log.Println("❌ Error binding exchange:", err)
		return
	}

	// 3. Consumir
	msgs, err := ch.Consume(
		q.Name,
		"",
		true, // auto-ack; la idempotencia la maneja el consumer con Redis
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Println("❌ Error al consumir queue:", err)
		return
	}

	go func() {
		for m := range msgs {
			if err := handle(m.Body); err != nil {
				log.Println("❌ Error procesando tarea de", q.Name, ":", err)
			}
		}
	}()
}
