package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Alixefin/kryptic-sub000/internal/dto"
	"github.com/Alixefin/kryptic-sub000/internal/service"
)

// Mailer es quien manda el email de verdad (el microservicio de mail).
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Cuánto recordamos un taskId ya procesado
const dedupTTL = 24 * time.Hour

// EmailConsumer procesa las tareas de email encoladas por los servicios.
// El broker entrega at-least-once; el SETNX en Redis por taskId garantiza
// que una redelivery no dispare un segundo email.
type EmailConsumer struct {
	Mailer        Mailer
	Notifications *service.NotificationService
	Redis         *redis.Client
}

func NewEmailConsumer(m Mailer, n *service.NotificationService, rdb *redis.Client) *EmailConsumer {
	return &EmailConsumer{Mailer: m, Notifications: n, Redis: rdb}
}

func (c *EmailConsumer) HandleOrderEmail(msg []byte) error {
	log.Println("[Rabbit] Tarea recibida: email de orden")

	var task dto.OrderEmailTask
	if err := json.Unmarshal(msg, &task); err != nil {
		log.Println("Error parseando tarea:", err)
		return err
	}

	ctx := context.Background()
	if !c.claimTask(ctx, task.TaskID) {
		log.Println("Tarea duplicada, se descarta:", task.TaskID)
		return nil
	}

	subject := "Confirmación de tu orden"
	body := fmt.Sprintf(
		"Hola %s, registramos tu orden %s: %d artículos por un total de ₦%d.",
		task.CustomerName, task.OrderID, task.ItemCount, task.Total,
	)
	if err := c.Mailer.Send(ctx, task.CustomerEmail, subject, body); err != nil {
		// liberamos el claim para que un reintento futuro pueda mandarlo
		c.releaseTask(ctx, task.TaskID)
		log.Println("❌ Error enviando email de orden:", err)
		return err
	}

	if err := c.Notifications.NotifyOrderPlaced(ctx, task); err != nil {
		log.Println("❌ Error creando notificaciones de la orden:", err)
		return err
	}

	log.Println("✔ Email de confirmación procesado para orden:", task.OrderID)
	return nil
}

func (c *EmailConsumer) HandleOtpEmail(msg []byte) error {
	log.Println("[Rabbit] Tarea recibida: email de OTP")

	var task dto.OtpEmailTask
	if err := json.Unmarshal(msg, &task); err != nil {
		log.Println("Error parseando tarea:", err)
		return err
	}

	ctx := context.Background()
	if !c.claimTask(ctx, task.TaskID) {
		log.Println("Tarea duplicada, se descarta:", task.TaskID)
		return nil
	}

	subject := "Tu código de verificación"
	body := fmt.Sprintf("Tu código es %s. Vence en 10 minutos.", task.Code)
	if err := c.Mailer.Send(ctx, task.Email, subject, body); err != nil {
		c.releaseTask(ctx, task.TaskID)
		log.Println("❌ Error enviando email de OTP:", err)
		return err
	}

	log.Println("✔ Email de OTP procesado para:", task.Email)
	return nil
}

// claimTask reserva el taskId; devuelve false si otro delivery ya lo procesó.
func (c *EmailConsumer) claimTask(ctx context.Context, taskID string) bool {
	ok, err := c.Redis.SetNX(ctx, "email_task:"+taskID, 1, dedupTTL).Result()
	if err != nil {
		// sin Redis preferimos un posible duplicado a no mandar nada
		log.Println("Error consultando dedup en Redis:", err)
		return true
	}
	return ok
}

func (c *EmailConsumer) releaseTask(ctx context.Context, taskID string) {
	if err := c.Redis.Del(ctx, "email_task:"+taskID).Err(); err != nil {
		log.Println("Error liberando claim en Redis:", err)
	}
}
