package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Alixefin/kryptic-sub000/internal/dto"
	"github.com/Alixefin/kryptic-sub000/internal/model"
)

type NotificationRepository interface {
	Insert(ctx context.Context, n *model.Notification) error
	FindByUserID(ctx context.Context, userID string) ([]*model.Notification, error)
	FindAdmin(ctx context.Context) ([]*model.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

type NotificationService struct {
	repo NotificationRepository
}

func NewNotificationService(r NotificationRepository) *NotificationService {
	return &NotificationService{repo: r}
}

// NotifyOrderPlaced crea las notificaciones de una orden nueva: una para el
// cliente (si tiene cuenta) y una para el back-office. Solo la invoca el
// consumer interno, nunca un cliente externo.
func (s *NotificationService) NotifyOrderPlaced(ctx context.Context, task dto.OrderEmailTask) error {
	now := time.Now().UTC()

	if task.UserID != "" {
		n := &model.Notification{
			ID:        uuid.NewString(),
			Recipient: "user",
			UserID:    task.UserID,
			Type:      "order_placed",
			Title:     "Orden recibida",
			Message:   fmt.Sprintf("Tu orden por ₦%d (%d artículos) fue registrada.", task.Total, task.ItemCount),
			Link:      "/orders/" + task.OrderID,
			CreatedAt: now,
		}
		if err := s.repo.Insert(ctx, n); err != nil {
			return err
		}
	}

	admin := &model.Notification{
		ID:        uuid.NewString(),
		Recipient: "admin",
		Type:      "new_order",
		Title:     "Nueva orden",
		Message:   fmt.Sprintf("Orden de %s por ₦%d (%d artículos).", task.CustomerEmail, task.Total, task.ItemCount),
		Link:      "/admin/orders/" + task.OrderID,
		CreatedAt: now,
	}
	return s.repo.Insert(ctx, admin)
}

func (s *NotificationService) ListForUser(ctx context.Context, userID string) ([]*model.Notification, error) {
	return s.repo.FindByUserID(ctx, userID)
}

func (s *NotificationService) ListForAdmins(ctx context.Context) ([]*model.Notification, error) {
	return s.repo.FindAdmin(ctx)
}

func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	return s.repo.MarkRead(ctx, id)
}
