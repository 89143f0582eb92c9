package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Alixefin/kryptic-sub000/internal/dto"
	"github.com/Alixefin/kryptic-sub000/internal/model"
)

// Interfaz que debe implementar repository
type OrderRepository interface {
	InsertWithItems(ctx context.Context, o *model.Order, items []model.OrderItem) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	FindByReference(ctx context.Context, reference string) (*model.Order, error)
	FindByUserID(ctx context.Context, userID string) ([]*model.Order, error)
	FindRecent(ctx context.Context, limit int64) ([]*model.Order, error)
	FindAll(ctx context.Context) ([]*model.Order, error)
	FindItemsByOrderID(ctx context.Context, orderID string) ([]model.OrderItem, error)
	FindItemsByOrderIDs(ctx context.Context, orderIDs []string) (map[string][]model.OrderItem, error)
	UpdateStatus(ctx context.Context, id, status string) error
	UpdatePaymentStatus(ctx context.Context, id, paymentStatus string) error
	DeleteWithItems(ctx context.Context, id string) error
}

// TaskPublisher encola las tareas de email (Rabbit en producción).
type TaskPublisher interface {
	PublishOrderEmail(ctx context.Context, task dto.OrderEmailTask) error
	PublishOtpEmail(ctx context.Context, task dto.OtpEmailTask) error
}

// Errores de negocio exportados (los usa el controller)
var (
	ErrTotalMismatch        = errors.New("el total no coincide con subtotal + envío")
	ErrNegativeAmount       = errors.New("los montos no pueden ser negativos")
	ErrEmptyOrder           = errors.New("la orden no tiene artículos")
	ErrInvalidQuantity      = errors.New("la cantidad de cada artículo debe ser positiva")
	ErrInvalidTransition    = errors.New("transición de estado inválida")
	ErrFinalState           = errors.New("no se puede cambiar el estado de una orden en estado final")
	ErrInvalidPaymentStatus = errors.New("estado de pago inválido")
)

// Estados del ciclo de vida de la orden. Nada de strings libres:
// cualquier valor fuera del catálogo se rechaza.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// Transiciones permitidas. "cancelled" es alcanzable desde cualquier
// estado no final; "delivered" y "cancelled" son finales.
var statusTransitions = map[string][]string{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
}

var finalStatuses = map[string]bool{
	StatusDelivered: true,
	StatusCancelled: true,
}

var validPaymentStatuses = map[string]bool{
	PaymentPending:  true,
	PaymentPaid:     true,
	PaymentRefunded: true,
}

type OrderService struct {
	repo      OrderRepository
	publisher TaskPublisher
}

func NewOrderService(r OrderRepository, p TaskPublisher) *OrderService {
	return &OrderService{repo: r, publisher: p}
}

// CreateOrder persiste la orden y todos sus ítems, y encola el email de
// confirmación. El pago ya se completó del lado del cliente: acá solo
// registramos la referencia de la pasarela (ver DESIGN.md, pregunta abierta).
//
// Si ya existe una orden con la misma paymentReference devolvemos su id en
// lugar de duplicarla: la referencia funciona como clave de idempotencia.
func (s *OrderService) CreateOrder(ctx context.Context, req dto.CreateOrderRequest) (string, error) {
	if req.Subtotal < 0 || req.Shipping < 0 || req.Total < 0 {
		return "", ErrNegativeAmount
	}
	if req.Total != req.Subtotal+req.Shipping {
		return "", ErrTotalMismatch
	}
	if len(req.Items) == 0 {
		return "", ErrEmptyOrder
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return "", ErrInvalidQuantity
		}
		if it.ProductPrice < 0 {
			return "", ErrNegativeAmount
		}
	}

	// 1. ¿Ya procesamos esta referencia de pago?
	existing, err := s.repo.FindByReference(ctx, req.PaymentReference)
	if err == nil && existing != nil {
		return existing.ID, nil
	}

	// 2. Orden nueva, con sus ítems copiados verbatim (foto del producto)
	order := &model.Order{
		ID:               uuid.NewString(),
		UserID:           req.UserID,
		Email:            req.Email,
		Status:           StatusPending,
		PaymentStatus:    PaymentPaid,
		PaymentReference: req.PaymentReference,
		Subtotal:         req.Subtotal,
		Shipping:         req.Shipping,
		Total:            req.Total,
		ShippingAddress:  dtoToModelAddress(req.ShippingAddress),
		CreatedAt:        time.Now().UTC(),
	}

	items := make([]model.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, model.OrderItem{
			ID:           uuid.NewString(),
			OrderID:      order.ID,
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			ProductPrice: it.ProductPrice,
			Quantity:     it.Quantity,
			Size:         it.Size,
			Color:        it.Color,
		})
	}

	if err := s.repo.InsertWithItems(ctx, order, items); err != nil {
		return "", err
	}

	// 3. Email de confirmación, fire-and-forget: si falla el encolado solo
	// lo logueamos, la orden ya existe y eso es lo que importa.
	task := dto.OrderEmailTask{
		TaskID:        uuid.NewString(),
		OrderID:       order.ID,
		UserID:        order.UserID,
		CustomerEmail: order.Email,
		CustomerName:  order.ShippingAddress.FullName,
		Total:         order.Total,
		ItemCount:     len(items),
		EnqueuedAt:    time.Now().UTC(),
	}
	if err := s.publisher.PublishOrderEmail(ctx, task); err != nil {
		log.Println("❌ Error encolando email de orden:", err)
	}

	return order.ID, nil
}

func dtoToModelAddress(in dto.ShippingAddressDTO) model.ShippingAddress {
	return model.ShippingAddress{
		FullName:   in.FullName,
		Street:     in.Street,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
		Country:    in.Country,
		Phone:      in.Phone,
	}
}

// Getters (siempre con los ítems adjuntos)

func (s *OrderService) GetByID(ctx context.Context, id string) (*model.OrderWithItems, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, o)
}

func (s *OrderService) GetByReference(ctx context.Context, reference string) (*model.OrderWithItems, error) {
	o, err := s.repo.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, o)
}

func (s *OrderService) GetByUserID(ctx context.Context, userID string) ([]*model.OrderWithItems, error) {
	orders, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.attachItemsAll(ctx, orders)
}

func (s *OrderService) GetRecent(ctx context.Context, limit int64) ([]*model.OrderWithItems, error) {
	orders, err := s.repo.FindRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return s.attachItemsAll(ctx, orders)
}

func (s *OrderService) GetAll(ctx context.Context) ([]*model.OrderWithItems, error) {
	orders, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.attachItemsAll(ctx, orders)
}

func (s *OrderService) attachItems(ctx context.Context, o *model.Order) (*model.OrderWithItems, error) {
	items, err := s.repo.FindItemsByOrderID(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return &model.OrderWithItems{Order: *o, Items: items}, nil
}

// Una sola consulta $in para los ítems de todo el listado.
func (s *OrderService) attachItemsAll(ctx context.Context, orders []*model.Order) ([]*model.OrderWithItems, error) {
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	byOrder, err := s.repo.FindItemsByOrderIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*model.OrderWithItems, 0, len(orders))
	for _, o := range orders {
		out = append(out, &model.OrderWithItems{Order: *o, Items: byOrder[o.ID]})
	}
	return out, nil
}

// UpdateStatus valida la transición contra el catálogo antes de escribir.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, newStatus string) error {
	ord, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	current := ord.Status

	// Mismo estado: no hay nada que hacer
	if current == newStatus {
		return nil
	}
	if finalStatuses[current] {
		return ErrFinalState
	}
	if !contains(statusTransitions[current], newStatus) {
		return ErrInvalidTransition
	}

	return s.repo.UpdateStatus(ctx, orderID, newStatus)
}

// UpdatePaymentStatus acepta solo el catálogo de pago; refunded únicamente
// desde paid.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, orderID, newStatus string) error {
	if !validPaymentStatuses[newStatus] {
		return ErrInvalidPaymentStatus
	}

	ord, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if ord.PaymentStatus == newStatus {
		return nil
	}
	if newStatus == PaymentRefunded && ord.PaymentStatus != PaymentPaid {
		return ErrInvalidPaymentStatus
	}

	return s.repo.UpdatePaymentStatus(ctx, orderID, newStatus)
}

// DeleteOrder borra orden + ítems en una transacción (nada de huérfanos).
func (s *OrderService) DeleteOrder(ctx context.Context, orderID string) error {
	return s.repo.DeleteWithItems(ctx, orderID)
}

func contains(arr []string, s string) bool {
	for _, v := range arr {
		if v == s {
			return true
		}
	}
	return false
}
