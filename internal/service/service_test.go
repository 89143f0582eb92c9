package service

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/Alixefin/kryptic-sub000/internal/dto"
	"github.com/Alixefin/kryptic-sub000/internal/repository"
)

// fakePublisher registra las tareas encoladas (lo comparten los tests de OTP)
type fakePublisher struct {
	orderTasks []dto.OrderEmailTask
	otpTasks   []dto.OtpEmailTask
}

func (f *fakePublisher) PublishOrderEmail(ctx context.Context, t dto.OrderEmailTask) error {
	f.orderTasks = append(f.orderTasks, t)
	return nil
}

func (f *fakePublisher) PublishOtpEmail(ctx context.Context, t dto.OtpEmailTask) error {
	f.otpTasks = append(f.otpTasks, t)
	return nil
}

func newOrderService() (*OrderService, *repository.MemoryStore, *fakePublisher) {
	store := repository.NewMemoryStore()
	pub := &fakePublisher{}
	return NewOrderService(store, pub), store, pub
}

func validRequest() dto.CreateOrderRequest {
	return dto.CreateOrderRequest{
		Email:            "cliente@example.com",
		UserID:           "u1",
		Subtotal:         2500,
		Shipping:         200,
		Total:            2700,
		PaymentReference: "ref-001",
		ShippingAddress:  dto.ShippingAddressDTO{FullName: "Ada Obi", City: "Lagos", Country: "Nigeria"},
		Items: []dto.OrderItemDTO{
			{ProductID: "P1", ProductName: "Remera", ProductPrice: 1000, Quantity: 2, Size: "M"},
			{ProductID: "P2", ProductName: "Gorra", ProductPrice: 500, Quantity: 1, Color: "negro"},
		},
	}
}

func TestCreateOrder_WorkedExample(t *testing.T) {
	ctx := context.Background()
	svc, _, pub := newOrderService()

	id, err := svc.CreateOrder(ctx, validRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Subtotal != 2500 || got.Shipping != 200 || got.Total != 2700 {
		t.Fatalf("montos: %d/%d/%d", got.Subtotal, got.Shipping, got.Total)
	}
	if got.Status != StatusPending || got.PaymentStatus != PaymentPaid {
		t.Fatalf("estados iniciales: %s/%s", got.Status, got.PaymentStatus)
	}
	if len(got.Items) != 2 {
		t.Fatalf("items: %d", len(got.Items))
	}
	for _, it := range got.Items {
		if it.OrderID != id {
			t.Fatalf("item sin referencia a la orden")
		}
	}

	if len(pub.orderTasks) != 1 {
		t.Fatalf("tareas encoladas: %d", len(pub.orderTasks))
	}
	task := pub.orderTasks[0]
	if task.OrderID != id || task.ItemCount != 2 || task.Total != 2700 || task.CustomerEmail != "cliente@example.com" {
		t.Fatalf("tarea de email mal armada: %+v", task)
	}
	if task.TaskID == "" {
		t.Fatalf("tarea sin clave de idempotencia")
	}
}

func TestCreateOrder_RoundTripItems(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newOrderService()

	req := validRequest()
	id, err := svc.CreateOrder(ctx, req)
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.GetByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}

	byProduct := map[string]dto.OrderItemDTO{}
	for _, it := range req.Items {
		byProduct[it.ProductID] = it
	}
	for _, it := range got.Items {
		want, ok := byProduct[it.ProductID]
		if !ok {
			t.Fatalf("producto inesperado %s", it.ProductID)
		}
		if it.ProductName != want.ProductName || it.ProductPrice != want.ProductPrice ||
			it.Quantity != want.Quantity || it.Size != want.Size || it.Color != want.Color {
			t.Fatalf("item alterado: %+v vs %+v", it, want)
		}
	}
}

// Propiedad: todo lo creado cumple total == subtotal + envío; cualquier otra
// combinación se rechaza antes de tocar el repositorio.
func TestCreateOrder_TotalInvariant(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 100; i++ {
		svc, _, _ := newOrderService()

		subtotal := rng.Int63n(1_000_000)
		shipping := rng.Int63n(10_000)
		req := validRequest()
		req.Subtotal = subtotal
		req.Shipping = shipping
		req.Total = subtotal + shipping
		req.PaymentReference = fmt.Sprintf("ref-%d", i)

		if rng.Intn(2) == 0 {
			// total corrupto: debe rechazarse
			req.Total += 1 + rng.Int63n(100)
			if _, err := svc.CreateOrder(ctx, req); err != ErrTotalMismatch {
				t.Fatalf("esperaba ErrTotalMismatch, obtuve %v", err)
			}
			continue
		}

		id, err := svc.CreateOrder(ctx, req)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		got, err := svc.GetByID(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if got.Total != got.Subtotal+got.Shipping {
			t.Fatalf("invariante rota: %d != %d + %d", got.Total, got.Subtotal, got.Shipping)
		}
	}
}

func TestCreateOrder_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newOrderService()

	req := validRequest()
	req.Items = nil
	if _, err := svc.CreateOrder(ctx, req); err != ErrEmptyOrder {
		t.Fatalf("sin items: %v", err)
	}

	req = validRequest()
	req.Items[0].Quantity = 0
	if _, err := svc.CreateOrder(ctx, req); err != ErrInvalidQuantity {
		t.Fatalf("cantidad cero: %v", err)
	}

	req = validRequest()
	req.Subtotal = -1
	req.Total = req.Subtotal + req.Shipping
	if _, err := svc.CreateOrder(ctx, req); err != ErrNegativeAmount {
		t.Fatalf("subtotal negativo: %v", err)
	}
}

func TestCreateOrder_IdempotentByReference(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newOrderService()

	first, err := svc.CreateOrder(ctx, validRequest())
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.CreateOrder(ctx, validRequest())
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("misma referencia creó dos órdenes: %s vs %s", first, second)
	}

	all, err := svc.GetAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("órdenes persistidas: %d", len(all))
	}
}

func TestUpdateStatus_Transitions(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		from, to string
		wantErr  error
	}{
		{StatusPending, StatusConfirmed, nil},
		{StatusConfirmed, StatusProcessing, nil},
		{StatusProcessing, StatusShipped, nil},
		{StatusShipped, StatusDelivered, nil},
		{StatusPending, StatusCancelled, nil},
		{StatusShipped, StatusCancelled, nil},
		{StatusPending, StatusShipped, ErrInvalidTransition},
		{StatusConfirmed, StatusDelivered, ErrInvalidTransition},
		{StatusPending, "whatever", ErrInvalidTransition},
		{StatusDelivered, StatusPending, ErrFinalState},
		{StatusCancelled, StatusConfirmed, ErrFinalState},
	}

	for _, tc := range cases {
		svc, store, _ := newOrderService()
		id, err := svc.CreateOrder(ctx, validRequest())
		if err != nil {
			t.Fatal(err)
		}
		// llevamos la orden al estado de partida sin pasar por la máquina
		if err := store.UpdateStatus(ctx, id, tc.from); err != nil {
			t.Fatal(err)
		}

		err = svc.UpdateStatus(ctx, id, tc.to)
		if err != tc.wantErr {
			t.Fatalf("%s -> %s: esperaba %v, obtuve %v", tc.from, tc.to, tc.wantErr, err)
		}
		if tc.wantErr == nil {
			got, _ := svc.GetByID(ctx, id)
			if got.Status != tc.to {
				t.Fatalf("%s -> %s no persistió", tc.from, tc.to)
			}
		}
	}
}

func TestUpdateStatus_SameStatusIsNoop(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newOrderService()
	id, _ := svc.CreateOrder(ctx, validRequest())

	if err := svc.UpdateStatus(ctx, id, StatusPending); err != nil {
		t.Fatalf("mismo estado no debería fallar: %v", err)
	}
}

func TestUpdateStatus_UnknownOrder(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newOrderService()

	if err := svc.UpdateStatus(ctx, "no-existe", StatusConfirmed); err != repository.ErrNotFound {
		t.Fatalf("esperaba ErrNotFound, obtuve %v", err)
	}
}

func TestUpdatePaymentStatus(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newOrderService()
	id, _ := svc.CreateOrder(ctx, validRequest())

	if err := svc.UpdatePaymentStatus(ctx, id, PaymentRefunded); err != nil {
		t.Fatalf("paid -> refunded: %v", err)
	}

	// desde pending no se puede reembolsar
	if err := store.UpdatePaymentStatus(ctx, id, PaymentPending); err != nil {
		t.Fatal(err)
	}
	if err := svc.UpdatePaymentStatus(ctx, id, PaymentRefunded); err != ErrInvalidPaymentStatus {
		t.Fatalf("pending -> refunded: %v", err)
	}

	if err := svc.UpdatePaymentStatus(ctx, id, "gratis"); err != ErrInvalidPaymentStatus {
		t.Fatalf("estado de pago libre: %v", err)
	}
}

func TestDeleteOrder_RemovesItems(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newOrderService()
	id, _ := svc.CreateOrder(ctx, validRequest())

	if err := svc.DeleteOrder(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetByID(ctx, id); err != repository.ErrNotFound {
		t.Fatalf("la orden sigue existiendo: %v", err)
	}
	items, err := store.FindItemsByOrderID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Fatalf("quedaron %d ítems huérfanos", len(items))
	}
}

func TestGetByUserID_NewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newOrderService()

	var ids []string
	for i := 0; i < 3; i++ {
		req := validRequest()
		req.PaymentReference = fmt.Sprintf("ref-%d", i)
		id, err := svc.CreateOrder(ctx, req)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
		time.Sleep(time.Millisecond)
	}

	got, err := svc.GetByUserID(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("órdenes del usuario: %d", len(got))
	}
	for i := range got {
		if got[i].ID != ids[len(ids)-1-i] {
			t.Fatalf("orden equivocada en posición %d", i)
		}
		if got[i].Items == nil {
			t.Fatalf("listado sin ítems adjuntos")
		}
	}

	recent, err := svc.GetRecent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 || recent[0].ID != ids[2] {
		t.Fatalf("recent mal ordenado")
	}
}
