package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Alixefin/kryptic-sub000/internal/model"
)

func sampleOrder(id, ref string, at time.Time) *model.Order {
	return &model.Order{
		ID:               id,
		UserID:           "u1",
		Email:            "a@x.com",
		Status:           "pending",
		PaymentStatus:    "paid",
		PaymentReference: ref,
		Subtotal:         1000,
		Shipping:         100,
		Total:            1100,
		CreatedAt:        at,
	}
}

func TestMemoryStore_OrderLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	now := time.Now().UTC()
	items := []model.OrderItem{
		{ID: "i1", OrderID: "o1", ProductID: "P1", ProductName: "Remera", ProductPrice: 500, Quantity: 2},
	}
	if err := store.InsertWithItems(ctx, sampleOrder("o1", "ref-1", now), items); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := store.FindByID(ctx, "o1")
	if err != nil || got.PaymentReference != "ref-1" {
		t.Fatalf("find: %v", err)
	}
	if _, err := store.FindByReference(ctx, "ref-1"); err != nil {
		t.Fatalf("find by ref: %v", err)
	}
	if _, err := store.FindByReference(ctx, "ref-x"); err != ErrNotFound {
		t.Fatalf("referencia inexistente: %v", err)
	}

	if err := store.UpdateStatus(ctx, "o1", "confirmed"); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateStatus(ctx, "nope", "confirmed"); err != ErrNotFound {
		t.Fatalf("update de orden inexistente: %v", err)
	}

	if err := store.DeleteWithItems(ctx, "o1"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.FindByID(ctx, "o1"); err != ErrNotFound {
		t.Fatalf("la orden no se borró: %v", err)
	}
	left, _ := store.FindItemsByOrderID(ctx, "o1")
	if len(left) != 0 {
		t.Fatalf("ítems huérfanos: %d", len(left))
	}
}

func TestMemoryStore_ItemsBatchLookup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	now := time.Now().UTC()
	_ = store.InsertWithItems(ctx, sampleOrder("o1", "r1", now), []model.OrderItem{
		{ID: "i1", OrderID: "o1", ProductID: "P1", Quantity: 1},
		{ID: "i2", OrderID: "o1", ProductID: "P2", Quantity: 1},
	})
	_ = store.InsertWithItems(ctx, sampleOrder("o2", "r2", now), []model.OrderItem{
		{ID: "i3", OrderID: "o2", ProductID: "P3", Quantity: 1},
	})

	byOrder, err := store.FindItemsByOrderIDs(ctx, []string{"o1", "o2"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byOrder["o1"]) != 2 || len(byOrder["o2"]) != 1 {
		t.Fatalf("batch: %d/%d", len(byOrder["o1"]), len(byOrder["o2"]))
	}
}

func TestMemoryStore_OtpConsume(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now().UTC()

	_ = store.UpsertActive(ctx, &model.OtpCode{
		Email: "a@x.com", Code: "123456", ExpiresAt: now.Add(10 * time.Minute), CreatedAt: now,
	})

	if ok, _ := store.Consume(ctx, "a@x.com", "000000", now); ok {
		t.Fatal("código incorrecto consumido")
	}
	if ok, _ := store.Consume(ctx, "a@x.com", "123456", now); !ok {
		t.Fatal("código correcto rechazado")
	}
	if ok, _ := store.Consume(ctx, "a@x.com", "123456", now); ok {
		t.Fatal("código usado consumido de nuevo")
	}
}

func TestMemoryNotifications(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	notifs := NewMemoryNotifications(store)

	_ = notifs.Insert(ctx, &model.Notification{ID: "n1", Recipient: "user", UserID: "u1", Type: "order_placed"})
	_ = notifs.Insert(ctx, &model.Notification{ID: "n2", Recipient: "admin", Type: "new_order"})

	mine, err := notifs.FindByUserID(ctx, "u1")
	if err != nil || len(mine) != 1 {
		t.Fatalf("user: %v %d", err, len(mine))
	}
	admin, err := notifs.FindAdmin(ctx)
	if err != nil || len(admin) != 1 {
		t.Fatalf("admin: %v %d", err, len(admin))
	}

	if err := notifs.MarkRead(ctx, "n1"); err != nil {
		t.Fatal(err)
	}
	mine, _ = notifs.FindByUserID(ctx, "u1")
	if !mine[0].Read {
		t.Fatal("read no persistió")
	}
	if err := notifs.MarkRead(ctx, "nope"); err != ErrNotFound {
		t.Fatalf("notificación inexistente: %v", err)
	}
}
