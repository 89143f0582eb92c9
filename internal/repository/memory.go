package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Alixefin/kryptic-sub000/internal/model"
)

// MemoryStore: implementación in-memory de todos los repositorios.
// La usan los tests de servicio; la verdad en producción es Mongo.
type MemoryStore struct {
	mu sync.RWMutex

	seq           int64
	orderSeq      map[string]int64
	orders        map[string]model.Order
	items         []model.OrderItem
	otps          map[string]model.OtpCode
	users         map[string]model.User // clave: email
	notifications map[string]model.Notification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orderSeq:      make(map[string]int64),
		orders:        make(map[string]model.Order),
		otps:          make(map[string]model.OtpCode),
		users:         make(map[string]model.User),
		notifications: make(map[string]model.Notification),
	}
}

// ---- órdenes ----

func (m *MemoryStore) InsertWithItems(ctx context.Context, o *model.Order, items []model.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.orderSeq[o.ID] = m.seq
	m.orders[o.ID] = *o
	m.items = append(m.items, items...)
	return nil
}

func (m *MemoryStore) FindByID(ctx context.Context, id string) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := o
	return &cp, nil
}

func (m *MemoryStore) FindByReference(ctx context.Context, reference string) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.PaymentReference == reference {
			cp := o
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) FindByUserID(ctx context.Context, userID string) ([]*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			cp := o
			out = append(out, &cp)
		}
	}
	m.sortNewestFirst(out)
	return out, nil
}

func (m *MemoryStore) FindRecent(ctx context.Context, limit int64) ([]*model.Order, error) {
	all, _ := m.FindAll(ctx)
	if int64(len(all)) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *MemoryStore) FindAll(ctx context.Context) ([]*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Order
	for _, o := range m.orders {
		cp := o
		out = append(out, &cp)
	}
	m.sortNewestFirst(out)
	return out, nil
}

// orden estable: created_at descendente, desempate por orden de inserción
func (m *MemoryStore) sortNewestFirst(out []*model.Order) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return m.orderSeq[out[i].ID] > m.orderSeq[out[j].ID]
	})
}

func (m *MemoryStore) FindItemsByOrderID(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.OrderItem
	for _, it := range m.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *MemoryStore) FindItemsByOrderIDs(ctx context.Context, orderIDs []string) (map[string][]model.OrderItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	want := make(map[string]bool, len(orderIDs))
	for _, id := range orderIDs {
		want[id] = true
	}
	out := make(map[string][]model.OrderItem, len(orderIDs))
	for _, it := range m.items {
		if want[it.OrderID] {
			out[it.OrderID] = append(out[it.OrderID], it)
		}
	}
	return out, nil
}

func (m *MemoryStore) UpdateStatus(ctx context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	m.orders[id] = o
	return nil
}

func (m *MemoryStore) UpdatePaymentStatus(ctx context.Context, id, paymentStatus string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.PaymentStatus = paymentStatus
	m.orders[id] = o
	return nil
}

func (m *MemoryStore) DeleteWithItems(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return ErrNotFound
	}
	delete(m.orders, id)
	kept := m.items[:0]
	for _, it := range m.items {
		if it.OrderID != id {
			kept = append(kept, it)
		}
	}
	m.items = kept
	return nil
}

// ---- códigos OTP ----

func (m *MemoryStore) UpsertActive(ctx context.Context, c *model.OtpCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.otps[c.Email] = *c
	return nil
}

func (m *MemoryStore) Consume(ctx context.Context, email, code string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.otps[email]
	if !ok || c.Used || c.Code != code || !c.ExpiresAt.After(now) {
		return false, nil
	}
	c.Used = true
	m.otps[email] = c
	return true, nil
}

// SetOtpExpiry fuerza la expiración del código activo (solo tests).
func (m *MemoryStore) SetOtpExpiry(email string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.otps[email]; ok {
		c.ExpiresAt = at
		m.otps[email] = c
	}
}

// ---- usuarios ----

func (m *MemoryStore) AddUser(u model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.Email] = u
}

func (m *MemoryStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := u
	return &cp, nil
}

func (m *MemoryStore) MarkEmailVerified(ctx context.Context, email string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil // sin usuario no hay nada que estampar
	}
	u.EmailVerifiedAt = &at
	m.users[email] = u
	return nil
}

// ---- notificaciones ----

// Tipo aparte porque FindByUserID chocaría con el de órdenes.
type MemoryNotifications struct{ store *MemoryStore }

func NewMemoryNotifications(store *MemoryStore) *MemoryNotifications {
	return &MemoryNotifications{store: store}
}

func (mn *MemoryNotifications) Insert(ctx context.Context, n *model.Notification) error {
	mn.store.mu.Lock()
	defer mn.store.mu.Unlock()
	mn.store.notifications[n.ID] = *n
	return nil
}

func (mn *MemoryNotifications) FindByUserID(ctx context.Context, userID string) ([]*model.Notification, error) {
	mn.store.mu.RLock()
	defer mn.store.mu.RUnlock()
	var out []*model.Notification
	for _, n := range mn.store.notifications {
		if n.Recipient == "user" && n.UserID == userID {
			cp := n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (mn *MemoryNotifications) FindAdmin(ctx context.Context) ([]*model.Notification, error) {
	mn.store.mu.RLock()
	defer mn.store.mu.RUnlock()
	var out []*model.Notification
	for _, n := range mn.store.notifications {
		if n.Recipient == "admin" {
			cp := n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (mn *MemoryNotifications) MarkRead(ctx context.Context, id string) error {
	mn.store.mu.Lock()
	defer mn.store.mu.Unlock()
	n, ok := mn.store.notifications[id]
	if !ok {
		return ErrNotFound
	}
	n.Read = true
	mn.store.notifications[id] = n
	return nil
}
