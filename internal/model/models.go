// models.go
package model

import "time"

// Montos en Naira entero, sin subunidad.
type Order struct {
	ID               string          `bson:"_id" json:"orderId"`
	UserID           string          `bson:"user_id,omitempty" json:"userId,omitempty"`
	Email            string          `bson:"email" json:"email"`
	Status           string          `bson:"status" json:"status"` // estado actual del ciclo de vida
	PaymentStatus    string          `bson:"payment_status" json:"paymentStatus"`
	PaymentReference string          `bson:"payment_reference" json:"paymentReference"`
	Subtotal         int64           `bson:"subtotal" json:"subtotal"`
	Shipping         int64           `bson:"shipping" json:"shipping"`
	Total            int64           `bson:"total" json:"total"`
	ShippingAddress  ShippingAddress `bson:"shipping_address" json:"shippingAddress"`
	CreatedAt        time.Time       `bson:"created_at" json:"createdAt"`
}

type ShippingAddress struct {
	FullName   string `bson:"full_name" json:"fullName"`
	Street     string `bson:"street" json:"street"`
	City       string `bson:"city" json:"city"`
	State      string `bson:"state" json:"state"`
	PostalCode string `bson:"postal_code" json:"postalCode"`
	Country    string `bson:"country" json:"country"`
	Phone      string `bson:"phone" json:"phone"`
}

// OrderItem es una foto del producto al momento de la compra.
// Editar el producto después NUNCA modifica órdenes históricas.
type OrderItem struct {
	ID           string `bson:"_id" json:"itemId"`
	OrderID      string `bson:"order_id" json:"orderId"`
	ProductID    string `bson:"product_id" json:"productId"`
	ProductName  string `bson:"product_name" json:"productName"`
	ProductPrice int64  `bson:"product_price" json:"productPrice"`
	Quantity     int    `bson:"quantity" json:"quantity"`
	Size         string `bson:"size,omitempty" json:"size,omitempty"`
	Color        string `bson:"color,omitempty" json:"color,omitempty"`
}

type OrderWithItems struct {
	Order `bson:",inline"`
	Items []OrderItem `bson:"-" json:"items"`
}

// OtpCode: un único documento activo por email (la clave es el email).
// Un nuevo envío reemplaza al anterior, nunca conviven dos códigos válidos.
type OtpCode struct {
	Email     string    `bson:"_id" json:"email"`
	Code      string    `bson:"code" json:"-"`
	ExpiresAt time.Time `bson:"expires_at" json:"expiresAt"`
	Used      bool      `bson:"used" json:"used"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

type User struct {
	ID              string     `bson:"_id,omitempty" json:"userId"`
	Email           string     `bson:"email" json:"email"`
	Name            string     `bson:"name" json:"name"`
	EmailVerifiedAt *time.Time `bson:"email_verified_at,omitempty" json:"emailVerifiedAt,omitempty"`
}

// Notification se crea solo desde el consumer interno, nunca por clientes.
type Notification struct {
	ID        string    `bson:"_id" json:"notificationId"`
	Recipient string    `bson:"recipient" json:"recipient"` // "user" | "admin"
	UserID    string    `bson:"user_id,omitempty" json:"userId,omitempty"`
	Type      string    `bson:"type" json:"type"`
	Title     string    `bson:"title" json:"title"`
	Message   string    `bson:"message" json:"message"`
	Link      string    `bson:"link,omitempty" json:"link,omitempty"`
	Read      bool      `bson:"read" json:"read"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
