// dto.go
package dto

import "time"

// CreateOrderRequest llega desde el checkout con el pago ya completado
// del lado del cliente (paymentReference correlaciona con la pasarela).
type CreateOrderRequest struct {
	Email            string             `json:"email" binding:"required,email"`
	UserID           string             `json:"userId"`
	Subtotal         int64              `json:"subtotal"`
	Shipping         int64              `json:"shipping"`
	Total            int64              `json:"total"`
	PaymentReference string             `json:"paymentReference" binding:"required"`
	ShippingAddress  ShippingAddressDTO `json:"shippingAddress"`
	Items            []OrderItemDTO     `json:"items" binding:"required"`
}

type OrderItemDTO struct {
	ProductID    string `json:"productId" binding:"required"`
	ProductName  string `json:"productName" binding:"required"`
	ProductPrice int64  `json:"productPrice"`
	Quantity     int    `json:"quantity"`
	Size         string `json:"size"`
	Color        string `json:"color"`
}

// ShippingAddressDTO para la dirección postal del envío
type ShippingAddressDTO struct {
	FullName   string `json:"fullName"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

type CreateOrderResponse struct {
	OrderID string `json:"orderId"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"paymentStatus" binding:"required"`
}

type SendCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// VerifyCodeResponse: el fallo de negocio viaja como flag, no como error HTTP.
type VerifyCodeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ---- Tareas asíncronas de email (Rabbit) ----

// El TaskID (uuid) es la clave de idempotencia: el consumer descarta
// redeliveries del broker con el mismo id.
type OrderEmailTask struct {
	TaskID        string    `json:"taskId"`
	OrderID       string    `json:"orderId"`
	UserID        string    `json:"userId,omitempty"`
	CustomerEmail string    `json:"customerEmail"`
	CustomerName  string    `json:"customerName"`
	Total         int64     `json:"total"`
	ItemCount     int       `json:"itemCount"`
	EnqueuedAt    time.Time `json:"enqueuedAt"`
}

type OtpEmailTask struct {
	TaskID     string    `json:"taskId"`
	Email      string    `json:"email"`
	Code       string    `json:"code"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}
