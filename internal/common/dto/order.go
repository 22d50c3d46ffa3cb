package dto

// CreateOrderRequest is the customer order creation body. Items tolerates
// both an array and a stringified JSON array.
type CreateOrderRequest struct {
	ID              string   `json:"id"`
	UserID          *uint    `json:"user_id"`
	UserName        string   `json:"user_name"`
	Email           string   `json:"email"`
	Items           any      `json:"items"`
	Total           *float64 `json:"total"`
	Status          string   `json:"status"`
	PaymentMethod   string   `json:"payment_method"`
	ShippingAddress any      `json:"shipping_address"`
	ShippingOption  any      `json:"shipping_option"`
	Notes           *string  `json:"notes"`
	IsSample        bool     `json:"is_sample"`
}

// AdminCreateOrderRequest is the admin order creation body. The id is
// always server-generated; shipping is priced separately.
type AdminCreateOrderRequest struct {
	UserID          *uint    `json:"user_id"`
	UserName        string   `json:"user_name"`
	Email           string   `json:"email"`
	Items           any      `json:"items"`
	ShippingPrice   float64  `json:"shipping_price"`
	Status          string   `json:"status"`
	PaymentMethod   string   `json:"payment_method"`
	ShippingAddress any      `json:"shipping_address"`
	ShippingOption  any      `json:"shipping_option"`
	Notes           *string  `json:"notes"`
	IsSample        bool     `json:"is_sample"`
}

// UpdateOrderRequest is the admin partial update body. Pointer fields
// distinguish absent from explicit values.
type UpdateOrderRequest struct {
	Status        *string  `json:"status"`
	PaymentMethod *string  `json:"payment_method"`
	InvoiceStatus *string  `json:"invoice_status"`
	InvoiceURL    *string  `json:"invoice_url"`
	Notes         *string  `json:"notes"`
	Total         *float64 `json:"total"`
	IsSample      *bool    `json:"is_sample"`
}

// TrackingRequest is the tracking upsert body
type TrackingRequest struct {
	TrackingNumber        *string `json:"tracking_number"`
	Carrier               *string `json:"carrier"`
	TrackingURL           *string `json:"tracking_url"`
	ShippedDate           *string `json:"shipped_date"`
	EstimatedDeliveryDate *string `json:"estimated_delivery_date"`
}

// OrderResponse wraps an order row plus the notification outcome flag
type OrderResponse struct {
	Order     any  `json:"order"`
	EmailSent bool `json:"email_sent"`
}
