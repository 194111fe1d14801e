package models

import "time"

// Delivery modes accepted at checkout.
const (
	DeliveryModeHome   = "Home Delivery"
	DeliveryModePickup = "Pickup"
)

// Order statuses. Only the vendor side moves an order past Pending.
const (
	OrderStatusPending  = "Pending"
	OrderStatusApproved = "Approved"
	OrderStatusRejected = "Rejected"
)

// CheckoutRequest is the checkout payload for one vendor's cart.
type CheckoutRequest struct {
	DeliveryMode  string `json:"delivery_mode" validate:"required"`
	AddressID     string `json:"address_id"`
	OfferID       string `json:"offer_id"`
	PaymentMethod string `json:"payment_method"` // "COD" or "Online"
}

// OrderItem is one snapshot line on an order record.
type OrderItem struct {
	ID          string  `json:"id"`
	VariantID   string  `json:"variant_id,omitempty"`
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	MRP         float64 `json:"mrp"`
	Measurement string  `json:"measurement"`
	Image       string  `json:"image"`
}

// Order is the snapshot record written once at checkout. Only status is
// mutated afterwards, by the vendor side.
type Order struct {
	ID             string      `json:"id"`
	CustomerID     string      `json:"customer_id"`
	VendorMobile   string      `json:"vendor_mobile"`
	Items          []OrderItem `json:"items"`
	TotalAmount    float64     `json:"total_amount"`
	DeliveryCharge float64     `json:"delivery_charge"`
	TotalDiscount  float64     `json:"total_discount"`
	AppliedOffers  []string    `json:"applied_offers"`
	DeliveryMode   string      `json:"delivery_mode"`
	Address        *Address    `json:"address,omitempty"`
	Status         string      `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// VANumber mirrors the midtrans virtual-account pair.
type VANumber struct {
	Bank     string `json:"bank"`
	VANumber string `json:"va_number"`
}

// CheckoutResponse is returned after a successful checkout.
type CheckoutResponse struct {
	Message        string     `json:"message"`
	OrderID        string     `json:"order_id"`
	TotalAmount    float64    `json:"total_amount"`
	TotalDiscount  float64    `json:"total_discount"`
	DeliveryCharge float64    `json:"delivery_charge"`
	FinalAmount    float64    `json:"final_amount"`
	VaNumbers      []VANumber `json:"va_numbers,omitempty"`
}

// Address is a saved customer address.
type Address struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	FullAddress string   `json:"full_address"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	IsPrimary   bool     `json:"is_primary"`
}

// AddressRequest creates a saved address.
type AddressRequest struct {
	Label       string   `json:"label"`
	FullAddress string   `json:"full_address" validate:"required"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	IsPrimary   bool     `json:"is_primary"`
}
