package models

// Vendor is the account record behind one storefront.
type Vendor struct {
	MobileNumber string `json:"mobile_number"`
	BusinessName string `json:"business_name"`
	OwnerName    string `json:"owner_name"`
	Email        string `json:"email"`
	Password     string `json:"-"`
}

// RegisterRequest represents the vendor registration payload.
type RegisterRequest struct {
	MobileNumber string `json:"mobile_number" validate:"required"`
	BusinessName string `json:"business_name" validate:"required"`
	OwnerName    string `json:"owner_name"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
}

// LoginRequest represents the vendor login payload.
type LoginRequest struct {
	MobileNumber string `json:"mobile_number" validate:"required"`
	Password     string `json:"password" validate:"required"`
}

// LoginResponse represents the response after successful login.
type LoginResponse struct {
	Token        string `json:"token"`
	BusinessName string `json:"business_name"`
	MobileNumber string `json:"mobile_number"`
}

// ProductRequest creates or replaces one catalog item document.
type ProductRequest struct {
	Name         string                   `json:"name" validate:"required"`
	Description  string                   `json:"description"`
	Category     string                   `json:"category"`
	Image        string                   `json:"image"`
	Stock        int                      `json:"stock"`
	Hidden       bool                     `json:"hidden"`
	Prices       []map[string]interface{} `json:"prices"`
	Variants     []map[string]interface{} `json:"variants"`
	Measurements []map[string]interface{} `json:"measurements"`
}

// OfferRequest creates or replaces one offer.
type OfferRequest struct {
	Title              string                   `json:"title" validate:"required"`
	Description        string                   `json:"description"`
	ValueType          string                   `json:"value_type" validate:"required"`
	Value              float64                  `json:"value" validate:"required"`
	ApplicableOn       string                   `json:"applicable_on"`
	ApplicableItems    []map[string]interface{} `json:"applicable_items"`
	MinimumOrderAmount float64                  `json:"minimum_order_amount"`
	Active             bool                     `json:"active"`
}

// StatusRequest moves one order to a new status.
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}
