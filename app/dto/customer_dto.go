package dto

import "github.com/amirphl/repair-desk/models"

// CreateCustomerRequest represents the customer form
type CreateCustomerRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Phone   string `json:"phone" validate:"max=32"`
	Address string `json:"address"`
}

// UpdateCustomerRequest is a sparse patch of the customer form
type UpdateCustomerRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Address *string `json:"address,omitempty"`
}

type ListCustomersResponse struct {
	Customers []models.Customer `json:"customers"`
	Total     int               `json:"total"`
}
