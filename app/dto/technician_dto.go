package dto

// CreateTechnicianRequest represents a new technician
type CreateTechnicianRequest struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Email       string   `json:"email" validate:"required,email,max=255"`
	Specialties []string `json:"specialties" validate:"omitempty,dive,max=100"`
}

// UpdateTechnicianRequest is a sparse technician patch
type UpdateTechnicianRequest struct {
	Name        *string   `json:"name,omitempty" validate:"omitempty,max=255"`
	Email       *string   `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Specialties *[]string `json:"specialties,omitempty" validate:"omitempty,dive,max=100"`
}
