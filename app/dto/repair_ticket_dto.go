package dto

import "github.com/amirphl/repair-desk/models"

// CreateTicketRequest is the intake form for a new repair ticket
type CreateTicketRequest struct {
	CustomerID       string   `json:"customerId" validate:"required,uuid"`
	DeviceType       string   `json:"deviceType" validate:"required,max=100"`
	DeviceModel      string   `json:"deviceModel" validate:"max=255"`
	SerialNumber     *string  `json:"serialNumber,omitempty" validate:"omitempty,max=255"`
	IssueDescription string   `json:"issueDescription" validate:"required"`
	EstimatedCost    float64  `json:"estimatedCost"`
	ActualCost       *float64 `json:"actualCost,omitempty"`
	Status           string   `json:"status,omitempty" validate:"omitempty,oneof=received diagnosed in_progress awaiting_parts testing completed ready_for_pickup picked_up cancelled"`
	Priority         string   `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	Grade            *string  `json:"grade,omitempty" validate:"omitempty,oneof=excellent good fair poor damaged"`
	GradeNotes       *string  `json:"gradeNotes,omitempty"`
	TechnicianID     *string  `json:"technicianId,omitempty" validate:"omitempty,uuid"`
	Images           []string `json:"images,omitempty" validate:"omitempty,dive,max=2048"`
}

// UpdateTicketRequest is a sparse patch. Fields left out of the body are not touched;
// nullable fields may be sent as null to clear them.
type UpdateTicketRequest struct {
	CustomerID       *string                  `json:"customerId,omitempty" validate:"omitempty,uuid"`
	DeviceType       *string                  `json:"deviceType,omitempty" validate:"omitempty,max=100"`
	DeviceModel      *string                  `json:"deviceModel,omitempty" validate:"omitempty,max=255"`
	SerialNumber     models.Optional[string]  `json:"serialNumber"`
	IssueDescription *string                  `json:"issueDescription,omitempty"`
	EstimatedCost    *float64                 `json:"estimatedCost,omitempty"`
	ActualCost       models.Optional[float64] `json:"actualCost"`
	Status           *string                  `json:"status,omitempty" validate:"omitempty,oneof=received diagnosed in_progress awaiting_parts testing completed ready_for_pickup picked_up cancelled"`
	Priority         *string                  `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	Grade            models.Optional[string]  `json:"grade"`
	GradeNotes       models.Optional[string]  `json:"gradeNotes"`
	TechnicianID     models.Optional[string]  `json:"technicianId"`
	Images           *[]string                `json:"images,omitempty" validate:"omitempty,dive,max=2048"`
}

// ListTicketsQuery filters the ticket list. Empty or "all" disables a filter.
type ListTicketsQuery struct {
	Search   string `query:"search"`
	Status   string `query:"status"`
	Priority string `query:"priority"`
}

// ListTicketsResponse carries the filtered tickets and the unfiltered total
type ListTicketsResponse struct {
	Tickets []models.RepairTicket `json:"tickets"`
	Total   int                   `json:"total"`
}
