package handlers

import (
	"github.com/amirphl/repair-desk/app/dto"
	businessflow "github.com/amirphl/repair-desk/business_flow"
	"github.com/gofiber/fiber/v3"
)

// TicketHandlerInterface defines the contract for ticket handlers
type TicketHandlerInterface interface {
	List(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	Create(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
}

// TicketHandler handles repair ticket HTTP requests
type TicketHandler struct {
	baseHandler
	flow businessflow.TicketFlow
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(flow businessflow.TicketFlow) *TicketHandler {
	return &TicketHandler{
		baseHandler: newBaseHandler(),
		flow:        flow,
	}
}

// List Tickets
// @Description List repair tickets, newest first, filtered by search text, status and priority
// @Tags Tickets
// @Produce json
// @Param search query string false "Matches ticket id, customer name, device type and model"
// @Param status query string false "Ticket status or all"
// @Param priority query string false "Ticket priority or all"
// @Success 200 {object} dto.APIResponse{data=dto.ListTicketsResponse} "Tickets retrieved successfully"
// @Failure 503 {object} dto.APIResponse "Repair data not loaded"
// @Router /api/v1/tickets [get]
func (h *TicketHandler) List(c fiber.Ctx) error {
	var query dto.ListTicketsQuery
	if err := c.Bind().Query(&query); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/tickets")
	defer cancel()

	result, err := h.flow.ListTickets(ctx, query)
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to list tickets", "LIST_TICKETS_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Tickets retrieved successfully", result)
}

// Get Ticket
// @Description Get a repair ticket by its RPR code
// @Tags Tickets
// @Produce json
// @Param id path string true "Ticket id (RPR-001)"
// @Success 200 {object} dto.APIResponse{data=models.RepairTicket} "Ticket retrieved successfully"
// @Failure 404 {object} dto.APIResponse "Ticket not found"
// @Router /api/v1/tickets/{id} [get]
func (h *TicketHandler) Get(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/tickets/:id")
	defer cancel()

	ticket, err := h.flow.GetTicket(ctx, c.Params("id"))
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to get ticket", "GET_TICKET_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Ticket retrieved successfully", ticket)
}

// Create Ticket
// @Description Register a device for repair. The ticket id is assigned by the server.
// @Tags Tickets
// @Accept json
// @Produce json
// @Param request body dto.CreateTicketRequest true "Intake form"
// @Success 201 {object} dto.APIResponse{data=models.RepairTicket} "Ticket created successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Referenced customer or technician does not exist"
// @Failure 503 {object} dto.APIResponse "Data store unavailable"
// @Router /api/v1/tickets [post]
func (h *TicketHandler) Create(c fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/tickets")
	defer cancel()

	ticket, err := h.flow.CreateTicket(ctx, &req)
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to create ticket", "CREATE_TICKET_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Ticket created successfully", ticket)
}

// Update Ticket
// @Description Sparse update of a ticket. Omitted fields are untouched; nullable fields accept null.
// @Tags Tickets
// @Accept json
// @Produce json
// @Param id path string true "Ticket id (RPR-001)"
// @Param request body dto.UpdateTicketRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.RepairTicket} "Ticket updated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Ticket not found"
// @Router /api/v1/tickets/{id} [patch]
func (h *TicketHandler) Update(c fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/tickets/:id")
	defer cancel()

	ticket, err := h.flow.UpdateTicket(ctx, c.Params("id"), &req)
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to update ticket", "UPDATE_TICKET_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Ticket updated successfully", ticket)
}

// Delete Ticket
// @Tags Tickets
// @Produce json
// @Param id path string true "Ticket id (RPR-001)"
// @Success 200 {object} dto.APIResponse "Ticket deleted successfully"
// @Failure 404 {object} dto.APIResponse "Ticket not found"
// @Router /api/v1/tickets/{id} [delete]
func (h *TicketHandler) Delete(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/tickets/:id")
	defer cancel()

	if err := h.flow.DeleteTicket(ctx, c.Params("id")); err != nil {
		return h.FlowErrorResponse(c, err, "Failed to delete ticket", "DELETE_TICKET_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Ticket deleted successfully", nil)
}
