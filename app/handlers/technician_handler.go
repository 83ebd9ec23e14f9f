package handlers

import (
	"github.com/amirphl/repair-desk/app/dto"
	businessflow "github.com/amirphl/repair-desk/business_flow"
	"github.com/gofiber/fiber/v3"
)

// TechnicianHandler handles technician roster HTTP requests
type TechnicianHandler struct {
	baseHandler
	flow businessflow.TechnicianFlow
}

func NewTechnicianHandler(flow businessflow.TechnicianFlow) *TechnicianHandler {
	return &TechnicianHandler{
		baseHandler: newBaseHandler(),
		flow:        flow,
	}
}

// List Technicians
// @Tags Technicians
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Technician} "Technicians retrieved successfully"
// @Router /api/v1/technicians [get]
func (h *TechnicianHandler) List(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/technicians")
	defer cancel()

	technicians, err := h.flow.ListTechnicians(ctx)
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to list technicians", "LIST_TECHNICIANS_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Technicians retrieved successfully", technicians)
}

// Create Technician
// @Tags Technicians
// @Accept json
// @Produce json
// @Param request body dto.CreateTechnicianRequest true "Technician"
// @Success 201 {object} dto.APIResponse{data=models.Technician} "Technician created successfully"
// @Router /api/v1/technicians [post]
func (h *TechnicianHandler) Create(c fiber.Ctx) error {
	var req dto.CreateTechnicianRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/technicians")
	defer cancel()

	technician, err := h.flow.CreateTechnician(ctx, &req)
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to create technician", "CREATE_TECHNICIAN_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Technician created successfully", technician)
}

// Update Technician
// @Tags Technicians
// @Accept json
// @Produce json
// @Param id path string true "Technician id"
// @Param request body dto.UpdateTechnicianRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Technician} "Technician updated successfully"
// @Router /api/v1/technicians/{id} [patch]
func (h *TechnicianHandler) Update(c fiber.Ctx) error {
	var req dto.UpdateTechnicianRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/technicians/:id")
	defer cancel()

	technician, err := h.flow.UpdateTechnician(ctx, c.Params("id"), &req)
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to update technician", "UPDATE_TECHNICIAN_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Technician updated successfully", technician)
}

// Delete Technician
// @Description Tickets assigned to the technician become unassigned
// @Tags Technicians
// @Produce json
// @Param id path string true "Technician id"
// @Success 200 {object} dto.APIResponse "Technician deleted successfully"
// @Router /api/v1/technicians/{id} [delete]
func (h *TechnicianHandler) Delete(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/technicians/:id")
	defer cancel()

	if err := h.flow.DeleteTechnician(ctx, c.Params("id")); err != nil {
		return h.FlowErrorResponse(c, err, "Failed to delete technician", "DELETE_TECHNICIAN_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Technician deleted successfully", nil)
}
