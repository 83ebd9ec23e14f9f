package handlers

import (
	"github.com/amirphl/repair-desk/app/dto"
	businessflow "github.com/amirphl/repair-desk/business_flow"
	"github.com/gofiber/fiber/v3"
)

// CustomerHandlerInterface defines the contract for customer handlers
type CustomerHandlerInterface interface {
	List(c fiber.Ctx) error
	Create(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
}

// CustomerHandler handles customer directory HTTP requests
type CustomerHandler struct {
	baseHandler
	flow businessflow.CustomerFlow
}

func NewCustomerHandler(flow businessflow.CustomerFlow) *CustomerHandler {
	return &CustomerHandler{
		baseHandler: newBaseHandler(),
		flow:        flow,
	}
}

// List Customers
// @Tags Customers
// @Produce json
// @Param search query string false "Matches name, email or phone"
// @Success 200 {object} dto.APIResponse{data=dto.ListCustomersResponse} "Customers retrieved successfully"
// @Router /api/v1/customers [get]
func (h *CustomerHandler) List(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/customers")
	defer cancel()

	result, err := h.flow.ListCustomers(ctx, c.Query("search"))
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to list customers", "LIST_CUSTOMERS_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Customers retrieved successfully", result)
}

// Create Customer
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.CreateCustomerRequest true "Customer form"
// @Success 201 {object} dto.APIResponse{data=models.Customer} "Customer created successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Router /api/v1/customers [post]
func (h *CustomerHandler) Create(c fiber.Ctx) error {
	var req dto.CreateCustomerRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/customers")
	defer cancel()

	customer, err := h.flow.CreateCustomer(ctx, &req)
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to create customer", "CREATE_CUSTOMER_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Customer created successfully", customer)
}

// Update Customer
// @Tags Customers
// @Accept json
// @Produce json
// @Param id path string true "Customer id"
// @Param request body dto.UpdateCustomerRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Customer} "Customer updated successfully"
// @Failure 404 {object} dto.APIResponse "Customer not found"
// @Router /api/v1/customers/{id} [patch]
func (h *CustomerHandler) Update(c fiber.Ctx) error {
	var req dto.UpdateCustomerRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/customers/:id")
	defer cancel()

	customer, err := h.flow.UpdateCustomer(ctx, c.Params("id"), &req)
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to update customer", "UPDATE_CUSTOMER_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Customer updated successfully", customer)
}

// Delete Customer
// @Description Customers that still have repair tickets cannot be deleted
// @Tags Customers
// @Produce json
// @Param id path string true "Customer id"
// @Success 200 {object} dto.APIResponse "Customer deleted successfully"
// @Failure 404 {object} dto.APIResponse "Customer not found"
// @Failure 409 {object} dto.APIResponse "Customer still has repair tickets"
// @Router /api/v1/customers/{id} [delete]
func (h *CustomerHandler) Delete(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/customers/:id")
	defer cancel()

	if err := h.flow.DeleteCustomer(ctx, c.Params("id")); err != nil {
		return h.FlowErrorResponse(c, err, "Failed to delete customer", "DELETE_CUSTOMER_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Customer deleted successfully", nil)
}
