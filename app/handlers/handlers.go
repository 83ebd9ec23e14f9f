// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/amirphl/repair-desk/app/dto"
	businessflow "github.com/amirphl/repair-desk/business_flow"
	"github.com/amirphl/repair-desk/repository"
	"github.com/amirphl/repair-desk/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
)

// baseHandler carries the response helpers shared by every handler
type baseHandler struct {
	validator *validator.Validate
}

func newBaseHandler() baseHandler {
	return baseHandler{validator: validator.New()}
}

func (h *baseHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *baseHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// validate runs the struct validator and writes a 400 on failure. It returns
// true when the request may proceed.
func (h *baseHandler) validate(c fiber.Ctx, req any) (bool, error) {
	if err := h.validator.Struct(req); err != nil {
		var validationErrors []string
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			for _, fe := range fieldErrors {
				validationErrors = append(validationErrors, getValidationErrorMessage(fe))
			}
		} else {
			validationErrors = append(validationErrors, err.Error())
		}
		return false, h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}
	return true, nil
}

// createRequestContext builds the flow context for a request. The caller must call cancel.
func (h *baseHandler) createRequestContext(c fiber.Ctx, endpoint string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), utils.RequestTimeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, requestID(c))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, utils.RequestTimeout)
	if staff, ok := c.Locals(string(utils.StaffKey)).(string); ok {
		ctx = context.WithValue(ctx, utils.StaffKey, staff)
	}
	return ctx, cancel
}

// FlowErrorResponse maps flow and store errors onto HTTP statuses
func (h *baseHandler) FlowErrorResponse(c fiber.Ctx, err error, message, errorCode string) error {
	var be *businessflow.BusinessError
	hasBE := errors.As(err, &be)

	switch {
	case businessflow.IsStateUnavailable(err):
		code, msg := "STATE_UNAVAILABLE", "Repair data is not available"
		if hasBE {
			code, msg = be.Code, be.Message
		}
		return h.ErrorResponse(c, fiber.StatusServiceUnavailable, msg, code, nil)
	case businessflow.IsSessionClosed(err):
		return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Service is shutting down", "SESSION_CLOSED", nil)
	case businessflow.IsInvalidInput(err):
		if hasBE {
			return h.ErrorResponse(c, fiber.StatusBadRequest, be.Message, be.Code, nil)
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_REQUEST", nil)
	}

	var se *repository.StoreError
	if errors.As(err, &se) {
		switch se.Kind {
		case repository.KindNotFound:
			return h.ErrorResponse(c, fiber.StatusNotFound, se.Message, string(se.Kind), nil)
		case repository.KindConstraint:
			return h.ErrorResponse(c, fiber.StatusConflict, se.Message, string(se.Kind), nil)
		case repository.KindInvalid:
			return h.ErrorResponse(c, fiber.StatusBadRequest, se.Message, string(se.Kind), nil)
		default:
			log.Printf("store unavailable on %s: %v", c.Path(), err)
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Data store is unavailable", string(repository.KindUnavailable), nil)
		}
	}

	if hasBE {
		log.Printf("%s failed on %s: %v", be.Code, c.Path(), err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, be.Message, be.Code, nil)
	}
	log.Printf("%s failed on %s: %v", errorCode, c.Path(), err)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, message, errorCode, nil)
}

// parseDays reads the report window. Empty means the default window.
func parseDays(c fiber.Ctx) (int, error) {
	raw := strings.TrimSpace(c.Query("days"))
	if raw == "" {
		return 0, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		return 0, fmt.Errorf("days must be a non-negative integer")
	}
	return days, nil
}

func requestID(c fiber.Ctx) string {
	if id := requestid.FromContext(c); id != "" {
		return id
	}
	return c.Get("X-Request-ID")
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "uuid":
		return err.Field() + " must be a valid UUID"
	case "min":
		return err.Field() + " must be at least " + err.Param() + " characters"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}
