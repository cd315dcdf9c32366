package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/amirphl/Eligibility-Roster/app/dto"
	"github.com/amirphl/Eligibility-Roster/app/middleware"
	businessflow "github.com/amirphl/Eligibility-Roster/business_flow"
	"github.com/amirphl/Eligibility-Roster/utils"
)

// EligibilityHandlerInterface defines the contract for eligibility handlers
type EligibilityHandlerInterface interface {
	Check(c fiber.Ctx) error
}

// EligibilityHandler handles eligibility lookups
type EligibilityHandler struct {
	flow      businessflow.EligibilityFlow
	validator *validator.Validate
}

// NewEligibilityHandler creates a new eligibility handler
func NewEligibilityHandler(flow businessflow.EligibilityFlow) *EligibilityHandler {
	return &EligibilityHandler{
		flow:      flow,
		validator: NewValidator(),
	}
}

// Check looks up one phone number and records the lookup.
// A newer check from the same staff member cancels this one, which then answers 409.
func (h *EligibilityHandler) Check(c fiber.Ctx) error {
	var req dto.CheckEligibilityRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", businessflow.CodeInvalidRequest, err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", businessflow.CodeValidationError, validationDetails(err))
	}

	ctx, cancel := createRequestContext(c, "/api/v1/eligibility/check", utils.DefaultRequestTimeout)
	defer cancel()

	res, err := h.flow.CheckEligibility(ctx, middleware.SessionFromCtx(c), &req)
	if err != nil {
		return flowErrorResponse(c, err, "Failed to check eligibility", businessflow.CodeCheckFailed)
	}
	return successResponse(c, fiber.StatusOK, res.Message, res)
}
