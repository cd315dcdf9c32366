package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/amirphl/Eligibility-Roster/app/dto"
	"github.com/amirphl/Eligibility-Roster/app/middleware"
	businessflow "github.com/amirphl/Eligibility-Roster/business_flow"
	"github.com/amirphl/Eligibility-Roster/utils"
)

// CallListHandlerInterface defines the contract for call list handlers
type CallListHandlerInterface interface {
	Options(c fiber.Ctx) error
	Window(c fiber.Ctx) error
	SetFilter(c fiber.Ctx) error
	Sort(c fiber.Ctx) error
	Select(c fiber.Ctx) error
	Move(c fiber.Ctx) error
	RemoveFromCalled(c fiber.Ctx) error
}

// CallListHandler serves both sides of the call list
type CallListHandler struct {
	flow      businessflow.CallListFlow
	validator *validator.Validate
}

// NewCallListHandler creates a new call list handler
func NewCallListHandler(flow businessflow.CallListFlow) *CallListHandler {
	return &CallListHandler{
		flow:      flow,
		validator: NewValidator(),
	}
}

// Options lists the store and plan filter choices
func (h *CallListHandler) Options(c fiber.Ctx) error {
	ctx, cancel := createRequestContext(c, "/api/v1/call-list/options", utils.DefaultRequestTimeout)
	defer cancel()

	res, err := h.flow.Options(ctx)
	if err != nil {
		return flowErrorResponse(c, err, "Failed to load call list options", "CALL_LIST_OPTIONS_FAILED")
	}
	return successResponse(c, fiber.StatusOK, "Call list options retrieved", res)
}

// Window returns the rows of a side inside the requested viewport
func (h *CallListHandler) Window(c fiber.Ctx) error {
	var q dto.CallListWindowQuery
	if err := c.Bind().Query(&q); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", businessflow.CodeInvalidRequest, err.Error())
	}
	if err := h.validator.Struct(&q); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", businessflow.CodeValidationError, validationDetails(err))
	}

	ctx, cancel := createRequestContext(c, "/api/v1/call-list/:side", utils.DefaultRequestTimeout)
	defer cancel()

	res, err := h.flow.Window(ctx, middleware.SessionFromCtx(c), c.Params("side"), &q)
	if err != nil {
		return flowErrorResponse(c, err, "Failed to load call list", "CALL_LIST_FAILED")
	}
	return successResponse(c, fiber.StatusOK, "Call list retrieved", res)
}

// SetFilter replaces the filter of a side
func (h *CallListHandler) SetFilter(c fiber.Ctx) error {
	var req dto.CallListFilterDTO
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", businessflow.CodeInvalidRequest, err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", businessflow.CodeValidationError, validationDetails(err))
	}

	ctx, cancel := createRequestContext(c, "/api/v1/call-list/:side/filter", utils.DefaultRequestTimeout)
	defer cancel()

	res, err := h.flow.SetFilter(ctx, middleware.SessionFromCtx(c), c.Params("side"), &req)
	if err != nil {
		return flowErrorResponse(c, err, "Failed to apply filter", "CALL_LIST_FILTER_FAILED")
	}
	return successResponse(c, fiber.StatusOK, "Filter applied", res)
}

// Sort toggles or sets the sort of a side
func (h *CallListHandler) Sort(c fiber.Ctx) error {
	var req dto.CallListSortRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", businessflow.CodeInvalidRequest, err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", businessflow.CodeValidationError, validationDetails(err))
	}

	ctx, cancel := createRequestContext(c, "/api/v1/call-list/:side/sort", utils.DefaultRequestTimeout)
	defer cancel()

	res, err := h.flow.Sort(ctx, middleware.SessionFromCtx(c), c.Params("side"), &req)
	if err != nil {
		return flowErrorResponse(c, err, "Failed to sort call list", "CALL_LIST_SORT_FAILED")
	}
	return successResponse(c, fiber.StatusOK, "Sort applied", res)
}

// Select toggles the selection of one row
func (h *CallListHandler) Select(c fiber.Ctx) error {
	var req dto.CallListSelectRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", businessflow.CodeInvalidRequest, err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", businessflow.CodeValidationError, validationDetails(err))
	}

	ctx, cancel := createRequestContext(c, "/api/v1/call-list/:side/select", utils.DefaultRequestTimeout)
	defer cancel()

	res, err := h.flow.ToggleSelect(ctx, middleware.SessionFromCtx(c), c.Params("side"), &req)
	if err != nil {
		return flowErrorResponse(c, err, "Failed to update selection", "CALL_LIST_SELECT_FAILED")
	}
	return successResponse(c, fiber.StatusOK, "Selection updated", res)
}

// Move moves the selection of a side to the other side
func (h *CallListHandler) Move(c fiber.Ctx) error {
	ctx, cancel := createRequestContext(c, "/api/v1/call-list/:side/move", utils.DefaultRequestTimeout)
	defer cancel()

	res, err := h.flow.MoveSelected(ctx, middleware.SessionFromCtx(c), c.Params("side"))
	if err != nil {
		return flowErrorResponse(c, err, "Failed to move selection", "CALL_LIST_MOVE_FAILED")
	}
	return successResponse(c, fiber.StatusOK, "Selection moved", res)
}

// RemoveFromCalled returns one phone number to the not-called side
func (h *CallListHandler) RemoveFromCalled(c fiber.Ctx) error {
	ctx, cancel := createRequestContext(c, "/api/v1/call-list/called/:phone", utils.DefaultRequestTimeout)
	defer cancel()

	res, err := h.flow.RemoveFromCalled(ctx, c.Params("phone"))
	if err != nil {
		return flowErrorResponse(c, err, "Failed to remove from called list", "CALL_LIST_REMOVE_FAILED")
	}
	return successResponse(c, fiber.StatusOK, "Removed from called list", res)
}
