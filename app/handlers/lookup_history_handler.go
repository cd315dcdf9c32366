package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/amirphl/Eligibility-Roster/app/dto"
	businessflow "github.com/amirphl/Eligibility-Roster/business_flow"
	"github.com/amirphl/Eligibility-Roster/utils"
)

// LookupHistoryHandlerInterface defines the contract for lookup history handlers
type LookupHistoryHandlerInterface interface {
	List(c fiber.Ctx) error
	Checkers(c fiber.Ctx) error
	Export(c fiber.Ctx) error
}

// LookupHistoryHandler serves the lookup history
type LookupHistoryHandler struct {
	flow      businessflow.LookupHistoryFlow
	validator *validator.Validate
}

// NewLookupHistoryHandler creates a new lookup history handler
func NewLookupHistoryHandler(flow businessflow.LookupHistoryFlow) *LookupHistoryHandler {
	return &LookupHistoryHandler{
		flow:      flow,
		validator: NewValidator(),
	}
}

func (h *LookupHistoryHandler) bindQuery(c fiber.Ctx) (*dto.LookupHistoryQuery, error) {
	var q dto.LookupHistoryQuery
	if err := c.Bind().Query(&q); err != nil {
		return nil, errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", businessflow.CodeInvalidRequest, err.Error())
	}
	if err := h.validator.Struct(&q); err != nil {
		return nil, errorResponse(c, fiber.StatusBadRequest, "Validation failed", businessflow.CodeValidationError, validationDetails(err))
	}
	return &q, nil
}

// List returns the filtered lookup history, most recent first unless direction=asc
func (h *LookupHistoryHandler) List(c fiber.Ctx) error {
	q, respErr := h.bindQuery(c)
	if q == nil {
		return respErr
	}
	ctx, cancel := createRequestContext(c, "/api/v1/lookup-history", utils.DefaultRequestTimeout)
	defer cancel()

	res, err := h.flow.List(ctx, q)
	if err != nil {
		return flowErrorResponse(c, err, "Failed to load lookup history", "LOOKUP_HISTORY_FAILED")
	}
	return successResponse(c, fiber.StatusOK, "Lookup history retrieved", res)
}

// Checkers lists every identity found in the history
func (h *LookupHistoryHandler) Checkers(c fiber.Ctx) error {
	ctx, cancel := createRequestContext(c, "/api/v1/lookup-history/checkers", utils.DefaultRequestTimeout)
	defer cancel()

	res, err := h.flow.Checkers(ctx)
	if err != nil {
		return flowErrorResponse(c, err, "Failed to load checkers", "LOOKUP_CHECKERS_FAILED")
	}
	return successResponse(c, fiber.StatusOK, "Checkers retrieved", res)
}

// Export downloads the filtered history as an xlsx workbook
func (h *LookupHistoryHandler) Export(c fiber.Ctx) error {
	q, respErr := h.bindQuery(c)
	if q == nil {
		return respErr
	}
	ctx, cancel := createRequestContext(c, "/api/v1/lookup-history/export", utils.DefaultRequestTimeout)
	defer cancel()

	filename, data, err := h.flow.Export(ctx, q)
	if err != nil {
		return flowErrorResponse(c, err, "Failed to generate Excel", businessflow.CodeExportFailed)
	}
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}
