// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	"github.com/amirphl/Eligibility-Roster/app/dto"
	businessflow "github.com/amirphl/Eligibility-Roster/business_flow"
	"github.com/amirphl/Eligibility-Roster/utils"
)

// NewValidator returns a validator with the custom tags used by the request DTOs
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("phone_digits", func(fl validator.FieldLevel) bool {
		return utils.IsValidPhoneNumber(utils.NormalizePhoneNumber(fl.Field().String()))
	})
	return v
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "phone_digits":
		return err.Field() + " must contain exactly 10 digits"
	case "datetime":
		return err.Field() + " must be a date formatted as YYYY-MM-DD"
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}

// validationDetails flattens validator errors into human readable messages
func validationDetails(err error) []string {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(fieldErrors))
	for _, e := range fieldErrors {
		out = append(out, getValidationErrorMessage(e))
	}
	return out
}

func errorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func successResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// flowErrorResponse maps business errors onto HTTP statuses; anything else is an internal error
func flowErrorResponse(c fiber.Ctx, err error, fallbackMessage, fallbackCode string) error {
	var be *businessflow.BusinessError
	if errors.As(err, &be) {
		switch be.Code {
		case businessflow.CodeValidationError, businessflow.CodeInvalidDateRange, businessflow.CodeInvalidSide, businessflow.CodeInvalidRequest:
			return errorResponse(c, fiber.StatusBadRequest, be.Message, be.Code, be.Error())
		case businessflow.CodeSessionRequired:
			return errorResponse(c, fiber.StatusUnauthorized, be.Message, be.Code, nil)
		case businessflow.CodeCheckCancelled:
			return errorResponse(c, fiber.StatusConflict, be.Message, be.Code, nil)
		case businessflow.CodeCheckFailed:
			if businessflow.IsResolverUnavailable(err) {
				return errorResponse(c, fiber.StatusServiceUnavailable, be.Message, be.Code, nil)
			}
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errorResponse(c, fiber.StatusGatewayTimeout, "Request timed out", "TIMEOUT", nil)
	}
	log.Printf("handler %s %s: %v", c.Method(), c.Path(), err)
	return errorResponse(c, fiber.StatusInternalServerError, fallbackMessage, fallbackCode, nil)
}

// createRequestContext derives the flow context of a request. The caller must call cancel.
func createRequestContext(c fiber.Ctx, endpoint string, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, requestid.FromContext(c))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	return ctx, cancel
}
